package tag

import (
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, t *Tag) error
	BuscarPorID(db *gorm.DB, hubID, id uint) (*Tag, error)
	BuscarPorNome(db *gorm.DB, hubID uint, nome string) (*Tag, error)
	ListarPorHub(db *gorm.DB, hubID uint) ([]Tag, error)
	Atualizar(db *gorm.DB, t *Tag) error
	ContarReferencias(db *gorm.DB, tagID uint) (int64, error)
	Deletar(db *gorm.DB, t *Tag) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, t *Tag) error {
	return db.Create(t).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, hubID, id uint) (*Tag, error) {
	var t Tag
	err := db.Where("hub_id = ?", hubID).First(&t, id).Error
	return &t, err
}

func (r *repositoryImpl) BuscarPorNome(db *gorm.DB, hubID uint, nome string) (*Tag, error) {
	var t Tag
	err := db.Where("hub_id = ? AND nome = ?", hubID, nome).First(&t).Error
	return &t, err
}

func (r *repositoryImpl) ListarPorHub(db *gorm.DB, hubID uint) ([]Tag, error) {
	var list []Tag
	err := db.Where("hub_id = ? AND ativo = ?", hubID, true).Order("nome").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, t *Tag) error {
	return db.Save(t).Error
}

// ContarReferencias conta quantas transações ainda apontam para a tag.
func (r *repositoryImpl) ContarReferencias(db *gorm.DB, tagID uint) (int64, error) {
	var total int64
	err := db.Table("transacao_tags").Where("tag_id = ?", tagID).Count(&total).Error
	return total, err
}

func (r *repositoryImpl) Deletar(db *gorm.DB, t *Tag) error {
	return db.Delete(t).Error
}
