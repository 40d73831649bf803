package hub

import (
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, h *Hub) error
	BuscarPorID(db *gorm.DB, id uint) (*Hub, error)
	BuscarPorNome(db *gorm.DB, nome string) (*Hub, error)
	Atualizar(db *gorm.DB, h *Hub) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, h *Hub) error {
	return db.Create(h).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Hub, error) {
	var h Hub
	err := db.First(&h, id).Error
	return &h, err
}

func (r *repositoryImpl) BuscarPorNome(db *gorm.DB, nome string) (*Hub, error) {
	var h Hub
	err := db.Where("nome = ?", nome).First(&h).Error
	return &h, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, h *Hub) error {
	return db.Save(h).Error
}
