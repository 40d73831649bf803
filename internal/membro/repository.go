package membro

import (
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, m *PessoaHub) error
	BuscarVinculo(db *gorm.DB, pessoaID, hubID uint) (*PessoaHub, error)
	ListarPorHub(db *gorm.DB, hubID uint) ([]PessoaHub, error)
	ListarPorPessoa(db *gorm.DB, pessoaID uint) ([]PessoaHub, error)
	Atualizar(db *gorm.DB, m *PessoaHub) error
	ContarProprietarios(db *gorm.DB, hubID uint) (int64, error)

	SalvarConvite(db *gorm.DB, c *Convite) error
	BuscarConvitePorToken(db *gorm.DB, token string) (*Convite, error)
	AtualizarConvite(db *gorm.DB, c *Convite) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, m *PessoaHub) error {
	return db.Create(m).Error
}

func (r *repositoryImpl) BuscarVinculo(db *gorm.DB, pessoaID, hubID uint) (*PessoaHub, error) {
	var m PessoaHub
	err := db.Where("pessoa_id = ? AND hub_id = ? AND ativo = ?", pessoaID, hubID, true).First(&m).Error
	return &m, err
}

func (r *repositoryImpl) ListarPorHub(db *gorm.DB, hubID uint) ([]PessoaHub, error) {
	var list []PessoaHub
	err := db.
		Where("hub_id = ? AND ativo = ?", hubID, true).
		Preload("Pessoa").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListarPorPessoa(db *gorm.DB, pessoaID uint) ([]PessoaHub, error) {
	var list []PessoaHub
	err := db.Where("pessoa_id = ? AND ativo = ?", pessoaID, true).Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, m *PessoaHub) error {
	return db.Save(m).Error
}

func (r *repositoryImpl) ContarProprietarios(db *gorm.DB, hubID uint) (int64, error) {
	var total int64
	err := db.Model(&PessoaHub{}).
		Where("hub_id = ? AND papel = ? AND ativo = ?", hubID, "PROPRIETARIO", true).
		Count(&total).Error
	return total, err
}

func (r *repositoryImpl) SalvarConvite(db *gorm.DB, c *Convite) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) BuscarConvitePorToken(db *gorm.DB, token string) (*Convite, error) {
	var c Convite
	err := db.Where("token = ? AND ativo = ?", token, true).First(&c).Error
	return &c, err
}

func (r *repositoryImpl) AtualizarConvite(db *gorm.DB, c *Convite) error {
	return db.Save(c).Error
}
