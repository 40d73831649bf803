package pessoa

import (
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, p *Pessoa) error
	BuscarPorID(db *gorm.DB, id uint) (*Pessoa, error)
	BuscarPorEmail(db *gorm.DB, email string) (*Pessoa, error)
	Atualizar(db *gorm.DB, p *Pessoa) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, p *Pessoa) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Pessoa, error) {
	var p Pessoa
	err := db.First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) BuscarPorEmail(db *gorm.DB, email string) (*Pessoa, error) {
	var p Pessoa
	err := db.Where("email = ?", email).First(&p).Error
	return &p, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, p *Pessoa) error {
	return db.Save(p).Error
}
