package pagamento

import (
	"github.com/expensehub/api/internal/escopo"
	"gorm.io/gorm"
)

type Repository interface {
	BuscarPorID(c *escopo.Cliente, id uint) (*Pagamento, error)
	Listar(c *escopo.Cliente, pagina, limite int) ([]Pagamento, int64, error)
	Atualizar(db *gorm.DB, p *Pagamento) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) BuscarPorID(c *escopo.Cliente, id uint) (*Pagamento, error) {
	var p Pagamento
	err := c.DB().Model(&Pagamento{}).
		Scopes(c.Pagamentos()).
		Preload("Transacoes").
		First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) Listar(c *escopo.Cliente, pagina, limite int) ([]Pagamento, int64, error) {
	q := c.DB().Model(&Pagamento{}).Scopes(c.Pagamentos())

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Pagamento
	err := q.
		Preload("Transacoes").
		Order("pagamentos.data_pagamento DESC, pagamentos.id DESC").
		Offset((pagina - 1) * limite).
		Limit(limite).
		Find(&list).Error
	return list, total, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, p *Pagamento) error {
	return db.Save(p).Error
}
