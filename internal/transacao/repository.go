package transacao

import (
	"github.com/expensehub/api/internal/escopo"
	"gorm.io/gorm"
)

// Filtros de listagem de transações.
type Filtros struct {
	Tipo         string
	GrupoParcela string
	Pagina       int
	Limite       int
}

type Repository interface {
	Criar(db *gorm.DB, transacoes []Transacao) ([]Transacao, error)
	BuscarPorID(c *escopo.Cliente, id uint) (*Transacao, error)
	Listar(c *escopo.Cliente, f Filtros) ([]Transacao, int64, error)
	ListarPorGrupo(c *escopo.Cliente, grupo string) ([]Transacao, error)
	TemPagamentos(db *gorm.DB, transacaoIDs []uint) (bool, error)
	Atualizar(db *gorm.DB, t *Transacao) error
	Deletar(db *gorm.DB, t *Transacao) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Criar grava as transações e seus participantes em uma única transação de
// banco: ou tudo é persistido, ou nada.
func (r *repositoryImpl) Criar(db *gorm.DB, transacoes []Transacao) ([]Transacao, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range transacoes {
			if err := tx.Create(&transacoes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transacoes, nil
}

func (r *repositoryImpl) BuscarPorID(c *escopo.Cliente, id uint) (*Transacao, error) {
	var t Transacao
	err := c.DB().Model(&Transacao{}).
		Scopes(c.Transacoes()).
		Preload("Participantes").
		Preload("Tags").
		First(&t, id).Error
	return &t, err
}

func (r *repositoryImpl) Listar(c *escopo.Cliente, f Filtros) ([]Transacao, int64, error) {
	q := c.DB().Model(&Transacao{}).Scopes(c.Transacoes())
	if f.Tipo != "" {
		q = q.Where("transacoes.tipo = ?", f.Tipo)
	}
	if f.GrupoParcela != "" {
		q = q.Where("transacoes.grupo_parcela = ?", f.GrupoParcela)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limite > 0 {
		q = q.Offset((f.Pagina - 1) * f.Limite).Limit(f.Limite)
	}

	var list []Transacao
	err := q.
		Preload("Participantes").
		Preload("Tags").
		Order("transacoes.data_transacao DESC, transacoes.id DESC").
		Find(&list).Error
	return list, total, err
}

func (r *repositoryImpl) ListarPorGrupo(c *escopo.Cliente, grupo string) ([]Transacao, error) {
	var list []Transacao
	err := c.DB().Model(&Transacao{}).
		Scopes(c.Transacoes()).
		Where("transacoes.grupo_parcela = ?", grupo).
		Preload("Participantes").
		Order("transacoes.parcela_atual").
		Find(&list).Error
	return list, err
}

// TemPagamentos responde se alguma das transações ainda é referenciada por
// um pagamento. Usado para vetar exclusões que quebrariam a liquidação.
func (r *repositoryImpl) TemPagamentos(db *gorm.DB, transacaoIDs []uint) (bool, error) {
	if len(transacaoIDs) == 0 {
		return false, nil
	}
	var total int64
	err := db.Table("pagamento_transacoes").
		Where("transacao_id IN ?", transacaoIDs).
		Count(&total).Error
	return total > 0, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, t *Transacao) error {
	return db.Save(t).Error
}

// Deletar remove a transação, suas linhas de participante e os vínculos de
// tag, tudo na mesma transação de banco.
func (r *repositoryImpl) Deletar(db *gorm.DB, t *Transacao) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transacao_id = ?", t.ID).Delete(&TransacaoParticipante{}).Error; err != nil {
			return err
		}
		if err := tx.Model(t).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(t).Error
	})
}

// RecalcularStatus deriva o status de pagamento da transação do agregado
// das suas linhas de participante. Chamado pelo motor de liquidação após
// aplicar ou reverter um pagamento, sempre dentro da transação de banco em
// curso.
func RecalcularStatus(db *gorm.DB, transacaoID uint) error {
	var linhas []TransacaoParticipante
	if err := db.Where("transacao_id = ?", transacaoID).Find(&linhas).Error; err != nil {
		return err
	}

	status := StatusPendente
	if len(linhas) > 0 {
		todas := true
		alguma := false
		for _, l := range linhas {
			if l.Quitado {
				alguma = true
			} else {
				todas = false
			}
			if l.ValorPago > 0 {
				alguma = true
			}
		}
		switch {
		case todas:
			status = StatusPagoTotal
		case alguma:
			status = StatusPagoParcial
		}
	}

	return db.Model(&Transacao{}).
		Where("id = ?", transacaoID).
		Update("status_pagamento", status).Error
}
