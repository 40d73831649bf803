package relatorio

import (
	"time"

	"github.com/expensehub/api/internal/escopo"
	"github.com/expensehub/api/internal/transacao"
	"gorm.io/gorm"
)

// Periodo delimita o recorte temporal dos relatórios; zero significa aberto.
type Periodo struct {
	Inicio time.Time
	Fim    time.Time
}

// SaldoPessoa é o acumulado de dívidas e pagamentos de um membro do hub.
type SaldoPessoa struct {
	PessoaID    uint    `json:"pessoaId"`
	Nome        string  `json:"nome"`
	TotalDevido float64 `json:"totalDevido"`
	TotalPago   float64 `json:"totalPago"`
	Saldo       float64 `json:"saldo"`
}

// Pendencia é uma linha de participante ainda não quitada.
type Pendencia struct {
	TransacaoID   uint      `json:"transacaoId"`
	Descricao     string    `json:"descricao"`
	DataTransacao time.Time `json:"dataTransacao"`
	PessoaID      uint      `json:"pessoaId"`
	Nome          string    `json:"nome"`
	ValorDevido   float64   `json:"valorDevido"`
	ValorPago     float64   `json:"valorPago"`
	ValorRestante float64   `json:"valorRestante"`
}

// ResumoTransacoes agrega o movimento do período por tipo.
type ResumoTransacoes struct {
	TotalGastos    float64 `json:"totalGastos"`
	TotalReceitas  float64 `json:"totalReceitas"`
	Saldo          float64 `json:"saldo"`
	QtdGastos      int64   `json:"qtdGastos"`
	QtdReceitas    int64   `json:"qtdReceitas"`
	QtdPendentes   int64   `json:"qtdPendentes"`
	QtdPagoParcial int64   `json:"qtdPagoParcial"`
	QtdPagoTotal   int64   `json:"qtdPagoTotal"`
}

// GastoCategoria é o total gasto por tag no período.
type GastoCategoria struct {
	TagID      uint    `json:"tagId"`
	Nome       string  `json:"nome"`
	Cor        string  `json:"cor"`
	Icone      string  `json:"icone"`
	TotalGasto float64 `json:"totalGasto"`
	Quantidade int64   `json:"quantidade"`
}

type Repository interface {
	Resumo(c *escopo.Cliente, p Periodo) (*ResumoTransacoes, error)
	Saldos(c *escopo.Cliente) ([]SaldoPessoa, error)
	Pendencias(c *escopo.Cliente) ([]Pendencia, error)
	Categorias(c *escopo.Cliente, p Periodo) ([]GastoCategoria, error)
	TotalPagamentos(c *escopo.Cliente, p Periodo) (float64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Resumo(c *escopo.Cliente, p Periodo) (*ResumoTransacoes, error) {
	base := func() *gorm.DB {
		q := c.DB().Model(&transacao.Transacao{}).Scopes(c.Transacoes())
		if !p.Inicio.IsZero() {
			q = q.Where("transacoes.data_transacao >= ?", p.Inicio)
		}
		if !p.Fim.IsZero() {
			q = q.Where("transacoes.data_transacao <= ?", p.Fim)
		}
		return q
	}

	var resumo ResumoTransacoes

	type linha struct {
		Tipo  string
		Total float64
		Qtd   int64
	}
	var porTipo []linha
	err := base().
		Select("tipo, COALESCE(SUM(valor_total), 0) AS total, COUNT(*) AS qtd").
		Group("tipo").
		Scan(&porTipo).Error
	if err != nil {
		return nil, err
	}
	for _, l := range porTipo {
		switch l.Tipo {
		case transacao.TipoGasto:
			resumo.TotalGastos = l.Total
			resumo.QtdGastos = l.Qtd
		case transacao.TipoReceita:
			resumo.TotalReceitas = l.Total
			resumo.QtdReceitas = l.Qtd
		}
	}
	resumo.Saldo = resumo.TotalReceitas - resumo.TotalGastos

	type statusLinha struct {
		StatusPagamento string
		Qtd             int64
	}
	var porStatus []statusLinha
	err = base().
		Where("transacoes.tipo = ?", transacao.TipoGasto).
		Select("status_pagamento, COUNT(*) AS qtd").
		Group("status_pagamento").
		Scan(&porStatus).Error
	if err != nil {
		return nil, err
	}
	for _, l := range porStatus {
		switch l.StatusPagamento {
		case transacao.StatusPendente:
			resumo.QtdPendentes = l.Qtd
		case transacao.StatusPagoParcial:
			resumo.QtdPagoParcial = l.Qtd
		case transacao.StatusPagoTotal:
			resumo.QtdPagoTotal = l.Qtd
		}
	}
	return &resumo, nil
}

func (r *repositoryImpl) Saldos(c *escopo.Cliente) ([]SaldoPessoa, error) {
	var saldos []SaldoPessoa
	err := c.DB().Model(&transacao.Transacao{}).Scopes(c.Transacoes()).
		Joins("JOIN transacao_participantes tp ON tp.transacao_id = transacoes.id").
		Joins("JOIN pessoas p ON p.id = tp.pessoa_id").
		Where("transacoes.tipo = ? AND transacoes.deleted_at IS NULL", transacao.TipoGasto).
		Select(`tp.pessoa_id AS pessoa_id,
			p.nome AS nome,
			COALESCE(SUM(tp.valor_devido), 0) AS total_devido,
			COALESCE(SUM(tp.valor_pago), 0) AS total_pago,
			COALESCE(SUM(tp.valor_devido - tp.valor_pago), 0) AS saldo`).
		Group("tp.pessoa_id, p.nome").
		Order("saldo DESC").
		Scan(&saldos).Error
	return saldos, err
}

func (r *repositoryImpl) Pendencias(c *escopo.Cliente) ([]Pendencia, error) {
	var pendencias []Pendencia
	err := c.DB().Model(&transacao.Transacao{}).Scopes(c.Transacoes()).
		Joins("JOIN transacao_participantes tp ON tp.transacao_id = transacoes.id").
		Joins("JOIN pessoas p ON p.id = tp.pessoa_id").
		Where("transacoes.tipo = ? AND tp.quitado = ?", transacao.TipoGasto, false).
		Select(`transacoes.id AS transacao_id,
			transacoes.descricao AS descricao,
			transacoes.data_transacao AS data_transacao,
			tp.pessoa_id AS pessoa_id,
			p.nome AS nome,
			tp.valor_devido AS valor_devido,
			tp.valor_pago AS valor_pago,
			tp.valor_devido - tp.valor_pago AS valor_restante`).
		Order("transacoes.data_transacao ASC").
		Scan(&pendencias).Error
	return pendencias, err
}

func (r *repositoryImpl) Categorias(c *escopo.Cliente, p Periodo) ([]GastoCategoria, error) {
	q := c.DB().Model(&transacao.Transacao{}).Scopes(c.Transacoes()).
		Joins("JOIN transacao_tags tt ON tt.transacao_id = transacoes.id").
		Joins("JOIN tags t ON t.id = tt.tag_id").
		Where("transacoes.tipo = ?", transacao.TipoGasto)
	if !p.Inicio.IsZero() {
		q = q.Where("transacoes.data_transacao >= ?", p.Inicio)
	}
	if !p.Fim.IsZero() {
		q = q.Where("transacoes.data_transacao <= ?", p.Fim)
	}

	var categorias []GastoCategoria
	err := q.
		Select(`t.id AS tag_id,
			t.nome AS nome,
			t.cor AS cor,
			t.icone AS icone,
			COALESCE(SUM(transacoes.valor_total), 0) AS total_gasto,
			COUNT(*) AS quantidade`).
		Group("t.id, t.nome, t.cor, t.icone").
		Order("total_gasto DESC").
		Scan(&categorias).Error
	return categorias, err
}

func (r *repositoryImpl) TotalPagamentos(c *escopo.Cliente, p Periodo) (float64, error) {
	q := c.DB().Table("pagamentos").
		Scopes(c.Pagamentos()).
		Where("pagamentos.deleted_at IS NULL")
	if !p.Inicio.IsZero() {
		q = q.Where("pagamentos.data_pagamento >= ?", p.Inicio)
	}
	if !p.Fim.IsZero() {
		q = q.Where("pagamentos.data_pagamento <= ?", p.Fim)
	}

	var total float64
	err := q.Select("COALESCE(SUM(valor_total), 0)").Scan(&total).Error
	return total, err
}
