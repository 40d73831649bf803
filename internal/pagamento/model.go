package pagamento

import (
	"time"

	"gorm.io/gorm"
)

// Formas de pagamento aceitas pelo formulário.
const (
	FormaPix           = "PIX"
	FormaDinheiro      = "DINHEIRO"
	FormaTransferencia = "TRANSFERENCIA"
	FormaOutro         = "OUTRO"
)

// Pagamento é um ato de liquidação: um valor pago por uma pessoa, aplicado
// contra uma (simples) ou várias (composto) transações do hub. O excedente
// além do alocado pode virar uma receita, guardada em ReceitaExcedenteID.
type Pagamento struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	HubID          uint      `gorm:"not null;index" json:"hubId"`
	PessoaID       uint      `gorm:"not null;index" json:"pessoaId"`
	ValorTotal     float64   `gorm:"not null" json:"valorTotal"`
	DataPagamento  time.Time `gorm:"not null" json:"dataPagamento"`
	FormaPagamento string    `gorm:"size:20;default:'PIX'" json:"formaPagamento"`
	Observacoes    string    `gorm:"size:1000" json:"observacoes"`

	ProcessarExcedente bool    `gorm:"default:false" json:"processarExcedente"`
	ValorExcedente     float64 `gorm:"default:0" json:"valorExcedente"`
	ReceitaExcedenteID *uint   `gorm:"index" json:"receitaExcedenteId,omitempty"`

	Transacoes []PagamentoTransacao `gorm:"foreignKey:PagamentoID;constraint:OnDelete:CASCADE" json:"transacoes,omitempty"`
}

func (Pagamento) TableName() string { return "pagamentos" }

// PagamentoTransacao liga o pagamento a cada transação alvo com o valor
// aplicado naquela transação.
type PagamentoTransacao struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	PagamentoID   uint    `gorm:"not null;index" json:"pagamentoId"`
	TransacaoID   uint    `gorm:"not null;index" json:"transacaoId"`
	ValorAplicado float64 `gorm:"not null" json:"valorAplicado"`
}

func (PagamentoTransacao) TableName() string { return "pagamento_transacoes" }
