package transacao

import (
	"time"

	"github.com/expensehub/api/internal/tag"
	"gorm.io/gorm"
)

// Tipos de transação.
const (
	TipoGasto   = "GASTO"
	TipoReceita = "RECEITA"
)

// Estados de pagamento de uma transação. As transições são dirigidas
// exclusivamente pelo motor de liquidação, nunca por update direto.
const (
	StatusPendente    = "PENDENTE"
	StatusPagoParcial = "PAGO_PARCIAL"
	StatusPagoTotal   = "PAGO_TOTAL"
)

// Transacao é um lançamento do hub: um GASTO rateado entre participantes
// ou uma RECEITA. Gastos parcelados viram N linhas irmãs compartilhando um
// GrupoParcela.
type Transacao struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	HubID          uint      `gorm:"not null;index" json:"hubId"`
	Tipo           string    `gorm:"size:10;not null;index" json:"tipo"`
	Descricao      string    `gorm:"size:255;not null" json:"descricao"`
	Local          string    `gorm:"size:255" json:"local"`
	Observacoes    string    `gorm:"size:1000" json:"observacoes"`
	ValorTotal     float64   `gorm:"not null" json:"valorTotal"`
	DataTransacao  time.Time `gorm:"not null;index" json:"dataTransacao"`
	ProprietarioID uint      `gorm:"not null;index" json:"proprietarioId"`

	EhParcelado   bool   `gorm:"default:false" json:"ehParcelado"`
	TotalParcelas int    `gorm:"default:1" json:"totalParcelas"`
	ParcelaAtual  int    `gorm:"default:1" json:"parcelaAtual"`
	GrupoParcela  string `gorm:"size:36;index" json:"grupoParcela,omitempty"`

	StatusPagamento string `gorm:"size:20;not null;default:'PENDENTE';index" json:"statusPagamento"`

	Participantes []TransacaoParticipante `gorm:"foreignKey:TransacaoID;constraint:OnDelete:CASCADE" json:"participantes,omitempty"`
	Tags          []tag.Tag               `gorm:"many2many:transacao_tags" json:"tags,omitempty"`
}

func (Transacao) TableName() string { return "transacoes" }

// TransacaoParticipante é a linha de dívida de uma pessoa em um gasto.
// Criada junto com a transação; só o motor de liquidação mexe em
// ValorPago/Quitado.
type TransacaoParticipante struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	TransacaoID uint    `gorm:"not null;index;uniqueIndex:idx_transacao_pessoa" json:"transacaoId"`
	PessoaID    uint    `gorm:"not null;index;uniqueIndex:idx_transacao_pessoa" json:"pessoaId"`
	ValorDevido float64 `gorm:"not null" json:"valorDevido"`
	ValorPago   float64 `gorm:"not null;default:0" json:"valorPago"`
	Quitado     bool    `gorm:"default:false" json:"quitado"`
}

func (TransacaoParticipante) TableName() string { return "transacao_participantes" }
