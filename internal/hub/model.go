package hub

import (
	"time"

	"gorm.io/gorm"
)

// Hub é a fronteira de tenant: todo dado financeiro pertence a exatamente
// um hub. Hubs nunca são apagados fisicamente no fluxo normal, apenas
// desativados.
type Hub struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	Nome  string `gorm:"size:120;not null" json:"nome"`
	Ativo bool   `gorm:"default:true" json:"ativo"`

	// Política de excedente de pagamento do hub.
	ValorMinimoExcedente      float64 `gorm:"not null;default:1" json:"valorMinimoExcedente"`
	DescricaoReceitaExcedente string  `gorm:"size:255;default:'Excedente de pagamento'" json:"descricaoReceitaExcedente"`
}

func (Hub) TableName() string { return "hubs" }
