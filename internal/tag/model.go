package tag

import (
	"time"

	"gorm.io/gorm"
)

// Tag é um rótulo de categoria, escopado por hub. O nome é único dentro do
// hub; quando uma tag referenciada por transações é removida, ela é apenas
// desativada.
type Tag struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	HubID uint   `gorm:"not null;index;uniqueIndex:idx_tag_hub_nome" json:"hubId"`
	Nome  string `gorm:"size:60;not null;uniqueIndex:idx_tag_hub_nome" json:"nome"`
	Cor   string `gorm:"size:10" json:"cor"`
	Icone string `gorm:"size:40" json:"icone"`
	Ativo bool   `gorm:"default:true" json:"ativo"`
}

func (Tag) TableName() string { return "tags" }
