package pessoa

import (
	"time"

	"gorm.io/gorm"
)

// Pessoa é a identidade global de um usuário; o vínculo com cada hub fica
// em PessoaHub.
type Pessoa struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	Nome            string `gorm:"size:120;not null" json:"nome"`
	Email           string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Senha           string `gorm:"size:255" json:"-"`
	Ativo           bool   `gorm:"default:true" json:"ativo"`
	EhAdministrador bool   `gorm:"default:false" json:"ehAdministrador"`
}

func (Pessoa) TableName() string { return "pessoas" }
