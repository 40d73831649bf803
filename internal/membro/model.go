package membro

import (
	"time"

	"github.com/expensehub/api/internal/pessoa"
	"github.com/expensehub/api/internal/rbac"
	"gorm.io/gorm"
)

// PessoaHub é o vínculo de uma pessoa com um hub, com papel e política de
// acesso próprios daquele hub.
type PessoaHub struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	PessoaID uint                `gorm:"not null;index;uniqueIndex:idx_pessoa_hub" json:"pessoaId"`
	HubID    uint                `gorm:"not null;index;uniqueIndex:idx_pessoa_hub" json:"hubId"`
	Papel    rbac.Papel          `gorm:"size:20;not null;default:'COLABORADOR'" json:"papel"`
	Politica rbac.PoliticaAcesso `gorm:"size:20;not null;default:'GLOBAL'" json:"politicaAcesso"`
	Ativo    bool                `gorm:"default:true" json:"ativo"`

	Pessoa pessoa.Pessoa `gorm:"foreignKey:PessoaID" json:"pessoa,omitempty"`
}

func (PessoaHub) TableName() string { return "pessoa_hubs" }

// Convite é o ingresso pendente de um email em um hub. O token é de uso
// único e expira.
type Convite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	HubID     uint                `gorm:"not null;index" json:"hubId"`
	Email     string              `gorm:"size:255;not null;index" json:"email"`
	Papel     rbac.Papel          `gorm:"size:20;not null;default:'COLABORADOR'" json:"papel"`
	Politica  rbac.PoliticaAcesso `gorm:"size:20;not null;default:'GLOBAL'" json:"politicaAcesso"`
	Token     string              `gorm:"size:64;uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time           `gorm:"not null" json:"expiresAt"`
	Ativo     bool                `gorm:"default:true" json:"ativo"`
}

func (Convite) TableName() string { return "convites" }

// Expirado informa se o convite passou da validade.
func (c *Convite) Expirado() bool { return time.Now().After(c.ExpiresAt) }
