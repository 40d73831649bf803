package auth

import (
	"time"

	"github.com/expensehub/api/internal/rbac"
)

// RefreshToken guarda só o hash do refresh; o valor cru fica no cookie do
// cliente. O recorte de tenant vigente é preservado para que a rotação
// emita um access token equivalente.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"`
	PessoaID  uint   `gorm:"index"`
	FamilyID  string `gorm:"index"`
	Hash      string `gorm:"uniqueIndex"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time

	HubID           uint
	Papel           rbac.Papel          `gorm:"size:20"`
	Politica        rbac.PoliticaAcesso `gorm:"size:20"`
	EhAdministrador bool
}

func (RefreshToken) TableName() string { return "refresh_tokens" }
