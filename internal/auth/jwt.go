package auth

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tenant"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTTL é a validade do access token; a sessão longa vive no refresh.
const AccessTTL = 1 * time.Hour

var (
	jwtSecret     []byte
	jwtSecretOnce sync.Once
)

func segredo() []byte {
	jwtSecretOnce.Do(func() {
		s := os.Getenv("JWT_SECRET")
		if s == "" {
			log.Fatal("JWT_SECRET não definida")
		}
		jwtSecret = []byte(s)
	})
	return jwtSecret
}

// Claims carrega a identidade e o recorte de tenant do portador. Antes da
// seleção de hub, HubID é zero e o token só dá acesso às rotas de conta.
type Claims struct {
	PessoaID        uint                `json:"pessoaId"`
	HubID           uint                `json:"hubId,omitempty"`
	Papel           rbac.Papel          `json:"papel,omitempty"`
	Politica        rbac.PoliticaAcesso `json:"politicaAcesso,omitempty"`
	EhAdministrador bool                `json:"ehAdministrador,omitempty"`
	jwt.RegisteredClaims
}

// Contexto converte as claims no contexto de tenant da requisição.
func (c *Claims) Contexto() tenant.Context {
	return tenant.Context{
		PessoaID:        c.PessoaID,
		HubID:           c.HubID,
		Papel:           c.Papel,
		Politica:        c.Politica,
		EhAdministrador: c.EhAdministrador,
	}
}

// GerarToken assina um access token com o contexto de tenant informado.
func GerarToken(tc tenant.Context) (string, error) {
	claims := &Claims{
		PessoaID:        tc.PessoaID,
		HubID:           tc.HubID,
		Papel:           tc.Papel,
		Politica:        tc.Politica,
		EhAdministrador: tc.EhAdministrador,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(segredo())
}

// ValidarToken valida o token e retorna as claims.
func ValidarToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return segredo(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token inválido ou expirado: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("não foi possível extrair claims")
	}
	return claims, nil
}
