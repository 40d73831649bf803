package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/expensehub/api/internal/tenant"
	"gorm.io/gorm"
)

const (
	RefreshTTL    = 30 * 24 * time.Hour
	RefreshCookie = "rt"
)

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// Em localhost (http://localhost) precisa ser Secure=false.
// Em produção (HTTPS), defina COOKIE_SECURE=true.
func cookieSecure() bool {
	return os.Getenv("COOKIE_SECURE") == "true"
}

func setRTCookie(w http.ResponseWriter, raw string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    raw,
		Path:     "/api/auth", // cobre /api/auth/refresh e /api/auth/logout
		HttpOnly: true,
		Secure:   cookieSecure(),
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func clearRTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   cookieSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// emitirTokens gera o par access+refresh para o contexto informado e seta
// o cookie. Usado no login, no select-hub e na rotação.
func emitirTokens(db *gorm.DB, w http.ResponseWriter, tc tenant.Context, familyID string) (string, error) {
	access, err := GerarToken(tc)
	if err != nil {
		return "", err
	}

	raw, err := genRaw()
	if err != nil {
		return "", err
	}
	if familyID == "" {
		familyID = fmt.Sprintf("fam-%d-%d", tc.PessoaID, time.Now().UnixNano())
	}

	rt := RefreshToken{
		PessoaID:        tc.PessoaID,
		FamilyID:        familyID,
		Hash:            hashRaw(raw),
		ExpiresAt:       time.Now().Add(RefreshTTL),
		HubID:           tc.HubID,
		Papel:           tc.Papel,
		Politica:        tc.Politica,
		EhAdministrador: tc.EhAdministrador,
	}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	setRTCookie(w, raw, rt.ExpiresAt)
	return access, nil
}

// rotacionar valida o refresh do cookie, revoga o atual e emite um novo
// par na mesma família. Devolve o novo access token.
func rotacionar(db *gorm.DB, w http.ResponseWriter, r *http.Request) (string, error) {
	c, err := r.Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		return "", fmt.Errorf("refresh ausente")
	}

	var cur RefreshToken
	if err := db.Where("hash = ?", hashRaw(c.Value)).First(&cur).Error; err != nil {
		clearRTCookie(w)
		return "", fmt.Errorf("refresh inválido")
	}
	if cur.RevokedAt != nil || time.Now().After(cur.ExpiresAt) {
		clearRTCookie(w)
		return "", fmt.Errorf("refresh expirado ou revogado")
	}

	now := time.Now()
	if err := db.Model(&cur).Update("revoked_at", &now).Error; err != nil {
		clearRTCookie(w)
		return "", err
	}

	tc := tenant.Context{
		PessoaID:        cur.PessoaID,
		HubID:           cur.HubID,
		Papel:           cur.Papel,
		Politica:        cur.Politica,
		EhAdministrador: cur.EhAdministrador,
	}
	access, err := emitirTokens(db, w, tc, cur.FamilyID)
	if err != nil {
		clearRTCookie(w)
		return "", err
	}
	return access, nil
}

// revogarDoCookie revoga o refresh presente no cookie, se houver.
func revogarDoCookie(db *gorm.DB, w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		now := time.Now()
		_ = db.Model(&RefreshToken{}).Where("hash = ?", hashRaw(c.Value)).Update("revoked_at", &now).Error
	}
	clearRTCookie(w)
}
