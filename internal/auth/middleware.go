package auth

import (
	"net/http"
	"strings"

	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/utils"
)

// MiddlewareAutenticacao valida o Bearer token e pendura o contexto de
// tenant no context da requisição. Handlers leem via tenant.DaRequisicao.
func MiddlewareAutenticacao(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Token ausente")
			return
		}
		raw := strings.TrimPrefix(h, "Bearer ")
		claims, err := ValidarToken(raw)
		if err != nil {
			utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoTokenInvalido, "Token inválido ou expirado")
			return
		}
		ctx := tenant.ComContexto(r.Context(), claims.Contexto())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireHub exige um token já escopado por hub (pós select-hub). Rotas de
// dados financeiros passam por aqui.
func RequireHub(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		tc, err := tenant.DaRequisicao(r)
		if err != nil || !tc.TemHub() {
			utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Selecione um hub antes de acessar este recurso")
			return
		}
		next.ServeHTTP(w, r)
	})
}
