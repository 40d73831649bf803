package tenant

import (
	"context"
	"errors"
	"net/http"

	"github.com/expensehub/api/internal/rbac"
)

type ctxKey string

const ctxTenant ctxKey = "tenantContext"

// ErrSemContexto indica requisição sem contexto de tenant resolvido.
var ErrSemContexto = errors.New("contexto de tenant ausente na requisição")

// Context identifica quem está agindo e sob qual hub/papel. É resolvido a
// partir das claims do access token e passado explicitamente adiante; nunca
// fica pendurado em estado mutável compartilhado.
type Context struct {
	PessoaID        uint
	HubID           uint
	Papel           rbac.Papel
	Politica        rbac.PoliticaAcesso
	EhAdministrador bool
}

// TemHub informa se o token já passou pela seleção de hub.
func (c Context) TemHub() bool { return c.HubID != 0 }

// ComContexto devolve um context.Context carregando o contexto de tenant.
func ComContexto(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxTenant, tc)
}

// DoContexto extrai o contexto de tenant de um context.Context.
func DoContexto(ctx context.Context) (Context, error) {
	tc, ok := ctx.Value(ctxTenant).(Context)
	if !ok {
		return Context{}, ErrSemContexto
	}
	return tc, nil
}

// DaRequisicao extrai o contexto de tenant da requisição HTTP.
func DaRequisicao(r *http.Request) (Context, error) {
	return DoContexto(r.Context())
}
