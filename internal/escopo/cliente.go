package escopo

import (
	"errors"

	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tenant"
	"gorm.io/gorm"
)

// ErrAcaoProibida é devolvido quando o papel do membro não autoriza a ação.
var ErrAcaoProibida = errors.New("papel não autoriza esta ação")

// Cliente é o acesso a dados escopado por tenant: os escopos produzidos por
// ele já filtram pelo hub do contexto, e consultas de transação aplicam
// também a política INDIVIDUAL quando for o caso. É criado por requisição
// via Para e não carrega estado mutável próprio além do *gorm.DB.
type Cliente struct {
	db  *gorm.DB
	ctx tenant.Context
}

// Para constrói um cliente escopado para o contexto informado.
func Para(db *gorm.DB, ctx tenant.Context) *Cliente {
	return &Cliente{db: db, ctx: ctx}
}

// Contexto devolve o contexto de tenant associado.
func (c *Cliente) Contexto() tenant.Context { return c.ctx }

// DB devolve o *gorm.DB subjacente. Escritas passam sempre pelos motores
// de domínio, que validam papel e política antes de tocar no banco.
func (c *Cliente) DB() *gorm.DB { return c.db }

// Transacao executa fn dentro de uma transação de banco, repassando um
// cliente escopado que compartilha o tx.
func (c *Cliente) Transacao(fn func(tx *Cliente) error) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Cliente{db: tx, ctx: c.ctx})
	})
}

// individualRestrito indica se o recorte INDIVIDUAL se aplica ao contexto.
func (c *Cliente) individualRestrito() bool {
	return c.ctx.Politica == rbac.PoliticaIndividual && !c.ctx.Papel.PeloMenos(rbac.PapelAdministrador)
}

// Transacoes é o escopo de consulta de transações: hub do contexto e, sob
// política INDIVIDUAL, somente transações das quais a pessoa é dona ou
// participante.
func (c *Cliente) Transacoes() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Where("transacoes.hub_id = ?", c.ctx.HubID)
		if c.individualRestrito() {
			q = q.Where(
				"transacoes.proprietario_id = ? OR transacoes.id IN (?)",
				c.ctx.PessoaID,
				c.db.Table("transacao_participantes").Select("transacao_id").Where("pessoa_id = ?", c.ctx.PessoaID),
			)
		}
		return q
	}
}

// Pagamentos é o escopo de consulta de pagamentos. Sob política INDIVIDUAL
// o recorte é simétrico ao de transações: a pessoa vê os pagamentos dos
// quais é a pagadora.
func (c *Cliente) Pagamentos() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Where("pagamentos.hub_id = ?", c.ctx.HubID)
		if c.individualRestrito() {
			q = q.Where("pagamentos.pessoa_id = ?", c.ctx.PessoaID)
		}
		return q
	}
}

// Tags é o escopo de consulta de tags do hub.
func (c *Cliente) Tags() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("tags.hub_id = ?", c.ctx.HubID)
	}
}

// Membros é o escopo de consulta de vínculos pessoa-hub do hub.
func (c *Cliente) Membros() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("pessoa_hubs.hub_id = ?", c.ctx.HubID)
	}
}

// Autorizar valida a ação contra o papel do contexto antes de qualquer
// escrita. Falha aqui não tem efeito colateral algum.
func (c *Cliente) Autorizar(acao rbac.Acao, recurso rbac.Recurso) error {
	if !rbac.Pode(c.ctx.Papel, acao, recurso) {
		return ErrAcaoProibida
	}
	return nil
}

// PodeMexerEm responde se o contexto pode escrever na transação com o dono
// e participantes informados, considerando a política INDIVIDUAL.
func (c *Cliente) PodeMexerEm(proprietarioID uint, participantes []uint) bool {
	if !c.individualRestrito() {
		return true
	}
	if proprietarioID == c.ctx.PessoaID {
		return true
	}
	for _, p := range participantes {
		if p == c.ctx.PessoaID {
			return true
		}
	}
	return false
}
