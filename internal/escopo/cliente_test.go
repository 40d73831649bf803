package escopo_test

import (
	"testing"
	"time"

	"github.com/expensehub/api/internal/escopo"
	"github.com/expensehub/api/internal/pagamento"
	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/transacao"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func abrirBanco(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("abrindo sqlite em memória: %v", err)
	}
	err = db.AutoMigrate(
		&transacao.Transacao{},
		&transacao.TransacaoParticipante{},
		&pagamento.Pagamento{},
	)
	if err != nil {
		t.Fatalf("migrando esquema: %v", err)
	}
	return db
}

func criarGasto(t *testing.T, db *gorm.DB, hubID, dono uint, participantes ...uint) uint {
	t.Helper()
	g := transacao.Transacao{
		HubID:           hubID,
		Tipo:            transacao.TipoGasto,
		Descricao:       "Gasto de teste",
		ValorTotal:      100,
		DataTransacao:   time.Now(),
		ProprietarioID:  dono,
		TotalParcelas:   1,
		ParcelaAtual:    1,
		StatusPagamento: transacao.StatusPendente,
	}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("criando gasto: %v", err)
	}
	for _, pessoaID := range participantes {
		linha := transacao.TransacaoParticipante{TransacaoID: g.ID, PessoaID: pessoaID, ValorDevido: 50}
		if err := db.Create(&linha).Error; err != nil {
			t.Fatalf("criando participante: %v", err)
		}
	}
	return g.ID
}

func contarTransacoes(t *testing.T, c *escopo.Cliente) int64 {
	t.Helper()
	var total int64
	err := c.DB().Model(&transacao.Transacao{}).Scopes(c.Transacoes()).Count(&total).Error
	if err != nil {
		t.Fatalf("contando transações: %v", err)
	}
	return total
}

func TestIsolamentoEntreHubs(t *testing.T) {
	db := abrirBanco(t)
	idA := criarGasto(t, db, 1, 10, 10)
	criarGasto(t, db, 2, 20, 20)

	ctxB := tenant.Context{PessoaID: 20, HubID: 2, Papel: rbac.PapelProprietario, Politica: rbac.PoliticaGlobal}
	c := escopo.Para(db, ctxB)

	if total := contarTransacoes(t, c); total != 1 {
		t.Fatalf("hub B enxerga %d transações, esperado 1", total)
	}

	var vazada transacao.Transacao
	err := c.DB().Model(&transacao.Transacao{}).Scopes(c.Transacoes()).First(&vazada, idA).Error
	if err == nil {
		t.Fatal("transação do hub A visível no escopo do hub B")
	}

	// Soft-delete no hub A não muda nada para o hub B.
	if err := db.Delete(&transacao.Transacao{}, idA).Error; err != nil {
		t.Fatalf("soft-delete: %v", err)
	}
	if total := contarTransacoes(t, c); total != 1 {
		t.Fatalf("hub B enxerga %d transações após soft-delete alheio, esperado 1", total)
	}
}

func TestPoliticaIndividualRestringeTransacoes(t *testing.T) {
	db := abrirBanco(t)
	minha := criarGasto(t, db, 1, 10, 10, 30)     // pessoa 30 participa
	criarGasto(t, db, 1, 10, 10, 20)              // pessoa 30 fora
	minhaComoDono := criarGasto(t, db, 1, 30, 30) // pessoa 30 é dona

	individual := escopo.Para(db, tenant.Context{
		PessoaID: 30, HubID: 1,
		Papel: rbac.PapelColaborador, Politica: rbac.PoliticaIndividual,
	})
	if total := contarTransacoes(t, individual); total != 2 {
		t.Fatalf("colaborador INDIVIDUAL enxerga %d transações, esperado 2", total)
	}

	var ids []uint
	err := individual.DB().Model(&transacao.Transacao{}).Scopes(individual.Transacoes()).
		Order("id").Pluck("transacoes.id", &ids).Error
	if err != nil {
		t.Fatalf("listando ids: %v", err)
	}
	esperados := map[uint]bool{minha: true, minhaComoDono: true}
	for _, id := range ids {
		if !esperados[id] {
			t.Errorf("transação %d fora do recorte INDIVIDUAL apareceu na listagem", id)
		}
	}

	// Administrador com a mesma política enxerga tudo do hub.
	admin := escopo.Para(db, tenant.Context{
		PessoaID: 30, HubID: 1,
		Papel: rbac.PapelAdministrador, Politica: rbac.PoliticaIndividual,
	})
	if total := contarTransacoes(t, admin); total != 3 {
		t.Fatalf("administrador enxerga %d transações, esperado 3", total)
	}
}

func TestPoliticaIndividualRestringePagamentos(t *testing.T) {
	db := abrirBanco(t)
	for _, p := range []pagamento.Pagamento{
		{HubID: 1, PessoaID: 30, ValorTotal: 10, DataPagamento: time.Now()},
		{HubID: 1, PessoaID: 20, ValorTotal: 10, DataPagamento: time.Now()},
		{HubID: 2, PessoaID: 30, ValorTotal: 10, DataPagamento: time.Now()},
	} {
		pg := p
		if err := db.Create(&pg).Error; err != nil {
			t.Fatalf("criando pagamento: %v", err)
		}
	}

	individual := escopo.Para(db, tenant.Context{
		PessoaID: 30, HubID: 1,
		Papel: rbac.PapelColaborador, Politica: rbac.PoliticaIndividual,
	})
	var total int64
	err := individual.DB().Model(&pagamento.Pagamento{}).Scopes(individual.Pagamentos()).Count(&total).Error
	if err != nil {
		t.Fatalf("contando pagamentos: %v", err)
	}
	if total != 1 {
		t.Fatalf("pagador INDIVIDUAL enxerga %d pagamentos, esperado 1", total)
	}
}

func TestAutorizarNegaEscritaDeVisualizador(t *testing.T) {
	db := abrirBanco(t)
	c := escopo.Para(db, tenant.Context{
		PessoaID: 30, HubID: 1,
		Papel: rbac.PapelVisualizador, Politica: rbac.PoliticaGlobal,
	})

	for _, recurso := range []rbac.Recurso{rbac.RecursoTransacao, rbac.RecursoTag, rbac.RecursoPagamento} {
		if err := c.Autorizar(rbac.AcaoCriar, recurso); err == nil {
			t.Errorf("visualizador pôde criar %s", recurso)
		}
	}
	if err := c.Autorizar(rbac.AcaoLer, rbac.RecursoTransacao); err != nil {
		t.Errorf("visualizador deveria poder ler: %v", err)
	}
}
