package pagamento

import (
	"errors"
	"testing"
	"time"

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
		&Pagamento{},
		&PagamentoTransacao{},
	)
	if err != nil {
		t.Fatalf("migrando esquema: %v", err)
	}
	return db
}

// criarGasto grava um gasto com os participantes informados (pessoaID -> valorDevido).
func criarGasto(t *testing.T, db *gorm.DB, hubID uint, valorTotal float64, devidos map[uint]float64) *transacao.Transacao {
	t.Helper()
	g := transacao.Transacao{
		HubID:           hubID,
		Tipo:            transacao.TipoGasto,
		Descricao:       "Compras do mês",
		ValorTotal:      valorTotal,
		DataTransacao:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ProprietarioID:  1,
		TotalParcelas:   1,
		ParcelaAtual:    1,
		StatusPagamento: transacao.StatusPendente,
	}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("criando gasto: %v", err)
	}
	for pessoaID, devido := range devidos {
		linha := transacao.TransacaoParticipante{TransacaoID: g.ID, PessoaID: pessoaID, ValorDevido: devido}
		if err := db.Create(&linha).Error; err != nil {
			t.Fatalf("criando participante: %v", err)
		}
	}
	return &g
}

func linhaDe(t *testing.T, db *gorm.DB, transacaoID, pessoaID uint) transacao.TransacaoParticipante {
	t.Helper()
	var linha transacao.TransacaoParticipante
	err := db.Where("transacao_id = ? AND pessoa_id = ?", transacaoID, pessoaID).First(&linha).Error
	if err != nil {
		t.Fatalf("buscando linha do participante: %v", err)
	}
	return linha
}

func statusDe(t *testing.T, db *gorm.DB, transacaoID uint) string {
	t.Helper()
	var tr transacao.Transacao
	if err := db.First(&tr, transacaoID).Error; err != nil {
		t.Fatalf("buscando transação: %v", err)
	}
	return tr.StatusPagamento
}

func entradaBase(hubID, pessoaID uint, valor float64, alocacoes []AlocacaoInput) CriarInput {
	return CriarInput{
		HubID:                hubID,
		PessoaID:             pessoaID,
		ValorTotal:           valor,
		DataPagamento:        time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		FormaPagamento:       FormaPix,
		Alocacoes:            alocacoes,
		ValorMinimoExcedente: 1,
	}
}

func TestAplicarPagamentoSimples(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 60, 3: 40})

	p, err := Aplicar(db, entradaBase(1, 2, 60, []AlocacaoInput{{TransacaoID: g.ID}}))
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if p.ValorExcedente != 0 {
		t.Errorf("excedente = %v, esperado 0", p.ValorExcedente)
	}

	linha := linhaDe(t, db, g.ID, 2)
	if linha.ValorPago != 60 || !linha.Quitado {
		t.Errorf("linha do pagador: pago=%v quitado=%v, esperado 60/true", linha.ValorPago, linha.Quitado)
	}
	if s := statusDe(t, db, g.ID); s != transacao.StatusPagoParcial {
		t.Errorf("status = %q, esperado %q", s, transacao.StatusPagoParcial)
	}

	// O segundo participante liquida o restante e o gasto fecha.
	if _, err := Aplicar(db, entradaBase(1, 3, 40, []AlocacaoInput{{TransacaoID: g.ID}})); err != nil {
		t.Fatalf("Aplicar (segundo pagador): %v", err)
	}
	if s := statusDe(t, db, g.ID); s != transacao.StatusPagoTotal {
		t.Errorf("status = %q, esperado %q", s, transacao.StatusPagoTotal)
	}
}

func TestAplicarPagamentoComposto(t *testing.T) {
	db := abrirBanco(t)
	g1 := criarGasto(t, db, 1, 50, map[uint]float64{2: 50})
	g2 := criarGasto(t, db, 1, 80, map[uint]float64{2: 30, 3: 50})

	p, err := Aplicar(db, entradaBase(1, 2, 80, []AlocacaoInput{
		{TransacaoID: g1.ID, ValorAplicado: 50},
		{TransacaoID: g2.ID, ValorAplicado: 30},
	}))
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if len(p.Transacoes) != 2 {
		t.Fatalf("vínculos = %d, esperado 2", len(p.Transacoes))
	}
	if s := statusDe(t, db, g1.ID); s != transacao.StatusPagoTotal {
		t.Errorf("g1 status = %q, esperado %q", s, transacao.StatusPagoTotal)
	}
	if s := statusDe(t, db, g2.ID); s != transacao.StatusPagoParcial {
		t.Errorf("g2 status = %q, esperado %q", s, transacao.StatusPagoParcial)
	}
}

func TestAplicarExcedenteGeraReceita(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 100})

	in := entradaBase(1, 2, 150, []AlocacaoInput{{TransacaoID: g.ID}})
	in.ProcessarExcedente = true
	in.ValorMinimoExcedente = 10
	in.DescricaoReceitaExcedente = "Troco de pagamento"

	p, err := Aplicar(db, in)
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if p.ValorExcedente != 50 {
		t.Errorf("excedente = %v, esperado 50", p.ValorExcedente)
	}
	if p.ReceitaExcedenteID == nil {
		t.Fatal("receita de excedente não foi criada")
	}

	var receita transacao.Transacao
	if err := db.First(&receita, *p.ReceitaExcedenteID).Error; err != nil {
		t.Fatalf("buscando receita: %v", err)
	}
	if receita.Tipo != transacao.TipoReceita || receita.ValorTotal != 50 {
		t.Errorf("receita: tipo=%q valor=%v, esperado RECEITA/50", receita.Tipo, receita.ValorTotal)
	}
	if receita.Descricao != "Troco de pagamento" {
		t.Errorf("descrição = %q, esperada a configurada no hub", receita.Descricao)
	}
	if receita.StatusPagamento != transacao.StatusPagoTotal {
		t.Errorf("receita status = %q, esperado %q", receita.StatusPagamento, transacao.StatusPagoTotal)
	}
}

func TestAplicarExcedenteAbaixoDoMinimo(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 100})

	in := entradaBase(1, 2, 105, []AlocacaoInput{{TransacaoID: g.ID}})
	in.ProcessarExcedente = true
	in.ValorMinimoExcedente = 10

	p, err := Aplicar(db, in)
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if p.ValorExcedente != 5 {
		t.Errorf("excedente = %v, esperado 5", p.ValorExcedente)
	}
	if p.ReceitaExcedenteID != nil {
		t.Error("excedente abaixo do mínimo não deveria gerar receita")
	}
}

func TestAplicarErros(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 60, 3: 40})
	outroHub := criarGasto(t, db, 2, 100, map[uint]float64{2: 100})

	testes := []struct {
		nome string
		in   CriarInput
		erro error
	}{
		{
			nome: "valor zero",
			in:   entradaBase(1, 2, 0, []AlocacaoInput{{TransacaoID: g.ID}}),
			erro: ErrValorInvalido,
		},
		{
			nome: "sem alvos",
			in:   entradaBase(1, 2, 50, nil),
			erro: ErrSemAlvos,
		},
		{
			nome: "transação de outro hub",
			in:   entradaBase(1, 2, 50, []AlocacaoInput{{TransacaoID: outroHub.ID, ValorAplicado: 50}}),
			erro: ErrTransacaoNaoEncontrada,
		},
		{
			nome: "pagador fora da divisão",
			in:   entradaBase(1, 9, 50, []AlocacaoInput{{TransacaoID: g.ID, ValorAplicado: 50}}),
			erro: ErrPagadorNaoParticipante,
		},
		{
			nome: "aplicação acima da dívida",
			in:   entradaBase(1, 2, 80, []AlocacaoInput{{TransacaoID: g.ID, ValorAplicado: 80}}),
			erro: ErrAplicacaoExcedeDivida,
		},
		{
			nome: "alocações acima do total",
			in: entradaBase(1, 2, 50, []AlocacaoInput{
				{TransacaoID: g.ID, ValorAplicado: 60},
			}),
			erro: ErrAlocacaoExcedeTotal,
		},
	}

	for _, tc := range testes {
		t.Run(tc.nome, func(t *testing.T) {
			if _, err := Aplicar(db, tc.in); !errors.Is(err, tc.erro) {
				t.Errorf("Aplicar = %v, esperado %v", err, tc.erro)
			}
		})
	}
}

// Dois pagamentos contra a mesma dívida: o segundo só pode aplicar o que
// restou. Nunca se paga mais do que se deve.
func TestAplicarNaoUltrapassaDivida(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 100})

	if _, err := Aplicar(db, entradaBase(1, 2, 60, []AlocacaoInput{{TransacaoID: g.ID}})); err != nil {
		t.Fatalf("primeiro pagamento: %v", err)
	}

	_, err := Aplicar(db, entradaBase(1, 2, 50, []AlocacaoInput{{TransacaoID: g.ID, ValorAplicado: 50}}))
	if !errors.Is(err, ErrAplicacaoExcedeDivida) {
		t.Fatalf("segundo pagamento = %v, esperado %v", err, ErrAplicacaoExcedeDivida)
	}

	// O pagamento simples sem alocação explícita aplica só o restante.
	p, err := Aplicar(db, entradaBase(1, 2, 50, []AlocacaoInput{{TransacaoID: g.ID}}))
	if err != nil {
		t.Fatalf("pagamento do restante: %v", err)
	}
	linha := linhaDe(t, db, g.ID, 2)
	if linha.ValorPago != 100 || !linha.Quitado {
		t.Errorf("linha final: pago=%v quitado=%v, esperado 100/true", linha.ValorPago, linha.Quitado)
	}
	if p.ValorExcedente != 10 {
		t.Errorf("excedente = %v, esperado 10", p.ValorExcedente)
	}
}

func TestReverterRestauraSaldos(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 60, 3: 40})

	p, err := Aplicar(db, entradaBase(1, 2, 60, []AlocacaoInput{{TransacaoID: g.ID}}))
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}

	if err := Reverter(db, 1, p.ID); err != nil {
		t.Fatalf("Reverter: %v", err)
	}

	linha := linhaDe(t, db, g.ID, 2)
	if linha.ValorPago != 0 || linha.Quitado {
		t.Errorf("linha após reversão: pago=%v quitado=%v, esperado 0/false", linha.ValorPago, linha.Quitado)
	}
	if s := statusDe(t, db, g.ID); s != transacao.StatusPendente {
		t.Errorf("status = %q, esperado %q", s, transacao.StatusPendente)
	}

	var vinculos int64
	if err := db.Model(&PagamentoTransacao{}).Where("pagamento_id = ?", p.ID).Count(&vinculos).Error; err != nil {
		t.Fatalf("contando vínculos: %v", err)
	}
	if vinculos != 0 {
		t.Errorf("vínculos remanescentes = %d, esperado 0", vinculos)
	}
	if err := db.First(&Pagamento{}, p.ID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("pagamento ainda visível após reversão: %v", err)
	}
}

func TestReverterRemoveReceitaDeExcedente(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 100})

	in := entradaBase(1, 2, 150, []AlocacaoInput{{TransacaoID: g.ID}})
	in.ProcessarExcedente = true
	p, err := Aplicar(db, in)
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if p.ReceitaExcedenteID == nil {
		t.Fatal("receita de excedente não foi criada")
	}

	if err := Reverter(db, 1, p.ID); err != nil {
		t.Fatalf("Reverter: %v", err)
	}
	err = db.First(&transacao.Transacao{}, *p.ReceitaExcedenteID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("receita de excedente ainda visível após reversão: %v", err)
	}
}

func TestReverterBloqueadoComExcedenteLiquidado(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 100})

	in := entradaBase(1, 2, 150, []AlocacaoInput{{TransacaoID: g.ID}})
	in.ProcessarExcedente = true
	p, err := Aplicar(db, in)
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}

	// Outro pagamento referenciando a receita de excedente trava a reversão.
	ref := PagamentoTransacao{PagamentoID: p.ID + 100, TransacaoID: *p.ReceitaExcedenteID, ValorAplicado: 10}
	if err := db.Create(&ref).Error; err != nil {
		t.Fatalf("criando referência à receita: %v", err)
	}

	if err := Reverter(db, 1, p.ID); !errors.Is(err, ErrExcedenteLiquidado) {
		t.Fatalf("Reverter = %v, esperado %v", err, ErrExcedenteLiquidado)
	}
}

func TestReverterDeOutroHub(t *testing.T) {
	db := abrirBanco(t)
	g := criarGasto(t, db, 1, 100, map[uint]float64{2: 100})

	p, err := Aplicar(db, entradaBase(1, 2, 100, []AlocacaoInput{{TransacaoID: g.ID}}))
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}

	if err := Reverter(db, 2, p.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Reverter com hub errado = %v, esperado registro não encontrado", err)
	}
}
