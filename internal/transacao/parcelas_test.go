package transacao

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestMontarParcelasExatidao(t *testing.T) {
	base := Transacao{
		Tipo:          TipoGasto,
		Descricao:     "Geladeira nova",
		ValorTotal:    300.00,
		DataTransacao: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		EhParcelado:   true,
		TotalParcelas: 3,
	}
	participantes := []ParticipanteInput{{PessoaID: 1, ValorDevido: 150.00}, {PessoaID: 2, ValorDevido: 150.00}}

	parcelas, err := MontarParcelas(base, participantes)
	if err != nil {
		t.Fatalf("MontarParcelas() erro inesperado: %v", err)
	}
	if len(parcelas) != 3 {
		t.Fatalf("len(parcelas) = %d, want 3", len(parcelas))
	}

	grupo := parcelas[0].GrupoParcela
	if grupo == "" {
		t.Fatal("parcelas deveriam compartilhar um grupo não vazio")
	}

	var soma float64
	for i, p := range parcelas {
		if p.GrupoParcela != grupo {
			t.Errorf("parcela %d com grupo %q, want %q", i+1, p.GrupoParcela, grupo)
		}
		if p.ParcelaAtual != i+1 {
			t.Errorf("parcela %d com ParcelaAtual = %d", i+1, p.ParcelaAtual)
		}
		if math.Abs(p.ValorTotal-100.00) > 0.001 {
			t.Errorf("parcela %d com valor %v, want 100.00", i+1, p.ValorTotal)
		}
		wantMes := time.Month(1 + i)
		if p.DataTransacao.Month() != wantMes {
			t.Errorf("parcela %d com mês %v, want %v", i+1, p.DataTransacao.Month(), wantMes)
		}
		soma += p.ValorTotal
	}
	if math.Abs(soma-300.00) > 0.001 {
		t.Errorf("soma das parcelas = %v, want exatamente 300.00", soma)
	}
}

func TestMontarParcelasRateioProporcional(t *testing.T) {
	base := Transacao{
		Tipo:          TipoGasto,
		ValorTotal:    100.00,
		DataTransacao: time.Now(),
		EhParcelado:   true,
		TotalParcelas: 3,
	}
	// Rateio 70/30: cada parcela deve preservar a proporção e fechar a soma.
	participantes := []ParticipanteInput{{PessoaID: 1, ValorDevido: 70.00}, {PessoaID: 2, ValorDevido: 30.00}}

	parcelas, err := MontarParcelas(base, participantes)
	if err != nil {
		t.Fatalf("MontarParcelas() erro inesperado: %v", err)
	}

	var somaGeral float64
	for i, p := range parcelas {
		var somaParcela float64
		for _, linha := range p.Participantes {
			somaParcela += linha.ValorDevido
		}
		if math.Abs(somaParcela-p.ValorTotal) > 0.001 {
			t.Errorf("parcela %d: rateio soma %v, valor da parcela %v", i+1, somaParcela, p.ValorTotal)
		}
		somaGeral += somaParcela
	}
	if math.Abs(somaGeral-100.00) > 0.001 {
		t.Errorf("soma geral dos rateios = %v, want 100.00", somaGeral)
	}
}

func TestMontarParcelasSemParcelamento(t *testing.T) {
	base := Transacao{Tipo: TipoGasto, ValorTotal: 50.00, DataTransacao: time.Now()}
	parcelas, err := MontarParcelas(base, []ParticipanteInput{{PessoaID: 1, ValorDevido: 50.00}})
	if err != nil {
		t.Fatalf("MontarParcelas() erro inesperado: %v", err)
	}
	if len(parcelas) != 1 {
		t.Fatalf("len(parcelas) = %d, want 1", len(parcelas))
	}
	if parcelas[0].GrupoParcela != "" {
		t.Errorf("transação simples não deveria ter grupo de parcela")
	}
	if len(parcelas[0].Participantes) != 1 {
		t.Errorf("participantes não materializados")
	}
}

func TestMontarParcelasTotalInvalido(t *testing.T) {
	testes := []struct {
		nome          string
		totalParcelas int
		erro          error
	}{
		{"uma parcela só", 1, ErrTotalParcelasInvalido},
		{"acima do teto", MaxParcelas + 1, ErrParcelasDemais},
		{"muito acima do teto", 100000, ErrParcelasDemais},
	}
	for _, tc := range testes {
		t.Run(tc.nome, func(t *testing.T) {
			base := Transacao{Tipo: TipoGasto, ValorTotal: 50.00, EhParcelado: true, TotalParcelas: tc.totalParcelas}
			_, err := MontarParcelas(base, []ParticipanteInput{{PessoaID: 1, ValorDevido: 50.00}})
			if !errors.Is(err, tc.erro) {
				t.Errorf("MontarParcelas() = %v, want %v", err, tc.erro)
			}
		})
	}
}

func TestMontarParcelasNoTeto(t *testing.T) {
	base := Transacao{
		Tipo:          TipoGasto,
		ValorTotal:    600.00,
		DataTransacao: time.Now(),
		EhParcelado:   true,
		TotalParcelas: MaxParcelas,
	}
	parcelas, err := MontarParcelas(base, []ParticipanteInput{{PessoaID: 1, ValorDevido: 600.00}})
	if err != nil {
		t.Fatalf("MontarParcelas() erro inesperado no teto: %v", err)
	}
	if len(parcelas) != MaxParcelas {
		t.Fatalf("len(parcelas) = %d, want %d", len(parcelas), MaxParcelas)
	}
}
