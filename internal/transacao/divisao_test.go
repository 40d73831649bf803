package transacao

import (
	"errors"
	"math"
	"testing"
)

func TestDividirIgualmente(t *testing.T) {
	tests := []struct {
		name       string
		valorTotal float64
		n          int
		want       []float64
	}{
		{"cem entre tres", 100.00, 3, []float64{33.33, 33.33, 33.34}},
		{"divisao exata", 300.00, 3, []float64{100.00, 100.00, 100.00}},
		{"um participante", 59.90, 1, []float64{59.90}},
		{"dez entre tres", 10.00, 3, []float64{3.33, 3.33, 3.34}},
		{"centavo entre dois", 0.01, 2, []float64{0.01, 0.00}},
		{"n invalido", 50.00, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DividirIgualmente(tt.valorTotal, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("DividirIgualmente(%v, %d) = %v, want %v", tt.valorTotal, tt.n, got, tt.want)
			}
			var soma float64
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 0.001 {
					t.Errorf("fatia %d = %v, want %v", i, got[i], tt.want[i])
				}
				soma += got[i]
			}
			if tt.n > 0 && math.Abs(soma-tt.valorTotal) > 0.001 {
				t.Errorf("soma das fatias = %v, want exatamente %v", soma, tt.valorTotal)
			}
		})
	}
}

func TestValidarDivisao(t *testing.T) {
	tests := []struct {
		name          string
		valorTotal    float64
		participantes []ParticipanteInput
		wantErr       error
	}{
		{
			"rateio balanceado",
			100.00,
			[]ParticipanteInput{{1, 33.33}, {2, 33.33}, {3, 33.34}},
			nil,
		},
		{
			"tolerancia de meio centavo",
			100.00,
			[]ParticipanteInput{{1, 50.00}, {2, 49.995}},
			nil,
		},
		{
			"lista vazia",
			100.00,
			nil,
			ErrSemParticipantes,
		},
		{
			"soma diferente",
			100.00,
			[]ParticipanteInput{{1, 40.00}, {2, 40.00}},
			ErrSomaParticipantesDifere,
		},
		{
			"pessoa duplicada",
			100.00,
			[]ParticipanteInput{{1, 50.00}, {1, 50.00}},
			ErrParticipanteDuplicado,
		},
		{
			"valor devido negativo",
			100.00,
			[]ParticipanteInput{{1, 110.00}, {2, -10.00}},
			ErrValorDevidoInvalido,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidarDivisao(tt.valorTotal, tt.participantes)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidarDivisao() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidarDivisao() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidarDivisaoTetoDeParticipantes(t *testing.T) {
	participantes := make([]ParticipanteInput, MaxParticipantes+1)
	fatias := DividirIgualmente(110.00, MaxParticipantes+1)
	for i := range participantes {
		participantes[i] = ParticipanteInput{PessoaID: uint(i + 1), ValorDevido: fatias[i]}
	}
	if err := ValidarDivisao(110.00, participantes); !errors.Is(err, ErrParticipantesDemais) {
		t.Errorf("ValidarDivisao() com %d participantes = %v, want %v", len(participantes), err, ErrParticipantesDemais)
	}
}
