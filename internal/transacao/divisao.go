package transacao

import (
	"errors"
	"fmt"

	"github.com/expensehub/api/internal/utils"
)

// MaxParticipantes é o teto de participantes por transação. O mesmo limite
// existe no formulário do frontend, mas é invariante do servidor.
const MaxParticipantes = 10

var (
	ErrSemParticipantes        = errors.New("um gasto precisa de pelo menos um participante")
	ErrParticipantesDemais     = fmt.Errorf("máximo de %d participantes por transação", MaxParticipantes)
	ErrParticipanteDuplicado   = errors.New("participante duplicado na lista")
	ErrValorDevidoInvalido     = errors.New("valor devido de participante deve ser maior ou igual a zero")
	ErrSomaParticipantesDifere = errors.New("a soma dos valores devidos difere do valor total")
)

// ParticipanteInput é a fatia de um participante no rateio de um gasto.
type ParticipanteInput struct {
	PessoaID    uint    `json:"pessoaId"`
	ValorDevido float64 `json:"valorDevido"`
}

// DividirIgualmente reparte um valor em n fatias de duas casas decimais.
// As n-1 primeiras fatias recebem o valor arredondado; a última absorve o
// resto do arredondamento, de modo que a soma bate exatamente com o total.
func DividirIgualmente(valorTotal float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	fatias := make([]float64, n)
	fatia := utils.Arredondar2(valorTotal / float64(n))
	var soma float64
	for i := 0; i < n-1; i++ {
		fatias[i] = fatia
		soma += fatia
	}
	fatias[n-1] = utils.Arredondar2(valorTotal - soma)
	return fatias
}

// ValidarDivisao confere o rateio de um gasto: lista não vazia, dentro do
// teto, sem pessoa repetida, valores não negativos e soma igual ao valor
// total dentro da tolerância de um centavo. Rateio desequilibrado é
// rejeitado, nunca corrigido silenciosamente.
func ValidarDivisao(valorTotal float64, participantes []ParticipanteInput) error {
	if len(participantes) == 0 {
		return ErrSemParticipantes
	}
	if len(participantes) > MaxParticipantes {
		return ErrParticipantesDemais
	}

	vistos := make(map[uint]bool, len(participantes))
	var soma float64
	for _, p := range participantes {
		if vistos[p.PessoaID] {
			return ErrParticipanteDuplicado
		}
		vistos[p.PessoaID] = true
		if p.ValorDevido < 0 {
			return ErrValorDevidoInvalido
		}
		soma += p.ValorDevido
	}

	if !utils.MesmoValor(soma, valorTotal) {
		return fmt.Errorf("%w: soma %.2f, total %.2f", ErrSomaParticipantesDifere, soma, valorTotal)
	}
	return nil
}
