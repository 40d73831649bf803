package transacao

import (
	"errors"
	"fmt"

	"github.com/expensehub/api/internal/utils"
	"github.com/google/uuid"
)

// MaxParcelas é o teto de parcelas por grupo. Assim como MaxParticipantes,
// o formulário repete o limite, mas a invariante é do servidor.
const MaxParcelas = 60

var (
	ErrTotalParcelasInvalido = errors.New("transação parcelada exige pelo menos 2 parcelas")
	ErrParcelasDemais        = fmt.Errorf("máximo de %d parcelas por transação", MaxParcelas)
)

// MontarParcelas materializa um gasto parcelado como TotalParcelas linhas
// irmãs compartilhando um GrupoParcela recém-gerado. O valor de cada
// parcela é o total dividido igualmente (última parcela absorve o resto do
// arredondamento) e o rateio de cada parcela preserva as proporções do
// rateio original, com o último participante absorvendo o resto de cada
// parcela. As datas avançam um mês por parcela.
func MontarParcelas(base Transacao, participantes []ParticipanteInput) ([]Transacao, error) {
	if !base.EhParcelado {
		base.TotalParcelas = 1
		base.ParcelaAtual = 1
		base.Participantes = montarLinhas(participantes)
		return []Transacao{base}, nil
	}
	if base.TotalParcelas < 2 {
		return nil, ErrTotalParcelasInvalido
	}
	if base.TotalParcelas > MaxParcelas {
		return nil, ErrParcelasDemais
	}

	grupo := uuid.NewString()
	valores := DividirIgualmente(base.ValorTotal, base.TotalParcelas)

	parcelas := make([]Transacao, base.TotalParcelas)
	for i := 0; i < base.TotalParcelas; i++ {
		p := base
		p.GrupoParcela = grupo
		p.ParcelaAtual = i + 1
		p.ValorTotal = valores[i]
		p.DataTransacao = base.DataTransacao.AddDate(0, i, 0)
		p.Participantes = montarLinhas(ratearParcela(participantes, valores[i], base.ValorTotal))
		parcelas[i] = p
	}
	return parcelas, nil
}

// ratearParcela escala o rateio original para o valor de uma parcela,
// mantendo as proporções. O último participante absorve a diferença de
// arredondamento da parcela.
func ratearParcela(participantes []ParticipanteInput, valorParcela, valorTotal float64) []ParticipanteInput {
	out := make([]ParticipanteInput, len(participantes))
	var soma float64
	for i, p := range participantes {
		if i == len(participantes)-1 {
			out[i] = ParticipanteInput{PessoaID: p.PessoaID, ValorDevido: utils.Arredondar2(valorParcela - soma)}
			break
		}
		devido := utils.Arredondar2(p.ValorDevido * valorParcela / valorTotal)
		out[i] = ParticipanteInput{PessoaID: p.PessoaID, ValorDevido: devido}
		soma += devido
	}
	return out
}

func montarLinhas(participantes []ParticipanteInput) []TransacaoParticipante {
	linhas := make([]TransacaoParticipante, len(participantes))
	for i, p := range participantes {
		linhas[i] = TransacaoParticipante{PessoaID: p.PessoaID, ValorDevido: p.ValorDevido}
	}
	return linhas
}
