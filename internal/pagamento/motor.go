package pagamento

import (
	"errors"
	"time"

	"github.com/expensehub/api/internal/transacao"
	"github.com/expensehub/api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrValorInvalido          = errors.New("o valor total do pagamento deve ser maior que zero")
	ErrSemAlvos               = errors.New("o pagamento precisa referenciar pelo menos uma transação")
	ErrAlocacaoExcedeTotal    = errors.New("a soma das alocações excede o valor total do pagamento")
	ErrTransacaoNaoEncontrada = errors.New("transação não encontrada no hub")
	ErrPagadorNaoParticipante = errors.New("o pagador não é participante da transação")
	ErrAplicacaoExcedeDivida  = errors.New("o valor aplicado excede o saldo devedor do participante")
	ErrExcedenteLiquidado     = errors.New("a receita de excedente deste pagamento já possui pagamentos; remova-os antes")
)

// comLock aplica SELECT ... FOR UPDATE onde o dialeto suporta. No sqlite
// (testes) a serialização vem do lock de escrita do próprio banco.
func comLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// AlocacaoInput é a fatia do pagamento destinada a uma transação. Em um
// pagamento simples com ValorAplicado zero, o motor aplica o possível do
// valor total contra o saldo devedor.
type AlocacaoInput struct {
	TransacaoID   uint    `json:"transacaoId"`
	ValorAplicado float64 `json:"valorAplicado"`
}

// CriarInput é a entrada completa do motor de liquidação.
type CriarInput struct {
	HubID              uint
	PessoaID           uint
	ValorTotal         float64
	DataPagamento      time.Time
	FormaPagamento     string
	Observacoes        string
	ProcessarExcedente bool
	Alocacoes          []AlocacaoInput

	// Política de excedente do hub, resolvida pelo chamador.
	ValorMinimoExcedente      float64
	DescricaoReceitaExcedente string
}

// Aplicar registra o pagamento e liquida as linhas de participante das
// transações alvo. Tudo acontece em uma transação de banco com lock de
// linha (SELECT ... FOR UPDATE) sobre cada participante, de modo que dois
// pagamentos concorrentes contra a mesma dívida serializam e o invariante
// valor_pago <= valor_devido nunca quebra.
func Aplicar(db *gorm.DB, in CriarInput) (*Pagamento, error) {
	if in.ValorTotal <= 0 {
		return nil, ErrValorInvalido
	}
	if len(in.Alocacoes) == 0 {
		return nil, ErrSemAlvos
	}

	var criado *Pagamento
	err := db.Transaction(func(tx *gorm.DB) error {
		var somaAplicada float64
		vinculos := make([]PagamentoTransacao, 0, len(in.Alocacoes))

		for _, aloc := range in.Alocacoes {
			// A transação alvo precisa existir no hub e ser um gasto.
			var alvo transacao.Transacao
			if err := tx.Where("hub_id = ? AND tipo = ?", in.HubID, transacao.TipoGasto).
				First(&alvo, aloc.TransacaoID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTransacaoNaoEncontrada
				}
				return err
			}

			var linha transacao.TransacaoParticipante
			err := comLock(tx).
				Where("transacao_id = ? AND pessoa_id = ?", alvo.ID, in.PessoaID).
				First(&linha).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPagadorNaoParticipante
				}
				return err
			}

			restante := utils.Arredondar2(linha.ValorDevido - linha.ValorPago)
			aplicado := aloc.ValorAplicado
			if aplicado == 0 && len(in.Alocacoes) == 1 {
				// Pagamento simples sem alocação explícita: aplica o que
				// couber do valor total na dívida.
				aplicado = in.ValorTotal
				if aplicado > restante {
					aplicado = restante
				}
			}
			aplicado = utils.Arredondar2(aplicado)
			if aplicado <= 0 {
				return ErrValorInvalido
			}
			if aplicado > restante+utils.ToleranciaCentavos {
				return ErrAplicacaoExcedeDivida
			}

			linha.ValorPago = utils.Arredondar2(linha.ValorPago + aplicado)
			linha.Quitado = linha.ValorPago >= linha.ValorDevido-utils.ToleranciaCentavos
			if err := tx.Save(&linha).Error; err != nil {
				return err
			}
			if err := transacao.RecalcularStatus(tx, alvo.ID); err != nil {
				return err
			}

			somaAplicada = utils.Arredondar2(somaAplicada + aplicado)
			vinculos = append(vinculos, PagamentoTransacao{TransacaoID: alvo.ID, ValorAplicado: aplicado})
		}

		if somaAplicada > in.ValorTotal+utils.ToleranciaCentavos {
			return ErrAlocacaoExcedeTotal
		}

		p := Pagamento{
			HubID:              in.HubID,
			PessoaID:           in.PessoaID,
			ValorTotal:         in.ValorTotal,
			DataPagamento:      in.DataPagamento,
			FormaPagamento:     in.FormaPagamento,
			Observacoes:        in.Observacoes,
			ProcessarExcedente: in.ProcessarExcedente,
		}

		excedente := utils.Arredondar2(in.ValorTotal - somaAplicada)
		if excedente >= utils.ToleranciaCentavos {
			p.ValorExcedente = excedente
		}

		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		for i := range vinculos {
			vinculos[i].PagamentoID = p.ID
			if err := tx.Create(&vinculos[i]).Error; err != nil {
				return err
			}
		}
		p.Transacoes = vinculos

		// Excedente relevante vira uma receita do pagador, ligada de volta
		// ao pagamento.
		if in.ProcessarExcedente && p.ValorExcedente >= in.ValorMinimoExcedente && p.ValorExcedente >= utils.ToleranciaCentavos {
			descricao := in.DescricaoReceitaExcedente
			if descricao == "" {
				descricao = "Excedente de pagamento"
			}
			receita := transacao.Transacao{
				HubID:           in.HubID,
				Tipo:            transacao.TipoReceita,
				Descricao:       descricao,
				ValorTotal:      p.ValorExcedente,
				DataTransacao:   in.DataPagamento,
				ProprietarioID:  in.PessoaID,
				TotalParcelas:   1,
				ParcelaAtual:    1,
				StatusPagamento: transacao.StatusPagoTotal,
			}
			if err := tx.Create(&receita).Error; err != nil {
				return err
			}
			p.ReceitaExcedenteID = &receita.ID
			if err := tx.Model(&p).Update("receita_excedente_id", receita.ID).Error; err != nil {
				return err
			}
		}

		criado = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return criado, nil
}

// Reverter desfaz um pagamento: devolve o valor aplicado a cada linha de
// participante, recalcula quitado e status, remove a receita de excedente
// (se houver e se ela mesma não tiver pagamentos) e apaga o pagamento.
// Tudo ou nada, na mesma transação de banco.
func Reverter(db *gorm.DB, hubID, pagamentoID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var p Pagamento
		if err := tx.Where("hub_id = ?", hubID).
			Preload("Transacoes").
			First(&p, pagamentoID).Error; err != nil {
			return err
		}

		if p.ReceitaExcedenteID != nil {
			var refs int64
			if err := tx.Model(&PagamentoTransacao{}).
				Where("transacao_id = ?", *p.ReceitaExcedenteID).
				Count(&refs).Error; err != nil {
				return err
			}
			if refs > 0 {
				return ErrExcedenteLiquidado
			}
			if err := tx.Delete(&transacao.Transacao{}, *p.ReceitaExcedenteID).Error; err != nil {
				return err
			}
		}

		for _, v := range p.Transacoes {
			var linha transacao.TransacaoParticipante
			err := comLock(tx).
				Where("transacao_id = ? AND pessoa_id = ?", v.TransacaoID, p.PessoaID).
				First(&linha).Error
			if err != nil {
				return err
			}

			linha.ValorPago = utils.Arredondar2(linha.ValorPago - v.ValorAplicado)
			if linha.ValorPago < 0 {
				linha.ValorPago = 0
			}
			linha.Quitado = linha.ValorPago >= linha.ValorDevido-utils.ToleranciaCentavos
			if err := tx.Save(&linha).Error; err != nil {
				return err
			}
			if err := transacao.RecalcularStatus(tx, v.TransacaoID); err != nil {
				return err
			}
		}

		if err := tx.Where("pagamento_id = ?", p.ID).Delete(&PagamentoTransacao{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}
