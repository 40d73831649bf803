package pagamento

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/expensehub/api/internal/escopo"
	"github.com/expensehub/api/internal/hub"
	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Hubs       hub.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Hubs: hub.NewRepository()}
}

type pagamentoCreateDTO struct {
	PessoaID           uint            `json:"pessoaId"`
	ValorTotal         float64         `json:"valorTotal"`
	DataPagamento      string          `json:"dataPagamento"`
	FormaPagamento     string          `json:"formaPagamento"`
	Observacoes        string          `json:"observacoes"`
	ProcessarExcedente bool            `json:"processarExcedente"`
	Transacoes         []AlocacaoInput `json:"transacoes"`
}

type pagamentoUpdateDTO struct {
	FormaPagamento *string `json:"formaPagamento"`
	DataPagamento  *string `json:"dataPagamento"`
	Observacoes    *string `json:"observacoes"`
}

type excedenteConfigDTO struct {
	ValorMinimoExcedente      *float64 `json:"valorMinimoExcedente"`
	DescricaoReceitaExcedente *string  `json:"descricaoReceitaExcedente"`
}

func formaValida(f string) bool {
	switch f {
	case FormaPix, FormaDinheiro, FormaTransferencia, FormaOutro:
		return true
	}
	return false
}

func parseData(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *Handler) contexto(w http.ResponseWriter, r *http.Request, acao rbac.Acao, recurso rbac.Recurso) (*escopo.Cliente, bool) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return nil, false
	}
	c := escopo.Para(h.DB, ctx)
	if acao != rbac.AcaoLer {
		if err := c.Autorizar(acao, recurso); err != nil {
			utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Papel não autoriza esta ação sobre pagamentos")
			return nil, false
		}
	}
	return c, true
}

// POST /api/pagamentos
// Registra um pagamento simples (uma transação alvo) ou composto (várias),
// delegando a liquidação ao motor dentro de uma transação de banco.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoCriar, rbac.RecursoPagamento)
	if !ok {
		return
	}

	var dto pagamentoCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	if dto.ValorTotal <= 0 {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "O valor total deve ser maior que zero")
		return
	}
	if len(dto.Transacoes) == 0 {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Informe pelo menos uma transação a pagar")
		return
	}
	if dto.FormaPagamento == "" {
		dto.FormaPagamento = FormaPix
	}
	if !formaValida(dto.FormaPagamento) {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Forma de pagamento inválida")
		return
	}
	data := time.Now()
	if dto.DataPagamento != "" {
		var err error
		data, err = parseData(dto.DataPagamento)
		if err != nil {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Data do pagamento inválida")
			return
		}
	}

	// O pagador padrão é a própria pessoa autenticada; registrar pagamento
	// de outro membro exige visão global do hub.
	pagador := c.Contexto().PessoaID
	if dto.PessoaID != 0 && dto.PessoaID != pagador {
		if !c.PodeMexerEm(dto.PessoaID, nil) {
			utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcessoNegado, "Acesso negado")
			return
		}
		pagador = dto.PessoaID
	}

	hubAtual, err := h.Hubs.BuscarPorID(h.DB, c.Contexto().HubID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}

	criado, err := Aplicar(h.DB, CriarInput{
		HubID:                     c.Contexto().HubID,
		PessoaID:                  pagador,
		ValorTotal:                dto.ValorTotal,
		DataPagamento:             data,
		FormaPagamento:            dto.FormaPagamento,
		Observacoes:               dto.Observacoes,
		ProcessarExcedente:        dto.ProcessarExcedente,
		Alocacoes:                 dto.Transacoes,
		ValorMinimoExcedente:      hubAtual.ValorMinimoExcedente,
		DescricaoReceitaExcedente: hubAtual.DescricaoReceitaExcedente,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTransacaoNaoEncontrada):
			utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, err.Error())
		case errors.Is(err, ErrValorInvalido),
			errors.Is(err, ErrSemAlvos),
			errors.Is(err, ErrAlocacaoExcedeTotal),
			errors.Is(err, ErrPagadorNaoParticipante),
			errors.Is(err, ErrAplicacaoExcedeDivida):
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
		default:
			utils.ResponderErroInterno(w, err)
		}
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, criado)
}

// GET /api/pagamentos
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoLer, rbac.RecursoPagamento)
	if !ok {
		return
	}

	q := r.URL.Query()
	pagina, _ := strconv.Atoi(q.Get("page"))
	if pagina < 1 {
		pagina = 1
	}
	limite, _ := strconv.Atoi(q.Get("limit"))
	if limite < 1 || limite > 100 {
		limite = 20
	}

	list, total, err := h.Repository.Listar(c, pagina, limite)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}

	totalPaginas := int((total + int64(limite) - 1) / int64(limite))
	utils.ResponderLista(w, list, utils.Paginacao{
		Pagina:       pagina,
		Limite:       limite,
		TotalItens:   total,
		TotalPaginas: totalPaginas,
	})
}

// GET /api/pagamentos/{id}
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoLer, rbac.RecursoPagamento)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID inválido")
		return
	}

	p, err := h.Repository.BuscarPorID(c, uint(id))
	if err != nil {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Pagamento não encontrado")
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// PUT /api/pagamentos/{id}
// Só metadados mudam depois da liquidação; valores e alvos são imutáveis.
// Para corrigir um valor, exclui-se o pagamento (reversão) e cria-se outro.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoEditar, rbac.RecursoPagamento)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID inválido")
		return
	}

	p, err := h.Repository.BuscarPorID(c, uint(id))
	if err != nil {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Pagamento não encontrado")
		return
	}
	if !c.PodeMexerEm(p.PessoaID, nil) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcessoNegado, "Acesso negado")
		return
	}

	var dto pagamentoUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	if dto.FormaPagamento != nil {
		if !formaValida(*dto.FormaPagamento) {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Forma de pagamento inválida")
			return
		}
		p.FormaPagamento = *dto.FormaPagamento
	}
	if dto.DataPagamento != nil {
		data, err := parseData(*dto.DataPagamento)
		if err != nil {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Data do pagamento inválida")
			return
		}
		p.DataPagamento = data
	}
	if dto.Observacoes != nil {
		p.Observacoes = *dto.Observacoes
	}

	if err := h.Repository.Atualizar(h.DB, p); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// DELETE /api/pagamentos/{id}
// Excluir um pagamento é revertê-lo: os saldos das transações alvo voltam
// ao estado anterior e a receita de excedente, se houver, é removida.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoExcluir, rbac.RecursoPagamento)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID inválido")
		return
	}

	p, err := h.Repository.BuscarPorID(c, uint(id))
	if err != nil {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Pagamento não encontrado")
		return
	}
	if !c.PodeMexerEm(p.PessoaID, nil) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcessoNegado, "Acesso negado")
		return
	}

	if err := Reverter(h.DB, c.Contexto().HubID, p.ID); err != nil {
		if errors.Is(err, ErrExcedenteLiquidado) {
			utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoPagamentosVinculados, err.Error())
			return
		}
		utils.ResponderErroInterno(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/pagamentos/configuracoes/excedente
func (h *Handler) ConfiguracaoExcedente(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoLer, rbac.RecursoPagamento)
	if !ok {
		return
	}

	hubAtual, err := h.Hubs.BuscarPorID(h.DB, c.Contexto().HubID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, map[string]interface{}{
		"valorMinimoExcedente":      hubAtual.ValorMinimoExcedente,
		"descricaoReceitaExcedente": hubAtual.DescricaoReceitaExcedente,
	})
}

// PUT /api/pagamentos/configuracoes/excedente
// Configuração do hub; exige pelo menos administrador.
func (h *Handler) AtualizarConfiguracaoExcedente(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoGerir, rbac.RecursoHub)
	if !ok {
		return
	}

	var dto excedenteConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	hubAtual, err := h.Hubs.BuscarPorID(h.DB, c.Contexto().HubID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}

	if dto.ValorMinimoExcedente != nil {
		if *dto.ValorMinimoExcedente < 0 {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "O valor mínimo de excedente não pode ser negativo")
			return
		}
		hubAtual.ValorMinimoExcedente = *dto.ValorMinimoExcedente
	}
	if dto.DescricaoReceitaExcedente != nil {
		hubAtual.DescricaoReceitaExcedente = *dto.DescricaoReceitaExcedente
	}

	if err := h.Hubs.Atualizar(h.DB, hubAtual); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, map[string]interface{}{
		"valorMinimoExcedente":      hubAtual.ValorMinimoExcedente,
		"descricaoReceitaExcedente": hubAtual.DescricaoReceitaExcedente,
	})
}
