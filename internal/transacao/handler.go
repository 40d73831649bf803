package transacao

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/expensehub/api/internal/escopo"
	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tag"
	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

type gastoCreateDTO struct {
	Descricao         string              `json:"descricao"`
	Local             string              `json:"local"`
	Observacoes       string              `json:"observacoes"`
	ValorTotal        float64             `json:"valorTotal"`
	DataTransacao     string              `json:"dataTransacao"`
	EhParcelado       bool                `json:"ehParcelado"`
	TotalParcelas     int                 `json:"totalParcelas"`
	Participantes     []ParticipanteInput `json:"participantes"`
	DividirIgualmente bool                `json:"dividirIgualmente"`
	Tags              []uint              `json:"tags"`
}

type receitaCreateDTO struct {
	Descricao     string  `json:"descricao"`
	Local         string  `json:"local"`
	Observacoes   string  `json:"observacoes"`
	ValorRecebido float64 `json:"valorRecebido"`
	DataTransacao string  `json:"dataTransacao"`
	Tags          []uint  `json:"tags"`
}

type transacaoUpdateDTO struct {
	Descricao     *string              `json:"descricao"`
	Local         *string              `json:"local"`
	Observacoes   *string              `json:"observacoes"`
	ValorTotal    *float64             `json:"valorTotal"`
	DataTransacao *string              `json:"dataTransacao"`
	Participantes *[]ParticipanteInput `json:"participantes"`
	Tags          *[]uint              `json:"tags"`
}

func parseData(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// contexto resolve tenant + cliente escopado e valida a permissão de
// escrita antes de qualquer efeito colateral.
func (h *Handler) contexto(w http.ResponseWriter, r *http.Request, acao rbac.Acao) (*escopo.Cliente, bool) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return nil, false
	}
	c := escopo.Para(h.DB, ctx)
	if acao != rbac.AcaoLer {
		if err := c.Autorizar(acao, rbac.RecursoTransacao); err != nil {
			utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Papel não autoriza esta ação sobre transações")
			return nil, false
		}
	}
	return c, true
}

// validarMembros garante que cada participante é membro ativo do hub.
func (h *Handler) validarMembros(c *escopo.Cliente, participantes []ParticipanteInput) error {
	ids := make([]uint, len(participantes))
	for i, p := range participantes {
		ids[i] = p.PessoaID
	}
	var total int64
	err := c.DB().Table("pessoa_hubs").
		Where("hub_id = ? AND ativo = ? AND pessoa_id IN ?", c.Contexto().HubID, true, ids).
		Distinct("pessoa_id").
		Count(&total).Error
	if err != nil {
		return err
	}
	if total != int64(len(ids)) {
		return errors.New("participante não é membro ativo do hub")
	}
	return nil
}

// carregarTags resolve as tags pelo hub; tag de outro hub, desativada ou
// inexistente é dado inválido.
func (h *Handler) carregarTags(c *escopo.Cliente, ids []uint) ([]tag.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []tag.Tag
	err := c.DB().Model(&tag.Tag{}).
		Scopes(c.Tags()).
		Where("tags.id IN ?", ids).
		Where("tags.ativo = ?", true).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, errors.New("tag inexistente ou inativa no hub")
	}
	return tags, nil
}

// POST /api/transacoes
func (h *Handler) CriarGasto(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoCriar)
	if !ok {
		return
	}

	var dto gastoCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	dto.Descricao = strings.TrimSpace(dto.Descricao)
	if len(dto.Descricao) < 3 {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "A descrição precisa de pelo menos 3 caracteres")
		return
	}
	if dto.ValorTotal <= 0 {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "O valor total deve ser maior que zero")
		return
	}
	data, err := parseData(dto.DataTransacao)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Data da transação inválida")
		return
	}

	// Divisão igualitária sob demanda: preserva a ordem da lista e deixa a
	// última pessoa absorver o resto do arredondamento.
	if dto.DividirIgualmente && len(dto.Participantes) > 0 {
		fatias := DividirIgualmente(dto.ValorTotal, len(dto.Participantes))
		for i := range dto.Participantes {
			dto.Participantes[i].ValorDevido = fatias[i]
		}
	}
	if err := ValidarDivisao(dto.ValorTotal, dto.Participantes); err != nil {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
		return
	}
	if err := h.validarMembros(c, dto.Participantes); err != nil {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
		return
	}

	tags, err := h.carregarTags(c, dto.Tags)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
		return
	}

	base := Transacao{
		HubID:          c.Contexto().HubID,
		Tipo:           TipoGasto,
		Descricao:      dto.Descricao,
		Local:          dto.Local,
		Observacoes:    dto.Observacoes,
		ValorTotal:     dto.ValorTotal,
		DataTransacao:  data,
		ProprietarioID: c.Contexto().PessoaID,
		EhParcelado:    dto.EhParcelado,
		TotalParcelas:  dto.TotalParcelas,
		Tags:           tags,
	}

	parcelas, err := MontarParcelas(base, dto.Participantes)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
		return
	}

	criadas, err := h.Repository.Criar(h.DB, parcelas)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, criadas)
}

// POST /api/transacoes/receita
func (h *Handler) CriarReceita(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoCriar)
	if !ok {
		return
	}

	var dto receitaCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	dto.Descricao = strings.TrimSpace(dto.Descricao)
	if len(dto.Descricao) < 3 {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "A descrição precisa de pelo menos 3 caracteres")
		return
	}
	if dto.ValorRecebido <= 0 {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "O valor recebido deve ser maior que zero")
		return
	}
	data, err := parseData(dto.DataTransacao)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Data da transação inválida")
		return
	}

	tags, err := h.carregarTags(c, dto.Tags)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
		return
	}

	receita := Transacao{
		HubID:          c.Contexto().HubID,
		Tipo:           TipoReceita,
		Descricao:      dto.Descricao,
		Local:          dto.Local,
		Observacoes:    dto.Observacoes,
		ValorTotal:     dto.ValorRecebido,
		DataTransacao:  data,
		ProprietarioID: c.Contexto().PessoaID,
		TotalParcelas:  1,
		ParcelaAtual:   1,
		// Receita não tem rateio; o valor entra como recebido.
		StatusPagamento: StatusPagoTotal,
		Tags:            tags,
	}

	criadas, err := h.Repository.Criar(h.DB, []Transacao{receita})
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, criadas[0])
}

// GET /api/transacoes
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoLer)
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

	f := Filtros{
		Tipo:         q.Get("tipo"),
		GrupoParcela: q.Get("grupo_parcela"),
		Pagina:       pagina,
		Limite:       limite,
	}

	list, total, err := h.Repository.Listar(c, f)
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

// GET /api/transacoes/{id}
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoLer)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID inválido")
		return
	}

	t, err := h.Repository.BuscarPorID(c, uint(id))
	if err != nil {
		// Transação de outro hub responde como não encontrada.
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Transação não encontrada")
		return
	}
	utils.ResponderJSON(w, http.StatusOK, t)
}

// atualizar aplica o patch de campos limitados compartilhado por gasto e
// receita. Campos estruturais (valor, data, participantes) só podem mudar
// enquanto a transação não tem pagamento e não é parcelada.
func (h *Handler) atualizar(w http.ResponseWriter, r *http.Request, tipo string) {
	c, ok := h.contexto(w, r, rbac.AcaoEditar)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID inválido")
		return
	}

	t, err := h.Repository.BuscarPorID(c, uint(id))
	if err != nil {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Transação não encontrada")
		return
	}
	if t.Tipo != tipo {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Transação não encontrada")
		return
	}

	participantes := make([]uint, len(t.Participantes))
	for i, p := range t.Participantes {
		participantes[i] = p.PessoaID
	}
	if !c.PodeMexerEm(t.ProprietarioID, participantes) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcessoNegado, "Acesso negado")
		return
	}

	var dto transacaoUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	temPagamento, err := h.Repository.TemPagamentos(h.DB, []uint{t.ID})
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	travada := temPagamento || t.EhParcelado
	mudaEstrutura := dto.ValorTotal != nil || dto.DataTransacao != nil || dto.Participantes != nil
	if travada && mudaEstrutura {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida,
			"Apenas os campos descrição, local, observações e tags podem ser editados")
		return
	}

	if dto.Descricao != nil {
		desc := strings.TrimSpace(*dto.Descricao)
		if len(desc) < 3 {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "A descrição precisa de pelo menos 3 caracteres")
			return
		}
		t.Descricao = desc
	}
	if dto.Local != nil {
		t.Local = *dto.Local
	}
	if dto.Observacoes != nil {
		t.Observacoes = *dto.Observacoes
	}

	novoValor := t.ValorTotal
	if dto.ValorTotal != nil {
		if *dto.ValorTotal <= 0 {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "O valor total deve ser maior que zero")
			return
		}
		novoValor = *dto.ValorTotal
	}
	if dto.DataTransacao != nil {
		data, err := parseData(*dto.DataTransacao)
		if err != nil {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Data da transação inválida")
			return
		}
		t.DataTransacao = data
	}

	// Validações fora da transação de banco; a escrita toda dentro dela.
	trocaRateio := tipo == TipoGasto && (dto.Participantes != nil || dto.ValorTotal != nil)
	var lista []ParticipanteInput
	if trocaRateio {
		if dto.Participantes != nil {
			lista = *dto.Participantes
		} else {
			for _, p := range t.Participantes {
				lista = append(lista, ParticipanteInput{PessoaID: p.PessoaID, ValorDevido: p.ValorDevido})
			}
		}
		if err := ValidarDivisao(novoValor, lista); err != nil {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
			return
		}
		if err := h.validarMembros(c, lista); err != nil {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
			return
		}
	}

	var tags []tag.Tag
	if dto.Tags != nil {
		tags, err = h.carregarTags(c, *dto.Tags)
		if err != nil {
			utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, err.Error())
			return
		}
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if trocaRateio {
			t.ValorTotal = novoValor
			if err := tx.Where("transacao_id = ?", t.ID).Delete(&TransacaoParticipante{}).Error; err != nil {
				return err
			}
			t.Participantes = nil
			for _, p := range lista {
				linha := TransacaoParticipante{TransacaoID: t.ID, PessoaID: p.PessoaID, ValorDevido: p.ValorDevido}
				if err := tx.Create(&linha).Error; err != nil {
					return err
				}
				t.Participantes = append(t.Participantes, linha)
			}
		} else if dto.ValorTotal != nil {
			t.ValorTotal = novoValor
		}

		if dto.Tags != nil {
			if err := tx.Model(t).Association("Tags").Replace(tags); err != nil {
				return err
			}
			t.Tags = tags
		}

		return h.Repository.Atualizar(tx, t)
	})
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, t)
}

// PUT /api/transacoes/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	h.atualizar(w, r, TipoGasto)
}

// PUT /api/transacoes/receita/{id}
func (h *Handler) AtualizarReceita(w http.ResponseWriter, r *http.Request) {
	h.atualizar(w, r, TipoReceita)
}

// DELETE /api/transacoes/{id}
// Exclusão exige transação livre de pagamentos.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoExcluir)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID inválido")
		return
	}

	t, err := h.Repository.BuscarPorID(c, uint(id))
	if err != nil {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Transação não encontrada")
		return
	}

	participantes := make([]uint, len(t.Participantes))
	for i, p := range t.Participantes {
		participantes[i] = p.PessoaID
	}
	if !c.PodeMexerEm(t.ProprietarioID, participantes) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcessoNegado, "Acesso negado")
		return
	}

	temPagamento, err := h.Repository.TemPagamentos(h.DB, []uint{t.ID})
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	if temPagamento {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoPagamentosVinculados,
			"A transação possui pagamentos; remova os pagamentos antes de excluí-la")
		return
	}

	if err := h.Repository.Deletar(h.DB, t); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/transacoes/grupo/{grupoId}
// Remove todas as parcelas irmãs de um grupo, desde que nenhuma tenha
// pagamento registrado.
func (h *Handler) DeletarGrupo(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r, rbac.AcaoExcluir)
	if !ok {
		return
	}

	grupo := mux.Vars(r)["grupoId"]
	parcelas, err := h.Repository.ListarPorGrupo(c, grupo)
	if err != nil || len(parcelas) == 0 {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Grupo de parcelas não encontrado")
		return
	}

	ids := make([]uint, len(parcelas))
	for i, p := range parcelas {
		ids[i] = p.ID
	}
	temPagamento, err := h.Repository.TemPagamentos(h.DB, ids)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	if temPagamento {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoPagamentosVinculados,
			"Alguma parcela do grupo possui pagamentos; remova os pagamentos antes de excluir o grupo")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for i := range parcelas {
			if err := h.Repository.Deletar(tx, &parcelas[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
