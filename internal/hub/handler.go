package hub

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/expensehub/api/internal/membro"
	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Membros    membro.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Membros:    membro.NewRepository(),
	}
}

type criarHubDTO struct {
	Nome string `json:"nome"`
}

type atualizarHubDTO struct {
	Nome  *string `json:"nome"`
	Ativo *bool   `json:"ativo"`
}

type hubComPapelDTO struct {
	Hub
	Papel    rbac.Papel          `json:"papel"`
	Politica rbac.PoliticaAcesso `json:"politicaAcesso"`
}

// GET /api/hubs lista os hubs dos quais a pessoa autenticada é membro.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}

	vinculos, err := h.Membros.ListarPorPessoa(h.DB, ctx.PessoaID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}

	out := make([]hubComPapelDTO, 0, len(vinculos))
	for _, v := range vinculos {
		hb, err := h.Repository.BuscarPorID(h.DB, v.HubID)
		if err != nil {
			continue
		}
		if !hb.Ativo {
			continue
		}
		out = append(out, hubComPapelDTO{Hub: *hb, Papel: v.Papel, Politica: v.Politica})
	}
	utils.ResponderJSON(w, http.StatusOK, out)
}

// POST /api/hubs cria um hub e torna o criador PROPRIETARIO.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}

	var dto criarHubDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}
	dto.Nome = strings.TrimSpace(dto.Nome)
	if len(dto.Nome) < 3 {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "O nome do hub precisa de pelo menos 3 caracteres")
		return
	}

	if _, err := h.Repository.BuscarPorNome(h.DB, dto.Nome); err == nil {
		utils.ResponderErro(w, http.StatusConflict, utils.CodigoNomeHubJaExiste, "Já existe um hub com este nome")
		return
	}

	novo := Hub{Nome: dto.Nome, Ativo: true, ValorMinimoExcedente: 1, DescricaoReceitaExcedente: "Excedente de pagamento"}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&novo).Error; err != nil {
			return err
		}
		vinculo := membro.PessoaHub{
			PessoaID: ctx.PessoaID,
			HubID:    novo.ID,
			Papel:    rbac.PapelProprietario,
			Politica: rbac.PoliticaGlobal,
			Ativo:    true,
		}
		return tx.Create(&vinculo).Error
	})
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, novo)
}

// PUT /api/hubs/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || uint(id) != ctx.HubID {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Hub não encontrado")
		return
	}
	if !rbac.Pode(ctx.Papel, rbac.AcaoEditar, rbac.RecursoHub) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Papel não autoriza editar o hub")
		return
	}

	var dto atualizarHubDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	hb, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Hub não encontrado")
			return
		}
		utils.ResponderErroInterno(w, err)
		return
	}

	if dto.Nome != nil {
		nome := strings.TrimSpace(*dto.Nome)
		if len(nome) < 3 {
			utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "O nome do hub precisa de pelo menos 3 caracteres")
			return
		}
		if outro, err := h.Repository.BuscarPorNome(h.DB, nome); err == nil && outro.ID != hb.ID {
			utils.ResponderErro(w, http.StatusConflict, utils.CodigoNomeHubJaExiste, "Já existe um hub com este nome")
			return
		}
		hb.Nome = nome
	}
	if dto.Ativo != nil {
		// Desativar o hub é prerrogativa do proprietário.
		if !*dto.Ativo && ctx.Papel != rbac.PapelProprietario {
			utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Somente o proprietário desativa o hub")
			return
		}
		hb.Ativo = *dto.Ativo
	}

	if err := h.Repository.Atualizar(h.DB, hb); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, hb)
}
