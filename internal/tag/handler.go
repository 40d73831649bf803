package tag

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/expensehub/api/internal/rbac"
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

type tagDTO struct {
	Nome  string `json:"nome"`
	Cor   string `json:"cor"`
	Icone string `json:"icone"`
}

// GET /api/tags
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}
	list, err := h.Repository.ListarPorHub(h.DB, ctx.HubID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, list)
}

// POST /api/tags
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}
	if !rbac.Pode(ctx.Papel, rbac.AcaoCriar, rbac.RecursoTag) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Papel não autoriza criar tags")
		return
	}

	var dto tagDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}
	dto.Nome = strings.TrimSpace(dto.Nome)
	if dto.Nome == "" {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "O campo 'nome' é obrigatório")
		return
	}

	if _, err := h.Repository.BuscarPorNome(h.DB, ctx.HubID, dto.Nome); err == nil {
		utils.ResponderErro(w, http.StatusConflict, utils.CodigoTagJaExiste, "Já existe uma tag com este nome no hub")
		return
	}

	t := Tag{HubID: ctx.HubID, Nome: dto.Nome, Cor: dto.Cor, Icone: dto.Icone, Ativo: true}
	if err := h.Repository.Salvar(h.DB, &t); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, t)
}

// PUT /api/tags/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}
	if !rbac.Pode(ctx.Papel, rbac.AcaoEditar, rbac.RecursoTag) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Papel não autoriza editar tags")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID inválido")
		return
	}

	t, err := h.Repository.BuscarPorID(h.DB, ctx.HubID, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Tag não encontrada")
			return
		}
		utils.ResponderErroInterno(w, err)
		return
	}

	var dto tagDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}
	if nome := strings.TrimSpace(dto.Nome); nome != "" && nome != t.Nome {
		if outra, err := h.Repository.BuscarPorNome(h.DB, ctx.HubID, nome); err == nil && outra.ID != t.ID {
			utils.ResponderErro(w, http.StatusConflict, utils.CodigoTagJaExiste, "Já existe uma tag com este nome no hub")
			return
		}
		t.Nome = nome
	}
	if dto.Cor != "" {
		t.Cor = dto.Cor
	}
	if dto.Icone != "" {
		t.Icone = dto.Icone
	}

	if err := h.Repository.Atualizar(h.DB, t); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, t)
}

// DELETE /api/tags/{id}
// Tag referenciada por transações é desativada; sem referências, apagada.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}
	if !rbac.Pode(ctx.Papel, rbac.AcaoExcluir, rbac.RecursoTag) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Papel não autoriza excluir tags")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID inválido")
		return
	}

	t, err := h.Repository.BuscarPorID(h.DB, ctx.HubID, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Tag não encontrada")
			return
		}
		utils.ResponderErroInterno(w, err)
		return
	}

	refs, err := h.Repository.ContarReferencias(h.DB, t.ID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}

	if refs > 0 {
		t.Ativo = false
		if err := h.Repository.Atualizar(h.DB, t); err != nil {
			utils.ResponderErroInterno(w, err)
			return
		}
		utils.ResponderJSON(w, http.StatusOK, t)
		return
	}

	if err := h.Repository.Deletar(h.DB, t); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
