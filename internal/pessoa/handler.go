package pessoa

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/utils"
	"gorm.io/gorm"
)

// Handler expõe o perfil da pessoa autenticada.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

type atualizarPerfilDTO struct {
	Nome string `json:"nome"`
}

// GET /api/perfil
func (h *Handler) Perfil(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}

	p, err := h.Repository.BuscarPorID(h.DB, ctx.PessoaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Pessoa não encontrada")
			return
		}
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// PUT /api/perfil
func (h *Handler) AtualizarPerfil(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}

	var dto atualizarPerfilDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}
	if strings.TrimSpace(dto.Nome) == "" {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "O campo 'nome' é obrigatório")
		return
	}

	p, err := h.Repository.BuscarPorID(h.DB, ctx.PessoaID)
	if err != nil {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Pessoa não encontrada")
		return
	}

	p.Nome = strings.TrimSpace(dto.Nome)
	if err := h.Repository.Atualizar(h.DB, p); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}
