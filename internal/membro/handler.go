package membro

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/expensehub/api/internal/pessoa"
	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// ConviteTTL é a validade de um convite.
const ConviteTTL = 7 * 24 * time.Hour

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Pessoas    pessoa.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Pessoas:    pessoa.NewRepository(),
	}
}

type alterarPapelDTO struct {
	Papel    rbac.Papel          `json:"papel"`
	Politica rbac.PoliticaAcesso `json:"politicaAcesso"`
	Ativo    *bool               `json:"ativo"`
}

type criarConviteDTO struct {
	Email    string              `json:"email"`
	Papel    rbac.Papel          `json:"papel"`
	Politica rbac.PoliticaAcesso `json:"politicaAcesso"`
}

type ativarConviteDTO struct {
	Token string `json:"token"`
}

// hubDaRota garante que o {id} da rota é o hub do token. Endereçar outro
// hub responde como não encontrado, sem revelar existência.
func hubDaRota(r *http.Request, ctx tenant.Context) (uint, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || uint(id) != ctx.HubID {
		return 0, false
	}
	return uint(id), true
}

// GET /api/hubs/{id}/membros
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}
	hubID, ok := hubDaRota(r, ctx)
	if !ok {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Hub não encontrado")
		return
	}

	list, err := h.Repository.ListarPorHub(h.DB, hubID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, list)
}

// PUT /api/hubs/{id}/membros/{pessoaId}
func (h *Handler) AlterarPapel(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}
	hubID, ok := hubDaRota(r, ctx)
	if !ok {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Hub não encontrado")
		return
	}
	if !rbac.Pode(ctx.Papel, rbac.AcaoGerir, rbac.RecursoMembro) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Papel não autoriza gestão de membros")
		return
	}

	pessoaID, err := strconv.Atoi(mux.Vars(r)["pessoaId"])
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "ID de pessoa inválido")
		return
	}

	var dto alterarPapelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	vinculo, err := h.Repository.BuscarVinculo(h.DB, uint(pessoaID), hubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Membro não encontrado")
			return
		}
		utils.ResponderErroInterno(w, err)
		return
	}

	if dto.Papel != "" {
		if !dto.Papel.Valido() {
			utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "Papel inválido")
			return
		}
		// Administrador não mexe em proprietário; e o hub nunca fica sem
		// o seu único proprietário.
		if vinculo.Papel == rbac.PapelProprietario {
			if ctx.Papel != rbac.PapelProprietario {
				utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Somente o proprietário altera o próprio papel")
				return
			}
			if dto.Papel != rbac.PapelProprietario {
				donos, err := h.Repository.ContarProprietarios(h.DB, hubID)
				if err != nil {
					utils.ResponderErroInterno(w, err)
					return
				}
				if donos <= 1 {
					utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "O hub não pode ficar sem proprietário")
					return
				}
			}
		}
		vinculo.Papel = dto.Papel
	}
	if dto.Politica != "" {
		if dto.Politica != rbac.PoliticaGlobal && dto.Politica != rbac.PoliticaIndividual {
			utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "Política de acesso inválida")
			return
		}
		vinculo.Politica = dto.Politica
	}
	if dto.Ativo != nil {
		if !*dto.Ativo && vinculo.Papel == rbac.PapelProprietario {
			utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "O proprietário não pode ser desativado")
			return
		}
		vinculo.Ativo = *dto.Ativo
	}

	if err := h.Repository.Atualizar(h.DB, vinculo); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, vinculo)
}

// POST /api/hubs/{id}/convites
func (h *Handler) CriarConvite(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}
	hubID, ok := hubDaRota(r, ctx)
	if !ok {
		utils.ResponderErro(w, http.StatusNotFound, utils.CodigoNaoEncontrado, "Hub não encontrado")
		return
	}
	if !rbac.Pode(ctx.Papel, rbac.AcaoGerir, rbac.RecursoMembro) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcaoProibida, "Papel não autoriza convites")
		return
	}

	var dto criarConviteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "Email inválido")
		return
	}
	if dto.Papel == "" {
		dto.Papel = rbac.PapelColaborador
	}
	if !dto.Papel.Valido() || dto.Papel == rbac.PapelProprietario {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "Papel inválido para convite")
		return
	}
	if dto.Politica == "" {
		dto.Politica = rbac.PoliticaGlobal
	}

	convite := Convite{
		HubID:     hubID,
		Email:     dto.Email,
		Papel:     dto.Papel,
		Politica:  dto.Politica,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ConviteTTL),
		Ativo:     true,
	}
	if err := h.Repository.SalvarConvite(h.DB, &convite); err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, convite)
}

// POST /api/convites/ativar
// A pessoa convidada precisa estar autenticada (token sem hub serve) e o
// email do cadastro precisa bater com o email do convite.
func (h *Handler) AtivarConvite(w http.ResponseWriter, r *http.Request) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}

	var dto ativarConviteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || strings.TrimSpace(dto.Token) == "" {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "Token do convite é obrigatório")
		return
	}

	convite, err := h.Repository.BuscarConvitePorToken(h.DB, strings.TrimSpace(dto.Token))
	if err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoConviteInvalido, "Convite inválido")
		return
	}
	if convite.Expirado() {
		convite.Ativo = false
		_ = h.Repository.AtualizarConvite(h.DB, convite)
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoConviteInvalido, "Convite expirado")
		return
	}

	p, err := h.Pessoas.BuscarPorID(h.DB, ctx.PessoaID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	if !strings.EqualFold(p.Email, convite.Email) {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcessoNegado, "Convite emitido para outro email")
		return
	}

	var vinculo *PessoaHub
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// Reativa vínculo anterior se existir, senão cria.
		var existente PessoaHub
		errBusca := tx.Unscoped().
			Where("pessoa_id = ? AND hub_id = ?", ctx.PessoaID, convite.HubID).
			First(&existente).Error
		switch {
		case errBusca == nil:
			existente.DeletedAt = gorm.DeletedAt{}
			existente.Ativo = true
			existente.Papel = convite.Papel
			existente.Politica = convite.Politica
			if err := tx.Unscoped().Save(&existente).Error; err != nil {
				return err
			}
			vinculo = &existente
		case errors.Is(errBusca, gorm.ErrRecordNotFound):
			novo := PessoaHub{
				PessoaID: ctx.PessoaID,
				HubID:    convite.HubID,
				Papel:    convite.Papel,
				Politica: convite.Politica,
				Ativo:    true,
			}
			if err := tx.Create(&novo).Error; err != nil {
				return err
			}
			vinculo = &novo
		default:
			return errBusca
		}

		convite.Ativo = false
		return tx.Save(convite).Error
	})
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, vinculo)
}
