package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/expensehub/api/internal/hub"
	"github.com/expensehub/api/internal/membro"
	"github.com/expensehub/api/internal/pessoa"
	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	DB      *gorm.DB
	Pessoas pessoa.Repository
	Hubs    hub.Repository
	Membros membro.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:      db,
		Pessoas: pessoa.NewRepository(),
		Hubs:    hub.NewRepository(),
		Membros: membro.NewRepository(),
	}
}

type registerDTO struct {
	Nome    string `json:"nome"`
	Email   string `json:"email"`
	Senha   string `json:"senha"`
	NomeHub string `json:"nomeHub"`
}

type loginDTO struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type selectHubDTO struct {
	HubID uint `json:"hubId"`
}

type tokenResposta struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

func novaTokenResposta(access string) tokenResposta {
	return tokenResposta{AccessToken: access, TokenType: "Bearer", ExpiresIn: int(AccessTTL.Seconds())}
}

// POST /api/auth/register
// Cria a pessoa, o hub pessoal e o vínculo PROPRIETARIO em uma única
// transação de banco.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto registerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	dto.Nome = strings.TrimSpace(dto.Nome)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if len(dto.Nome) < 2 || !strings.Contains(dto.Email, "@") {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "Nome ou email inválido")
		return
	}
	if len(dto.Senha) < 8 {
		utils.ResponderErro(w, http.StatusUnprocessableEntity, utils.CodigoDadosInvalidos, "A senha precisa de pelo menos 8 caracteres")
		return
	}
	if _, err := h.Pessoas.BuscarPorEmail(h.DB, dto.Email); err == nil {
		utils.ResponderErro(w, http.StatusConflict, utils.CodigoNomeEmUso, "Já existe uma conta com este email")
		return
	}

	nomeHub := strings.TrimSpace(dto.NomeHub)
	if nomeHub == "" {
		nomeHub = "Hub de " + dto.Nome
	}

	hash, err := utils.HashSenha(dto.Senha)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	p := pessoa.Pessoa{
		Nome:  dto.Nome,
		Email: dto.Email,
		Senha: hash,
		Ativo: true,
	}
	novoHub := hub.Hub{Nome: nomeHub, Ativo: true, ValorMinimoExcedente: 1}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Pessoas.Salvar(tx, &p); err != nil {
			return err
		}
		if err := h.Hubs.Salvar(tx, &novoHub); err != nil {
			return err
		}
		vinculo := membro.PessoaHub{
			PessoaID: p.ID,
			HubID:    novoHub.ID,
			Papel:    rbac.PapelProprietario,
			Politica: rbac.PoliticaGlobal,
			Ativo:    true,
		}
		return h.Membros.Salvar(tx, &vinculo)
	})
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}

	access, err := emitirTokens(h.DB, w, tenant.Context{PessoaID: p.ID, EhAdministrador: p.EhAdministrador}, "")
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, map[string]interface{}{
		"pessoa": p,
		"hub":    novoHub,
		"token":  novaTokenResposta(access),
	})
}

// POST /api/auth/login
// O token de login não carrega hub; o cliente escolhe em seguida via
// select-hub.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto loginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "JSON inválido")
		return
	}

	p, err := h.Pessoas.BuscarPorEmail(h.DB, strings.ToLower(strings.TrimSpace(dto.Email)))
	if err != nil || !p.Ativo || !utils.VerificarSenha(p.Senha, dto.Senha) {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Email ou senha incorretos")
		return
	}

	vinculos, err := h.Membros.ListarPorPessoa(h.DB, p.ID)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}

	access, err := emitirTokens(h.DB, w, tenant.Context{PessoaID: p.ID, EhAdministrador: p.EhAdministrador}, "")
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, map[string]interface{}{
		"pessoa": p,
		"hubs":   vinculos,
		"token":  novaTokenResposta(access),
	})
}

// POST /api/auth/select-hub
// Troca o token de conta por um token escopado no hub escolhido, com o
// papel e a política daquele vínculo.
func (h *Handler) SelectHub(w http.ResponseWriter, r *http.Request) {
	tc, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return
	}

	var dto selectHubDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.HubID == 0 {
		utils.ResponderErro(w, http.StatusBadRequest, utils.CodigoDadosInvalidos, "Informe o hub desejado")
		return
	}

	vinculo, err := h.Membros.BuscarVinculo(h.DB, tc.PessoaID, dto.HubID)
	if err != nil || !vinculo.Ativo {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcessoNegado, "Você não é membro ativo deste hub")
		return
	}
	hubEscolhido, err := h.Hubs.BuscarPorID(h.DB, dto.HubID)
	if err != nil || !hubEscolhido.Ativo {
		utils.ResponderErro(w, http.StatusForbidden, utils.CodigoAcessoNegado, "Hub inativo ou inexistente")
		return
	}

	novoCtx := tenant.Context{
		PessoaID:        tc.PessoaID,
		HubID:           dto.HubID,
		Papel:           vinculo.Papel,
		Politica:        vinculo.Politica,
		EhAdministrador: tc.EhAdministrador,
	}
	access, err := emitirTokens(h.DB, w, novoCtx, "")
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, map[string]interface{}{
		"hub":   hubEscolhido,
		"papel": vinculo.Papel,
		"token": novaTokenResposta(access),
	})
}

// POST /api/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	access, err := rotacionar(h.DB, w, r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoTokenInvalido, "Sessão inválida ou expirada")
		return
	}
	utils.ResponderJSON(w, http.StatusOK, novaTokenResposta(access))
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	revogarDoCookie(h.DB, w, r)
	w.WriteHeader(http.StatusNoContent)
}
