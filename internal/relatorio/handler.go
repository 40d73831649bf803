package relatorio

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/expensehub/api/internal/escopo"
	"github.com/expensehub/api/internal/tenant"
	"github.com/expensehub/api/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Logger     *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Logger: logger}
}

func (h *Handler) contexto(w http.ResponseWriter, r *http.Request) (*escopo.Cliente, bool) {
	ctx, err := tenant.DaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, http.StatusUnauthorized, utils.CodigoNaoAutenticado, "Não autenticado")
		return nil, false
	}
	return escopo.Para(h.DB, ctx), true
}

// periodoDaQuery lê data_inicio/data_fim (YYYY-MM-DD); ausência deixa o
// recorte aberto naquela ponta.
func periodoDaQuery(r *http.Request) Periodo {
	var p Periodo
	if s := r.URL.Query().Get("data_inicio"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			p.Inicio = t
		}
	}
	if s := r.URL.Query().Get("data_fim"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			// Fim inclusivo: avança para o último instante do dia.
			p.Fim = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return p
}

// GET /api/relatorios/dashboard
//
// O dashboard é agregação de melhor esforço: cada métrica que falhar entra
// com valor padrão e um aviso no log, em vez de derrubar a resposta
// inteira. Essa degradação vale só aqui; os motores de escrita nunca
// engolem erro.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r)
	if !ok {
		return
	}
	p := periodoDaQuery(r)

	resumo, err := h.Repository.Resumo(c, p)
	if err != nil {
		h.Logger.Warn("dashboard: resumo de transações indisponível", "hub_id", c.Contexto().HubID, "err", err)
		resumo = &ResumoTransacoes{}
	}

	saldos, err := h.Repository.Saldos(c)
	if err != nil {
		h.Logger.Warn("dashboard: saldos indisponíveis", "hub_id", c.Contexto().HubID, "err", err)
		saldos = []SaldoPessoa{}
	}

	pendencias, err := h.Repository.Pendencias(c)
	if err != nil {
		h.Logger.Warn("dashboard: pendências indisponíveis", "hub_id", c.Contexto().HubID, "err", err)
		pendencias = []Pendencia{}
	}

	totalPagamentos, err := h.Repository.TotalPagamentos(c, p)
	if err != nil {
		h.Logger.Warn("dashboard: total de pagamentos indisponível", "hub_id", c.Contexto().HubID, "err", err)
		totalPagamentos = 0
	}

	utils.ResponderJSON(w, http.StatusOK, map[string]interface{}{
		"resumo":          resumo,
		"saldos":          saldos,
		"pendencias":      pendencias,
		"totalPagamentos": totalPagamentos,
	})
}

// GET /api/relatorios/saldos
func (h *Handler) Saldos(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r)
	if !ok {
		return
	}
	saldos, err := h.Repository.Saldos(c)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, saldos)
}

// GET /api/relatorios/pendencias
func (h *Handler) Pendencias(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r)
	if !ok {
		return
	}
	pendencias, err := h.Repository.Pendencias(c)
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, pendencias)
}

// GET /api/relatorios/transacoes
func (h *Handler) Transacoes(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r)
	if !ok {
		return
	}
	resumo, err := h.Repository.Resumo(c, periodoDaQuery(r))
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, resumo)
}

// GET /api/relatorios/categorias
func (h *Handler) Categorias(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contexto(w, r)
	if !ok {
		return
	}
	categorias, err := h.Repository.Categorias(c, periodoDaQuery(r))
	if err != nil {
		utils.ResponderErroInterno(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, categorias)
}
