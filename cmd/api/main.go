package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/expensehub/api/internal/auth"
	"github.com/expensehub/api/internal/hub"
	"github.com/expensehub/api/internal/membro"
	"github.com/expensehub/api/internal/middleware"
	"github.com/expensehub/api/internal/pagamento"
	"github.com/expensehub/api/internal/pessoa"
	"github.com/expensehub/api/internal/relatorio"
	"github.com/expensehub/api/internal/tag"
	"github.com/expensehub/api/internal/transacao"
	"github.com/expensehub/api/internal/utils/db"
	"github.com/expensehub/api/pkg/logging"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	_ = godotenv.Load()
	logger := logging.Setup()

	database, err := db.GetDB()
	if err != nil {
		logger.Error("erro ao conectar no banco", "err", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(
		&pessoa.Pessoa{},
		&hub.Hub{},
		&membro.PessoaHub{},
		&membro.Convite{},
		&tag.Tag{},
		&transacao.Transacao{},
		&transacao.TransacaoParticipante{},
		&pagamento.Pagamento{},
		&pagamento.PagamentoTransacao{},
		&auth.RefreshToken{},
	); err != nil {
		logger.Error("erro no AutoMigrate", "err", err)
		os.Exit(1)
	}

	// Handlers
	authHandler := auth.NewHandler(database)
	pessoaHandler := pessoa.NewHandler(database)
	hubHandler := hub.NewHandler(database)
	membroHandler := membro.NewHandler(database)
	tagHandler := tag.NewHandler(database)
	transacaoHandler := transacao.NewHandler(database)
	pagamentoHandler := pagamento.NewHandler(database)
	relatorioHandler := relatorio.NewHandler(database, logger)

	// Router
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Logging)

	// Rotas públicas de autenticação
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	// Rotas de conta: exigem token, mas não exigem hub selecionado
	conta := api.NewRoute().Subrouter()
	conta.Use(auth.MiddlewareAutenticacao)
	conta.HandleFunc("/auth/select-hub", authHandler.SelectHub).Methods("POST")
	conta.HandleFunc("/perfil", pessoaHandler.Perfil).Methods("GET")
	conta.HandleFunc("/perfil", pessoaHandler.AtualizarPerfil).Methods("PUT")
	conta.HandleFunc("/hubs", hubHandler.Listar).Methods("GET")
	conta.HandleFunc("/hubs", hubHandler.Criar).Methods("POST")
	conta.HandleFunc("/convites/ativar", membroHandler.AtivarConvite).Methods("POST")

	// Rotas de hub: exigem token já escopado via select-hub
	escopadas := api.NewRoute().Subrouter()
	escopadas.Use(auth.MiddlewareAutenticacao, auth.RequireHub)

	escopadas.HandleFunc("/hubs/{id}", hubHandler.Atualizar).Methods("PUT")
	escopadas.HandleFunc("/hubs/{id}/membros", membroHandler.Listar).Methods("GET")
	escopadas.HandleFunc("/hubs/{id}/membros/{pessoaId}", membroHandler.AlterarPapel).Methods("PUT")
	escopadas.HandleFunc("/hubs/{id}/convites", membroHandler.CriarConvite).Methods("POST")

	escopadas.HandleFunc("/tags", tagHandler.Listar).Methods("GET")
	escopadas.HandleFunc("/tags", tagHandler.Criar).Methods("POST")
	escopadas.HandleFunc("/tags/{id}", tagHandler.Atualizar).Methods("PUT")
	escopadas.HandleFunc("/tags/{id}", tagHandler.Deletar).Methods("DELETE")

	escopadas.HandleFunc("/transacoes", transacaoHandler.CriarGasto).Methods("POST")
	escopadas.HandleFunc("/transacoes", transacaoHandler.Listar).Methods("GET")
	escopadas.HandleFunc("/transacoes/receita", transacaoHandler.CriarReceita).Methods("POST")
	escopadas.HandleFunc("/transacoes/receita/{id}", transacaoHandler.AtualizarReceita).Methods("PUT")
	escopadas.HandleFunc("/transacoes/grupo/{grupoId}", transacaoHandler.DeletarGrupo).Methods("DELETE")
	escopadas.HandleFunc("/transacoes/{id}", transacaoHandler.Buscar).Methods("GET")
	escopadas.HandleFunc("/transacoes/{id}", transacaoHandler.Atualizar).Methods("PUT")
	escopadas.HandleFunc("/transacoes/{id}", transacaoHandler.Deletar).Methods("DELETE")

	// A rota literal de configurações precisa vir antes de /pagamentos/{id}.
	escopadas.HandleFunc("/pagamentos/configuracoes/excedente", pagamentoHandler.ConfiguracaoExcedente).Methods("GET")
	escopadas.HandleFunc("/pagamentos/configuracoes/excedente", pagamentoHandler.AtualizarConfiguracaoExcedente).Methods("PUT")
	escopadas.HandleFunc("/pagamentos", pagamentoHandler.Criar).Methods("POST")
	escopadas.HandleFunc("/pagamentos", pagamentoHandler.Listar).Methods("GET")
	escopadas.HandleFunc("/pagamentos/{id}", pagamentoHandler.Buscar).Methods("GET")
	escopadas.HandleFunc("/pagamentos/{id}", pagamentoHandler.Atualizar).Methods("PUT")
	escopadas.HandleFunc("/pagamentos/{id}", pagamentoHandler.Deletar).Methods("DELETE")

	escopadas.HandleFunc("/relatorios/dashboard", relatorioHandler.Dashboard).Methods("GET")
	escopadas.HandleFunc("/relatorios/saldos", relatorioHandler.Saldos).Methods("GET")
	escopadas.HandleFunc("/relatorios/pendencias", relatorioHandler.Pendencias).Methods("GET")
	escopadas.HandleFunc("/relatorios/transacoes", relatorioHandler.Transacoes).Methods("GET")
	escopadas.HandleFunc("/relatorios/categorias", relatorioHandler.Categorias).Methods("GET")

	// CORS com credenciais por causa do cookie de refresh
	origens := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	if len(origens) == 1 && origens[0] == "" {
		origens = []string{"http://localhost:3000"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origens,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}
	logger.Info("servidor iniciado", "porta", porta)
	if err := http.ListenAndServe(":"+porta, c.Handler(r)); err != nil {
		slog.Error("servidor encerrado com erro", "err", err)
		os.Exit(1)
	}
}
