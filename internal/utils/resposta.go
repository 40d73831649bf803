package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Códigos de erro expostos pela API. O frontend depende destes valores
// literais, não renomear.
const (
	CodigoDadosInvalidos       = "DadosInvalidos"
	CodigoNaoAutenticado       = "NaoAutenticado"
	CodigoTokenInvalido        = "TokenInvalido"
	CodigoAcaoProibida         = "AcaoProibida"
	CodigoAcessoNegado         = "AcessoNegado"
	CodigoNaoEncontrado        = "NaoEncontrado"
	CodigoNomeEmUso            = "NomeEmUso"
	CodigoTagJaExiste          = "TagJaExiste"
	CodigoNomeHubJaExiste      = "NomeHubJaExiste"
	CodigoConviteInvalido      = "ConviteInvalido"
	CodigoPagamentosVinculados = "PagamentosVinculados"
	CodigoErroInterno          = "ErroInterno"
)

// Paginacao acompanha respostas de listagem.
type Paginacao struct {
	Pagina       int   `json:"pagina"`
	Limite       int   `json:"limite"`
	TotalItens   int64 `json:"totalItens"`
	TotalPaginas int   `json:"totalPaginas"`
}

// Resposta é o envelope padrão de todas as respostas JSON da API.
type Resposta struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     string     `json:"error,omitempty"`
	Message   string     `json:"message,omitempty"`
	Paginacao *Paginacao `json:"pagination,omitempty"`
}

func escrever(w http.ResponseWriter, status int, r Resposta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(r)
}

// ResponderJSON envia uma resposta de sucesso com o payload informado.
func ResponderJSON(w http.ResponseWriter, status int, data any) {
	escrever(w, status, Resposta{Success: true, Data: data})
}

// ResponderLista envia uma resposta de sucesso paginada.
func ResponderLista(w http.ResponseWriter, data any, p Paginacao) {
	escrever(w, http.StatusOK, Resposta{Success: true, Data: data, Paginacao: &p})
}

// ResponderErro envia uma resposta de erro com código e mensagem.
func ResponderErro(w http.ResponseWriter, status int, codigo, mensagem string) {
	escrever(w, status, Resposta{Success: false, Error: codigo, Message: mensagem})
}

// ResponderErroInterno loga a causa no servidor e responde ao cliente com
// a mensagem genérica; o erro real nunca vaza na resposta.
func ResponderErroInterno(w http.ResponseWriter, err error) {
	slog.Error("erro interno", "err", err)
	ResponderErro(w, http.StatusInternalServerError, CodigoErroInterno, "Erro interno do servidor")
}
