package rbac

// Papel de um membro dentro de um hub, em ordem decrescente de privilégio.
type Papel string

const (
	PapelProprietario  Papel = "PROPRIETARIO"
	PapelAdministrador Papel = "ADMINISTRADOR"
	PapelColaborador   Papel = "COLABORADOR"
	PapelVisualizador  Papel = "VISUALIZADOR"
)

// PoliticaAcesso define a visibilidade dos dados do hub para o membro.
type PoliticaAcesso string

const (
	PoliticaGlobal     PoliticaAcesso = "GLOBAL"
	PoliticaIndividual PoliticaAcesso = "INDIVIDUAL"
)

// Acao que um membro pode tentar executar sobre um recurso do hub.
type Acao string

const (
	AcaoLer      Acao = "ler"
	AcaoCriar    Acao = "criar"
	AcaoEditar   Acao = "editar"
	AcaoExcluir  Acao = "excluir"
	AcaoGerir    Acao = "gerir" // membros, convites, configurações do hub
)

// Recurso endereçado pela ação.
type Recurso string

const (
	RecursoTransacao Recurso = "transacao"
	RecursoPagamento Recurso = "pagamento"
	RecursoTag       Recurso = "tag"
	RecursoMembro    Recurso = "membro"
	RecursoHub       Recurso = "hub"
	RecursoRelatorio Recurso = "relatorio"
)

// nivel traduz o papel para um valor comparável.
func nivel(p Papel) int {
	switch p {
	case PapelProprietario:
		return 4
	case PapelAdministrador:
		return 3
	case PapelColaborador:
		return 2
	case PapelVisualizador:
		return 1
	default:
		return 0
	}
}

// Valido informa se o papel é conhecido.
func (p Papel) Valido() bool { return nivel(p) > 0 }

// PeloMenos informa se o papel tem privilégio igual ou superior ao mínimo.
func (p Papel) PeloMenos(minimo Papel) bool { return nivel(p) >= nivel(minimo) }

// Pode é a função pura de decisão de autorização: dado papel, ação e
// recurso, responde se a ação é permitida dentro do hub. A política de
// acesso (GLOBAL/INDIVIDUAL) não entra aqui; ela restringe o conjunto de
// linhas visíveis, não o tipo de ação, e é aplicada pelo cliente escopado.
func Pode(papel Papel, acao Acao, recurso Recurso) bool {
	if !papel.Valido() {
		return false
	}

	// Leitura é liberada para qualquer papel válido do hub.
	if acao == AcaoLer {
		return true
	}

	switch recurso {
	case RecursoTransacao, RecursoPagamento, RecursoTag:
		// Escrita em dados financeiros exige pelo menos colaborador.
		return papel.PeloMenos(PapelColaborador)
	case RecursoMembro:
		// Gestão de membros e convites exige administrador.
		return papel.PeloMenos(PapelAdministrador)
	case RecursoHub:
		if acao == AcaoGerir || acao == AcaoEditar {
			return papel.PeloMenos(PapelAdministrador)
		}
		return papel == PapelProprietario
	case RecursoRelatorio:
		// Relatórios são somente leitura; qualquer escrita é negada.
		return false
	default:
		return false
	}
}
