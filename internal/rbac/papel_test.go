package rbac

import "testing"

func TestPode(t *testing.T) {
	tests := []struct {
		name    string
		papel   Papel
		acao    Acao
		recurso Recurso
		want    bool
	}{
		{"visualizador le transacoes", PapelVisualizador, AcaoLer, RecursoTransacao, true},
		{"visualizador nao cria transacao", PapelVisualizador, AcaoCriar, RecursoTransacao, false},
		{"visualizador nao cria tag", PapelVisualizador, AcaoCriar, RecursoTag, false},
		{"visualizador nao exclui pagamento", PapelVisualizador, AcaoExcluir, RecursoPagamento, false},
		{"colaborador cria transacao", PapelColaborador, AcaoCriar, RecursoTransacao, true},
		{"colaborador cria pagamento", PapelColaborador, AcaoCriar, RecursoPagamento, true},
		{"colaborador exclui tag", PapelColaborador, AcaoExcluir, RecursoTag, true},
		{"colaborador nao gere membros", PapelColaborador, AcaoGerir, RecursoMembro, false},
		{"colaborador nao edita hub", PapelColaborador, AcaoEditar, RecursoHub, false},
		{"administrador gere membros", PapelAdministrador, AcaoGerir, RecursoMembro, true},
		{"administrador edita hub", PapelAdministrador, AcaoEditar, RecursoHub, true},
		{"administrador nao exclui hub", PapelAdministrador, AcaoExcluir, RecursoHub, false},
		{"proprietario exclui hub", PapelProprietario, AcaoExcluir, RecursoHub, true},
		{"papel desconhecido nega tudo", Papel("CONVIDADO"), AcaoLer, RecursoTransacao, false},
		{"relatorio nunca aceita escrita", PapelProprietario, AcaoCriar, RecursoRelatorio, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pode(tt.papel, tt.acao, tt.recurso); got != tt.want {
				t.Errorf("Pode(%s, %s, %s) = %v, want %v", tt.papel, tt.acao, tt.recurso, got, tt.want)
			}
		})
	}
}

func TestOrdemDePrivilegio(t *testing.T) {
	ordem := []Papel{PapelVisualizador, PapelColaborador, PapelAdministrador, PapelProprietario}
	for i := 1; i < len(ordem); i++ {
		if !ordem[i].PeloMenos(ordem[i-1]) {
			t.Errorf("%s deveria ter privilégio >= %s", ordem[i], ordem[i-1])
		}
		if ordem[i-1].PeloMenos(ordem[i]) {
			t.Errorf("%s não deveria ter privilégio >= %s", ordem[i-1], ordem[i])
		}
	}
}
