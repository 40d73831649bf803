package utils

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponderErroInternoLogaCausa(t *testing.T) {
	var buf bytes.Buffer
	anterior := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(anterior)

	rec := httptest.NewRecorder()
	ResponderErroInterno(rec, errors.New("pq: conexão recusada"))

	if rec.Code != 500 {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	corpo := rec.Body.String()
	if !strings.Contains(corpo, CodigoErroInterno) {
		t.Errorf("corpo sem código %q: %s", CodigoErroInterno, corpo)
	}
	if strings.Contains(corpo, "conexão recusada") {
		t.Errorf("causa interna vazou na resposta: %s", corpo)
	}
	if !strings.Contains(buf.String(), "conexão recusada") {
		t.Errorf("causa não registrada no log: %s", buf.String())
	}
}
