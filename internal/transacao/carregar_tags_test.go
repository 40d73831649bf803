package transacao

import (
	"testing"

	"github.com/expensehub/api/internal/escopo"
	"github.com/expensehub/api/internal/rbac"
	"github.com/expensehub/api/internal/tag"
	"github.com/expensehub/api/internal/tenant"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCarregarTagsIgnoraInativas(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("abrindo sqlite em memória: %v", err)
	}
	if err := db.AutoMigrate(&tag.Tag{}); err != nil {
		t.Fatalf("migrando esquema: %v", err)
	}

	ativa := tag.Tag{HubID: 1, Nome: "Mercado", Ativo: true}
	inativa := tag.Tag{HubID: 1, Nome: "Antiga", Ativo: true}
	for _, tg := range []*tag.Tag{&ativa, &inativa} {
		if err := db.Create(tg).Error; err != nil {
			t.Fatalf("Create(%s): %v", tg.Nome, err)
		}
	}
	if err := db.Model(&inativa).Update("ativo", false).Error; err != nil {
		t.Fatalf("desativando tag: %v", err)
	}

	h := &Handler{DB: db}
	c := escopo.Para(db, tenant.Context{
		PessoaID: 1, HubID: 1,
		Papel: rbac.PapelProprietario, Politica: rbac.PoliticaGlobal,
	})

	tags, err := h.carregarTags(c, []uint{ativa.ID})
	if err != nil {
		t.Fatalf("carregarTags(ativa): %v", err)
	}
	if len(tags) != 1 || tags[0].ID != ativa.ID {
		t.Fatalf("carregarTags(ativa) = %v, want só a tag ativa", tags)
	}

	if _, err := h.carregarTags(c, []uint{ativa.ID, inativa.ID}); err == nil {
		t.Fatal("carregarTags aceitou tag desativada")
	}
}
