package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_PathAndTitle(t *testing.T) {
	tests := []struct {
		page  Page
		path  string
		title string
	}{
		{PageHome, "/", "Início"},
		{PageCadastro, "/cadastro-pessoa", "Cadastro"},
		{PageListagem, "/listagem-pessoas", "Listagem"},
		{PageDownload, "/download-csv", "Download CSV"},
		{PageAuditoria, "/auditoria", "Auditoria"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.path, tt.page.Path())
			assert.Equal(t, tt.title, tt.page.Title())
		})
	}
}

func TestPage_UnknownPanics(t *testing.T) {
	assert.Panics(t, func() { _ = Page(99).Path() })
	assert.Panics(t, func() { _ = Page(-1).Title() })
}

func TestNavFor(t *testing.T) {
	items := navFor(PageListagem)
	assert.Len(t, items, len(NavPages))

	for _, item := range items {
		assert.Equal(t, item.Path == "/listagem-pessoas", item.Active, item.Path)
	}
}
