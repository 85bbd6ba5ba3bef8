package handlers

import (
	"fmt"

	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

// Page is a top-level screen of the front-end
type Page int

const (
	PageHome Page = iota
	PageCadastro
	PageListagem
	PageDownload
	PageAuditoria
)

// NavPages are the pages linked from the app bar, in order
var NavPages = []Page{PageCadastro, PageListagem, PageDownload, PageAuditoria}

// Path returns the route of the page
func (p Page) Path() string {
	switch p {
	case PageHome:
		return "/"
	case PageCadastro:
		return services.FormPath
	case PageListagem:
		return services.ListPath
	case PageDownload:
		return services.DownloadPath
	case PageAuditoria:
		return services.AuditPath
	default:
		panic(fmt.Sprintf("unknown page %d", int(p)))
	}
}

// Title returns the document title of the page
func (p Page) Title() string {
	switch p {
	case PageHome:
		return "Início"
	case PageCadastro:
		return "Cadastro"
	case PageListagem:
		return "Listagem"
	case PageDownload:
		return "Download CSV"
	case PageAuditoria:
		return "Auditoria"
	default:
		panic(fmt.Sprintf("unknown page %d", int(p)))
	}
}

type navItem struct {
	Path   string
	Label  string
	Active bool
}

func navFor(current Page) []navItem {
	items := make([]navItem, 0, len(NavPages))
	for _, p := range NavPages {
		items = append(items, navItem{Path: p.Path(), Label: p.Title(), Active: p == current})
	}
	return items
}
