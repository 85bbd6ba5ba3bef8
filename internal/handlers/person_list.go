package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

func (h *Handlers) renderList(c *gin.Context, status int, sessionID string, list *services.PersonList, override string) {
	view := list.View()

	data := newPageData(PageListagem, sessionID)
	data.List = &view
	data.FormPath = services.FormPath
	data.NoPeople = services.MsgNoPeople
	data.FirstPersonCTA = services.MsgFirstPersonCTA
	data.Alerts = alerts{Error: view.Error, Success: view.Success, SuccessTTL: view.SuccessTTL}
	if override != "" {
		data.Alerts.Error = override
	}

	c.HTML(status, "listagem.html", data)
}

// listFor returns the list of a live session or opens and loads a new one
func (h *Handlers) listFor(ctx context.Context, sessionID string) (*services.PersonList, string, error) {
	if list, ok := services.SessionController[*services.PersonList](h.sessions, sessionID); ok {
		return list, sessionID, nil
	}
	list := services.NewPersonList(h.backend, h.cfg.SuccessMessageTTL)
	sessionID = h.sessions.Open(list)
	return list, sessionID, list.Load(ctx)
}

// ListPage renders the people list. Returning to a live session closes a
// pending delete confirmation.
func (h *Handlers) ListPage(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ListPage")
	defer span.End()

	if list, ok := services.SessionController[*services.PersonList](h.sessions, c.Query("sessao")); ok {
		list.CancelDelete()
		h.renderList(c, http.StatusOK, c.Query("sessao"), list, "")
		return
	}

	list := services.NewPersonList(h.backend, h.cfg.SuccessMessageTTL)
	sessionID := h.sessions.Open(list)
	err := list.Load(ctx)
	h.renderList(c, statusFor(err), sessionID, list, "")
}

// ConfirmDeletePage opens the delete confirmation for a listed person
func (h *Handlers) ConfirmDeletePage(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ConfirmDeletePage")
	defer span.End()

	list, sessionID, err := h.listFor(ctx, c.Query("sessao"))
	if err != nil {
		h.renderList(c, statusFor(err), sessionID, list, "")
		return
	}

	id, err := parsePersonID(c.Param("id"))
	if err != nil {
		h.renderList(c, http.StatusBadRequest, sessionID, list, MsgInvalidPersonID)
		return
	}
	span.SetAttributes(attribute.Int64("person.id", id))

	if err := list.RequestDeleteByID(id); err != nil {
		h.renderList(c, http.StatusNotFound, sessionID, list, services.MsgDeleteFailed)
		return
	}
	h.renderList(c, http.StatusOK, sessionID, list, "")
}

// DeletePerson confirms the pending delete. The page shows the success
// message only after the list was reloaded.
func (h *Handlers) DeletePerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "DeletePerson")
	defer span.End()

	id, err := parsePersonID(c.Param("id"))
	if err != nil {
		list := services.NewPersonList(h.backend, h.cfg.SuccessMessageTTL)
		h.renderList(c, http.StatusBadRequest, h.sessions.Open(list), list, MsgInvalidPersonID)
		return
	}
	span.SetAttributes(attribute.Int64("person.id", id))

	sessionID := c.PostForm("sessao")
	list, ok := services.SessionController[*services.PersonList](h.sessions, sessionID)
	if !ok {
		list = services.NewPersonList(h.backend, h.cfg.SuccessMessageTTL)
		sessionID = h.sessions.Open(list)
	}

	view := list.View()
	if view.PendingDelete == nil || view.PendingDelete.ID == nil || *view.PendingDelete.ID != id {
		if list.RequestDeleteByID(id) != nil {
			list.RequestDelete(models.Pessoa{ID: &id, Nome: c.PostForm("nome")})
		}
	}

	err = list.ConfirmDelete(ctx)
	h.renderList(c, statusFor(err), sessionID, list, "")
}
