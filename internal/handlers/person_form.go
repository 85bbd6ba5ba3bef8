package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

func (h *Handlers) newForm() *services.PersonForm {
	return services.NewPersonForm(h.backend, h.resolver, h.cfg.EditRedirectDelay)
}

func (h *Handlers) renderForm(c *gin.Context, status int, sessionID string, form *services.PersonForm, override string) {
	view := form.View()

	data := newPageData(PageCadastro, sessionID)
	data.Form = &view
	data.Action = services.FormPath
	if view.ID != nil {
		data.Action = services.EditPath(*view.ID)
	}
	data.LookupPath = lookupPath(sessionID)
	data.RedirectTo = view.RedirectTo
	data.RedirectAfter = view.RedirectAfter
	data.Alerts = alerts{Error: view.Error, Success: view.Success}
	if override != "" {
		data.Alerts.Error = override
	}

	c.HTML(status, "cadastro.html", data)
}

// lookupPath is the prefix the page appends the typed CEP digits to
func lookupPath(sessionID string) string {
	return "/sessao/" + sessionID + "/cep/"
}

// NewPersonPage renders an empty registration form
func (h *Handlers) NewPersonPage(c *gin.Context) {
	_, span := otel.Tracer("").Start(c.Request.Context(), "NewPersonPage")
	defer span.End()

	form := h.newForm()
	sessionID := h.sessions.Open(form)
	span.SetAttributes(attribute.String("page.session", sessionID))

	h.renderForm(c, http.StatusOK, sessionID, form, "")
}

// EditPersonPage renders the form filled with an existing person
func (h *Handlers) EditPersonPage(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "EditPersonPage")
	defer span.End()

	logger := observability.Logger()

	form := h.newForm()
	sessionID := h.sessions.Open(form)

	id, err := parsePersonID(c.Param("id"))
	if err != nil {
		logger.Debug("invalid person id on edit page", zap.String("id", c.Param("id")))
		h.renderForm(c, http.StatusBadRequest, sessionID, form, MsgInvalidPersonID)
		return
	}
	span.SetAttributes(attribute.Int64("person.id", id))

	err = form.LoadForEdit(ctx, id)
	h.renderForm(c, statusFor(err), sessionID, form, "")
}

// SubmitPerson saves the posted form. Without a live page session a fresh
// form is rebuilt from the posted values, including the address shown.
func (h *Handlers) SubmitPerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "SubmitPerson")
	defer span.End()

	logger := observability.Logger()

	var editID *int64
	if raw := c.Param("id"); raw != "" {
		id, err := parsePersonID(raw)
		if err != nil {
			form := h.newForm()
			h.renderForm(c, http.StatusBadRequest, h.sessions.Open(form), form, MsgInvalidPersonID)
			return
		}
		editID = &id
	}

	sessionID := c.PostForm("sessao")
	form, ok := services.SessionController[*services.PersonForm](h.sessions, sessionID)
	if ok && !sameID(form.View().ID, editID) {
		ok = false
	}
	if !ok {
		logger.Debug("rebuilding form from posted values", zap.String("session", sessionID))
		form = h.newForm()
		sessionID = h.sessions.Open(form)
		form.Restore(editID, optionalID(c.PostForm("endereco_id")), c.PostForm("cep"), models.AddressFragment{
			Bairro:    c.PostForm("bairro"),
			Municipio: c.PostForm("municipio"),
			Estado:    c.PostForm("estado"),
		})
	}

	values := make(map[string]string, len(services.EditableFields))
	for _, name := range services.EditableFields {
		if v, ok := c.GetPostForm(name); ok {
			values[name] = v
		}
	}
	form.SetFields(values)

	err := form.Submit(ctx)
	h.renderForm(c, statusFor(err), sessionID, form, "")
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
