package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
)

// Messages shown by the registration form
const (
	MsgPersonCreated    = "Pessoa cadastrada com sucesso!"
	MsgPersonUpdated    = "Pessoa atualizada com sucesso!"
	MsgSaveFailed       = "Erro ao salvar pessoa"
	MsgLoadPersonFailed = "Erro ao carregar dados da pessoa"
	MsgRequiredFields   = "Nome e CPF são obrigatórios"
)

// FormState is the submit/load state of a PersonForm
type FormState int

const (
	FormIdle FormState = iota
	FormSubmitting
	FormSuccess
	FormError
	FormLoading
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormSubmitting:
		return "submitting"
	case FormSuccess:
		return "success"
	case FormError:
		return "error"
	case FormLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Form field names, as posted by the page
const (
	FieldNome        = "nome"
	FieldTelefone    = "telefone"
	FieldCPF         = "cpf"
	FieldCEP         = "cep"
	FieldNumero      = "numero"
	FieldComplemento = "complemento"
)

// EditableFields lists the fields a user may type into
var EditableFields = []string{FieldNome, FieldTelefone, FieldCPF, FieldCEP, FieldNumero, FieldComplemento}

// FormDraft mirrors the form inputs. Telefone, CPF and CEP hold masked
// values; Bairro, Municipio and Estado are only written by the lookup.
type FormDraft struct {
	Nome        string
	Telefone    string
	CPF         string
	CEP         string
	Numero      string
	Complemento string
	Bairro      string
	Municipio   string
	Estado      string
}

// PersonFormBackend is the part of the backend the form needs
type PersonFormBackend interface {
	GetPerson(ctx context.Context, id int64) (*models.Pessoa, error)
	CreatePerson(ctx context.Context, p models.Pessoa) (*models.Pessoa, error)
	UpdatePerson(ctx context.Context, id int64, p models.Pessoa) (*models.Pessoa, error)
}

// FormView is a consistent snapshot for rendering
type FormView struct {
	ID            *int64
	EnderecoID    *int64
	Draft         FormDraft
	State         FormState
	Success       string
	Error         string
	LookupError   string
	LookupLoading bool
	RedirectTo    string
	RedirectAfter time.Duration
}

// EditMode reports whether the form edits an existing person
func (v FormView) EditMode() bool {
	return v.ID != nil
}

// PersonForm owns the draft of one create or edit page
type PersonForm struct {
	api               PersonFormBackend
	lookup            *AddressLookup
	editRedirectDelay time.Duration
	logger            *logging.SafeLogger

	mu          sync.Mutex
	id          *int64
	enderecoID  *int64
	draft       FormDraft
	state       FormState
	success     string
	errMsg      string
	lookupError string
	redirectTo  string

	detached atomic.Bool
}

// NewPersonForm creates an empty form in create mode
func NewPersonForm(api PersonFormBackend, resolver *CEPResolver, editRedirectDelay time.Duration) *PersonForm {
	f := &PersonForm{
		api:               api,
		editRedirectDelay: editRedirectDelay,
		logger:            observability.Logger().Named("person_form"),
	}
	f.lookup = NewAddressLookup(resolver, f)
	return f
}

// SetField applies live masking to a typed value. ready is true when the
// field is the CEP and it changed to a complete value, meaning a lookup
// should fire. A changed CEP clears the address of the previous one.
func (f *PersonForm) SetField(name, raw string) (ready bool, err error) {
	f.mu.Lock()
	cepChanged := false
	switch name {
	case FieldNome:
		f.draft.Nome = raw
	case FieldTelefone:
		f.draft.Telefone = utils.Format(utils.FieldPhone, raw)
	case FieldCPF:
		f.draft.CPF = utils.Format(utils.FieldCPF, raw)
	case FieldCEP:
		masked := utils.Format(utils.FieldCEP, raw)
		cepChanged = utils.Canonical(masked) != utils.Canonical(f.draft.CEP)
		f.draft.CEP = masked
		if cepChanged {
			// the address shown belongs to the previous CEP
			f.draft.Bairro = ""
			f.draft.Municipio = ""
			f.draft.Estado = ""
			f.lookupError = ""
		}
		ready = cepChanged && utils.IsComplete(utils.FieldCEP, masked)
	case FieldNumero:
		f.draft.Numero = raw
	case FieldComplemento:
		f.draft.Complemento = raw
	default:
		f.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.mu.Unlock()

	if cepChanged {
		f.lookup.Invalidate()
	}
	return ready, nil
}

// SetFields applies every editable field present in values. Read-only
// address fields are ignored.
func (f *PersonForm) SetFields(values map[string]string) {
	for _, name := range EditableFields {
		if v, ok := values[name]; ok {
			_, _ = f.SetField(name, v)
		}
	}
}

// LookupCEP runs the address lookup for the current draft CEP
func (f *PersonForm) LookupCEP(ctx context.Context) (LookupResult, error) {
	return f.lookup.Lookup(ctx, f.CurrentCEP())
}

// ApplyAddress fills the read-only address fields and clears the lookup error
func (f *PersonForm) ApplyAddress(frag models.AddressFragment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Bairro = frag.Bairro
	f.draft.Municipio = frag.Municipio
	f.draft.Estado = frag.Estado
	f.lookupError = ""
}

// ApplyLookupError clears the address fields and shows msg under the CEP
func (f *PersonForm) ApplyLookupError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Bairro = ""
	f.draft.Municipio = ""
	f.draft.Estado = ""
	f.lookupError = msg
}

// CurrentCEP returns the masked CEP in the draft
func (f *PersonForm) CurrentCEP() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.CEP
}

// Detach marks the page as gone; later async results are dropped
func (f *PersonForm) Detach() {
	f.detached.Store(true)
}

// Detached reports whether the page was closed
func (f *PersonForm) Detached() bool {
	return f.detached.Load()
}

// payload builds the backend body; only canonical digits are sent
func (f *PersonForm) payload() models.Pessoa {
	d := f.draft
	p := models.Pessoa{
		ID:       f.id,
		Nome:     strings.TrimSpace(d.Nome),
		Telefone: utils.Canonical(d.Telefone),
		CPF:      utils.Canonical(d.CPF),
	}

	endereco := models.Endereco{
		ID:          f.enderecoID,
		CEP:         utils.Canonical(d.CEP),
		Numero:      strings.TrimSpace(d.Numero),
		Complemento: strings.TrimSpace(d.Complemento),
		Bairro:      d.Bairro,
		Municipio:   d.Municipio,
		Estado:      d.Estado,
	}
	if endereco != (models.Endereco{ID: f.enderecoID}) {
		p.Endereco = &endereco
	}
	return p
}

// Submit validates presence of Nome and CPF and saves the draft with exactly
// one backend call: POST in create mode, PUT in edit mode.
func (f *PersonForm) Submit(ctx context.Context) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "submit_person")
	defer span.End()

	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return nil
	}
	f.success = ""
	f.errMsg = ""
	f.redirectTo = ""

	if strings.TrimSpace(f.draft.Nome) == "" || utils.Canonical(f.draft.CPF) == "" {
		f.state = FormError
		f.errMsg = MsgRequiredFields
		f.mu.Unlock()
		return ErrValidation
	}

	body := f.payload()
	id := f.id
	f.state = FormSubmitting
	f.mu.Unlock()

	var err error
	if id != nil {
		_, err = f.api.UpdatePerson(ctx, *id, body)
	} else {
		_, err = f.api.CreatePerson(ctx, body)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		f.logger.Warn("failed to save person",
			zap.Bool("edit", id != nil),
			zap.String("cpf", observability.MaskCPF(body.CPF)),
			zap.Error(err))
		f.state = FormError
		f.errMsg = userMessage(err, MsgSaveFailed)
		return fmt.Errorf("save person: %w", err)
	}

	f.state = FormSuccess
	if id != nil {
		f.success = MsgPersonUpdated
		f.redirectTo = ListPath
	} else {
		f.success = MsgPersonCreated
		f.draft = FormDraft{}
		f.enderecoID = nil
		f.lookupError = ""
	}
	return nil
}

// LoadForEdit fetches a person and fills the draft with masked values.
// On failure the draft stays empty and an error message is shown.
func (f *PersonForm) LoadForEdit(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.state = FormLoading
	f.id = &id
	f.enderecoID = nil
	f.draft = FormDraft{}
	f.errMsg = ""
	f.success = ""
	f.mu.Unlock()

	p, err := f.api.GetPerson(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = FormIdle

	if err != nil {
		f.logger.Warn("failed to load person for edit", zap.Int64("id", id), zap.Error(err))
		// nothing was loaded, so a later submit must not update this ID
		f.id = nil
		f.errMsg = MsgLoadPersonFailed
		return fmt.Errorf("load person %d: %w", id, err)
	}

	f.draft = FormDraft{
		Nome:     p.Nome,
		Telefone: utils.Format(utils.FieldPhone, p.Telefone),
		CPF:      utils.Format(utils.FieldCPF, p.CPF),
	}
	if p.Endereco != nil {
		e := p.Endereco
		f.enderecoID = e.ID
		f.draft.CEP = utils.Format(utils.FieldCEP, e.CEP)
		f.draft.Numero = e.Numero
		f.draft.Complemento = e.Complemento
		f.draft.Bairro = e.Bairro
		f.draft.Municipio = e.Municipio
		f.draft.Estado = e.Estado
	}
	return nil
}

// Restore rebinds a fresh form to a record posted by a page whose session
// expired: the edit target, its address ID and the CEP and address shown on
// screen
func (f *PersonForm) Restore(id, enderecoID *int64, cep string, address models.AddressFragment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = id
	f.enderecoID = enderecoID
	f.draft.CEP = utils.Format(utils.FieldCEP, cep)
	f.draft.Bairro = address.Bairro
	f.draft.Municipio = address.Municipio
	f.draft.Estado = address.Estado
}

// ClearMessages drops the success or error banner, keeping the draft
func (f *PersonForm) ClearMessages() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success = ""
	f.errMsg = ""
	if f.state == FormSuccess || f.state == FormError {
		f.state = FormIdle
	}
}

// View returns a snapshot for rendering
func (f *PersonForm) View() FormView {
	loading := f.lookup.Loading()

	f.mu.Lock()
	defer f.mu.Unlock()

	v := FormView{
		ID:            f.id,
		EnderecoID:    f.enderecoID,
		Draft:         f.draft,
		State:         f.state,
		Success:       f.success,
		Error:         f.errMsg,
		LookupError:   f.lookupError,
		LookupLoading: loading,
		RedirectTo:    f.redirectTo,
	}
	if f.redirectTo != "" {
		v.RedirectAfter = f.editRedirectDelay
	}
	return v
}
