package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
)

// Messages shown by the list page
const (
	MsgLoadPeopleFailed   = "Erro ao carregar pessoas"
	MsgDeleteFailed       = "Erro ao excluir pessoa"
	MsgNoPeople           = "Nenhuma pessoa cadastrada"
	MsgFirstPersonCTA     = "Cadastrar Primeira Pessoa"
	msgPersonDeletedTempl = "Pessoa %s excluída com sucesso!"
)

// ListState is the load state of a PersonList
type ListState int

const (
	ListLoading ListState = iota
	ListLoaded
	ListEmpty
	ListError
)

func (s ListState) String() string {
	switch s {
	case ListLoading:
		return "loading"
	case ListLoaded:
		return "loaded"
	case ListEmpty:
		return "empty"
	case ListError:
		return "error"
	default:
		return "unknown"
	}
}

// PersonListBackend is the part of the backend the list needs
type PersonListBackend interface {
	ListPeople(ctx context.Context) ([]models.Pessoa, error)
	DeletePerson(ctx context.Context, id int64) error
}

// PersonRow is one rendered list entry
type PersonRow struct {
	Pessoa   models.Pessoa
	CPF      string
	Telefone string
	TelLink  string
	CEP      string
	CPFValid bool
	EditPath string
}

// ListView is a consistent snapshot for rendering
type ListView struct {
	State         ListState
	Rows          []PersonRow
	Error         string
	Success       string
	SuccessTTL    time.Duration
	PendingDelete *models.Pessoa
}

// PersonList owns the state of one list page
type PersonList struct {
	api        PersonListBackend
	successTTL time.Duration
	now        func() time.Time
	logger     *logging.SafeLogger

	mu            sync.Mutex
	state         ListState
	people        []models.Pessoa
	errMsg        string
	success       string
	successUntil  time.Time
	pendingDelete *models.Pessoa

	detached atomic.Bool
}

// NewPersonList creates a list in the loading state
func NewPersonList(api PersonListBackend, successTTL time.Duration) *PersonList {
	return &PersonList{
		api:        api,
		successTTL: successTTL,
		now:        time.Now,
		logger:     observability.Logger().Named("person_list"),
		state:      ListLoading,
	}
}

// Load fetches the collection. An empty array is ListEmpty; a null or
// non-array body is ListError.
func (l *PersonList) Load(ctx context.Context) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "load_people")
	defer span.End()

	l.mu.Lock()
	l.state = ListLoading
	l.mu.Unlock()

	people, err := l.api.ListPeople(ctx)
	if l.detached.Load() {
		return ErrSessionClosed
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		l.logger.Warn("failed to load people", zap.Error(err))
		l.state = ListError
		l.people = nil
		l.errMsg = MsgLoadPeopleFailed
		return fmt.Errorf("load people: %w", err)
	}

	l.people = people
	l.errMsg = ""
	if len(people) == 0 {
		l.state = ListEmpty
	} else {
		l.state = ListLoaded
	}
	utils.AddSpanAttribute(span, "people.count", len(people))
	return nil
}

// RequestDelete opens the confirmation step for p
func (l *PersonList) RequestDelete(p models.Pessoa) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pendingDelete = &p
}

// RequestDeleteByID opens the confirmation step for a loaded person
func (l *PersonList) RequestDeleteByID(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.people {
		if p.ID != nil && *p.ID == id {
			p := p
			l.pendingDelete = &p
			return nil
		}
	}
	return fmt.Errorf("request delete %d: %w", id, models.ErrPersonNotFound)
}

// CancelDelete closes the confirmation step
func (l *PersonList) CancelDelete() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pendingDelete = nil
}

// ConfirmDelete deletes the pending person, then waits for the list to be
// reloaded before reporting success. The dialog closes either way.
func (l *PersonList) ConfirmDelete(ctx context.Context) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "delete_person")
	defer span.End()

	l.mu.Lock()
	pending := l.pendingDelete
	l.pendingDelete = nil
	l.success = ""
	l.mu.Unlock()

	if pending == nil || pending.ID == nil {
		return ErrNoPendingDelete
	}

	if err := l.api.DeletePerson(ctx, *pending.ID); err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		l.logger.Warn("failed to delete person", zap.Int64("id", *pending.ID), zap.Error(err))
		l.mu.Lock()
		l.errMsg = MsgDeleteFailed
		l.mu.Unlock()
		return fmt.Errorf("delete person %d: %w", *pending.ID, err)
	}

	loadErr := l.Load(ctx)

	l.mu.Lock()
	l.success = fmt.Sprintf(msgPersonDeletedTempl, pending.DisplayName())
	l.successUntil = l.now().Add(l.successTTL)
	l.mu.Unlock()

	return loadErr
}

// EditRequested returns the route that edits p
func (l *PersonList) EditRequested(p models.Pessoa) (string, error) {
	if p.ID == nil {
		return "", models.ErrInvalidPersonID
	}
	return EditPath(*p.ID), nil
}

// Detach marks the page as gone; later loads are dropped
func (l *PersonList) Detach() {
	l.detached.Store(true)
}

// Detached reports whether the page was closed
func (l *PersonList) Detached() bool {
	return l.detached.Load()
}

// View returns a snapshot for rendering; an expired success message is dropped
func (l *PersonList) View() ListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.success != "" && !l.now().Before(l.successUntil) {
		l.success = ""
	}

	v := ListView{
		State:   l.state,
		Error:   l.errMsg,
		Success: l.success,
	}
	if l.success != "" {
		v.SuccessTTL = l.successUntil.Sub(l.now())
	}
	if l.pendingDelete != nil {
		p := *l.pendingDelete
		v.PendingDelete = &p
	}

	v.Rows = make([]PersonRow, 0, len(l.people))
	for _, p := range l.people {
		row := PersonRow{
			Pessoa:   p,
			CPF:      utils.Format(utils.FieldCPF, p.CPF),
			Telefone: utils.Format(utils.FieldPhone, p.Telefone),
			TelLink:  utils.PhoneTelLink(p.Telefone),
			CPFValid: utils.ValidateCPF(p.CPF),
		}
		if p.Endereco != nil {
			row.CEP = utils.Format(utils.FieldCEP, p.Endereco.CEP)
		}
		if p.ID != nil {
			row.EditPath = EditPath(*p.ID)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}
