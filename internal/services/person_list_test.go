package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
)

// fakeListBackend serves a mutable people collection
type fakeListBackend struct {
	mu        sync.Mutex
	people    []models.Pessoa
	listErr   error
	deleteErr error
	calls     []string
}

func (b *fakeListBackend) ListPeople(ctx context.Context) ([]models.Pessoa, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "list")
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]models.Pessoa{}, b.people...), nil
}

func (b *fakeListBackend) DeletePerson(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "delete")
	if b.deleteErr != nil {
		return b.deleteErr
	}
	kept := b.people[:0]
	for _, p := range b.people {
		if *p.ID != id {
			kept = append(kept, p)
		}
	}
	b.people = kept
	return nil
}

func samplePeople() []models.Pessoa {
	return []models.Pessoa{
		{
			ID:       int64Ptr(1),
			Nome:     "Ana Souza",
			Telefone: "21987654321",
			CPF:      "52998224725",
			Endereco: &models.Endereco{CEP: "20040020"},
		},
		{
			ID:   int64Ptr(2),
			Nome: "Bruno Lima",
			CPF:  "12345678900",
		},
	}
}

func TestListState_String(t *testing.T) {
	assert.Equal(t, "loading", ListLoading.String())
	assert.Equal(t, "loaded", ListLoaded.String())
	assert.Equal(t, "empty", ListEmpty.String())
	assert.Equal(t, "error", ListError.String())
	assert.Equal(t, "unknown", ListState(42).String())
}

func TestPersonList_Load(t *testing.T) {
	_ = logging.InitLogger()
	api := &fakeListBackend{people: samplePeople()}
	list := NewPersonList(api, 5*time.Second)
	assert.Equal(t, ListLoading, list.View().State)

	require.NoError(t, list.Load(context.Background()))

	view := list.View()
	assert.Equal(t, ListLoaded, view.State)
	require.Len(t, view.Rows, 2)

	ana := view.Rows[0]
	assert.Equal(t, "529.982.247-25", ana.CPF)
	assert.Equal(t, "(21) 98765-4321", ana.Telefone)
	assert.Equal(t, "tel:+5521987654321", ana.TelLink)
	assert.Equal(t, "20040-020", ana.CEP)
	assert.True(t, ana.CPFValid)
	assert.Equal(t, "/cadastro-pessoa/1", ana.EditPath)

	bruno := view.Rows[1]
	assert.Empty(t, bruno.CEP)
	assert.Empty(t, bruno.Telefone)
	assert.False(t, bruno.CPFValid)
}

func TestPersonList_EmptyVersusError(t *testing.T) {
	_ = logging.InitLogger()

	empty := NewPersonList(&fakeListBackend{people: []models.Pessoa{}}, time.Second)
	require.NoError(t, empty.Load(context.Background()))
	assert.Equal(t, ListEmpty, empty.View().State)
	assert.Empty(t, empty.View().Error)

	failing := NewPersonList(&fakeListBackend{listErr: ErrInvalidPayload}, time.Second)
	err := failing.Load(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPayload)
	view := failing.View()
	assert.Equal(t, ListError, view.State)
	assert.Equal(t, MsgLoadPeopleFailed, view.Error)
	assert.Empty(t, view.Rows)
}

func TestPersonList_NullBodyOverHTTP(t *testing.T) {
	client, _ := setupBackendTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))

	list := NewPersonList(client, time.Second)
	require.Error(t, list.Load(context.Background()))
	assert.Equal(t, ListError, list.View().State, "a null body is an error, not an empty list")
}

func TestPersonList_ConfirmDeleteAwaitsReload(t *testing.T) {
	_ = logging.InitLogger()
	api := &fakeListBackend{people: samplePeople()}
	list := NewPersonList(api, 5*time.Second)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	list.now = func() time.Time { return now }

	require.NoError(t, list.Load(context.Background()))
	require.NoError(t, list.RequestDeleteByID(1))
	require.NotNil(t, list.View().PendingDelete)
	assert.Equal(t, "Ana Souza", list.View().PendingDelete.Nome)

	require.NoError(t, list.ConfirmDelete(context.Background()))

	assert.Equal(t, []string{"list", "delete", "list"}, api.calls)
	view := list.View()
	assert.Nil(t, view.PendingDelete)
	assert.Equal(t, "Pessoa Ana Souza excluída com sucesso!", view.Success)
	assert.Equal(t, 5*time.Second, view.SuccessTTL)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Bruno Lima", view.Rows[0].Pessoa.Nome)

	now = now.Add(5 * time.Second)
	assert.Empty(t, list.View().Success, "success message expires")
}

func TestPersonList_DeleteFailure(t *testing.T) {
	_ = logging.InitLogger()
	api := &fakeListBackend{people: samplePeople(), deleteErr: errors.New("boom")}
	list := NewPersonList(api, time.Second)
	require.NoError(t, list.Load(context.Background()))

	list.RequestDelete(samplePeople()[1])
	require.Error(t, list.ConfirmDelete(context.Background()))

	view := list.View()
	assert.Equal(t, MsgDeleteFailed, view.Error)
	assert.Empty(t, view.Success)
	assert.Nil(t, view.PendingDelete)
	assert.Len(t, view.Rows, 2)
	assert.Equal(t, []string{"list", "delete"}, api.calls)
}

func TestPersonList_CancelAndMissingDelete(t *testing.T) {
	_ = logging.InitLogger()
	api := &fakeListBackend{people: samplePeople()}
	list := NewPersonList(api, time.Second)
	require.NoError(t, list.Load(context.Background()))

	list.RequestDelete(samplePeople()[0])
	list.CancelDelete()
	assert.ErrorIs(t, list.ConfirmDelete(context.Background()), ErrNoPendingDelete)

	assert.ErrorIs(t, list.RequestDeleteByID(99), models.ErrPersonNotFound)
	assert.Equal(t, []string{"list"}, api.calls)
}

func TestPersonList_EditRequested(t *testing.T) {
	list := NewPersonList(&fakeListBackend{}, time.Second)

	path, err := list.EditRequested(models.Pessoa{ID: int64Ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, "/cadastro-pessoa/12", path)

	_, err = list.EditRequested(models.Pessoa{Nome: "sem id"})
	assert.ErrorIs(t, err, models.ErrInvalidPersonID)
}

func TestPersonList_DetachedDropsLoad(t *testing.T) {
	list := NewPersonList(&fakeListBackend{people: samplePeople()}, time.Second)
	list.Detach()

	assert.True(t, list.Detached())
	assert.ErrorIs(t, list.Load(context.Background()), ErrSessionClosed)
	assert.Empty(t, list.View().Rows)
}
