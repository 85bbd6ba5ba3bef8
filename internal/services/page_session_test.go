package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
)

func TestPageSessions_OpenGetClose(t *testing.T) {
	_ = logging.InitLogger()
	sessions := NewPageSessions(time.Minute)

	list := NewPersonList(&fakeListBackend{}, time.Second)
	id := sessions.Open(list)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, sessions.Len())

	got, ok := SessionController[*PersonList](sessions, id)
	require.True(t, ok)
	assert.Same(t, list, got)

	_, ok = SessionController[*Report](sessions, id)
	assert.False(t, ok, "wrong controller type")

	_, ok = SessionController[*PersonList](sessions, "missing")
	assert.False(t, ok)

	assert.True(t, sessions.Close(id))
	assert.True(t, list.Detached())
	assert.False(t, sessions.Close(id))
	assert.Equal(t, 0, sessions.Len())
}

func TestPageSessions_Sweep(t *testing.T) {
	_ = logging.InitLogger()
	sessions := NewPageSessions(time.Minute)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	idle := NewAudit(sampleAuditBackend())
	active := NewAudit(sampleAuditBackend())
	sessions.Open(idle)
	activeID := sessions.Open(active)

	now = now.Add(45 * time.Second)
	_, ok := sessions.Get(activeID)
	require.True(t, ok)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, sessions.Sweep())
	assert.True(t, idle.Detached())
	assert.False(t, active.Detached())
	assert.Equal(t, 1, sessions.Len())
}

func TestPageSessions_RunClosesAllOnShutdown(t *testing.T) {
	_ = logging.InitLogger()
	sessions := NewPageSessions(time.Hour)
	form := newTestForm(t, &fakePersonBackend{})
	sessions.Open(form)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessions.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	<-done
	assert.True(t, form.Detached())
	assert.Equal(t, 0, sessions.Len())
}

func TestSessionController_NilRegistry(t *testing.T) {
	_, ok := SessionController[*PersonForm](nil, "abc")
	assert.False(t, ok)
}
