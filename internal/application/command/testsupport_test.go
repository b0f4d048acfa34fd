package command

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/memory"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// Seeded fixture ids, see memory.Fixture.
const (
	adminID       = "u1"
	dutyTeacherID = "u2"
	teacherID     = "u3"
	weekID        = "w1"
	classID       = "c1"
	violationID   = "v1" // -2.5 base points
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

// env bundles a seeded store with fully wired command handlers.
type env struct {
	store    *memory.Store
	events   *recordingPublisher
	create   *CreateScoreEntryHandler
	remove   *DeleteScoreEntryHandler
	setLock  *SetLockStatusHandler
	override *OverrideCoordinator
	catalog  *CatalogHandler
	admin    *UserAdminHandler
	auth     *AuthenticateHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.Fixture()
	log := logger.New(logger.Options{Output: io.Discard})
	events := &recordingPublisher{}
	resolver := period.NewResolver(store)

	create := NewCreateScoreEntryHandler(store, store, store, store, store, resolver, store, events, log)
	remove := NewDeleteScoreEntryHandler(store, store, store, store, resolver, store, events, log)
	setLock := NewSetLockStatusHandler(store, store, store, store, events, log)

	return &env{
		store:    store,
		events:   events,
		create:   create,
		remove:   remove,
		setLock:  setLock,
		override: NewOverrideCoordinator(create, remove, setLock, log),
		catalog:  NewCatalogHandler(store, store, store, store, store, store, store, log),
		admin:    NewUserAdminHandler(store, store, store, log),
		auth:     NewAuthenticateHandler(store, log),
	}
}

// lockWeek locks the fixture week directly in the store.
func (e *env) lockWeek(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	week, err := e.store.GetWeek(ctx, id)
	require.NoError(t, err)
	week.Status = period.StatusLocked
	require.NoError(t, e.store.SaveWeek(ctx, week))
}

// auditEntries returns the full audit log, newest first.
func (e *env) auditEntries(t *testing.T) []*audit.Entry {
	t.Helper()
	entries, err := e.store.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	return entries
}
