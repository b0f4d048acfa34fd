package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/memory"
)

func appendAuditFixture(t *testing.T, store *memory.Store, n int, action audit.Action) {
	t.Helper()
	for i := 0; i < n; i++ {
		entry, err := audit.NewEntry(audit.NewEntryParams{
			ID:         fmt.Sprintf("a-%s-%d", action, i),
			ActorID:    "u1",
			ActorName:  "Administrator",
			Action:     action,
			TargetType: audit.TargetScoreEntry,
			TargetID:   fmt.Sprintf("e-%d", i),
			Details:    "fixture record",
		})
		require.NoError(t, err)
		require.NoError(t, store.Append(context.Background(), entry))
	}
}

func TestGetAuditLog_DefaultPageSize(t *testing.T) {
	store := memory.Fixture()
	appendAuditFixture(t, store, DefaultAuditPageSize+10, audit.ActionCreate)

	handler := NewGetAuditLogHandler(store)
	entries, err := handler.Handle(context.Background(), GetAuditLogQuery{})
	require.NoError(t, err)
	assert.Len(t, entries, DefaultAuditPageSize)
}

func TestGetAuditLog_ActionFilterAndPaging(t *testing.T) {
	store := memory.Fixture()
	appendAuditFixture(t, store, 3, audit.ActionCreate)
	appendAuditFixture(t, store, 2, audit.ActionDelete)

	handler := NewGetAuditLogHandler(store)
	ctx := context.Background()

	deletes, err := handler.Handle(ctx, GetAuditLogQuery{Action: audit.ActionDelete})
	require.NoError(t, err)
	assert.Len(t, deletes, 2)

	paged, err := handler.Handle(ctx, GetAuditLogQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, paged, 1, "offset past the tail returns the remainder")
}

func TestGetAuditLog_Validation(t *testing.T) {
	handler := NewGetAuditLogHandler(memory.Fixture())

	_, err := handler.Handle(context.Background(), GetAuditLogQuery{Action: "TRUNCATE"})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), GetAuditLogQuery{Limit: -1})
	assert.Error(t, err)
}
