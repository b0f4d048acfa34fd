package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/memory"
)

// fakeExporter records the rows it was asked to render.
type fakeExporter struct {
	sheet   string
	headers []string
	rows    [][]string
	err     error
}

func (f *fakeExporter) Export(ctx context.Context, sheet string, headers []string, rows [][]string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sheet = sheet
	f.headers = headers
	f.rows = rows
	return []byte("xlsx-bytes"), nil
}

func newExportHandler(store *memory.Store, exporter RowExporter, sheet string, maxRows int) *ExportReportHandler {
	log := testLogger()
	calc := ranking.NewCalculator()
	return NewExportReportHandler(
		NewGetRankingsHandler(store, calc, NewNoopCache(), log),
		NewGetViolationStatsHandler(store, calc, NewNoopCache(), log),
		NewGetAuditLogHandler(store),
		exporter,
		sheet,
		maxRows,
	)
}

func TestExportReport_Rankings(t *testing.T) {
	store := memory.Fixture()
	exporter := &fakeExporter{}
	handler := newExportHandler(store, exporter, "Weekly", 0)

	result, err := handler.Handle(context.Background(), ExportReportQuery{
		Kind: ReportRankings, PeriodType: period.TypeWeek, TargetID: "w1",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx-bytes"), result.Bytes)

	expectedName := fmt.Sprintf("rankings-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	assert.Equal(t, expectedName, result.FileName)

	assert.Equal(t, "Weekly", exporter.sheet)
	assert.Equal(t, []string{"Rank", "Class", "Total Points"}, exporter.headers)
	require.Len(t, exporter.rows, 3)
	assert.Equal(t, []string{"1", "6A1", "100.00"}, exporter.rows[0], "ties keep catalog order")
}

func TestExportReport_ViolationStats(t *testing.T) {
	store := memory.Fixture()
	exporter := &fakeExporter{}
	handler := newExportHandler(store, exporter, "", 0)

	_, err := handler.Handle(context.Background(), ExportReportQuery{
		Kind: ReportViolationStats, PeriodType: period.TypeWeek, TargetID: "w1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Report", exporter.sheet, "empty sheet name falls back to the default")
	require.Len(t, exporter.rows, 1)
	assert.Equal(t, []string{"Đi học muộn", "-2.50", "0", "0", "0.00"}, exporter.rows[0])
}

func TestExportReport_AuditLog(t *testing.T) {
	store := memory.Fixture()
	entry, err := audit.NewEntry(audit.NewEntryParams{
		ID: "a-1", ActorID: "u1", ActorName: "Administrator",
		Action: audit.ActionLock, TargetType: audit.TargetWeek, TargetID: "w1",
		Details: "week locked",
	})
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), entry))

	exporter := &fakeExporter{}
	handler := newExportHandler(store, exporter, "", 0)

	_, err = handler.Handle(context.Background(), ExportReportQuery{Kind: ReportAuditLog})
	require.NoError(t, err)

	require.Len(t, exporter.rows, 1)
	row := exporter.rows[0]
	assert.Equal(t, "Administrator", row[1])
	assert.Equal(t, "LOCK", row[2])
	assert.Equal(t, "WEEK:w1", row[3])
}

func TestExportReport_RowLimit(t *testing.T) {
	store := memory.Fixture()
	handler := newExportHandler(store, &fakeExporter{}, "", 2)

	// Three classes, limit two.
	_, err := handler.Handle(context.Background(), ExportReportQuery{
		Kind: ReportRankings, PeriodType: period.TypeWeek, TargetID: "w1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValueOutOfRange))
}

func TestExportReport_Validation(t *testing.T) {
	handler := newExportHandler(memory.Fixture(), &fakeExporter{}, "", 0)
	ctx := context.Background()

	_, err := handler.Handle(ctx, ExportReportQuery{Kind: "csv"})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(ctx, ExportReportQuery{Kind: ReportRankings, PeriodType: period.TypeWeek})
	assert.True(t, shared.IsValidation(err), "rankings need a target id")

	// The audit kind needs no window at all.
	_, err = handler.Handle(ctx, ExportReportQuery{Kind: ReportAuditLog})
	assert.NoError(t, err)
}

func TestExportReport_ExporterFailure(t *testing.T) {
	handler := newExportHandler(memory.Fixture(), &fakeExporter{err: errors.New("render failed")}, "", 0)

	_, err := handler.Handle(context.Background(), ExportReportQuery{
		Kind: ReportRankings, PeriodType: period.TypeWeek, TargetID: "w1",
	})
	assert.Error(t, err)
}
