package query

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT REPORT QUERY
// Builds tabular rows from the read side and hands them to the
// spreadsheet collaborator. The exporter owns the file format; this
// layer only supplies rows.
// ══════════════════════════════════════════════════════════════════════════════

// RowExporter renders tabular rows into spreadsheet file bytes.
type RowExporter interface {
	Export(ctx context.Context, sheet string, headers []string, rows [][]string) ([]byte, error)
}

// ReportKind selects which table to export.
type ReportKind string

const (
	// ReportRankings - the class ranking table.
	ReportRankings ReportKind = "rankings"
	// ReportViolationStats - the per-category statistics table.
	ReportViolationStats ReportKind = "violation_stats"
	// ReportAuditLog - the audit trail.
	ReportAuditLog ReportKind = "audit_log"
)

// IsValid reports whether the kind is one of the known values.
func (k ReportKind) IsValid() bool {
	switch k {
	case ReportRankings, ReportViolationStats, ReportAuditLog:
		return true
	default:
		return false
	}
}

// ExportReportQuery describes the requested export. PeriodType and
// TargetID apply to rankings and statistics; AuditFilter applies to the
// audit trail.
type ExportReportQuery struct {
	Kind        ReportKind
	PeriodType  period.Type
	TargetID    string
	AuditFilter GetAuditLogQuery
}

// Validate validates the query.
func (q ExportReportQuery) Validate() error {
	if !q.Kind.IsValid() {
		return shared.NewDomainError("export", "ExportReport", shared.ErrValidation, "unknown report kind")
	}
	if q.Kind != ReportAuditLog {
		if !q.PeriodType.IsValid() {
			return shared.NewDomainError("export", "ExportReport", shared.ErrValidation, "unknown period type")
		}
		if q.TargetID == "" {
			return shared.NewDomainError("export", "ExportReport", shared.ErrValidation, "target_id is required")
		}
	}
	return nil
}

// ExportReportResult carries the rendered file.
type ExportReportResult struct {
	FileName string
	Bytes    []byte
}

// ExportReportHandler handles the ExportReportQuery.
type ExportReportHandler struct {
	rankings *GetRankingsHandler
	stats    *GetViolationStatsHandler
	auditLog *GetAuditLogHandler
	exporter RowExporter
	sheet    string
	maxRows  int
}

// NewExportReportHandler creates a new ExportReportHandler.
func NewExportReportHandler(
	rankings *GetRankingsHandler,
	stats *GetViolationStatsHandler,
	auditLog *GetAuditLogHandler,
	exporter RowExporter,
	sheet string,
	maxRows int,
) *ExportReportHandler {
	if sheet == "" {
		sheet = "Report"
	}
	return &ExportReportHandler{
		rankings: rankings,
		stats:    stats,
		auditLog: auditLog,
		exporter: exporter,
		sheet:    sheet,
		maxRows:  maxRows,
	}
}

// Handle assembles the requested rows and renders the workbook.
func (h *ExportReportHandler) Handle(ctx context.Context, q ExportReportQuery) (*ExportReportResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		headers []string
		rows    [][]string
		err     error
	)
	switch q.Kind {
	case ReportRankings:
		headers, rows, err = h.rankingRows(ctx, q)
	case ReportViolationStats:
		headers, rows, err = h.statRows(ctx, q)
	case ReportAuditLog:
		headers, rows, err = h.auditRows(ctx, q)
	}
	if err != nil {
		return nil, err
	}

	if h.maxRows > 0 && len(rows) > h.maxRows {
		return nil, shared.NewDomainError("export", "ExportReport", shared.ErrValueOutOfRange, "report exceeds the row limit")
	}

	data, err := h.exporter.Export(ctx, h.sheet, headers, rows)
	if err != nil {
		return nil, fmt.Errorf("export_report: render: %w", err)
	}

	return &ExportReportResult{
		FileName: fmt.Sprintf("%s-%s.xlsx", q.Kind, time.Now().UTC().Format("2006-01-02")),
		Bytes:    data,
	}, nil
}

func (h *ExportReportHandler) rankingRows(ctx context.Context, q ExportReportQuery) ([]string, [][]string, error) {
	items, err := h.rankings.Handle(ctx, GetRankingsQuery{PeriodType: q.PeriodType, TargetID: q.TargetID})
	if err != nil {
		return nil, nil, err
	}

	headers := []string{"Rank", "Class", "Total Points"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(item.Rank),
			item.ClassName,
			strconv.FormatFloat(item.TotalPoints, 'f', 2, 64),
		})
	}
	return headers, rows, nil
}

func (h *ExportReportHandler) statRows(ctx context.Context, q ExportReportQuery) ([]string, [][]string, error) {
	stats, err := h.stats.Handle(ctx, GetViolationStatsQuery{PeriodType: q.PeriodType, TargetID: q.TargetID})
	if err != nil {
		return nil, nil, err
	}

	headers := []string{"Category", "Base Points", "Frequency", "Total Students", "Total Points"}
	rows := make([][]string, 0, len(stats))
	for _, stat := range stats {
		rows = append(rows, []string{
			stat.Name,
			strconv.FormatFloat(stat.BasePoints, 'f', 2, 64),
			strconv.Itoa(stat.Frequency),
			strconv.Itoa(stat.TotalStudents),
			strconv.FormatFloat(stat.TotalPoints, 'f', 2, 64),
		})
	}
	return headers, rows, nil
}

func (h *ExportReportHandler) auditRows(ctx context.Context, q ExportReportQuery) ([]string, [][]string, error) {
	entries, err := h.auditLog.Handle(ctx, q.AuditFilter)
	if err != nil {
		return nil, nil, err
	}

	headers := []string{"Timestamp", "Actor", "Action", "Target", "Details", "Reason"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Format(time.RFC3339),
			e.ActorName,
			string(e.Action),
			e.TargetType + ":" + e.TargetID,
			e.Details,
			e.Reason,
		})
	}
	return headers, rows, nil
}
