package http

import (
	"net/http"

	"github.com/thidua-hub/school-merit-hub/internal/application/command"
	"github.com/thidua-hub/school-merit-hub/internal/application/query"
	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /healthz", s.handleHealth) // Kubernetes alias
	s.router.HandleFunc("GET /", s.handleRoot)

	// ─────────────────────────────────────────────────────────────────────────
	// Authentication
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/change-password", s.handleChangePassword)

	// ─────────────────────────────────────────────────────────────────────────
	// Score entries
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/v1/score-entries", s.handleCreateScoreEntry)
	s.router.HandleFunc("DELETE /api/v1/score-entries/{id}", s.handleDeleteScoreEntry)

	// ─────────────────────────────────────────────────────────────────────────
	// Locks & override confirmation
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("PUT /api/v1/locks", s.handleSetLockStatus)
	s.router.HandleFunc("GET /api/v1/override/pending", s.handleGetPendingOverride)
	s.router.HandleFunc("POST /api/v1/override/confirm", s.handleConfirmOverride)
	s.router.HandleFunc("POST /api/v1/override/cancel", s.handleCancelOverride)

	// ─────────────────────────────────────────────────────────────────────────
	// Read side
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/rankings", s.handleGetRankings)
	s.router.HandleFunc("GET /api/v1/violation-stats", s.handleGetViolationStats)
	s.router.HandleFunc("GET /api/v1/audit-log", s.handleGetAuditLog)
	s.router.HandleFunc("GET /api/v1/export", s.handleExportReport)

	// ─────────────────────────────────────────────────────────────────────────
	// Catalog: school years, months, weeks
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/school-years", s.handleListSchoolYears)
	s.router.HandleFunc("POST /api/v1/school-years", s.handleCreateSchoolYear)
	s.router.HandleFunc("PUT /api/v1/school-years/{id}", s.handleUpdateSchoolYear)
	s.router.HandleFunc("DELETE /api/v1/school-years/{id}", s.handleDeleteSchoolYear)
	s.router.HandleFunc("POST /api/v1/school-years/{id}/activate", s.handleSetActiveYear)

	s.router.HandleFunc("GET /api/v1/months", s.handleListMonths)
	s.router.HandleFunc("POST /api/v1/months", s.handleCreateMonth)
	s.router.HandleFunc("PUT /api/v1/months/{id}", s.handleUpdateMonth)
	s.router.HandleFunc("DELETE /api/v1/months/{id}", s.handleDeleteMonth)

	s.router.HandleFunc("GET /api/v1/weeks", s.handleListWeeks)
	s.router.HandleFunc("POST /api/v1/weeks", s.handleCreateWeek)
	s.router.HandleFunc("PUT /api/v1/weeks/{id}", s.handleUpdateWeek)
	s.router.HandleFunc("DELETE /api/v1/weeks/{id}", s.handleDeleteWeek)

	// ─────────────────────────────────────────────────────────────────────────
	// Catalog: classes & violation categories
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/classes", s.handleListClasses)
	s.router.HandleFunc("POST /api/v1/classes", s.handleCreateClass)
	s.router.HandleFunc("PUT /api/v1/classes/{id}", s.handleUpdateClass)
	s.router.HandleFunc("DELETE /api/v1/classes/{id}", s.handleDeleteClass)

	s.router.HandleFunc("GET /api/v1/violations", s.handleListViolations)
	s.router.HandleFunc("POST /api/v1/violations", s.handleCreateViolation)
	s.router.HandleFunc("PUT /api/v1/violations/{id}", s.handleUpdateViolation)
	s.router.HandleFunc("DELETE /api/v1/violations/{id}", s.handleDeleteViolation)

	// ─────────────────────────────────────────────────────────────────────────
	// User administration
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/users", s.handleListUsers)
	s.router.HandleFunc("POST /api/v1/users", s.handleCreateUser)
	s.router.HandleFunc("PUT /api/v1/users/{id}", s.handleUpdateUser)
	s.router.HandleFunc("DELETE /api/v1/users/{id}", s.handleDeleteUser)
	s.router.HandleFunc("POST /api/v1/users/{id}/reset-password", s.handleResetPassword)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "School Merit Hub API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":   "/health",
			"rankings": "/api/v1/rankings",
			"stats":    "/api/v1/violation-stats",
			"audit":    "/api/v1/audit-log",
			"export":   "/api/v1/export",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	UserID             string `json:"user_id"`
	DisplayName        string `json:"display_name"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.Authenticate.Handle(r.Context(), command.AuthenticateCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		UserID:             result.User.ID,
		DisplayName:        result.User.DisplayName,
		Role:               string(result.User.Role),
		MustChangePassword: result.MustChangePassword,
	})
}

type changePasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// handleChangePassword handles POST /api/v1/auth/change-password
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	err := s.deps.Authenticate.ChangePassword(r.Context(), command.ChangePasswordCommand{
		UserID:          actorID(r),
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORE ENTRY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createScoreEntryRequest struct {
	WeekID       string `json:"week_id" validate:"required"`
	ClassID      string `json:"class_id" validate:"required"`
	ViolationID  string `json:"violation_id" validate:"required"`
	StudentCount int    `json:"student_count" validate:"required,gt=0"`
	Note         string `json:"note"`
}

type pendingResponse struct {
	PendingID   string `json:"pending_id"`
	Kind        string `json:"kind"`
	RequestedAt string `json:"requested_at"`
}

func toPendingResponse(p *command.PendingAction) pendingResponse {
	return pendingResponse{
		PendingID:   p.ID,
		Kind:        string(p.Kind),
		RequestedAt: p.RequestedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// handleCreateScoreEntry handles POST /api/v1/score-entries.
// Admin writes on a locked week return 202 with a parked action that
// must be confirmed with a reason.
func (s *Server) handleCreateScoreEntry(w http.ResponseWriter, r *http.Request) {
	var req createScoreEntryRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.CreateEntry.Handle(r.Context(), command.CreateScoreEntryCommand{
		WeekID:       req.WeekID,
		ClassID:      req.ClassID,
		ViolationID:  req.ViolationID,
		StudentCount: req.StudentCount,
		Note:         req.Note,
		ActorID:      actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if result.Pending != nil {
		s.deps.Override.Park(result.Pending)
		writeJSON(w, http.StatusAccepted, toPendingResponse(result.Pending))
		return
	}

	writeJSON(w, http.StatusCreated, result.Entry)
}

// handleDeleteScoreEntry handles DELETE /api/v1/score-entries/{id}
func (s *Server) handleDeleteScoreEntry(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.DeleteEntry.Handle(r.Context(), command.DeleteScoreEntryCommand{
		EntryID: r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if result.Pending != nil {
		s.deps.Override.Park(result.Pending)
		writeJSON(w, http.StatusAccepted, toPendingResponse(result.Pending))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": result.Deleted})
}

// ══════════════════════════════════════════════════════════════════════════════
// LOCK & OVERRIDE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type setLockStatusRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=WEEK MONTH YEAR"`
	TargetID   string `json:"target_id" validate:"required"`
	NewStatus  string `json:"new_status" validate:"required,oneof=OPEN LOCKED"`
}

// handleSetLockStatus handles PUT /api/v1/locks. Locking applies
// immediately; unlocking always parks for confirmation.
func (s *Server) handleSetLockStatus(w http.ResponseWriter, r *http.Request) {
	var req setLockStatusRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.SetLock.Handle(r.Context(), command.SetLockStatusCommand{
		TargetType: period.Type(req.TargetType),
		TargetID:   req.TargetID,
		NewStatus:  period.Status(req.NewStatus),
		ActorID:    actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if result.Pending != nil {
		s.deps.Override.Park(result.Pending)
		writeJSON(w, http.StatusAccepted, toPendingResponse(result.Pending))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"applied": result.Applied})
}

// handleGetPendingOverride handles GET /api/v1/override/pending
func (s *Server) handleGetPendingOverride(w http.ResponseWriter, r *http.Request) {
	pending := s.deps.Override.Pending()
	if pending == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toPendingResponse(pending))
}

type confirmOverrideRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// handleConfirmOverride handles POST /api/v1/override/confirm
func (s *Server) handleConfirmOverride(w http.ResponseWriter, r *http.Request) {
	var req confirmOverrideRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.Override.Confirm(r.Context(), req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCancelOverride handles POST /api/v1/override/cancel. The parked
// action is discarded silently; nothing is audited.
func (s *Server) handleCancelOverride(w http.ResponseWriter, r *http.Request) {
	s.deps.Override.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ══════════════════════════════════════════════════════════════════════════════
// READ-SIDE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// resolveWindow reads the aggregation window from query parameters. A
// YEAR window with target "active" resolves through the settings
// repository.
func (s *Server) resolveWindow(r *http.Request) (period.Type, string, error) {
	periodType := period.Type(getQueryParam(r, "period_type", string(period.TypeWeek)))
	targetID := getQueryParam(r, "target_id", "")

	if periodType == period.TypeYear && (targetID == "" || targetID == "active") {
		activeID, err := s.deps.Settings.GetActiveYearID(r.Context())
		if err != nil {
			return periodType, "", err
		}
		targetID = activeID
	}
	return periodType, targetID, nil
}

// handleGetRankings handles GET /api/v1/rankings
func (s *Server) handleGetRankings(w http.ResponseWriter, r *http.Request) {
	periodType, targetID, err := s.resolveWindow(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	items, err := s.deps.Rankings.Handle(r.Context(), query.GetRankingsQuery{
		PeriodType: periodType,
		TargetID:   targetID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// handleGetViolationStats handles GET /api/v1/violation-stats
func (s *Server) handleGetViolationStats(w http.ResponseWriter, r *http.Request) {
	periodType, targetID, err := s.resolveWindow(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	stats, err := s.deps.ViolationStats.Handle(r.Context(), query.GetViolationStatsQuery{
		PeriodType: periodType,
		TargetID:   targetID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleGetAuditLog handles GET /api/v1/audit-log
func (s *Server) handleGetAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.AuditLog.Handle(r.Context(), query.GetAuditLogQuery{
		ActorID:    getQueryParam(r, "actor_id", ""),
		Action:     audit.Action(getQueryParam(r, "action", "")),
		TargetType: getQueryParam(r, "target_type", ""),
		Limit:      getQueryParamInt(r, "limit", 0),
		Offset:     getQueryParamInt(r, "offset", 0),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleExportReport handles GET /api/v1/export
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	kind := query.ReportKind(getQueryParam(r, "kind", string(query.ReportRankings)))

	q := query.ExportReportQuery{Kind: kind}
	if kind != query.ReportAuditLog {
		periodType, targetID, err := s.resolveWindow(r)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		q.PeriodType = periodType
		q.TargetID = targetID
	} else {
		q.AuditFilter = query.GetAuditLogQuery{
			ActorID:    getQueryParam(r, "actor_id", ""),
			Action:     audit.Action(getQueryParam(r, "action", "")),
			TargetType: getQueryParam(r, "target_type", ""),
			Limit:      getQueryParamInt(r, "limit", 0),
			Offset:     getQueryParamInt(r, "offset", 0),
		}
	}

	result, err := s.deps.Export.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Bytes)
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG HANDLERS: PERIODS
// ══════════════════════════════════════════════════════════════════════════════

// handleListSchoolYears handles GET /api/v1/school-years
func (s *Server) handleListSchoolYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.deps.Periods.ListSchoolYears(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	activeID, err := s.deps.Settings.GetActiveYearID(r.Context())
	if err != nil && !shared.IsNotFound(err) {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"years":          years,
		"active_year_id": activeID,
	})
}

type schoolYearRequest struct {
	Name string `json:"name" validate:"required"`
}

// handleCreateSchoolYear handles POST /api/v1/school-years
func (s *Server) handleCreateSchoolYear(w http.ResponseWriter, r *http.Request) {
	var req schoolYearRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	year, err := s.deps.Catalog.CreateSchoolYear(r.Context(), command.CreateSchoolYearCommand{
		Name:    req.Name,
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, year)
}

// handleUpdateSchoolYear handles PUT /api/v1/school-years/{id}
func (s *Server) handleUpdateSchoolYear(w http.ResponseWriter, r *http.Request) {
	var req schoolYearRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	year, err := s.deps.Catalog.UpdateSchoolYear(r.Context(), command.UpdateSchoolYearCommand{
		ID:      r.PathValue("id"),
		Name:    req.Name,
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, year)
}

// handleDeleteSchoolYear handles DELETE /api/v1/school-years/{id}
func (s *Server) handleDeleteSchoolYear(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Catalog.DeleteSchoolYear(r.Context(), command.DeleteSchoolYearCommand{
		ID:      r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSetActiveYear handles POST /api/v1/school-years/{id}/activate
func (s *Server) handleSetActiveYear(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Catalog.SetActiveYear(r.Context(), command.SetActiveYearCommand{
		ID:      r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

// handleListMonths handles GET /api/v1/months?school_year_id=...
func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	yearID := getQueryParam(r, "school_year_id", "")
	if yearID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "school_year_id query parameter is required")
		return
	}

	months, err := s.deps.Periods.ListMonthsByYear(r.Context(), yearID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

type createMonthRequest struct {
	SchoolYearID string `json:"school_year_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Ordinal      int    `json:"ordinal" validate:"required,min=1,max=12"`
}

// handleCreateMonth handles POST /api/v1/months
func (s *Server) handleCreateMonth(w http.ResponseWriter, r *http.Request) {
	var req createMonthRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	month, err := s.deps.Catalog.CreateMonth(r.Context(), command.CreateMonthCommand{
		SchoolYearID: req.SchoolYearID,
		Name:         req.Name,
		Ordinal:      req.Ordinal,
		ActorID:      actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, month)
}

type updateMonthRequest struct {
	Name    string `json:"name" validate:"required"`
	Ordinal int    `json:"ordinal" validate:"required,min=1,max=12"`
}

// handleUpdateMonth handles PUT /api/v1/months/{id}
func (s *Server) handleUpdateMonth(w http.ResponseWriter, r *http.Request) {
	var req updateMonthRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	month, err := s.deps.Catalog.UpdateMonth(r.Context(), command.UpdateMonthCommand{
		ID:      r.PathValue("id"),
		Name:    req.Name,
		Ordinal: req.Ordinal,
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, month)
}

// handleDeleteMonth handles DELETE /api/v1/months/{id}
func (s *Server) handleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Catalog.DeleteMonth(r.Context(), command.DeleteMonthCommand{
		ID:      r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListWeeks handles GET /api/v1/weeks?month_id=...
func (s *Server) handleListWeeks(w http.ResponseWriter, r *http.Request) {
	monthID := getQueryParam(r, "month_id", "")
	if monthID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "month_id query parameter is required")
		return
	}

	weeks, err := s.deps.Periods.ListWeeksByMonth(r.Context(), monthID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weeks)
}

type createWeekRequest struct {
	MonthID string `json:"month_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Ordinal int    `json:"ordinal" validate:"required,min=1,max=35"`
}

// handleCreateWeek handles POST /api/v1/weeks
func (s *Server) handleCreateWeek(w http.ResponseWriter, r *http.Request) {
	var req createWeekRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	week, err := s.deps.Catalog.CreateWeek(r.Context(), command.CreateWeekCommand{
		MonthID: req.MonthID,
		Name:    req.Name,
		Ordinal: req.Ordinal,
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, week)
}

type updateWeekRequest struct {
	Name    string `json:"name" validate:"required"`
	Ordinal int    `json:"ordinal" validate:"required,min=1,max=35"`
}

// handleUpdateWeek handles PUT /api/v1/weeks/{id}
func (s *Server) handleUpdateWeek(w http.ResponseWriter, r *http.Request) {
	var req updateWeekRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	week, err := s.deps.Catalog.UpdateWeek(r.Context(), command.UpdateWeekCommand{
		ID:      r.PathValue("id"),
		Name:    req.Name,
		Ordinal: req.Ordinal,
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// handleDeleteWeek handles DELETE /api/v1/weeks/{id}
func (s *Server) handleDeleteWeek(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Catalog.DeleteWeek(r.Context(), command.DeleteWeekCommand{
		ID:      r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG HANDLERS: CLASSES & VIOLATIONS
// ══════════════════════════════════════════════════════════════════════════════

// handleListClasses handles GET /api/v1/classes
func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := s.deps.Classes.ListClasses(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

type classRequest struct {
	Name       string `json:"name" validate:"required"`
	GradeLevel int    `json:"grade_level" validate:"required,min=1,max=12"`
}

// handleCreateClass handles POST /api/v1/classes
func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	class, err := s.deps.Catalog.CreateClass(r.Context(), command.CreateClassCommand{
		Name:       req.Name,
		GradeLevel: req.GradeLevel,
		ActorID:    actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, class)
}

// handleUpdateClass handles PUT /api/v1/classes/{id}
func (s *Server) handleUpdateClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	class, err := s.deps.Catalog.UpdateClass(r.Context(), command.UpdateClassCommand{
		ID:         r.PathValue("id"),
		Name:       req.Name,
		GradeLevel: req.GradeLevel,
		ActorID:    actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

// handleDeleteClass handles DELETE /api/v1/classes/{id}
func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Catalog.DeleteClass(r.Context(), command.DeleteClassCommand{
		ID:      r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListViolations handles GET /api/v1/violations
func (s *Server) handleListViolations(w http.ResponseWriter, r *http.Request) {
	violations, err := s.deps.Violations.ListViolations(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, violations)
}

type violationRequest struct {
	Name       string  `json:"name" validate:"required"`
	BasePoints float64 `json:"base_points"`
}

// handleCreateViolation handles POST /api/v1/violations
func (s *Server) handleCreateViolation(w http.ResponseWriter, r *http.Request) {
	var req violationRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	category, err := s.deps.Catalog.CreateViolation(r.Context(), command.CreateViolationCommand{
		Name:       req.Name,
		BasePoints: req.BasePoints,
		ActorID:    actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// handleUpdateViolation handles PUT /api/v1/violations/{id}
func (s *Server) handleUpdateViolation(w http.ResponseWriter, r *http.Request) {
	var req violationRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	category, err := s.deps.Catalog.UpdateViolation(r.Context(), command.UpdateViolationCommand{
		ID:         r.PathValue("id"),
		Name:       req.Name,
		BasePoints: req.BasePoints,
		ActorID:    actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// handleDeleteViolation handles DELETE /api/v1/violations/{id}
func (s *Server) handleDeleteViolation(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Catalog.DeleteViolation(r.Context(), command.DeleteViolationCommand{
		ID:      r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// USER ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// userView hides credentials from listings.
type userView struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	Username     string `json:"username"`
	IsFirstLogin bool   `json:"is_first_login"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

func toUserView(u *user.User) userView {
	return userView{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		Role:         string(u.Role),
		Username:     u.Username,
		IsFirstLogin: u.IsFirstLogin,
		Phone:        u.Phone,
		Email:        u.Email,
	}
}

// handleListUsers handles GET /api/v1/users
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.deps.Users.ListUsers(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	views := make([]userView, 0, len(accounts))
	for _, u := range accounts {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

type createUserRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=ADMIN DUTY_TEACHER TEACHER"`
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// handleCreateUser handles POST /api/v1/users
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := s.deps.UserAdmin.CreateUser(r.Context(), command.CreateUserCommand{
		DisplayName: req.DisplayName,
		Role:        user.Role(req.Role),
		Username:    req.Username,
		Password:    req.Password,
		Phone:       req.Phone,
		Email:       req.Email,
		ActorID:     actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(account))
}

type updateUserRequest struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role" validate:"omitempty,oneof=ADMIN DUTY_TEACHER TEACHER"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// handleUpdateUser handles PUT /api/v1/users/{id}
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := s.deps.UserAdmin.UpdateUser(r.Context(), command.UpdateUserCommand{
		ID:          r.PathValue("id"),
		DisplayName: req.DisplayName,
		Role:        user.Role(req.Role),
		Phone:       req.Phone,
		Email:       req.Email,
		ActorID:     actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(account))
}

// handleDeleteUser handles DELETE /api/v1/users/{id}
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	err := s.deps.UserAdmin.DeleteUser(r.Context(), command.DeleteUserCommand{
		ID:      r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleResetPassword handles POST /api/v1/users/{id}/reset-password
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	err := s.deps.UserAdmin.ResetPassword(r.Context(), command.ResetPasswordCommand{
		ID:      r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password_reset"})
}
