package web

import (
	"net/http"

	"courtside/internal/adapters/http/middleware"
	"courtside/internal/application/orchestrators"
	"courtside/internal/application/projections"
	"courtside/internal/domain/register"
)

func calendarQuery(r *http.Request, sess middleware.Session) projections.CalendarQuery {
	q := r.URL.Query()
	return projections.CalendarQuery{
		Actor:     sess.Actor(),
		PeriodID:  q.Get("period_id"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
}

func calendarDeps() projections.RegisterCalendarDeps {
	return projections.RegisterCalendarDeps{
		PeriodStore:   stores.PeriodStore,
		SlotStore:     stores.GroupStore,
		HolidayStore:  stores.HolidayStore,
		RegisterStore: stores.RegisterStore,
	}
}

func occurrenceDeps() orchestrators.OccurrenceDeps {
	return orchestrators.OccurrenceDeps{
		SlotStore:     stores.GroupStore,
		PeriodStore:   stores.PeriodStore,
		HolidayStore:  stores.HolidayStore,
		RegisterStore: stores.RegisterStore,
	}
}

func sessionPlanDeps() orchestrators.SessionPlanDeps {
	return orchestrators.SessionPlanDeps{
		Occurrence: occurrenceDeps(),
		PlanStore:  stores.SessionPlanStore,
		Metrics:    appMetrics,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

// handleRegisterCalendar handles GET /api/register-calendar?period_id&start_date&end_date
func handleRegisterCalendar(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	sessions, err := projections.QueryRegisterCalendar(r.Context(), calendarQuery(r, sess), calendarDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// handleListSessionPlans handles GET /api/session-plans?period_id&start_date&end_date
func handleListSessionPlans(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	plans, err := projections.QuerySessionPlans(r.Context(), calendarQuery(r, sess), projections.SessionPlansDeps{
		PeriodStore: stores.PeriodStore,
		SlotStore:   stores.GroupStore,
		PlanStore:   stores.SessionPlanStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// handleCreateSessionPlan handles POST /api/session-plans
func handleCreateSessionPlan(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var input struct {
		Date        string `json:"Date"`
		GroupTimeID string `json:"GroupTimeID"`
		Summary     string `json:"Summary"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	plan, err := orchestrators.ExecuteCreateSessionPlan(r.Context(), orchestrators.CreateSessionPlanInput{
		Actor:       sess.Actor(),
		Date:        input.Date,
		GroupTimeID: input.GroupTimeID,
		Summary:     input.Summary,
	}, sessionPlanDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// handleUpdateSessionPlan handles PUT /api/session-plans/{id}
func handleUpdateSessionPlan(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var input struct {
		Summary string `json:"Summary"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	plan, err := orchestrators.ExecuteUpdateSessionPlan(r.Context(), orchestrators.UpdateSessionPlanInput{
		Actor:   sess.Actor(),
		PlanID:  r.PathValue("id"),
		Summary: input.Summary,
	}, sessionPlanDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// handleSessionStatuses handles GET /api/session-statuses?period_id&start_date&end_date
func handleSessionStatuses(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	result, err := projections.QuerySessionStatuses(r.Context(), calendarQuery(r, sess), projections.SessionStatusesDeps{
		Calendar:  calendarDeps(),
		PlanStore: stores.SessionPlanStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCreateRegister handles POST /api/registers
func handleCreateRegister(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var input struct {
		Date        string           `json:"Date"`
		GroupTimeID string           `json:"GroupTimeID"`
		Entries     []register.Entry `json:"Entries"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	reg, err := orchestrators.ExecuteCreateRegister(r.Context(), orchestrators.CreateRegisterInput{
		Actor:       sess.Actor(),
		Date:        input.Date,
		GroupTimeID: input.GroupTimeID,
		Entries:     input.Entries,
	}, orchestrators.CreateRegisterDeps{
		Occurrence:    occurrenceDeps(),
		RegisterStore: stores.RegisterStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}
