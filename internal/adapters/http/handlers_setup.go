package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	accountStore "courtside/internal/adapters/storage/account"
	"courtside/internal/application/listutil"
	"courtside/internal/application/orchestrators"
	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
	coachDomain "courtside/internal/domain/coach"
	groupDomain "courtside/internal/domain/group"
	holidayDomain "courtside/internal/domain/holiday"
	periodDomain "courtside/internal/domain/period"
	rateDomain "courtside/internal/domain/rate"
	"courtside/internal/domain/session"
)

// --- Club setup: admin CRUD API handlers ---

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(session.DateFormat, value)
	if err != nil {
		return time.Time{}, apperr.Validation("%s must be YYYY-MM-DD", field)
	}
	return d, nil
}

func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		http.Error(w, name+" is required", http.StatusBadRequest)
		return "", false
	}
	return v, true
}

// handleCoaches handles GET/POST for /api/coaches
func handleCoaches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		coaches, err := stores.CoachStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		if coaches == nil {
			coaches = []coachDomain.Coach{}
		}
		writeJSON(w, http.StatusOK, coaches)

	case http.MethodPost:
		var input struct {
			Name  string `json:"Name"`
			Email string `json:"Email"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		c := coachDomain.Coach{
			ID:    generateID(),
			Name:  strings.TrimSpace(input.Name),
			Email: strings.TrimSpace(input.Email),
		}
		if err := c.Validate(); err != nil {
			writeError(w, err)
			return
		}
		if err := stores.CoachStore.Save(ctx, c); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handlePeriods handles GET/POST/DELETE for /api/periods
func handlePeriods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		// Coaches pick a period on the register calendar.
		if _, ok := requireAuth(w, r); !ok {
			return
		}
		periods, err := stores.PeriodStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		if periods == nil {
			periods = []periodDomain.Period{}
		}
		writeJSON(w, http.StatusOK, periods)

	case http.MethodPost:
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			Name      string `json:"Name"`
			StartDate string `json:"StartDate"`
			EndDate   string `json:"EndDate"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		start, err := parseDate("StartDate", input.StartDate)
		if err != nil {
			writeError(w, err)
			return
		}
		end, err := parseDate("EndDate", input.EndDate)
		if err != nil {
			writeError(w, err)
			return
		}
		p := periodDomain.Period{ID: generateID(), Name: strings.TrimSpace(input.Name), StartDate: start, EndDate: end}
		if err := p.Validate(); err != nil {
			writeError(w, err)
			return
		}
		if err := stores.PeriodStore.Save(ctx, p); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)

	case http.MethodDelete:
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		id, ok := requireQuery(w, r, "id")
		if !ok {
			return
		}
		if err := stores.PeriodStore.Delete(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleHolidays handles GET/POST/DELETE for /api/holidays
func handleHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		holidays, err := stores.HolidayStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		if holidays == nil {
			holidays = []holidayDomain.Holiday{}
		}
		writeJSON(w, http.StatusOK, holidays)

	case http.MethodPost:
		var input struct {
			Name      string `json:"Name"`
			StartDate string `json:"StartDate"`
			EndDate   string `json:"EndDate"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		start, err := parseDate("StartDate", input.StartDate)
		if err != nil {
			writeError(w, err)
			return
		}
		end, err := parseDate("EndDate", input.EndDate)
		if err != nil {
			writeError(w, err)
			return
		}
		h := holidayDomain.Holiday{ID: generateID(), Name: strings.TrimSpace(input.Name), StartDate: start, EndDate: end}
		if err := h.Validate(); err != nil {
			writeError(w, err)
			return
		}
		if err := stores.HolidayStore.Save(ctx, h); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, h)

	case http.MethodDelete:
		id, ok := requireQuery(w, r, "id")
		if !ok {
			return
		}
		if err := stores.HolidayStore.Delete(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleGroups handles GET/POST/DELETE for /api/groups
func handleGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		periodID, ok := requireQuery(w, r, "period_id")
		if !ok {
			return
		}
		groups, err := stores.GroupStore.ListGroups(ctx, periodID)
		if err != nil {
			internalError(w, err)
			return
		}
		if groups == nil {
			groups = []groupDomain.Group{}
		}
		writeJSON(w, http.StatusOK, groups)

	case http.MethodPost:
		var input struct {
			PeriodID     string `json:"PeriodID"`
			Name         string `json:"Name"`
			StudentCount int    `json:"StudentCount"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		g := groupDomain.Group{
			ID:           generateID(),
			PeriodID:     input.PeriodID,
			Name:         strings.TrimSpace(input.Name),
			StudentCount: input.StudentCount,
		}
		if err := g.Validate(); err != nil {
			writeError(w, err)
			return
		}
		if _, err := stores.PeriodStore.GetByID(ctx, g.PeriodID); err != nil {
			writeError(w, err)
			return
		}
		if err := stores.GroupStore.SaveGroup(ctx, g); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)

	case http.MethodDelete:
		id, ok := requireQuery(w, r, "id")
		if !ok {
			return
		}
		if err := stores.GroupStore.DeleteGroup(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleGroupTimes handles GET/POST/DELETE for /api/group-times
func handleGroupTimes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		periodID, ok := requireQuery(w, r, "period_id")
		if !ok {
			return
		}
		slots, err := stores.GroupStore.ListSlots(ctx, periodID)
		if err != nil {
			internalError(w, err)
			return
		}
		if slots == nil {
			slots = []groupDomain.Slot{}
		}
		writeJSON(w, http.StatusOK, slots)

	case http.MethodPost:
		var input struct {
			GroupID   string `json:"GroupID"`
			CoachID   string `json:"CoachID"`
			Day       string `json:"Day"`
			StartTime string `json:"StartTime"`
			EndTime   string `json:"EndTime"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		gt := groupDomain.GroupTime{
			ID:        generateID(),
			GroupID:   input.GroupID,
			CoachID:   input.CoachID,
			Day:       groupDomain.NormalizeDay(input.Day),
			StartTime: input.StartTime,
			EndTime:   input.EndTime,
		}
		if err := gt.Validate(); err != nil {
			writeError(w, err)
			return
		}
		if _, err := stores.GroupStore.GetGroup(ctx, gt.GroupID); err != nil {
			writeError(w, err)
			return
		}
		if _, err := stores.CoachStore.GetByID(ctx, gt.CoachID); err != nil {
			writeError(w, err)
			return
		}
		if err := stores.GroupStore.SaveTime(ctx, gt); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, gt)

	case http.MethodDelete:
		id, ok := requireQuery(w, r, "id")
		if !ok {
			return
		}
		if err := stores.GroupStore.DeleteTime(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleCoachRates handles GET/PUT/DELETE for /api/coach-rates
func handleCoachRates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		coachID, ok := requireQuery(w, r, "coach_id")
		if !ok {
			return
		}
		rates, err := stores.RateStore.ListByCoach(ctx, coachID)
		if err != nil {
			internalError(w, err)
			return
		}
		if rates == nil {
			rates = []rateDomain.CoachRate{}
		}
		writeJSON(w, http.StatusOK, rates)

	case http.MethodPut:
		var input struct {
			CoachID    string          `json:"CoachID"`
			ItemType   string          `json:"ItemType"`
			HourlyRate decimal.Decimal `json:"HourlyRate"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		cr := rateDomain.CoachRate{CoachID: input.CoachID, ItemType: input.ItemType, HourlyRate: input.HourlyRate}
		if err := cr.Validate(); err != nil {
			writeError(w, err)
			return
		}
		if _, err := stores.CoachStore.GetByID(ctx, cr.CoachID); err != nil {
			writeError(w, err)
			return
		}
		if err := stores.RateStore.Save(ctx, cr); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cr)

	case http.MethodDelete:
		coachID, ok := requireQuery(w, r, "coach_id")
		if !ok {
			return
		}
		itemType, ok := requireQuery(w, r, "item_type")
		if !ok {
			return
		}
		if err := stores.RateStore.Delete(ctx, coachID, itemType); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// accountView omits credentials and lockout state.
type accountView struct {
	ID        string
	Email     string
	Role      account.Role
	CoachID   string
	CreatedAt time.Time
}

func viewAccount(a account.Account) accountView {
	return accountView{ID: a.ID, Email: a.Email, Role: a.Role, CoachID: a.CoachID, CreatedAt: a.CreatedAt}
}

// handleAccounts handles GET/POST for /api/accounts
// GET takes optional role, page and per_page parameters.
func handleAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		filter := accountStore.ListFilter{Role: account.Role(r.URL.Query().Get("role"))}
		if filter.Role != "" && !filter.Role.Valid() {
			http.Error(w, "unknown role", http.StatusBadRequest)
			return
		}
		total, err := stores.AccountStore.CountByRole(ctx, filter.Role)
		if err != nil {
			internalError(w, err)
			return
		}
		info := listutil.NewPageInfo(listutil.ParsePageParams(r.URL.Query()), total)
		filter.Limit, filter.Offset = info.PerPage, info.Offset()
		accounts, err := stores.AccountStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		views := make([]accountView, 0, len(accounts))
		for _, a := range accounts {
			views = append(views, viewAccount(a))
		}
		writeJSON(w, http.StatusOK, listutil.NewPage(views, info))

	case http.MethodPost:
		var input struct {
			Email    string `json:"Email"`
			Password string `json:"Password"`
			Role     string `json:"Role"`
			CoachID  string `json:"CoachID"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		role, err := account.ParseRole(input.Role)
		if err != nil {
			writeError(w, err)
			return
		}
		acct, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
			Actor:    sess.Actor(),
			Email:    input.Email,
			Password: input.Password,
			Role:     role,
			CoachID:  input.CoachID,
		}, orchestrators.CreateAccountDeps{
			AccountStore: stores.AccountStore,
			CoachStore:   stores.CoachStore,
			GenerateID:   generateID,
			Now:          timeNow,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, viewAccount(acct))

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}
