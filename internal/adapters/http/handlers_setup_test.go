package web

import (
	"net/http"
	"strings"
	"testing"

	"courtside/internal/application/listutil"
	"courtside/internal/domain/coach"
	"courtside/internal/domain/group"
	"courtside/internal/domain/rate"
)

func TestSetup_AdminOnly(t *testing.T) {
	newTestStores(t)
	tests := []struct {
		method, url, body string
	}{
		{"GET", "/api/coaches", ""},
		{"POST", "/api/periods", `{"Name":"Term 2","StartDate":"2024-04-29","EndDate":"2024-07-05"}`},
		{"POST", "/api/holidays", `{"Name":"Anzac Day","StartDate":"2024-04-25","EndDate":"2024-04-25"}`},
		{"PUT", "/api/coach-rates", `{"CoachID":"c-1","ItemType":"coaching","HourlyRate":"80"}`},
		{"GET", "/api/accounts", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			rec := serve(authRequest(tt.method, tt.url, tt.body, coachSession))
			wantStatus(t, rec, http.StatusForbidden)
		})
	}
}

func TestPeriods_CoachesMayList(t *testing.T) {
	newTestStores(t)
	rec := serve(authRequest("GET", "/api/periods", "", coachSession))
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Term 1") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = serve(authRequest("POST", "/api/periods", `{"Name":"Backwards","StartDate":"2024-07-05","EndDate":"2024-04-29"}`, adminSession))
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestCoachesAndRates(t *testing.T) {
	newTestStores(t)

	rec := serve(authRequest("POST", "/api/coaches", `{"Name":"Ana","Email":"ana@club.test"}`, adminSession))
	wantStatus(t, rec, http.StatusCreated)
	ana := decodeBody[coach.Coach](t, rec)

	rec = serve(authRequest("PUT", "/api/coach-rates", `{"CoachID":"`+ana.ID+`","ItemType":"private_lesson","HourlyRate":"72.50"}`, adminSession))
	wantStatus(t, rec, http.StatusOK)

	rec = serve(authRequest("PUT", "/api/coach-rates", `{"CoachID":"`+ana.ID+`","ItemType":"deduction","HourlyRate":"10"}`, adminSession))
	wantStatus(t, rec, http.StatusBadRequest)

	rec = serve(authRequest("PUT", "/api/coach-rates", `{"CoachID":"c-9","ItemType":"coaching","HourlyRate":"10"}`, adminSession))
	wantStatus(t, rec, http.StatusNotFound)

	rec = serve(authRequest("GET", "/api/coach-rates?coach_id="+ana.ID, "", adminSession))
	wantStatus(t, rec, http.StatusOK)
	rates := decodeBody[[]rate.CoachRate](t, rec)
	if len(rates) != 1 || rates[0].HourlyRate.String() != "72.5" {
		t.Errorf("rates = %+v", rates)
	}

	rec = serve(authRequest("DELETE", "/api/coach-rates?coach_id="+ana.ID+"&item_type=private_lesson", "", adminSession))
	wantStatus(t, rec, http.StatusNoContent)
}

func TestGroupTimes(t *testing.T) {
	newTestStores(t)

	rec := serve(authRequest("POST", "/api/groups", `{"PeriodID":"p-9","Name":"Green Ball","StudentCount":5}`, adminSession))
	wantStatus(t, rec, http.StatusNotFound)

	rec = serve(authRequest("POST", "/api/groups", `{"PeriodID":"p-1","Name":"Green Ball","StudentCount":5}`, adminSession))
	wantStatus(t, rec, http.StatusCreated)
	g := decodeBody[group.Group](t, rec)

	rec = serve(authRequest("POST", "/api/group-times",
		`{"GroupID":"`+g.ID+`","CoachID":"c-2","Day":" Thursday ","StartTime":"16:00","EndTime":"17:30"}`, adminSession))
	wantStatus(t, rec, http.StatusCreated)
	if gt := decodeBody[group.GroupTime](t, rec); gt.Day != group.Thursday {
		t.Errorf("day = %q, want thursday", gt.Day)
	}

	rec = serve(authRequest("POST", "/api/group-times",
		`{"GroupID":"`+g.ID+`","CoachID":"c-2","Day":"thursday","StartTime":"17:00","EndTime":"16:00"}`, adminSession))
	wantStatus(t, rec, http.StatusBadRequest)

	rec = serve(authRequest("GET", "/api/group-times?period_id=p-1", "", adminSession))
	wantStatus(t, rec, http.StatusOK)
	if slots := decodeBody[[]group.Slot](t, rec); len(slots) != 4 {
		t.Errorf("got %d slots, want 4", len(slots))
	}

	rec = serve(authRequest("GET", "/api/register-calendar?"+marchRange, "", tomSession))
	wantStatus(t, rec, http.StatusOK)
	// Thursdays 7th and 14th join Tuesday the 5th.
	if !strings.Contains(rec.Body.String(), "2024-03-14") {
		t.Errorf("new slot missing from calendar: %s", rec.Body.String())
	}
}

func TestAccounts(t *testing.T) {
	newTestStores(t)

	rec := serve(authRequest("POST", "/api/accounts",
		`{"Email":"ana@club.test","Password":"a long enough secret","Role":"coach","CoachID":"c-1"}`, adminSession))
	wantStatus(t, rec, http.StatusCreated)
	if strings.Contains(rec.Body.String(), "Password") {
		t.Errorf("credentials leaked: %s", rec.Body.String())
	}

	rec = serve(authRequest("POST", "/api/accounts",
		`{"Email":"boss@club.test","Password":"a long enough secret","Role":"super_admin"}`, adminSession))
	wantStatus(t, rec, http.StatusForbidden)

	rec = serve(authRequest("POST", "/api/accounts",
		`{"Email":"who@club.test","Password":"a long enough secret","Role":"umpire"}`, adminSession))
	wantStatus(t, rec, http.StatusBadRequest)

	rec = serve(authRequest("POST", "/api/accounts",
		`{"Email":"tom@club.test","Password":"a long enough secret","Role":"coach","CoachID":"c-2"}`, adminSession))
	wantStatus(t, rec, http.StatusCreated)

	rec = serve(authRequest("GET", "/api/accounts?role=coach&per_page=10", "", adminSession))
	wantStatus(t, rec, http.StatusOK)
	page := decodeBody[listutil.Page[accountView]](t, rec)
	if len(page.Items) != 2 || page.Info.Total != 2 || page.Info.TotalPages != 1 {
		t.Errorf("accounts = %+v", page)
	}

	rec = serve(authRequest("GET", "/api/accounts?role=umpire", "", adminSession))
	wantStatus(t, rec, http.StatusBadRequest)
}
