package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
	emailsvc "github.com/Zimbwa03/Global-Intercessors-sub006/services/email"
	testutil "github.com/Zimbwa03/Global-Intercessors-sub006/tests"
)

func Test_campaignApi(t *testing.T) {
	testutil.FreezeTime(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	app, env := setup(t)

	adminToken := getToken(t, testutil.Admin(), env.Conf)
	aliceToken := getToken(t, testutil.Caller("alice"), env.Conf)
	bobToken := getToken(t, testutil.Caller("bob"), env.Conf)
	carolToken := getToken(t, testutil.Caller("carol"), env.Conf)

	runHTTPTests(t, app, []httpTest{
		{
			name: "No active program", path: "/v1/campaigns/active", token: aliceToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: campaign.ErrNoActiveProgram.Error()}),
		},
		{name: "Templates require admin", path: "/v1/campaigns/templates", token: aliceToken, wantCode: http.StatusForbidden},
		{
			name: "Template validation", method: http.MethodPost, path: "/v1/campaigns/templates", token: adminToken,
			body: []byte(`{"template_name": "  ", "duration_days": 0, "default_title": "Small fast"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "Template created", method: http.MethodPost, path: "/v1/campaigns/templates", token: adminToken,
			body:     []byte(`{"template_name": "Small Fast", "duration_days": 2, "default_title": "Small fast", "max_participants": 2}`),
			wantCode: http.StatusCreated,
		},
		{
			name: "Template exists", method: http.MethodPost, path: "/v1/campaigns/templates", token: adminToken,
			body:     []byte(`{"template_name": "Small Fast", "duration_days": 2, "default_title": "Again"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: campaign.ErrTemplateExists.Error()}),
		},
		{
			name: "Create requires admin", method: http.MethodPost, path: "/v1/campaigns", token: aliceToken,
			body: []byte(`{"template_name": "Small Fast"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "Unknown template", method: http.MethodPost, path: "/v1/campaigns", token: adminToken,
			body:     []byte(`{"template_name": "Nope"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: campaign.ErrTemplateNotFound.Error()}),
		},
		{
			name: "Bad start time", method: http.MethodPost, path: "/v1/campaigns", token: adminToken,
			body: []byte(`{"template_name": "Small Fast", "start_date": "2025-03-20", "start_time": "25:99"}`), wantCode: http.StatusBadRequest,
		},
	})

	templates, err := env.Campaigns.Templates(context.Background())
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	runHTTPTests(t, app, []httpTest{
		{name: "Templates", path: "/v1/campaigns/templates", token: adminToken, wantData: marchallObj(t, templates)},
	})

	rec := do(t, app, http.MethodPost, "/v1/campaigns", adminToken,
		[]byte(`{"template_name": "Small Fast", "start_date": "2025-03-20", "start_time": "19:30"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d; want 201: %s", rec.Code, rec.Body.String())
	}
	var p campaign.Program
	unmarshal(t, rec, &p)
	if want := time.Date(2025, 3, 20, 19, 30, 0, 0, time.UTC); !p.StartDate.Equal(want) {
		t.Errorf("start = %v; want %v", p.StartDate, want)
	}
	if want := time.Date(2025, 3, 22, 19, 30, 0, 0, time.UTC); !p.EndDate.Equal(want) {
		t.Errorf("end = %v; want %v", p.EndDate, want)
	}
	if p.ProgramStatus != campaign.StatusRegistrationOpen || !p.IsActive || p.CreatedBy != "admin@intercessors.test" {
		t.Errorf("program = %+v", p)
	}

	base := "/v1/campaigns/" + p.ID
	runHTTPTests(t, app, []httpTest{
		{name: "Unknown program", path: "/v1/campaigns/nope", token: aliceToken, wantCode: http.StatusNotFound},
		{name: "Register", method: http.MethodPost, path: base + "/register", token: aliceToken, wantCode: http.StatusCreated},
		{
			name: "Register twice", method: http.MethodPost, path: base + "/register", token: aliceToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: campaign.ErrAlreadyRegistered.Error()}),
		},
		{name: "Second participant", method: http.MethodPost, path: base + "/register", token: bobToken, wantCode: http.StatusCreated},
		{
			name: "Full", method: http.MethodPost, path: base + "/register", token: carolToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: campaign.ErrProgramFull.Error()}),
		},
		{name: "Registrations require admin", path: base + "/registrations", token: aliceToken, wantCode: http.StatusForbidden},
		{name: "Cancel requires admin", method: http.MethodPost, path: base + "/cancel", token: aliceToken, wantCode: http.StatusForbidden},
		{name: "Cancel", method: http.MethodPost, path: base + "/cancel", token: adminToken},
		{name: "Cancel twice", method: http.MethodPost, path: base + "/cancel", token: adminToken},
		{
			name: "Register after cancel", method: http.MethodPost, path: base + "/register", token: carolToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: campaign.ErrCancelled.Error()}),
		},
	})

	t.Run("Active", func(t *testing.T) {
		rec := do(t, app, http.MethodGet, "/v1/campaigns/active", aliceToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200", rec.Code)
		}
		var ap campaign.ActiveProgram
		unmarshal(t, rec, &ap)
		if ap.ID != p.ID || ap.ProgramStatus != campaign.StatusCancelled || ap.CurrentParticipants != 2 {
			t.Errorf("active = %+v", ap)
		}
		if ap.SpotsLeft == nil || *ap.SpotsLeft != 0 {
			t.Errorf("spots left = %v; want 0", ap.SpotsLeft)
		}
		if ap.DaysUntilStart != 20 {
			t.Errorf("days until start = %d; want 20", ap.DaysUntilStart)
		}
	})

	t.Run("Registrations", func(t *testing.T) {
		rec := do(t, app, http.MethodGet, base+"/registrations", adminToken)
		var regs []campaign.Registration
		unmarshal(t, rec, &regs)
		if len(regs) != 2 || regs[0].UserID != "alice" || regs[1].UserID != "bob" {
			t.Errorf("registrations = %+v", regs)
		}
	})

	t.Run("Side effects", func(t *testing.T) {
		if n := len(emailsvc.SentTo("alice@intercessors.test")); n != 1 {
			t.Errorf("alice got %d emails; want 1", n)
		}
		items, err := env.Updates.List(context.Background(), time.Time{}, update.MaxLimit)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("got %d updates; want 2", len(items))
		}
		if items[0].Title != "Fasting program cancelled: Small fast" || items[1].Title != "New fasting program: Small fast" {
			t.Errorf("updates = %q, %q", items[0].Title, items[1].Title)
		}
	})
}
