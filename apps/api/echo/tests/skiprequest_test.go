package tests

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
	emailsvc "github.com/Zimbwa03/Global-Intercessors-sub006/services/email"
	testutil "github.com/Zimbwa03/Global-Intercessors-sub006/tests"
)

func Test_skipRequestApi(t *testing.T) {
	clock := testutil.FreezeTime(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	app, env := setup(t)
	ctx := context.Background()

	aliceCaller, bobCaller := testutil.Caller("alice"), testutil.Caller("bob")
	alice := env.Claim(t, aliceCaller, "06:00–06:30")
	bob := env.Claim(t, bobCaller, "07:00–07:30")

	aliceReq, err := env.SkipRequests.Submit(ctx, aliceCaller, alice.ID, skiprequest.NewSkipRequest{SkipDays: 5, Reason: "travel"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	clock.Advance(time.Minute)
	bobReq, err := env.SkipRequests.Submit(ctx, bobCaller, bob.ID, skiprequest.NewSkipRequest{SkipDays: 2, Reason: "exams"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	adminToken := getToken(t, testutil.Admin(), env.Conf)
	aliceToken := getToken(t, aliceCaller, env.Conf)

	tests := []httpTest{
		{name: "Admin required", path: "/v1/skip-requests", token: aliceToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "All, newest first", path: "/v1/skip-requests", token: adminToken, wantData: marchallObj(t, []skiprequest.SkipRequest{bobReq, aliceReq})},
		{name: "user_id", path: "/v1/skip-requests?user_id=alice", token: adminToken, wantData: marchallObj(t, []skiprequest.SkipRequest{aliceReq})},
		{name: "status=approved", path: "/v1/skip-requests?status=approved", token: adminToken, wantData: []byte(`[]`)},
		{name: "Mine", path: "/v1/skip-requests/me", token: aliceToken, wantData: marchallObj(t, []skiprequest.SkipRequest{aliceReq})},
		{name: "Approve requires admin", method: http.MethodPost, path: "/v1/skip-requests/" + aliceReq.ID + "/approve", token: aliceToken, wantCode: http.StatusForbidden},
		{
			name: "Comment too long", method: http.MethodPost, path: "/v1/skip-requests/" + aliceReq.ID + "/approve", token: adminToken,
			body: []byte(`{"admin_comment": "` + strings.Repeat("a", 501) + `"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "Unknown", method: http.MethodPost, path: "/v1/skip-requests/nope/approve", token: adminToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: skiprequest.ErrNotFound.Error()}),
		},
		{
			name: "Approve", method: http.MethodPost, path: "/v1/skip-requests/" + aliceReq.ID + "/approve", token: adminToken,
			body: []byte(`{"admin_comment": "safe travels"}`),
		},
		{
			name: "Approve twice", method: http.MethodPost, path: "/v1/skip-requests/" + aliceReq.ID + "/approve", token: adminToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: skiprequest.ErrAlreadyProcessed.Error()}),
		},
		{name: "Reject", method: http.MethodPost, path: "/v1/skip-requests/" + bobReq.ID + "/reject", token: adminToken},
		{
			name: "Approve after reject", method: http.MethodPost, path: "/v1/skip-requests/" + bobReq.ID + "/approve", token: adminToken,
			wantCode: http.StatusConflict,
		},
	}
	runHTTPTests(t, app, tests)

	a, err := env.Assignments.Get(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Status != assignment.StatusSkipped || a.SkipStartDate.String() != "2025-03-01" || a.SkipEndDate.String() != "2025-03-05" {
		t.Errorf("alice = %s %v..%v; want skipped 2025-03-01..2025-03-05", a.Status, a.SkipStartDate, a.SkipEndDate)
	}
	if b, _ := env.Assignments.Get(ctx, bob.ID); b.Status != assignment.StatusActive || b.SkipStartDate != nil {
		t.Errorf("bob = %s with window %v; want active without a window", b.Status, b.SkipStartDate)
	}

	sr, _ := env.SkipRequests.Get(ctx, aliceReq.ID)
	if sr.Status != skiprequest.StatusApproved || sr.AdminComment.String != "safe travels" || sr.ProcessedBy.String != "admin@intercessors.test" {
		t.Errorf("request = %+v", sr)
	}
	if n := len(emailsvc.SentTo("alice@intercessors.test")); n != 1 {
		t.Errorf("alice got %d emails; want 1", n)
	}
	if n := len(emailsvc.SentTo("bob@intercessors.test")); n != 1 {
		t.Errorf("bob got %d emails; want 1", n)
	}
}
