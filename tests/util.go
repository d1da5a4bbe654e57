package testutil

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
	"github.com/Zimbwa03/Global-Intercessors-sub006/services/email"
	"github.com/Zimbwa03/Global-Intercessors-sub006/services/logger"
	"github.com/Zimbwa03/Global-Intercessors-sub006/storage/database/inmem"
)

var parseTemplatesOnce sync.Once

// Env is a fully wired in-memory application.
type Env struct {
	Conf   *core.Config
	Logger core.Logger
	DB     *inmemdb.DB
	Txm    core.TxManager
	Mail   core.EmailService

	SlotRepo        slot.Repository
	AssignmentRepo  assignment.Repository
	AttendanceRepo  attendance.Repository
	SkipRequestRepo skiprequest.Repository
	UpdateRepo      update.Repository
	CampaignRepo    campaign.Repository

	Slots        *slot.Service
	Assignments  *assignment.Service
	Attendance   *attendance.Service
	SkipRequests *skiprequest.Service
	Updates      *update.Service
	Campaigns    *campaign.Service
}

func NewLogger(conf *core.Config) core.Logger {
	l := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	l.Enable(false)
	return l
}

func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	slot.InitValidators(validate, translator)
	return validate, translator
}

// NewEnv wires every service over a fresh in-memory store seeded with the slot catalog and default templates.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	conf := core.NewTestConfig()
	lgr := NewLogger(conf)
	parseTemplatesOnce.Do(func() { core.ParseEmailTemplates(lgr) })
	emailsvc.ResetSentMessages()

	db := inmemdb.Open()
	env := &Env{
		Conf:            conf,
		Logger:          lgr,
		DB:              db,
		Txm:             inmemdb.NewTxManager(db),
		Mail:            emailsvc.NewConsoleServiceMock(conf),
		SlotRepo:        inmemdb.NewSlotRepository(db),
		AssignmentRepo:  inmemdb.NewAssignmentRepository(db),
		AttendanceRepo:  inmemdb.NewAttendanceRepository(db),
		SkipRequestRepo: inmemdb.NewSkipRequestRepository(db),
		UpdateRepo:      inmemdb.NewUpdateRepository(db),
		CampaignRepo:    inmemdb.NewCampaignRepository(db),
	}
	env.Slots = slot.NewService(env.SlotRepo, conf)
	env.Attendance = attendance.NewService(env.AttendanceRepo)
	env.Updates = update.NewService(env.UpdateRepo)
	env.Assignments = assignment.NewService(env.Txm, env.AssignmentRepo, env.SlotRepo, env.Attendance, env.Updates, env.Mail, conf)
	env.SkipRequests = skiprequest.NewService(env.Txm, env.SkipRequestRepo, env.AssignmentRepo, env.Updates, env.Mail, conf)
	env.Campaigns = campaign.NewService(env.Txm, env.CampaignRepo, env.Updates, env.Mail, conf)

	ctx := context.Background()
	if _, err := env.Slots.Seed(ctx); err != nil {
		t.Fatalf("NewEnv(): seeding slots: %v", err)
	}
	if _, err := env.Campaigns.SeedTemplates(ctx); err != nil {
		t.Fatalf("NewEnv(): seeding templates: %v", err)
	}
	return env
}

// Caller returns an identity with a derived email.
func Caller(userID string, roles ...string) core.Identity {
	return core.Identity{UserID: userID, Email: userID + "@intercessors.test", Roles: roles}
}

func Admin() core.Identity {
	return Caller("admin", core.RoleAdmin)
}

func (env *Env) Claim(t *testing.T, caller core.Identity, slotTime string) assignment.Assignment {
	t.Helper()
	a, err := env.Assignments.Claim(context.Background(), caller, slotTime)
	if err != nil {
		t.Fatalf("Claim(%s, %s) failed: %v", caller.UserID, slotTime, err)
	}
	return a
}

func (env *Env) Miss(t *testing.T, id string, date core.Date) assignment.Assignment {
	t.Helper()
	a, err := env.Assignments.RecordOutcome(context.Background(), id, assignment.Outcome{Date: date, Status: attendance.StatusMissed})
	if err != nil {
		t.Fatalf("Miss(%s, %s) failed: %v", id, date, err)
	}
	return a
}

// Clock is a settable replacement for core.NowFunc.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// FreezeTime makes core.NowFunc return now until the test ends.
func FreezeTime(t *testing.T, now time.Time) *Clock {
	c := &Clock{now: now}
	prev := core.NowFunc
	core.NowFunc = c.Now
	t.Cleanup(func() { core.NowFunc = prev })
	return c
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
