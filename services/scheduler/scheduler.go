package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
)

const DefaultJobTimeout = 4 * time.Minute

// Job names
const (
	JobRefreshStatus   = "refresh-status"
	JobScheduleMonthly = "schedule-monthly"
	JobExpireSkips     = "expire-skips"
	JobSweepMissed     = "sweep-missed"
)

type (
	Campaigns interface {
		RefreshStatus(ctx context.Context) (campaign.Program, error)
		ScheduleNextMonthly(ctx context.Context, offset int, adminEmail string) (campaign.Program, error)
	}

	Assignments interface {
		ExpireSkipWindows(ctx context.Context) (int, error)
		SweepMissed(ctx context.Context, date core.Date) (int, error)
	}

	Job func(ctx context.Context) error

	// Scheduler runs the periodic jobs in the campaign timezone. A run is skipped while the previous one is still going.
	Scheduler struct {
		cron        *cron.Cron
		conf        *core.Config
		logger      core.Logger
		campaigns   Campaigns
		assignments Assignments
		timeout     time.Duration
		jobs        map[string]Job
	}
)

func New(conf *core.Config, logger core.Logger, campaigns Campaigns, assignments Assignments) (*Scheduler, error) {
	s := &Scheduler{
		conf:        conf,
		logger:      logger,
		campaigns:   campaigns,
		assignments: assignments,
		timeout:     DefaultJobTimeout,
	}
	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(conf.Campaign.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s.jobs = map[string]Job{
		JobRefreshStatus:   s.refreshStatus,
		JobScheduleMonthly: s.scheduleMonthly,
		JobExpireSkips:     s.expireSkips,
		JobSweepMissed:     s.sweepMissed,
	}

	specs := map[string]string{
		JobRefreshStatus:   conf.Scheduler.RefreshSpec,
		JobScheduleMonthly: conf.Scheduler.MonthlySpec,
		JobExpireSkips:     conf.Scheduler.ExpireSkipsSpec,
		JobSweepMissed:     conf.Scheduler.SweepMissedSpec,
	}
	for name, spec := range specs {
		if spec == "" {
			continue
		}
		name := name
		if _, err := s.cron.AddFunc(spec, func() { _ = s.Run(context.Background(), name) }); err != nil {
			return nil, errors.Wrapf(err, "scheduling %s (%q)", name, spec)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs, at most until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries returns how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Run executes the named job once with the job timeout, logging its failure.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%q: no such job", name)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := job(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("scheduler.%s: %v", name, err), err)
		return err
	}
	return nil
}

func (s *Scheduler) refreshStatus(ctx context.Context) error {
	p, err := s.campaigns.RefreshStatus(ctx)
	if errors.Cause(err) == campaign.ErrNoActiveProgram {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Debug(fmt.Sprintf("scheduler.%s: program %s is %s", JobRefreshStatus, p.ID, p.ProgramStatus))
	return nil
}

func (s *Scheduler) scheduleMonthly(ctx context.Context) error {
	p, err := s.campaigns.ScheduleNextMonthly(ctx, 0, s.conf.Campaign.AdminEmail)
	if err != nil {
		return err
	}
	s.logger.Info(fmt.Sprintf("scheduler.%s: program %s starts %s", JobScheduleMonthly, p.ID, p.StartDate.Format(time.RFC3339)))
	return nil
}

func (s *Scheduler) expireSkips(ctx context.Context) error {
	n, err := s.assignments.ExpireSkipWindows(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug(fmt.Sprintf("scheduler.%s: %d skip window(s) ended", JobExpireSkips, n))
	return nil
}

// sweepMissed closes yesterday, whose occurrences have all ended.
func (s *Scheduler) sweepMissed(ctx context.Context) error {
	day := core.Today(s.conf.Slots.Location()).AddDays(-1)
	n, err := s.assignments.SweepMissed(ctx, day)
	if err != nil {
		return err
	}
	s.logger.Debug(fmt.Sprintf("scheduler.%s: %d missed occurrence(s) on %s", JobSweepMissed, n, day))
	return nil
}

// cronLogger hands cron's own logs to core.Logger.
type cronLogger struct {
	logger core.Logger
}

var _ cron.Logger = (*cronLogger)(nil)

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, cronFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(fmt.Sprintf("cron: %s: %v", msg, err), append([]interface{}{err}, cronFields(keysAndValues)...)...)
}

// cronFields folds cron's key/value pairs into the single map core.Logger accepts.
func cronFields(keysAndValues []interface{}) []interface{} {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		var v interface{}
		if i+1 < len(keysAndValues) {
			v = keysAndValues[i+1]
		}
		fields[fmt.Sprint(keysAndValues[i])] = v
	}
	return []interface{}{fields}
}
