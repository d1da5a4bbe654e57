package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/services/scheduler"
)

// jobApi exposes the scheduler's jobs to an external cron.
type jobApi struct {
	campaigns   *campaign.Service
	assignments *assignment.Service
	conf        *core.Config
	validate    *validator.Validate
}

type JobResult struct {
	Job      string `json:"job"`
	Affected int    `json:"affected"`
}

func registerJobAPI(
	g *echo.Group,
	campaigns *campaign.Service,
	assignments *assignment.Service,
	conf *core.Config,
	validate *validator.Validate,
) {
	api := jobApi{
		campaigns:   campaigns,
		assignments: assignments,
		conf:        conf,
		validate:    validate,
	}

	jg := g.Group("/jobs", adminMiddleware())
	jg.POST("/"+scheduler.JobRefreshStatus, api.refreshStatus)
	jg.POST("/"+scheduler.JobScheduleMonthly, api.scheduleMonthly)
	jg.POST("/"+scheduler.JobExpireSkips, api.expireSkips)
	jg.POST("/"+scheduler.JobSweepMissed, api.sweepMissed)
}

// Handlers

func (api *jobApi) refreshStatus(ctx echo.Context) error {
	p, err := api.campaigns.RefreshStatus(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "refreshing program status")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *jobApi) scheduleMonthly(ctx echo.Context) error {
	var data campaign.ScheduleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScheduleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.AdminEmail == "" {
		admin, err := getContextIdentity(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context identity")
		}
		data.AdminEmail = admin.Email
	}

	p, err := api.campaigns.ScheduleNextMonthly(ctx.Request().Context(), data.Offset, data.AdminEmail)
	if err != nil {
		return errors.Wrap(err, "scheduling monthly program")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *jobApi) expireSkips(ctx echo.Context) error {
	n, err := api.assignments.ExpireSkipWindows(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "expiring skip windows")
	}
	return ctx.JSON(http.StatusOK, JobResult{Job: scheduler.JobExpireSkips, Affected: n})
}

// sweepMissed closes the day given by the date query param, yesterday by default.
func (api *jobApi) sweepMissed(ctx echo.Context) error {
	day, err := queryDate(ctx, "date")
	if err != nil {
		return err
	}
	if day.IsZero() {
		day = core.Today(api.conf.Slots.Location()).AddDays(-1)
	}

	n, err := api.assignments.SweepMissed(ctx.Request().Context(), day)
	if err != nil {
		return errors.Wrap(err, "sweeping missed occurrences")
	}
	return ctx.JSON(http.StatusOK, JobResult{Job: scheduler.JobSweepMissed, Affected: n})
}
