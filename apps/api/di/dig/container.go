package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/Zimbwa03/Global-Intercessors-sub006/apps/api/echo"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
	emailsvc "github.com/Zimbwa03/Global-Intercessors-sub006/services/email"
	logsvc "github.com/Zimbwa03/Global-Intercessors-sub006/services/logger"
	"github.com/Zimbwa03/Global-Intercessors-sub006/services/scheduler"
	"github.com/Zimbwa03/Global-Intercessors-sub006/storage/database"
	inmemdb "github.com/Zimbwa03/Global-Intercessors-sub006/storage/database/inmem"
	sqlxrepos "github.com/Zimbwa03/Global-Intercessors-sub006/storage/database/sqlx"
)

const engineMemory = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// CloseDB releases the storage backend.
type CloseDB func() error

// Store is every repository of one storage backend.
type Store struct {
	dig.Out

	Close           CloseDB
	Txm             core.TxManager
	SlotRepo        slot.Repository
	AssignmentRepo  assignment.Repository
	AttendanceRepo  attendance.Repository
	SkipRequestRepo skiprequest.Repository
	UpdateRepo      update.Repository
	CampaignRepo    campaign.Repository
}

type serverParams struct {
	dig.In

	Conf           *core.Config
	Logger         core.Logger
	Validate       *validator.Validate
	Translator     ut.Translator
	SlotSvc        *slot.Service
	AssignmentSvc  *assignment.Service
	AttendanceSvc  *attendance.Service
	SkipRequestSvc *skiprequest.Service
	UpdateSvc      *update.Service
	CampaignSvc    *campaign.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newMemoryStore() Store {
	db := inmemdb.Open()
	return Store{
		Close:           func() error { return nil },
		Txm:             inmemdb.NewTxManager(db),
		SlotRepo:        inmemdb.NewSlotRepository(db),
		AssignmentRepo:  inmemdb.NewAssignmentRepository(db),
		AttendanceRepo:  inmemdb.NewAttendanceRepository(db),
		SkipRequestRepo: inmemdb.NewSkipRequestRepository(db),
		UpdateRepo:      inmemdb.NewUpdateRepository(db),
		CampaignRepo:    inmemdb.NewCampaignRepository(db),
	}
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) Store {
	if conf.Database.Engine == engineMemory {
		loggerParam.Logger.Info("using the in-memory store")
		return newMemoryStore()
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Migrate(db.DB); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	return Store{
		Close:           db.Close,
		Txm:             sqlxrepos.NewTxManager(db),
		SlotRepo:        sqlxrepos.NewSlotRepository(db),
		AssignmentRepo:  sqlxrepos.NewAssignmentRepository(db),
		AttendanceRepo:  sqlxrepos.NewAttendanceRepository(db),
		SkipRequestRepo: sqlxrepos.NewSkipRequestRepository(db),
		UpdateRepo:      sqlxrepos.NewUpdateRepository(db),
		CampaignRepo:    sqlxrepos.NewCampaignRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	slot.InitValidators(validate, translator)
	return validate, translator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:           p.Conf,
		Logger:         p.Logger,
		Validate:       p.Validate,
		Translator:     p.Translator,
		SlotSvc:        p.SlotSvc,
		AssignmentSvc:  p.AssignmentSvc,
		AttendanceSvc:  p.AttendanceSvc,
		SkipRequestSvc: p.SkipRequestSvc,
		UpdateSvc:      p.UpdateSvc,
		CampaignSvc:    p.CampaignSvc,
	})
}

func newScheduler(conf *core.Config, logger core.Logger, campaigns *campaign.Service, assignments *assignment.Service) (*scheduler.Scheduler, error) {
	return scheduler.New(conf, logger, campaigns, assignments)
}

// Seed fills the slot catalog and the default templates. Postgres gets them from the migrations,
// running it there only fills rows that were deleted.
func Seed(ctx context.Context, slots *slot.Service, campaigns *campaign.Service) error {
	if _, err := slots.Seed(ctx); err != nil {
		return errors.Wrap(err, "seeding slots")
	}
	if _, err := campaigns.SeedTemplates(ctx); err != nil {
		return errors.Wrap(err, "seeding templates")
	}
	return nil
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))

	must(c.Provide(slot.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(update.NewService))
	must(c.Provide(func(feed *update.Service) assignment.Feed { return feed }))
	must(c.Provide(func(feed *update.Service) campaign.Feed { return feed }))
	must(c.Provide(func(feed *update.Service) skiprequest.Feed { return feed }))
	must(c.Provide(func(svc *attendance.Service) assignment.AttendanceLog { return svc }))
	must(c.Provide(assignment.NewService))
	must(c.Provide(skiprequest.NewService))
	must(c.Provide(campaign.NewService))

	must(c.Provide(newServer))
	must(c.Provide(newScheduler))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
