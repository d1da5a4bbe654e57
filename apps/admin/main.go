package main

import (
	"log"
	"os"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
	emailsvc "github.com/Zimbwa03/Global-Intercessors-sub006/services/email"
	logsvc "github.com/Zimbwa03/Global-Intercessors-sub006/services/logger"
	"github.com/Zimbwa03/Global-Intercessors-sub006/storage/database"
	sqlxrepos "github.com/Zimbwa03/Global-Intercessors-sub006/storage/database/sqlx"
)

var logger core.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	lgr := logsvc.NewRollbarLogger(stdLogger, conf)
	lgr.Enable(!conf.Debug)
	logger = lgr

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// set up services
	txm := sqlxrepos.NewTxManager(db)
	slotRepo := sqlxrepos.NewSlotRepository(db)
	mailSvc := emailsvc.NewConsoleService(conf, logger)
	feed := update.NewService(sqlxrepos.NewUpdateRepository(db))
	attendanceSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db))

	// start CLI
	cli := commandLine{
		db:          db.DB,
		conf:        conf,
		out:         os.Stdout,
		slots:       slot.NewService(slotRepo, conf),
		campaigns:   campaign.NewService(txm, sqlxrepos.NewCampaignRepository(db), feed, mailSvc, conf),
		assignments: assignment.NewService(txm, sqlxrepos.NewAssignmentRepository(db), slotRepo, attendanceSvc, feed, mailSvc, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed: "+err.Error(), err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
