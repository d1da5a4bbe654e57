package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	echoapi "github.com/Zimbwa03/Global-Intercessors-sub006/apps/api/echo"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db          *sql.DB
	conf        *core.Config
	out         io.Writer
	slots       *slot.Service
	campaigns   *campaign.Service
	assignments *assignment.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS...] - run a goose command (up, down, status, ...)")
	fmt.Println("  seedslots - create the missing slots of the 48 half-hour catalog")
	fmt.Println("  refreshstatus - persist the computed status of the active fasting program")
	fmt.Println("  schedulemonthly [-offset N] [-admin EMAIL] - schedule the monthly fast N months ahead")
	fmt.Println("  resetmissed -id ASSIGNMENT - clear an assignment's missed sessions")
	fmt.Println("  token -subject USER [-email EMAIL] [-role ROLE,...] [-ttl DURATION] - issue an API token")
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	scheduleCmd := flag.NewFlagSet("schedulemonthly", flag.ExitOnError)
	scheduleOffset := scheduleCmd.Int("offset", 1, "How many months ahead to schedule; 0 is the current month.")
	scheduleAdmin := scheduleCmd.String("admin", "", "The email recorded as the program's creator. Defaults to the configured admin.")

	resetMissedCmd := flag.NewFlagSet("resetmissed", flag.ExitOnError)
	resetMissedID := resetMissedCmd.String("id", "", "The assignment id.")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenSubject := tokenCmd.String("subject", "", "The user id the token is issued to.")
	tokenEmail := tokenCmd.String("email", "", "The user's email.")
	tokenRoles := tokenCmd.String("role", "", "Comma separated roles, e.g. admin or service:attendance.")
	tokenTTL := tokenCmd.Duration("ttl", 24*time.Hour, "How long the token is valid; 0 never expires.")

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "seedslots":
		n, err := cli.slots.Seed(ctx)
		if err != nil {
			return err
		}
		cli.printf("%d slot(s) created\n", n)
		return nil

	case "refreshstatus":
		p, err := cli.campaigns.RefreshStatus(ctx)
		if err != nil {
			return err
		}
		cli.printf("program %s is %s\n", p.ID, p.ProgramStatus)
		return nil

	case "schedulemonthly":
		if err := scheduleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *scheduleOffset < 0 {
			scheduleCmd.Usage()
			return errHelp
		}
		p, err := cli.campaigns.ScheduleNextMonthly(ctx, *scheduleOffset, core.CleanString(*scheduleAdmin, true /* lower */))
		if err != nil {
			return err
		}
		cli.printf("program %s starts %s\n", p.ID, p.StartDate.Format(time.RFC3339))
		return nil

	case "resetmissed":
		if err := resetMissedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetMissedID == "" {
			resetMissedCmd.Usage()
			return errHelp
		}
		a, err := cli.assignments.ResetMissed(ctx, core.CleanString(*resetMissedID))
		if err != nil {
			return err
		}
		cli.printf("assignment %s is %s\n", a.ID, a.Status)
		return nil

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if core.CleanString(*tokenSubject) == "" {
			tokenCmd.Usage()
			return errHelp
		}
		id := core.Identity{
			UserID: core.CleanString(*tokenSubject),
			Email:  core.CleanString(*tokenEmail, true /* lower */),
		}
		if *tokenRoles != "" {
			id.Roles = core.CleanStrings(strings.Split(*tokenRoles, ","), true /* lower */)
		}
		token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(id, cli.conf, *tokenTTL))
		if err != nil {
			return err
		}
		cli.printf("%s\n", token)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}
