package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/Zimbwa03/Global-Intercessors-sub006/apps/api/echo"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	testutil "github.com/Zimbwa03/Global-Intercessors-sub006/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Env, *bytes.Buffer) {
	env := testutil.NewEnv(t)
	out := new(bytes.Buffer)

	// start CLI
	return &commandLine{
		conf:        env.Conf,
		out:         out,
		slots:       env.Slots,
		campaigns:   env.Campaigns,
		assignments: env.Assignments,
	}, env, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if errors.Cause(err) != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
			if tt.wantOut != "" && out.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, out := setup(t)

	prev := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = prev })
	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_slot_notes", "sql"}},
	})
}

func Test_commandLine_seedSlots(t *testing.T) {
	cli, env, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "already seeded", args: []string{"seedslots"}, wantOut: "0 slot(s) created\n"},
	})

	env.DB.Reset()
	runCLITests(t, cli, out, []cliTest{
		{name: "empty catalog", args: []string{"seedslots"}, wantOut: "48 slot(s) created\n"},
	})
}

func Test_commandLine_campaigns(t *testing.T) {
	testutil.FreezeTime(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	cli, env, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "refresh without program", args: []string{"refreshstatus"}, wantErr: campaign.ErrNoActiveProgram},
		{name: "negative offset", args: []string{"schedulemonthly", "-offset", "-1"}, wantErr: errHelp},
		{name: "schedule", args: []string{"schedulemonthly", "-offset", "0", "-admin", " Ops@Intercessors.test "}},
	})

	p, err := env.Campaigns.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 28, 18, 0, 0, 0, time.UTC), p.StartDate.UTC())
	assert.Equal(t, "ops@intercessors.test", p.CreatedBy)

	runCLITests(t, cli, out, []cliTest{
		{name: "schedule again", args: []string{"schedulemonthly", "-offset", "0"}, wantOut: "program " + p.ID + " starts 2025-03-28T18:00:00Z\n"},
		{name: "refresh", args: []string{"refreshstatus"}, wantOut: "program " + p.ID + " is registration_open\n"},
	})
}

func Test_commandLine_resetMissed(t *testing.T) {
	cli, env, out := setup(t)

	a := env.Claim(t, testutil.Caller("alice"), "06:00–06:30")
	env.Miss(t, a.ID, core.NewDate(2025, 3, 1))
	env.Miss(t, a.ID, core.NewDate(2025, 3, 2))

	runCLITests(t, cli, out, []cliTest{
		{name: "no id", args: []string{"resetmissed"}, wantErr: errHelp},
		{name: "unknown", args: []string{"resetmissed", "-id", "nope"}, wantErr: assignment.ErrNotFound},
		{name: "reset", args: []string{"resetmissed", "-id", a.ID}, wantOut: "assignment " + a.ID + " is active\n"},
	})

	got, err := env.Assignments.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Zero(t, got.MissedCount)
}

func Test_commandLine_token(t *testing.T) {
	cli, env, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no subject", args: []string{"token", "-email", "ops@intercessors.test"}, wantErr: errHelp},
		{name: "blank subject", args: []string{"token", "-subject", "  "}, wantErr: errHelp},
	})

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "token", "-subject", "zoom-worker", "-role", "service:attendance, admin", "-ttl", "1h"}))

	claims := new(echoapi.Claims)
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(env.Conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "zoom-worker", claims.Subject)
	assert.Equal(t, []string{core.RoleAttendanceService, core.RoleAdmin}, claims.Roles)
	assert.NotZero(t, claims.ExpiresAt)
}
