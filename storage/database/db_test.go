package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_schema(t *testing.T) {
	files, err := fs.Glob(migrationsFS, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var schema strings.Builder
	for _, f := range files {
		b, err := fs.ReadFile(migrationsFS, f)
		require.NoError(t, err)
		schema.Write(b)
	}

	for _, want := range []string{
		"CREATE TABLE prayer_slots",
		"CREATE TABLE fasting_event_templates",
		"CONSTRAINT fasting_event_templates_template_name_key UNIQUE (template_name)",
		"INSERT INTO fasting_event_templates",
		"CREATE TABLE fasting_program_details",
		"CREATE TABLE fasting_registrations",
	} {
		assert.Contains(t, schema.String(), want)
	}
}
