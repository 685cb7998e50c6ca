package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestSchemaEnforcesWorkflowInvariants(t *testing.T) {
	body, err := fs.ReadFile(files, "sql/000001_init.up.sql")
	require.NoError(t, err)
	schema := string(body)

	for _, constraint := range []string{
		"registrations_event_user_key UNIQUE (event_id, user_id)",
		"applications_job_user_key UNIQUE (job_id, user_id)",
		"PRIMARY KEY (job_id, user_id)",
		"likes_user_target_key UNIQUE (user_id, kind, target_id)",
		"events_capacity_bound CHECK (capacity IS NULL OR current_attendees <= capacity)",
	} {
		assert.Contains(t, schema, constraint)
	}
}

func TestDownRejectsNonPositiveSteps(t *testing.T) {
	assert.Error(t, Down("postgres://unused", 0, zerolog.Nop()))
}
