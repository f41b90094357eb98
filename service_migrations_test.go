package zammad

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrations tests that migrations are properly defined
func TestMigrations(t *testing.T) {
	service, err := NewService(NewOwnerType("User"), nil)
	require.NoError(t, err)

	migrations := NewMigrationService(service).Migrations()
	require.NotEmpty(t, migrations)

	seen := map[string]bool{}
	for _, m := range migrations {
		assert.NotEmpty(t, m.ID, "migration ID should not be empty")
		assert.NotEmpty(t, m.Description, "migration description should not be empty")
		assert.NotEmpty(t, m.SQL, "migration SQL should not be empty")
		assert.False(t, seen[m.ID], "migration ID %q duplicated", m.ID)
		seen[m.ID] = true
	}
}

// TestMigrationsCoverAllTables tests that every table of the schema is created
func TestMigrationsCoverAllTables(t *testing.T) {
	service, err := NewService(NewOwnerType("User"), nil)
	require.NoError(t, err)

	var all strings.Builder
	for _, m := range NewMigrationService(service).Migrations() {
		all.WriteString(m.SQL)
	}
	sql := all.String()

	for _, table := range []string{
		"groups",
		"roles",
		"roles_users",
		"roles_groups",
		"group_access_audit_log",
		"groups_users",
	} {
		assert.Contains(t, sql, table, "schema should create table %s", table)
	}
}

// TestRelationMigrations tests the per-owner-type relation schema
func TestRelationMigrations(t *testing.T) {
	owner := NewOwnerType("Organization").Relation("groups_organizations", "organization_id")

	migrations := RelationMigrations(owner)
	require.Len(t, migrations, 2)

	table := migrations[0]
	assert.Equal(t, "zammad-rel-groups_organizations", table.ID)
	assert.Contains(t, table.SQL, "groups_organizations")
	assert.Contains(t, table.SQL, "organization_id BIGINT NOT NULL")
	// The group foreign key rejects grants on unresolvable groups at commit.
	assert.Contains(t, table.SQL, "REFERENCES groups (id) ON DELETE CASCADE")
	assert.Contains(t, table.SQL, "PRIMARY KEY (organization_id, group_id, access)")

	index := migrations[1]
	assert.Equal(t, "zammad-rel-groups_organizations-group-idx", index.ID)
	assert.Contains(t, index.SQL, "idx_groups_organizations_group_id")
}

// TestMigrationsFollowOwnerTypeDeclaration tests that the declared names flow through
func TestMigrationsFollowOwnerTypeDeclaration(t *testing.T) {
	service, err := NewService(NewOwnerType("Agent").Relation("groups_agents", "agent_id"), nil)
	require.NoError(t, err)

	var relSQL string
	for _, m := range NewMigrationService(service).Migrations() {
		if m.ID == "zammad-rel-groups_agents" {
			relSQL = m.SQL
		}
	}

	require.NotEmpty(t, relSQL, "relation migration for the declared table should exist")
	assert.Contains(t, relSQL, "agent_id")
	assert.NotContains(t, relSQL, "user_id BIGINT")
}
