package zammad

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

// MigrationService provides schema management as an extension to Service.
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension.
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations for the module: the fixed
// tables (groups, roles, role relations, audit log) plus the relation
// table declared by the service's owner type.
// Use db.Migrate(ctx, ms.Migrations()) to run them.
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return append(baseMigrations(), RelationMigrations(ms.owner)...)
}

// Run applies the migrations and returns the ids of those newly applied.
// The service must be bound to a dbkit.DBKit handle, not a transaction.
func (ms *MigrationService) Run(ctx context.Context) ([]string, error) {
	db, ok := ms.db.(*dbkit.DBKit)
	if !ok {
		return nil, fmt.Errorf("migrations require a dbkit.DBKit instance")
	}

	result, err := db.Migrate(ctx, ms.Migrations())
	if err != nil {
		return nil, storeErr(err, "running migrations")
	}

	applied := make([]string, 0, len(result.Applied))
	for _, migration := range result.Applied {
		applied = append(applied, migration.ID)
	}
	return applied, nil
}

// RelationMigrations builds the migrations for an owner type's declared
// relation table: the table itself and an index serving the inverse
// (owners-for-group) query. The group foreign key is what rejects grants
// staged against unresolvable groups at commit time.
func RelationMigrations(owner *OwnerType) []dbkit.Migration {
	table := owner.RelationTable()
	fk := owner.ForeignKey()

	return []dbkit.Migration{
		{
			ID:          "zammad-rel-" + table,
			Description: fmt.Sprintf("Create %s relation table", table),
			SQL: fmt.Sprintf(`
                CREATE TABLE IF NOT EXISTS %s (
                    %s BIGINT NOT NULL,
                    group_id BIGINT NOT NULL REFERENCES groups (id) ON DELETE CASCADE,
                    access TEXT NOT NULL,
                    PRIMARY KEY (%s, group_id, access)
                )`, table, fk, fk),
		},
		{
			ID:          "zammad-rel-" + table + "-group-idx",
			Description: fmt.Sprintf("Index %s by group", table),
			SQL: fmt.Sprintf(`
                CREATE INDEX IF NOT EXISTS idx_%s_group_id ON %s (group_id)`, table, table),
		},
	}
}

func baseMigrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "zammad-001",
			Description: "Create groups table",
			SQL: `
                CREATE TABLE IF NOT EXISTS groups (
                    id BIGSERIAL PRIMARY KEY,
                    name TEXT NOT NULL UNIQUE,
                    active BOOLEAN NOT NULL DEFAULT TRUE,
                    note TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "zammad-002",
			Description: "Create roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS roles (
                    id BIGSERIAL PRIMARY KEY,
                    name TEXT NOT NULL UNIQUE,
                    active BOOLEAN NOT NULL DEFAULT TRUE,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "zammad-003",
			Description: "Create roles_users relation table",
			SQL: `
                CREATE TABLE IF NOT EXISTS roles_users (
                    user_id BIGINT NOT NULL,
                    role_id BIGINT NOT NULL REFERENCES roles (id) ON DELETE CASCADE,
                    PRIMARY KEY (user_id, role_id)
                )`,
		},
		{
			ID:          "zammad-004",
			Description: "Create roles_groups relation table",
			SQL: `
                CREATE TABLE IF NOT EXISTS roles_groups (
                    role_id BIGINT NOT NULL REFERENCES roles (id) ON DELETE CASCADE,
                    group_id BIGINT NOT NULL REFERENCES groups (id) ON DELETE CASCADE,
                    access TEXT NOT NULL,
                    PRIMARY KEY (role_id, group_id, access)
                )`,
		},
		{
			ID:          "zammad-005",
			Description: "Create group_access_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS group_access_audit_log (
                    id BIGSERIAL PRIMARY KEY,
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    owner_type TEXT NOT NULL,
                    owner_id BIGINT NOT NULL,
                    previous JSONB,
                    applied JSONB,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT
                )`,
		},
		{
			ID:          "zammad-006",
			Description: "Index roles_groups by group",
			SQL: `
                CREATE INDEX IF NOT EXISTS idx_roles_groups_group_id ON roles_groups (group_id)`,
		},
		{
			ID:          "zammad-007",
			Description: "Index audit log by owner",
			SQL: `
                CREATE INDEX IF NOT EXISTS idx_group_access_audit_log_owner ON group_access_audit_log (owner_type, owner_id)`,
		},
	}
}
