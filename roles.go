package zammad

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// Default table and column names for the standard role bridge.
const (
	DefaultRoleRelationTable = "roles_users"
	DefaultRoleForeignKey    = "user_id"
)

// RoleBridge resolves group access an owner inherits through roles. An
// OwnerType without a bridge has no role-derived access; every operation
// then works from direct relations alone.
//
// The access lists passed to GroupAccess and GroupOwnerIDs are already
// normalized: non-empty, de-duplicated and containing AccessFull.
type RoleBridge interface {
	// RoleIDs returns the ids of the roles through which the owner can
	// inherit group access.
	RoleIDs(ctx context.Context, ownerID int64) ([]int64, error)

	// GroupAccess reports whether the owner inherits one of the given
	// access levels on the group through any of its roles.
	GroupAccess(ctx context.Context, ownerID, groupID int64, access []string) (bool, error)

	// GroupOwnerIDs returns the ids of all owners that inherit one of the
	// given access levels on the group through a role.
	GroupOwnerIDs(ctx context.Context, groupID int64, access []string) ([]int64, error)
}

// RoleStore is the standard RoleBridge backed by the roles, roles_users
// and roles_groups tables. Only active roles contribute access, and only
// for active groups. The store is read-only: role administration and the
// role-group grants themselves are managed elsewhere.
type RoleStore struct {
	db            dbkit.IDB
	relationTable string
	foreignKey    string
}

// NewRoleBridge creates the standard role bridge with the default
// owner-to-role relation (roles_users / user_id).
func NewRoleBridge(db dbkit.IDB) *RoleStore {
	return &RoleStore{
		db:            db,
		relationTable: DefaultRoleRelationTable,
		foreignKey:    DefaultRoleForeignKey,
	}
}

// Relation overrides the owner-to-role relation table and the column
// holding the owner id, for owner types that keep their role assignments
// in a dedicated table.
func (s *RoleStore) Relation(table, foreignKey string) *RoleStore {
	s.relationTable = table
	s.foreignKey = foreignKey
	return s
}

// RelationTable returns the owner-to-role relation table name.
func (s *RoleStore) RelationTable() string {
	return s.relationTable
}

// ForeignKey returns the column holding the owner id in the relation table.
func (s *RoleStore) ForeignKey() string {
	return s.foreignKey
}

// RoleIDs implements RoleBridge. Inactive roles are omitted.
func (s *RoleStore) RoleIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := s.db.NewSelect().
		ColumnExpr("ru.role_id").
		TableExpr("? AS ru", bun.Ident(s.relationTable)).
		Join("JOIN roles AS r ON r.id = ru.role_id").
		Where("ru.? = ?", bun.Ident(s.foreignKey), ownerID).
		Where("r.active = ?", true).
		OrderExpr("ru.role_id").
		Scan(ctx, &ids)
	if err := dbkit.WithErr1(err, "RoleIDs").Err(); err != nil {
		return nil, storeErr(err, "listing role ids").WithOwner(ownerID)
	}

	return ids, nil
}

// GroupAccess implements RoleBridge.
func (s *RoleStore) GroupAccess(ctx context.Context, ownerID, groupID int64, access []string) (bool, error) {
	exists, err := s.db.NewSelect().
		ColumnExpr("1").
		TableExpr("? AS ru", bun.Ident(s.relationTable)).
		Join("JOIN roles AS r ON r.id = ru.role_id").
		Join("JOIN roles_groups AS rg ON rg.role_id = ru.role_id").
		Join("JOIN groups AS g ON g.id = rg.group_id").
		Where("ru.? = ?", bun.Ident(s.foreignKey), ownerID).
		Where("rg.group_id = ?", groupID).
		Where("rg.access IN (?)", bun.In(access)).
		Where("r.active = ?", true).
		Where("g.active = ?", true).
		Exists(ctx)
	if err := dbkit.WithErr1(err, "RoleGroupAccess").Err(); err != nil {
		return false, storeErr(err, "checking role access").WithOwner(ownerID).WithGroup(groupID).WithAccess(access)
	}

	return exists, nil
}

// GroupOwnerIDs implements RoleBridge.
func (s *RoleStore) GroupOwnerIDs(ctx context.Context, groupID int64, access []string) ([]int64, error) {
	var ids []int64
	err := s.db.NewSelect().
		ColumnExpr("DISTINCT ru.?", bun.Ident(s.foreignKey)).
		TableExpr("? AS ru", bun.Ident(s.relationTable)).
		Join("JOIN roles AS r ON r.id = ru.role_id").
		Join("JOIN roles_groups AS rg ON rg.role_id = ru.role_id").
		Join("JOIN groups AS g ON g.id = rg.group_id").
		Where("rg.group_id = ?", groupID).
		Where("rg.access IN (?)", bun.In(access)).
		Where("r.active = ?", true).
		Where("g.active = ?", true).
		OrderExpr("ru.?", bun.Ident(s.foreignKey)).
		Scan(ctx, &ids)
	if err := dbkit.WithErr1(err, "RoleGroupOwnerIDs").Err(); err != nil {
		return nil, storeErr(err, "listing owners with role access").WithGroup(groupID).WithAccess(access)
	}

	return ids, nil
}
