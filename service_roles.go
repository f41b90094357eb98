package zammad

import (
	"context"
	"slices"
	"strings"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// ============================================================================
// ROLE MEMBERSHIP
// ============================================================================

// AssignRole adds the owner to a role. The owner's role-derived access
// widens immediately; no grant rows are written.
//
// Example:
//
//	err := service.AssignRole(ctx, userID, agentRole.ID)
func (s *Service) AssignRole(ctx context.Context, ownerID, roleID int64) error {
	if !s.owner.HasRoles() {
		return NewError(ErrInvalidArgument, "owner type has no role bridge")
	}
	if ownerID <= 0 {
		return NewError(ErrInvalidArgument, "owner has no persisted id").WithOwner(ownerID)
	}
	if roleID <= 0 {
		return NewError(ErrInvalidArgument, "role id must be positive").WithOwner(ownerID)
	}

	table, fk := s.roleRelation()

	result, err := s.db.NewRaw(
		"INSERT INTO ? (?, role_id) VALUES (?, ?)",
		bun.Ident(table), bun.Ident(fk), ownerID, roleID,
	).Exec(ctx)
	if err := dbkit.WithErr(result, err, "AssignRole").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return NewError(ErrInvalidArgument, "owner already has this role").WithOwner(ownerID).WithCause(err)
		}
		return storeErr(err, "assigning role").WithOwner(ownerID)
	}

	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
	return nil
}

// AssignRoles adds the owner to several roles in one statement. Either all
// memberships are created or none; a duplicate among them reports
// InvalidArgument.
func (s *Service) AssignRoles(ctx context.Context, ownerID int64, roleIDs []int64) error {
	if !s.owner.HasRoles() {
		return NewError(ErrInvalidArgument, "owner type has no role bridge")
	}
	if ownerID <= 0 {
		return NewError(ErrInvalidArgument, "owner has no persisted id").WithOwner(ownerID)
	}
	if len(roleIDs) == 0 {
		return nil
	}

	ids := make([]int64, len(roleIDs))
	copy(ids, roleIDs)
	slices.Sort(ids)

	table, fk := s.roleRelation()

	var sb strings.Builder
	sb.WriteString("INSERT INTO ? (?, role_id) VALUES ")
	args := make([]any, 0, 2+len(ids)*2)
	args = append(args, bun.Ident(table), bun.Ident(fk))
	for i, roleID := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?)")
		args = append(args, ownerID, roleID)
	}

	result, err := s.db.NewRaw(sb.String(), args...).Exec(ctx)
	if err := dbkit.WithErr(result, err, "AssignRoles").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return NewError(ErrInvalidArgument, "owner already has one of these roles").WithOwner(ownerID).WithCause(err)
		}
		return storeErr(err, "assigning roles").WithOwner(ownerID)
	}

	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
	return nil
}

// RevokeRole removes the owner from a role. Revoking a role the owner does
// not have reports InvalidArgument.
func (s *Service) RevokeRole(ctx context.Context, ownerID, roleID int64) error {
	if !s.owner.HasRoles() {
		return NewError(ErrInvalidArgument, "owner type has no role bridge")
	}
	if ownerID <= 0 {
		return NewError(ErrInvalidArgument, "owner has no persisted id").WithOwner(ownerID)
	}

	table, fk := s.roleRelation()

	result, err := s.db.NewDelete().
		Table(table).
		Where("? = ?", bun.Ident(fk), ownerID).
		Where("role_id = ?", roleID).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "RevokeRole").Err(); err != nil {
		return storeErr(err, "revoking role").WithOwner(ownerID)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewError(ErrInvalidArgument, "owner does not have this role").WithOwner(ownerID)
	}

	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
	return nil
}

// RevokeAllRoles removes the owner from every role.
func (s *Service) RevokeAllRoles(ctx context.Context, ownerID int64) error {
	if !s.owner.HasRoles() {
		return NewError(ErrInvalidArgument, "owner type has no role bridge")
	}
	if ownerID <= 0 {
		return NewError(ErrInvalidArgument, "owner has no persisted id").WithOwner(ownerID)
	}

	table, fk := s.roleRelation()

	result, err := s.db.NewDelete().
		Table(table).
		Where("? = ?", bun.Ident(fk), ownerID).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "RevokeAllRoles").Err(); err != nil {
		return storeErr(err, "revoking roles").WithOwner(ownerID)
	}

	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
	return nil
}

// HasRole checks if the owner is a member of the role, active or not.
// Lookup failures count as no membership.
func (s *Service) HasRole(ctx context.Context, ownerID, roleID int64) bool {
	table, fk := s.roleRelation()

	exists, err := s.db.NewSelect().
		ColumnExpr("1").
		TableExpr("? AS ru", bun.Ident(table)).
		Where("ru.? = ?", bun.Ident(fk), ownerID).
		Where("ru.role_id = ?", roleID).
		Exists(ctx)
	if err != nil {
		return false
	}

	return exists
}

// CountRoles returns the number of roles the owner belongs to, active or not.
func (s *Service) CountRoles(ctx context.Context, ownerID int64) (int, error) {
	table, fk := s.roleRelation()

	var count int
	err := s.db.NewSelect().
		ColumnExpr("count(*)").
		TableExpr("? AS ru", bun.Ident(table)).
		Where("ru.? = ?", bun.Ident(fk), ownerID).
		Scan(ctx, &count)
	if err := dbkit.WithErr1(err, "CountRoles").Err(); err != nil {
		return 0, storeErr(err, "counting roles").WithOwner(ownerID)
	}

	return count, nil
}

// RolesOf returns the active roles the owner belongs to, ordered by id.
//
// Example:
//
//	roles, err := service.RolesOf(ctx, userID)
//	// roles might be [Agent, Admin]
func (s *Service) RolesOf(ctx context.Context, ownerID int64) ([]Role, error) {
	if !s.owner.HasRoles() {
		return nil, NewError(ErrInvalidArgument, "owner type has no role bridge")
	}

	table, fk := s.roleRelation()

	var roles []Role
	err := s.db.NewSelect().
		Model(&roles).
		Join("JOIN ? AS ru ON ru.role_id = r.id", bun.Ident(table)).
		Where("ru.? = ?", bun.Ident(fk), ownerID).
		Where("r.active = ?", true).
		Order("id ASC").
		Scan(ctx)
	if err := dbkit.WithErr1(err, "RolesOf").Err(); err != nil {
		return nil, storeErr(err, "listing roles").WithOwner(ownerID)
	}

	return roles, nil
}

// RoleByName returns the role with the given name, or nil when no such role
// exists.
func (s *Service) RoleByName(ctx context.Context, name string) (*Role, error) {
	if name == "" {
		return nil, NewError(ErrInvalidArgument, "role name must not be empty")
	}

	role := new(Role)

	err := s.db.NewSelect().
		Model(role).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, storeErr(dbkit.WithErr1(err, "RoleByName").Err(), "looking up role")
	}

	return role, nil
}

// roleRelation resolves the membership table and owner column for this owner
// type, falling back to the defaults when the bridge is not a RoleStore.
func (s *Service) roleRelation() (table, fk string) {
	if store, ok := s.owner.Roles().(*RoleStore); ok {
		return store.RelationTable(), store.ForeignKey()
	}
	return DefaultRoleRelationTable, DefaultRoleForeignKey
}

// ============================================================================
// ROLE GRANTS
// ============================================================================

// SetRoleAccessMap atomically replaces the group grants a role conveys to
// its members. Levels are normalized per group before writing, and the
// applied map is returned. An empty map removes every grant.
//
// Role grants affect every member, so caches that support Clear are emptied;
// other caches may serve stale results until their TTL expires.
//
// Example:
//
//	applied, err := service.SetRoleAccessMap(ctx, agentRole.ID, map[int64][]string{
//	    sales.ID: {zammad.AccessRead, zammad.AccessOverview},
//	})
func (s *Service) SetRoleAccessMap(ctx context.Context, roleID int64, m map[int64][]string) (map[int64][]string, error) {
	if roleID <= 0 {
		return nil, NewError(ErrInvalidArgument, "role id must be positive")
	}

	groupIDs := make([]int64, 0, len(m))
	for groupID := range m {
		groupIDs = append(groupIDs, groupID)
	}
	slices.Sort(groupIDs)

	applied := make(map[int64][]string, len(m))
	relations := make([]*RoleGroupRelation, 0, len(m))
	for _, groupID := range groupIDs {
		levels, err := normalizeAccess(m[groupID])
		if err != nil {
			return nil, err.WithGroup(groupID)
		}
		applied[groupID] = levels
		for _, level := range levels {
			relations = append(relations, &RoleGroupRelation{
				RoleID:  roleID,
				GroupID: groupID,
				Access:  level,
			})
		}
	}

	var previous map[int64][]string
	err := s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		var err error
		previous, err = tx.roleGrantMap(ctx, roleID)
		if err != nil {
			return err
		}

		result, err := tx.db.NewDelete().
			Model((*RoleGroupRelation)(nil)).
			Where("role_id = ?", roleID).
			Exec(ctx)
		if err := dbkit.WithErr(result, err, "DeleteRoleGrants").Err(); err != nil {
			return storeErr(err, "deleting role grants")
		}

		if len(relations) == 0 {
			return nil
		}

		_, err = dbkit.BatchInsert(ctx, tx.db, relations, dbkit.BatchSize)
		if err := dbkit.WithErr1(err, "InsertRoleGrants").Err(); err != nil {
			return storeErr(err, "inserting role grants")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAllCached()

	meta := GetRequestMetadata(ctx)
	_ = s.logAudit(ctx, &AuditEntry{
		OwnerType: "Role",
		OwnerID:   roleID,
		Previous:  previous,
		Applied:   applied,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
	})

	return applied, nil
}

// RoleAccessMap returns the role's group grants as stored, keyed by group
// id. Grants on inactive groups are included: they convey no access but
// still exist until replaced.
func (s *Service) RoleAccessMap(ctx context.Context, roleID int64) (map[int64][]string, error) {
	if roleID <= 0 {
		return nil, NewError(ErrInvalidArgument, "role id must be positive")
	}
	return s.roleGrantMap(ctx, roleID)
}

func (s *Service) roleGrantMap(ctx context.Context, roleID int64) (map[int64][]string, error) {
	var relations []RoleGroupRelation
	err := s.db.NewSelect().
		Model(&relations).
		Where("role_id = ?", roleID).
		Order("group_id ASC").
		Scan(ctx)
	if err := dbkit.WithErr1(err, "RoleGrantMap").Err(); err != nil {
		return nil, storeErr(err, "reading role grants")
	}

	m := make(map[int64][]string, len(relations))
	for _, rel := range relations {
		m[rel.GroupID] = append(m[rel.GroupID], rel.Access)
	}
	return m, nil
}

// invalidateAllCached empties the cache after a change that touches many
// owners at once.
func (s *Service) invalidateAllCached() {
	if s.cache == nil {
		return
	}
	if c, ok := s.cache.(interface{ Clear() }); ok {
		c.Clear()
	}
}
