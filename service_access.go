package zammad

import (
	"context"
	"slices"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// ============================================================================
// ACCESS RESOLUTION (read side)
// ============================================================================

// HasAccess reports whether the owner holds one of the given access levels
// on the group, directly or through a role. The access list is normalized
// first, so a "full" grant satisfies any requested level. The role bridge
// is only consulted when direct access does not already grant.
//
// Example:
//
//	ok, err := service.HasAccess(ctx, userID, zammad.GroupID(1), zammad.AccessRead)
func (s *Service) HasAccess(ctx context.Context, ownerID int64, group GroupRef, access ...string) (bool, error) {
	levels, err := NormalizeAccess(access...)
	if err != nil {
		return false, err
	}
	groupID, err := resolveGroupRef(group)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		if allowed, ok := s.cache.Get(ownerID, groupID, levels); ok {
			return allowed, nil
		}
	}

	allowed, err := s.hasDirectAccess(ctx, ownerID, groupID, levels)
	if err != nil {
		return false, err
	}

	if !allowed && s.owner.HasRoles() {
		allowed, err = s.owner.Roles().GroupAccess(ctx, ownerID, groupID, levels)
		if err != nil {
			return false, err
		}
	}

	if s.cache != nil {
		s.cache.Set(ownerID, groupID, levels, allowed)
	}

	return allowed, nil
}

// AccessibleGroupIDs returns the ids of every active group the owner can
// access at one of the given levels: the union of direct grants and
// role-derived grants, de-duplicated, ascending.
func (s *Service) AccessibleGroupIDs(ctx context.Context, ownerID int64, access ...string) ([]int64, error) {
	levels, err := NormalizeAccess(access...)
	if err != nil {
		return nil, err
	}

	direct, err := s.directGroupIDs(ctx, ownerID, levels)
	if err != nil {
		return nil, err
	}

	if !s.owner.HasRoles() {
		return direct, nil
	}

	roleIDs, err := s.owner.Roles().RoleIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	derived, err := s.roleGroupIDs(ctx, roleIDs, levels)
	if err != nil {
		return nil, err
	}

	return mergeIDs(direct, derived), nil
}

// AccessibleGroups returns the Group records for AccessibleGroupIDs,
// ordered by id.
func (s *Service) AccessibleGroups(ctx context.Context, ownerID int64, access ...string) ([]Group, error) {
	ids, err := s.AccessibleGroupIDs(ctx, ownerID, access...)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var groups []Group
	err = s.db.NewSelect().Model(&groups).Where("id IN (?)", bun.In(ids)).Order("id ASC").Scan(ctx)
	if err := dbkit.WithErr1(err, "AccessibleGroups").Err(); err != nil {
		return nil, storeErr(err, "loading accessible groups").WithOwner(ownerID)
	}

	return groups, nil
}

// OwnerIDsWithAccess is the inverse query: the ids of every owner that
// can access the group at one of the given levels, directly or through a
// role. De-duplicated, ascending.
func (s *Service) OwnerIDsWithAccess(ctx context.Context, group GroupRef, access ...string) ([]int64, error) {
	levels, err := NormalizeAccess(access...)
	if err != nil {
		return nil, err
	}
	groupID, err := resolveGroupRef(group)
	if err != nil {
		return nil, err
	}

	direct, err := s.directOwnerIDs(ctx, groupID, levels)
	if err != nil {
		return nil, err
	}

	if !s.owner.HasRoles() {
		return direct, nil
	}

	derived, err := s.owner.Roles().GroupOwnerIDs(ctx, groupID, levels)
	if err != nil {
		return nil, err
	}

	return mergeIDs(direct, derived), nil
}

// OwnersWithAccess loads the owner records behind OwnerIDsWithAccess. T
// must be a bun model for the owner table with an integer "id" column.
//
// Example:
//
//	agents, err := zammad.OwnersWithAccess[User](ctx, service, zammad.GroupID(1), zammad.AccessFull)
func OwnersWithAccess[T any](ctx context.Context, s *Service, group GroupRef, access ...string) ([]T, error) {
	ids, err := s.OwnerIDsWithAccess(ctx, group, access...)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var owners []T
	err = s.db.NewSelect().Model(&owners).Where("id IN (?)", bun.In(ids)).Order("id ASC").Scan(ctx)
	if err := dbkit.WithErr1(err, "OwnersWithAccess").Err(); err != nil {
		return nil, storeErr(err, "loading owners with access")
	}

	return owners, nil
}

// ============================================================================
// ACCESS MAPS
// ============================================================================

// AccessMapByID returns the owner's direct grants on active groups, keyed
// by group id, every stored level preserved. Role-derived access is not
// part of the map: it shows what is administered on the owner itself, not
// everything the owner can reach.
func (s *Service) AccessMapByID(ctx context.Context, ownerID int64) (map[int64][]string, error) {
	rows, err := s.accessRows(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	m := make(map[int64][]string, len(rows))
	for _, row := range rows {
		m[row.GroupID] = append(m[row.GroupID], row.Access)
	}
	return m, nil
}

// AccessMapByName is AccessMapByID keyed by group name.
func (s *Service) AccessMapByName(ctx context.Context, ownerID int64) (map[string][]string, error) {
	rows, err := s.accessRows(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	m := make(map[string][]string, len(rows))
	for _, row := range rows {
		m[row.Name] = append(m[row.Name], row.Access)
	}
	return m, nil
}

// ============================================================================
// INTERNAL QUERIES
// ============================================================================

// accessRow is one (group, level) pair of a direct grant, joined with the
// group catalog.
type accessRow struct {
	GroupID int64  `bun:"group_id"`
	Name    string `bun:"name"`
	Access  string `bun:"access"`
}

func (s *Service) hasDirectAccess(ctx context.Context, ownerID, groupID int64, access []string) (bool, error) {
	exists, err := s.db.NewSelect().
		ColumnExpr("1").
		TableExpr("? AS rel", bun.Ident(s.owner.RelationTable())).
		Join("JOIN groups AS g ON g.id = rel.group_id").
		Where("rel.? = ?", bun.Ident(s.owner.ForeignKey()), ownerID).
		Where("rel.group_id = ?", groupID).
		Where("rel.access IN (?)", bun.In(access)).
		Where("g.active = ?", true).
		Exists(ctx)
	if err := dbkit.WithErr1(err, "HasDirectAccess").Err(); err != nil {
		return false, storeErr(err, "checking direct access").WithOwner(ownerID).WithGroup(groupID).WithAccess(access)
	}

	return exists, nil
}

func (s *Service) directGroupIDs(ctx context.Context, ownerID int64, access []string) ([]int64, error) {
	var ids []int64
	err := s.db.NewSelect().
		ColumnExpr("DISTINCT rel.group_id").
		TableExpr("? AS rel", bun.Ident(s.owner.RelationTable())).
		Join("JOIN groups AS g ON g.id = rel.group_id").
		Where("rel.? = ?", bun.Ident(s.owner.ForeignKey()), ownerID).
		Where("rel.access IN (?)", bun.In(access)).
		Where("g.active = ?", true).
		OrderExpr("rel.group_id").
		Scan(ctx, &ids)
	if err := dbkit.WithErr1(err, "DirectGroupIDs").Err(); err != nil {
		return nil, storeErr(err, "listing direct group ids").WithOwner(ownerID).WithAccess(access)
	}

	return ids, nil
}

// roleGroupIDs lists the active groups reachable through the given roles.
// The owner's role ids come from the bridge; the grant rows themselves are
// read here so the union with direct grants happens in one place.
func (s *Service) roleGroupIDs(ctx context.Context, roleIDs []int64, access []string) ([]int64, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	var ids []int64
	err := s.db.NewSelect().
		Model((*RoleGroupRelation)(nil)).
		ColumnExpr("DISTINCT rg.group_id").
		Join("JOIN groups AS g ON g.id = rg.group_id").
		Where("rg.role_id IN (?)", bun.In(roleIDs)).
		Where("rg.access IN (?)", bun.In(access)).
		Where("g.active = ?", true).
		OrderExpr("rg.group_id").
		Scan(ctx, &ids)
	if err := dbkit.WithErr1(err, "RoleGroupIDs").Err(); err != nil {
		return nil, storeErr(err, "listing role group ids").WithAccess(access)
	}

	return ids, nil
}

func (s *Service) directOwnerIDs(ctx context.Context, groupID int64, access []string) ([]int64, error) {
	var ids []int64
	err := s.db.NewSelect().
		ColumnExpr("DISTINCT rel.?", bun.Ident(s.owner.ForeignKey())).
		TableExpr("? AS rel", bun.Ident(s.owner.RelationTable())).
		Join("JOIN groups AS g ON g.id = rel.group_id").
		Where("rel.group_id = ?", groupID).
		Where("rel.access IN (?)", bun.In(access)).
		Where("g.active = ?", true).
		OrderExpr("rel.?", bun.Ident(s.owner.ForeignKey())).
		Scan(ctx, &ids)
	if err := dbkit.WithErr1(err, "DirectOwnerIDs").Err(); err != nil {
		return nil, storeErr(err, "listing owners with direct access").WithGroup(groupID).WithAccess(access)
	}

	return ids, nil
}

func (s *Service) accessRows(ctx context.Context, ownerID int64) ([]accessRow, error) {
	var rows []accessRow
	err := s.db.NewSelect().
		ColumnExpr("rel.group_id, g.name, rel.access").
		TableExpr("? AS rel", bun.Ident(s.owner.RelationTable())).
		Join("JOIN groups AS g ON g.id = rel.group_id").
		Where("rel.? = ?", bun.Ident(s.owner.ForeignKey()), ownerID).
		Where("g.active = ?", true).
		OrderExpr("rel.group_id").
		Scan(ctx, &rows)
	if err := dbkit.WithErr1(err, "AccessRows").Err(); err != nil {
		return nil, storeErr(err, "reading access map").WithOwner(ownerID)
	}

	return rows, nil
}

// mergeIDs unions two id lists, dropping duplicates, ascending.
func mergeIDs(a, b []int64) []int64 {
	merged := make([]int64, 0, len(a)+len(b))
	seen := make(map[int64]struct{}, len(a)+len(b))
	for _, ids := range [][]int64{a, b} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	slices.Sort(merged)
	return merged
}
