package zammad

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// =============================================================================
// GROUP CATALOG
// =============================================================================

// Groups returns groups from the catalog matching the filter, ordered by id.
func (s *Service) Groups(ctx context.Context, filter GroupFilter) ([]Group, error) {
	var groups []Group

	q := filter.apply(s.db.NewSelect().Model(&groups))

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	err := q.Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, storeErr(dbkit.WithErr1(err, "Groups").Err(), "listing groups")
	}

	return groups, nil
}

// GroupByName returns the group with the given name, or nil when no such
// group exists.
func (s *Service) GroupByName(ctx context.Context, name string) (*Group, error) {
	if name == "" {
		return nil, NewError(ErrInvalidArgument, "group name must not be empty")
	}

	group := new(Group)

	err := s.db.NewSelect().
		Model(group).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, storeErr(dbkit.WithErr1(err, "GroupByName").Err(), "looking up group").WithGroupName(name)
	}

	return group, nil
}

// GroupByID returns the group with the given id, or nil when no such group
// exists.
func (s *Service) GroupByID(ctx context.Context, groupID int64) (*Group, error) {
	if groupID <= 0 {
		return nil, NewError(ErrInvalidArgument, "group id must be positive").WithGroup(groupID)
	}

	group := new(Group)

	err := s.db.NewSelect().
		Model(group).
		Where("id = ?", groupID).
		Scan(ctx)
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, storeErr(dbkit.WithErr1(err, "GroupByID").Err(), "looking up group").WithGroup(groupID)
	}

	return group, nil
}

// GroupExists reports whether a group with the given id exists.
func (s *Service) GroupExists(ctx context.Context, groupID int64) (bool, error) {
	exists, err := dbkit.Exists[Group](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", groupID)
	})
	if err != nil {
		return false, storeErr(err, "checking group existence").WithGroup(groupID)
	}

	return exists, nil
}

// CountGroups returns the number of groups matching the filter.
func (s *Service) CountGroups(ctx context.Context, filter GroupFilter) (int, error) {
	count, err := dbkit.Count[Group](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return filter.apply(q)
	})
	if err != nil {
		return 0, storeErr(err, "counting groups")
	}

	return count, nil
}
