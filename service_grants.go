package zammad

import (
	"context"
	"slices"
	"strings"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// ============================================================================
// GRANT STAGING AND ATOMIC REPLACE (write side)
// ============================================================================

// GrantSet buffers the desired complete direct relation set for one owner.
// Staging only mutates the buffer; nothing touches the store until Commit.
// The two phases exist so callers can stage grants for an owner that has
// no persisted id yet and commit from the owner's save path once the id
// exists.
//
// A staged empty set is meaningful: committing it removes every direct
// relation. A GrantSet belongs to a single save path and is not safe for
// concurrent use.
type GrantSet struct {
	pending []GroupRelation
	staged  bool
}

// NewGrantSet creates an empty grant buffer.
func NewGrantSet() *GrantSet {
	return &GrantSet{}
}

// StageByID replaces the buffer with the given map: one pending grant per
// group id and normalized access level. Level lists run through the usual
// normalization, so every staged group carries AccessFull and an empty
// list fails with ErrInvalidArgument. Group ids are not checked here; a
// grant on a nonexistent group fails at Commit.
func (g *GrantSet) StageByID(m map[int64][]string) error {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	pending := make([]GroupRelation, 0, len(m))
	for _, id := range ids {
		levels, err := normalizeAccess(m[id])
		if err != nil {
			return err.WithGroup(id)
		}
		for _, level := range levels {
			pending = append(pending, GroupRelation{GroupID: id, Access: level})
		}
	}

	g.pending = pending
	g.staged = true
	return nil
}

// Pending returns a copy of the staged relations, owner id unset.
func (g *GrantSet) Pending() []GroupRelation {
	out := make([]GroupRelation, len(g.pending))
	copy(out, g.pending)
	return out
}

// Len returns the number of staged relations.
func (g *GrantSet) Len() int {
	return len(g.pending)
}

// Staged reports whether the buffer holds a staged set. Committing an
// unstaged buffer is a no-op; committing a staged empty set clears the
// owner's relations.
func (g *GrantSet) Staged() bool {
	return g.staged
}

// Reset clears the buffer.
func (g *GrantSet) Reset() {
	g.pending = nil
	g.staged = false
}

// StageByName resolves group names and stages the map by id. Level lists
// are validated before any store access. A name that resolves to no group
// stages id 0, which the relation table's foreign key rejects at Commit;
// resolution itself never errors on unknown names.
func (s *Service) StageByName(ctx context.Context, grants *GrantSet, m map[string][]string) error {
	if grants == nil {
		return NewError(ErrInvalidArgument, "grant set is required")
	}

	names := make([]string, 0, len(m))
	for name, levels := range m {
		if _, err := normalizeAccess(levels); err != nil {
			return err.WithGroupName(name)
		}
		names = append(names, name)
	}

	byID := make(map[int64][]string, len(m))
	if len(names) > 0 {
		ids, err := s.groupIDsByName(ctx, names)
		if err != nil {
			return err
		}
		for name, levels := range m {
			id := ids[name] // zero when unresolved
			byID[id] = append(byID[id], levels...)
		}
	}

	return grants.StageByID(byID)
}

// Commit atomically replaces every direct relation of the owner with the
// staged set: delete all rows for the owner, stamp the buffered entries
// with the owner id, bulk-insert them. One transaction, so concurrent
// readers observe the old set or the new set, never the emptied middle.
// On failure nothing is applied, the buffer stays staged for a retry by
// the caller, and the error carries the StoreFailure kind.
//
// The owner must have a persisted id; callers staging grants for a new
// owner invoke Commit from the save path once the insert assigned one.
// After success the buffer is cleared, the owner's cache entries are
// dropped and an audit entry is written best-effort.
func (s *Service) Commit(ctx context.Context, ownerID int64, grants *GrantSet) error {
	if grants == nil {
		return NewError(ErrInvalidArgument, "grant set is required")
	}
	if ownerID <= 0 {
		return NewError(ErrInvalidArgument, "owner has no persisted id").WithOwner(ownerID)
	}
	if !grants.Staged() {
		return nil
	}

	applied := grants.Pending()
	var previous map[int64][]string

	err := s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		var err error
		previous, err = tx.rawAccessMap(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := tx.deleteRelations(ctx, ownerID); err != nil {
			return err
		}
		if len(applied) == 0 {
			return nil
		}
		return tx.insertRelations(ctx, ownerID, applied)
	})
	if err != nil {
		return err
	}

	grants.Reset()
	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}

	meta := GetRequestMetadata(ctx)
	_ = s.logAudit(ctx, &AuditEntry{
		OwnerType: s.owner.Name(),
		OwnerID:   ownerID,
		Previous:  previous,
		Applied:   relationsToMap(applied),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
	})

	return nil
}

// SetAccessMapByID stages and commits in one step for an owner that
// already has an id. Returns the applied map, normalized.
//
// Example:
//
//	applied, err := service.SetAccessMapByID(ctx, userID, map[int64][]string{
//	    1: {zammad.AccessRead, zammad.AccessWrite},
//	})
func (s *Service) SetAccessMapByID(ctx context.Context, ownerID int64, m map[int64][]string) (map[int64][]string, error) {
	grants := NewGrantSet()
	if err := grants.StageByID(m); err != nil {
		return nil, err
	}

	applied := relationsToMap(grants.Pending())
	if err := s.Commit(ctx, ownerID, grants); err != nil {
		return nil, err
	}

	return applied, nil
}

// SetAccessMapByName is SetAccessMapByID keyed by group name. The applied
// map is keyed like the input; entries for unresolvable names never
// survive to it because Commit fails first.
func (s *Service) SetAccessMapByName(ctx context.Context, ownerID int64, m map[string][]string) (map[string][]string, error) {
	grants := NewGrantSet()
	if err := s.StageByName(ctx, grants, m); err != nil {
		return nil, err
	}
	if err := s.Commit(ctx, ownerID, grants); err != nil {
		return nil, err
	}

	applied := make(map[string][]string, len(m))
	for name, levels := range m {
		normalized, err := normalizeAccess(levels)
		if err != nil {
			return nil, err.WithGroupName(name)
		}
		applied[name] = normalized
	}
	return applied, nil
}

// PurgeOwner removes every direct relation of the owner and drops its
// cache entries. Called from the owner's delete path; it replaces the
// cascade a framework-managed association would run.
func (s *Service) PurgeOwner(ctx context.Context, ownerID int64) error {
	if ownerID <= 0 {
		return NewError(ErrInvalidArgument, "owner has no persisted id").WithOwner(ownerID)
	}

	if err := s.deleteRelations(ctx, ownerID); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
	return nil
}

// ============================================================================
// INTERNAL WRITE HELPERS
// ============================================================================

// groupIDsByName resolves names to ids in one query, first match winning
// for duplicate names. Unknown names are absent from the result.
func (s *Service) groupIDsByName(ctx context.Context, names []string) (map[string]int64, error) {
	var groups []Group
	err := s.db.NewSelect().
		Model(&groups).
		Column("id", "name").
		Where("name IN (?)", bun.In(names)).
		Order("id ASC").
		Scan(ctx)
	if err := dbkit.WithErr1(err, "GroupIDsByName").Err(); err != nil {
		return nil, storeErr(err, "resolving group names")
	}

	byName := make(map[string]int64, len(groups))
	for _, g := range groups {
		if _, ok := byName[g.Name]; !ok {
			byName[g.Name] = g.ID
		}
	}
	return byName, nil
}

// rawAccessMap reads the owner's stored relations without the group join,
// inactive groups included. The audit trail records what a replace really
// destroyed, not just the active view.
func (s *Service) rawAccessMap(ctx context.Context, ownerID int64) (map[int64][]string, error) {
	var rows []GroupRelation
	err := s.db.NewSelect().
		ColumnExpr("rel.group_id, rel.access").
		TableExpr("? AS rel", bun.Ident(s.owner.RelationTable())).
		Where("rel.? = ?", bun.Ident(s.owner.ForeignKey()), ownerID).
		OrderExpr("rel.group_id").
		Scan(ctx, &rows)
	if err := dbkit.WithErr1(err, "RawAccessMap").Err(); err != nil {
		return nil, storeErr(err, "reading stored relations").WithOwner(ownerID)
	}

	return relationsToMap(rows), nil
}

func (s *Service) deleteRelations(ctx context.Context, ownerID int64) error {
	result, err := s.db.NewDelete().
		Table(s.owner.RelationTable()).
		Where("? = ?", bun.Ident(s.owner.ForeignKey()), ownerID).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "DeleteRelations").Err(); err != nil {
		return storeErr(err, "deleting relations").WithOwner(ownerID)
	}

	return nil
}

// insertRelations bulk-inserts the stamped relation rows. The relation
// table is declared per owner type, so this builds a raw multi-row insert
// with identifier placeholders instead of going through a model.
func (s *Service) insertRelations(ctx context.Context, ownerID int64, relations []GroupRelation) error {
	var q strings.Builder
	q.WriteString("INSERT INTO ? (?, group_id, access) VALUES ")

	args := make([]any, 0, 2+len(relations)*3)
	args = append(args, bun.Ident(s.owner.RelationTable()), bun.Ident(s.owner.ForeignKey()))
	for i, rel := range relations {
		if i > 0 {
			q.WriteString(", ")
		}
		q.WriteString("(?, ?, ?)")
		args = append(args, ownerID, rel.GroupID, rel.Access)
	}

	result, err := s.db.NewRaw(q.String(), args...).Exec(ctx)
	if err := dbkit.WithErr(result, err, "InsertRelations").Err(); err != nil {
		return storeErr(err, "inserting relations").WithOwner(ownerID)
	}

	return nil
}

func (s *Service) logAudit(ctx context.Context, entry *AuditEntry) error {
	_, err := s.db.NewInsert().Model(entry.ToModel()).Exec(ctx)
	return dbkit.WithErr1(err, "LogAudit").Err()
}

// relationsToMap folds relation rows back into an id-keyed access map.
func relationsToMap(relations []GroupRelation) map[int64][]string {
	m := make(map[int64][]string, len(relations))
	for _, rel := range relations {
		m[rel.GroupID] = append(m[rel.GroupID], rel.Access)
	}
	return m
}
