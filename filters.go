package zammad

import (
	"time"

	"github.com/uptrace/bun"
)

// AuditLogFilter provides options for filtering audit log queries.
type AuditLogFilter struct {
	// Filter by owner type name
	OwnerType string

	// Filter by owner
	OwnerID int64

	// Filter by request id
	RequestID string

	// Filter by time range
	Since time.Time
	Until time.Time

	// Pagination
	Limit  int
	Offset int
}

// NewAuditLogFilter creates a new AuditLogFilter with default values.
func NewAuditLogFilter() AuditLogFilter {
	return AuditLogFilter{
		Limit: 100,
	}
}

// WithOwnerType sets the owner type filter.
func (f AuditLogFilter) WithOwnerType(ownerType string) AuditLogFilter {
	f.OwnerType = ownerType
	return f
}

// WithOwner sets the owner id filter.
func (f AuditLogFilter) WithOwner(ownerID int64) AuditLogFilter {
	f.OwnerID = ownerID
	return f
}

// WithRequestID sets the request id filter.
func (f AuditLogFilter) WithRequestID(requestID string) AuditLogFilter {
	f.RequestID = requestID
	return f
}

// WithTimeRange sets the time range filter.
func (f AuditLogFilter) WithTimeRange(since, until time.Time) AuditLogFilter {
	f.Since = since
	f.Until = until
	return f
}

// WithSince sets the start time filter.
func (f AuditLogFilter) WithSince(since time.Time) AuditLogFilter {
	f.Since = since
	return f
}

// WithUntil sets the end time filter.
func (f AuditLogFilter) WithUntil(until time.Time) AuditLogFilter {
	f.Until = until
	return f
}

// WithLimit sets the limit for results.
func (f AuditLogFilter) WithLimit(limit int) AuditLogFilter {
	f.Limit = limit
	return f
}

// WithOffset sets the offset for pagination.
func (f AuditLogFilter) WithOffset(offset int) AuditLogFilter {
	f.Offset = offset
	return f
}

// WithPagination sets both limit and offset.
func (f AuditLogFilter) WithPagination(limit, offset int) AuditLogFilter {
	f.Limit = limit
	f.Offset = offset
	return f
}

// apply adds the filter predicates to a query, pagination excluded so
// count queries can share it.
func (f AuditLogFilter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if f.OwnerType != "" {
		q = q.Where("owner_type = ?", f.OwnerType)
	}
	if f.OwnerID > 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.RequestID != "" {
		q = q.Where("request_id = ?", f.RequestID)
	}
	if !f.Since.IsZero() {
		q = q.Where("timestamp >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		q = q.Where("timestamp <= ?", f.Until)
	}
	return q
}

// GroupFilter provides options for filtering group catalog queries.
type GroupFilter struct {
	// Filter by exact names
	Names []string

	// Filter by active flag; nil means both
	Active *bool

	// Pagination
	Limit  int
	Offset int
}

// NewGroupFilter creates a new GroupFilter with default values.
func NewGroupFilter() GroupFilter {
	return GroupFilter{
		Limit: 100,
	}
}

// WithNames sets the name filter.
func (f GroupFilter) WithNames(names ...string) GroupFilter {
	f.Names = names
	return f
}

// WithActive sets the active flag filter.
func (f GroupFilter) WithActive(active bool) GroupFilter {
	f.Active = &active
	return f
}

// WithLimit sets the limit for results.
func (f GroupFilter) WithLimit(limit int) GroupFilter {
	f.Limit = limit
	return f
}

// WithOffset sets the offset for pagination.
func (f GroupFilter) WithOffset(offset int) GroupFilter {
	f.Offset = offset
	return f
}

// apply adds the filter predicates to a query, pagination excluded.
func (f GroupFilter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if len(f.Names) > 0 {
		q = q.Where("name IN (?)", bun.In(f.Names))
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	return q
}
