package zammad

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// Service resolves group access for one declared owner type. It combines
// the owner's direct relations with role-derived access from the owner
// type's RoleBridge, and owns the atomic replace of an owner's whole
// direct relation set. Database access goes through dbkit with chainable
// error wrapping.
//
// Error Handling:
// Every operation classifies its failures into two kinds. Malformed input
// (access lists, group references, missing owner ids) fails with
// ErrInvalidArgument before any store access. Store failures of any sort
// fail with ErrStoreFailure wrapping the dbkit-annotated cause.
//
// Example error handling:
//
//	_, err := service.SetAccessMapByID(ctx, userID, grants)
//	if err != nil {
//	    if zammad.IsInvalidArgument(err) {
//	        // reject the request
//	    }
//	    if zammad.IsStoreFailure(err) {
//	        // nothing was applied; the previous relation set is intact
//	        var dbErr *dbkit.Error
//	        if errors.As(err, &dbErr) {
//	            fmt.Printf("Operation: %s, Table: %s, Constraint: %s\n",
//	                dbErr.Operation, dbErr.Table, dbErr.Constraint)
//	        }
//	    }
//	}
type Service struct {
	db        dbkit.IDB
	owner     *OwnerType
	cache     AccessCache
	txMonitor *transactionMonitor
}

// NewService creates a new access service for the given owner type.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	owner := zammad.NewOwnerType("User").WithRoles(zammad.NewRoleBridge(db))
//	service, err := zammad.NewService(owner, db)
func NewService(owner *OwnerType, db dbkit.IDB) (*Service, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	return &Service{
		db:        db,
		owner:     owner,
		txMonitor: newTransactionMonitor(),
	}, nil
}

// WithCache attaches a cache for single access checks. The service
// invalidates an owner's entries after Commit and PurgeOwner; everything
// else is the cache's business. A nil cache disables caching.
func (s *Service) WithCache(cache AccessCache) *Service {
	s.cache = cache
	return s
}

// Owner returns the owner type declaration this service is bound to.
func (s *Service) Owner() *OwnerType {
	return s.owner
}

// withDB returns a copy of the service bound to the given handle. The
// transaction wrappers use it so all queries inside a closure run on the
// transaction while the receiver stays on the original handle.
func (s *Service) withDB(db dbkit.IDB) *Service {
	clone := *s
	clone.db = db
	return &clone
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves replace audit entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AccessAuditLog, error) {
	var logs []AccessAuditLog
	q := filter.apply(s.db.NewSelect().Model(&logs))

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	if err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err(); err != nil {
		return nil, storeErr(err, "reading audit log")
	}

	return logs, nil
}

// CountAuditLog returns the number of audit entries matching the filter,
// ignoring pagination. Pair with GetAuditLog for paged listings.
func (s *Service) CountAuditLog(ctx context.Context, filter AuditLogFilter) (int, error) {
	count, err := dbkit.Count[AccessAuditLog](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return filter.apply(q)
	})
	if err != nil {
		return 0, storeErr(err, "counting audit log")
	}
	return count, nil
}
