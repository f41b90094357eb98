package zammad

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
)

// Transaction executes fn within a database transaction with automatic
// commit/rollback. The service passed to fn is bound to the transaction;
// the receiver stays on its original handle, so the same Service value
// can keep serving other callers concurrently. Calls nested inside an
// open transaction run on a savepoint.
//
// Example:
//
//	err := service.Transaction(ctx, func(ctx context.Context, tx *zammad.Service) error {
//	    if err := tx.PurgeOwner(ctx, oldOwnerID); err != nil {
//	        return err // rolls back
//	    }
//	    return tx.Commit(ctx, newOwnerID, grants) // nested, uses a savepoint
//	})
func (s *Service) Transaction(ctx context.Context, fn func(ctx context.Context, tx *Service) error) error {
	start := time.Now()
	err := s.transact(ctx, nil, fn)
	s.txMonitor.recordTransaction(time.Since(start), err == nil)
	return err
}

// TransactionWithOptions executes fn within a transaction with custom
// options (isolation level, read-only). Options are ignored when already
// inside a transaction; the nested scope becomes a savepoint.
//
// Example:
//
//	err := service.TransactionWithOptions(ctx, dbkit.SerializableTxOptions(), func(ctx context.Context, tx *zammad.Service) error {
//	    return tx.Commit(ctx, ownerID, grants)
//	})
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context, tx *Service) error) error {
	start := time.Now()
	err := s.transact(ctx, &opts, fn)
	s.txMonitor.recordTransaction(time.Since(start), err == nil)
	return err
}

// ReadOnlyTransaction executes fn within a read-only transaction, for
// multi-query reads that need one consistent snapshot.
//
// Example:
//
//	err := service.ReadOnlyTransaction(ctx, func(ctx context.Context, tx *zammad.Service) error {
//	    ids, err := tx.AccessibleGroupIDs(ctx, ownerID, zammad.AccessRead)
//	    if err != nil {
//	        return err
//	    }
//	    owners, err = tx.OwnerIDsWithAccess(ctx, zammad.GroupID(ids[0]), zammad.AccessRead)
//	    return err
//	})
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx *Service) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}

func (s *Service) transact(ctx context.Context, opts *dbkit.TxOptions, fn func(ctx context.Context, tx *Service) error) error {
	switch db := s.db.(type) {
	case *dbkit.Tx:
		// Already inside a transaction, use a savepoint.
		return db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, s.withDB(tx))
		})
	case *dbkit.DBKit:
		if opts != nil {
			return db.TransactionWithOptions(ctx, *opts, func(tx *dbkit.Tx) error {
				return fn(ctx, s.withDB(tx))
			})
		}
		return db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(ctx, s.withDB(tx))
		})
	default:
		return NewError(ErrStoreFailure, "transactions require a dbkit.DBKit or dbkit.Tx handle")
	}
}
