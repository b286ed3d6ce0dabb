package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

const (
	DefaultTxMaxWait = 5 * time.Second
	DefaultTxTimeout = 20 * time.Second
)

var (
	ErrTxWaitExceeded = errors.New("timed out waiting for a database connection")
	ErrTxTimeout      = errors.New("transaction exceeded its execution time limit")
)

// TxRunner runs multi-statement transactions under two bounds: how long a
// caller may wait for a pool connection, and how long the transaction may
// run once started. Either bound aborts and rolls back.
type TxRunner struct {
	db      *gorm.DB
	slots   *semaphore.Weighted
	maxWait time.Duration
	timeout time.Duration
}

// NewTxRunner sizes the slot pool to maxConns, normally the sql.DB open
// connection limit. Non-positive bounds fall back to the defaults.
func NewTxRunner(db *gorm.DB, maxConns int, maxWait, timeout time.Duration) *TxRunner {
	if maxConns <= 0 {
		maxConns = 1
	}
	if maxWait <= 0 {
		maxWait = DefaultTxMaxWait
	}
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	return &TxRunner{
		db:      db,
		slots:   semaphore.NewWeighted(int64(maxConns)),
		maxWait: maxWait,
		timeout: timeout,
	}
}

// Run waits at most maxWait for both a slot and a pooled connection, then
// runs fn in a transaction pinned to that connection.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, r.maxWait)
	defer cancelWait()

	if err := r.slots.Acquire(waitCtx, 1); err != nil {
		return r.waitFailure(ctx, err)
	}
	defer r.slots.Release(1)

	// Reads outside TxRunner share the pool, so a slot does not guarantee a
	// free connection.
	conn, err := sqlDB.Conn(waitCtx)
	if err != nil {
		return r.waitFailure(ctx, err)
	}
	defer conn.Close()

	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx := r.db.WithContext(execCtx)
	tx.Statement.ConnPool = conn

	err = tx.Transaction(fn)
	if err != nil && errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w (%s): %v", ErrTxTimeout, r.timeout, err)
	}
	return err
}

func (r *TxRunner) waitFailure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTxWaitExceeded, r.maxWait)
	}
	return err
}
