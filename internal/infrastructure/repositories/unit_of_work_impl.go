package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainRepos "sportsadmin.backend/internal/domain/repositories"
)

type ctxKey int

const (
	txCtxKey ctxKey = iota
	lockCtxKey
)

var commitTx = func(tx *gorm.DB) error {
	return tx.Commit().Error
}

// UnitOfWorkImpl runs workflow steps inside one gorm transaction.
type UnitOfWorkImpl struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey, tx)); err != nil {
		return err
	}
	if err := commitTx(tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// WithLock flags ctx so reads through GetDB add FOR UPDATE.
// Dialects without row locks, such as sqlite, drop the clause.
func (u *UnitOfWorkImpl) WithLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockCtxKey, true)
}

func (u *UnitOfWorkImpl) GetDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, u.db)
}

// GetDB returns the transaction carried by ctx, or fallback when there is none.
// The row lock only applies inside a transaction.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	tx := txFrom(ctx)
	if tx == nil {
		return fallback.WithContext(ctx)
	}
	if locked, _ := ctx.Value(lockCtxKey).(bool); locked {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx.WithContext(ctx)
}

func txFrom(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txCtxKey).(*gorm.DB)
	return tx
}
