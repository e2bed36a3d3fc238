package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager is the explicit unit-of-work collaborator: every multi-row
// mutation in the core (transfer legs, adjustment-plus-ledger, status
// transitions with item checks) runs inside one Do call so either all writes
// land or none do. Repositories expose ...Tx method variants that take the
// live transaction handle.
type TxManager interface {
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct{ db *gorm.DB }

// NewTxManager wraps a GORM connection as a TxManager.
func NewTxManager(db *gorm.DB) TxManager { return &gormTxManager{db: db} }

func (m *gormTxManager) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
