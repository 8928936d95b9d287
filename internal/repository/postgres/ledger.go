package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ledger moves stock on one table. The row is read with SELECT ... FOR
// UPDATE, so concurrent reservations on the same row queue behind the
// transaction that locked it first.
type ledger struct {
	db       *gorm.DB
	table    string
	notFound error
}

type stockLevel struct {
	QuantityInStock int
}

func (l *ledger) lock(ctx context.Context, id uuid.UUID) (int, error) {
	var row stockLevel
	err := l.db.WithContext(ctx).
		Table(l.table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("quantity_in_stock").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, l.notFound
		}
		return 0, fmt.Errorf("locking stock row: %w", err)
	}
	return row.QuantityInStock, nil
}

func (l *ledger) Reserve(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	if amount < 0 {
		return 0, inventory.ErrNegativeAmount
	}
	onHand, err := l.lock(ctx, id)
	if err != nil {
		return 0, err
	}
	n := inventory.Reservable(onHand, amount)
	if n == 0 {
		return 0, nil
	}
	if err := l.shift(ctx, id, -n); err != nil {
		return 0, err
	}
	return n, nil
}

func (l *ledger) Release(ctx context.Context, id uuid.UUID, amount int) error {
	if amount < 0 {
		return inventory.ErrNegativeAmount
	}
	if _, err := l.lock(ctx, id); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	return l.shift(ctx, id, amount)
}

func (l *ledger) shift(ctx context.Context, id uuid.UUID, delta int) error {
	err := l.db.WithContext(ctx).
		Table(l.table).
		Where("id = ?", id).
		UpdateColumn("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("updating stock: %w", err)
	}
	return nil
}
