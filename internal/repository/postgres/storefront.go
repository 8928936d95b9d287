package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func withStock(db *gorm.DB, prefix string) *gorm.DB {
	return db.Preload(prefix + "Medicine").Preload(prefix + "NonMedicalProduct")
}

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) Create(ctx context.Context, p *storefront.Product) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return storefront.ErrProductAlreadyListed
		case errors.Is(err, gorm.ErrCheckConstraintViolated):
			return storefront.ErrInvalidVariant
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			if p.Kind == storefront.KindMedicine {
				return inventory.ErrMedicineNotFound
			}
			return inventory.ErrProductNotFound
		}
		return fmt.Errorf("inserting storefront product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*storefront.Product, error) {
	var p storefront.Product
	if err := withStock(r.db.WithContext(ctx), "").Where("id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storefront.ErrProductNotFound
		}
		return nil, fmt.Errorf("fetching storefront product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *storefront.Product) error {
	res := r.db.WithContext(ctx).
		Model(&storefront.Product{ID: p.ID}).
		Updates(map[string]any{
			"featured":         p.Featured,
			"available_online": p.AvailableOnline,
		})
	if res.Error != nil {
		return fmt.Errorf("updating storefront product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storefront.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&storefront.Product{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return storefront.ErrProductInUse
		}
		return fmt.Errorf("deleting storefront product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storefront.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context, q *storefront.CatalogueQuery) ([]*storefront.Product, error) {
	db := withStock(r.db.WithContext(ctx), "")
	if q.Kind != nil {
		db = db.Where("kind = ?", *q.Kind)
	}
	if q.FeaturedOnly {
		db = db.Where("featured = ?", true)
	}
	if !q.IncludeOffline {
		db = db.Where("available_online = ?", true)
	}
	var out []*storefront.Product
	if err := db.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing storefront products: %w", err)
	}
	return out, nil
}

type CartRepository struct {
	db *gorm.DB
}

// OpenForUser locks the user's open cart until the unit of work ends, so a
// cart that a concurrent checkout has just ordered is never read as open.
func (r *CartRepository) OpenForUser(ctx context.Context, userID uuid.UUID) (*storefront.Cart, error) {
	load := func() (*storefront.Cart, error) {
		var row struct{ ID uuid.UUID }
		err := r.db.WithContext(ctx).
			Model(&storefront.Cart{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("user_id = ? AND status = ?", userID, storefront.CartOpen).
			Take(&row).Error
		if err != nil {
			return nil, err
		}
		var c storefront.Cart
		err = withStock(r.db.WithContext(ctx), "Items.Product.").
			Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
			Preload("Items.Product").
			Where("id = ?", row.ID).
			Take(&c).Error
		return &c, err
	}

	c, err := load()
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fetching cart: %w", err)
	}

	created := &storefront.Cart{UserID: userID, Status: storefront.CartOpen}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(created).Error
	if err != nil {
		return nil, fmt.Errorf("creating cart: %w", err)
	}
	if c, err = load(); err != nil {
		return nil, fmt.Errorf("fetching cart: %w", err)
	}
	return c, nil
}

func (r *CartRepository) Update(ctx context.Context, c *storefront.Cart) error {
	res := r.db.WithContext(ctx).Model(&storefront.Cart{ID: c.ID}).Update("status", c.Status)
	if res.Error != nil {
		return fmt.Errorf("updating cart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storefront.ErrCartNotFound
	}
	return nil
}

func (r *CartRepository) AddItem(ctx context.Context, item *storefront.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrCheckConstraintViolated):
			return storefront.ErrInvalidQuantity
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return storefront.ErrProductNotFound
		}
		return fmt.Errorf("inserting cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateItem(ctx context.Context, item *storefront.CartItem) error {
	res := r.db.WithContext(ctx).
		Model(&storefront.CartItem{}).
		Where("id = ? AND cart_id = ?", item.ID, item.CartID).
		Update("quantity", item.Quantity)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrCheckConstraintViolated) {
			return storefront.ErrInvalidQuantity
		}
		return fmt.Errorf("updating cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storefront.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&storefront.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("deleting cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storefront.ErrCartItemNotFound
	}
	return nil
}

type OrderRepository struct {
	db *gorm.DB
}

func (r *OrderRepository) Create(ctx context.Context, o *storefront.Order) error {
	if err := r.db.WithContext(ctx).Omit("Items.Product").Create(o).Error; err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*storefront.Order, error) {
	var o storefront.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("name ASC") }).
		Where("id = ?", id).
		Take(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storefront.ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order: %w", err)
	}
	return &o, nil
}

// UpdateStatus only moves an order that is still in status from; a
// concurrent transition that got there first yields
// ErrInvalidStatusTransition.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *storefront.Order, from storefront.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&storefront.Order{}).
		Where("id = ? AND status = ?", o.ID, from).
		Update("status", o.Status)
	if res.Error != nil {
		return fmt.Errorf("updating order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&storefront.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("counting orders: %w", err)
		}
		if n == 0 {
			return storefront.ErrOrderNotFound
		}
		return storefront.ErrInvalidStatusTransition
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, q *storefront.ListOrdersQuery) (*storefront.PagedOrders, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	db := r.db.WithContext(ctx).Model(&storefront.Order{})
	if q.UserID != nil {
		db = db.Where("user_id = ?", *q.UserID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}

	var orders []*storefront.Order
	err := db.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	return &storefront.PagedOrders{
		Orders:     orders,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages(total, size),
	}, nil
}
