package storefront

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepository interface {
	// Create returns ErrProductAlreadyListed if the stock item already has a product.
	Create(ctx context.Context, p *Product) error
	// GetByID loads the product with its backing record.
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *CatalogueQuery) ([]*Product, error)
}

type CartRepository interface {
	// OpenForUser returns the open cart of the user, creating one if needed.
	// Items are loaded with their products. The cart stays locked until the
	// unit of work ends.
	OpenForUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Update(ctx context.Context, c *Cart) error
	AddItem(ctx context.Context, item *CartItem) error
	UpdateItem(ctx context.Context, item *CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// UpdateStatus writes o.Status only if the stored status is still from,
	// and returns ErrInvalidStatusTransition otherwise.
	UpdateStatus(ctx context.Context, o *Order, from OrderStatus) error
	List(ctx context.Context, q *ListOrdersQuery) (*PagedOrders, error)
}
