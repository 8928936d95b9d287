package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/google/uuid"
)

func (u *unit) productOrdered(productID uuid.UUID) bool {
	for _, oi := range u.state.orderItems {
		if oi.ProductID == productID {
			return true
		}
	}
	return false
}

// dropProduct removes a listing and the cart lines that point at it.
func (u *unit) dropProduct(productID uuid.UUID) {
	for id, ci := range u.state.cartItems {
		if ci.ProductID == productID {
			delete(u.state.cartItems, id)
		}
	}
	delete(u.state.products, productID)
}

// loadProduct attaches the backing stock record.
func (u *unit) loadProduct(p storefront.Product) *storefront.Product {
	p.Medicine = nil
	p.NonMedicalProduct = nil
	if p.MedicineID != nil {
		if m, ok := u.state.medicines[*p.MedicineID]; ok {
			p.Medicine = &m
		}
	}
	if p.NonMedicalProductID != nil {
		if g, ok := u.state.goods[*p.NonMedicalProductID]; ok {
			p.NonMedicalProduct = &g
		}
	}
	return &p
}

type productRepo struct{ u *unit }

func (r productRepo) Create(_ context.Context, p *storefront.Product) error {
	switch p.Kind {
	case storefront.KindMedicine:
		if p.MedicineID == nil || p.NonMedicalProductID != nil {
			return storefront.ErrInvalidVariant
		}
		if _, ok := r.u.state.medicines[*p.MedicineID]; !ok {
			return inventory.ErrMedicineNotFound
		}
	case storefront.KindNonMedical:
		if p.NonMedicalProductID == nil || p.MedicineID != nil {
			return storefront.ErrInvalidVariant
		}
		if _, ok := r.u.state.goods[*p.NonMedicalProductID]; !ok {
			return inventory.ErrProductNotFound
		}
	default:
		return storefront.ErrInvalidVariant
	}
	for _, existing := range r.u.state.products {
		if sameRef(existing.MedicineID, p.MedicineID) || sameRef(existing.NonMedicalProductID, p.NonMedicalProductID) {
			return storefront.ErrProductAlreadyListed
		}
	}
	p.ID = newID(p.ID)
	p.CreatedAt = r.u.now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.Medicine = nil
	stored.NonMedicalProduct = nil
	r.u.state.products[p.ID] = stored
	return nil
}

func sameRef(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

func (r productRepo) GetByID(_ context.Context, id uuid.UUID) (*storefront.Product, error) {
	p, ok := r.u.state.products[id]
	if !ok {
		return nil, storefront.ErrProductNotFound
	}
	return r.u.loadProduct(p), nil
}

func (r productRepo) Update(_ context.Context, p *storefront.Product) error {
	stored, ok := r.u.state.products[p.ID]
	if !ok {
		return storefront.ErrProductNotFound
	}
	stored.Featured = p.Featured
	stored.AvailableOnline = p.AvailableOnline
	stored.UpdatedAt = r.u.now()
	r.u.state.products[p.ID] = stored
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r productRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.u.state.products[id]; !ok {
		return storefront.ErrProductNotFound
	}
	if r.u.productOrdered(id) {
		return storefront.ErrProductInUse
	}
	r.u.dropProduct(id)
	return nil
}

func (r productRepo) List(_ context.Context, q *storefront.CatalogueQuery) ([]*storefront.Product, error) {
	var out []*storefront.Product
	for _, p := range r.u.state.products {
		if q.Kind != nil && p.Kind != *q.Kind {
			continue
		}
		if q.FeaturedOnly && !p.Featured {
			continue
		}
		if !q.IncludeOffline && !p.AvailableOnline {
			continue
		}
		out = append(out, r.u.loadProduct(p))
	}
	slices.SortFunc(out, func(a, b *storefront.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

type cartRepo struct{ u *unit }

func (r cartRepo) OpenForUser(_ context.Context, userID uuid.UUID) (*storefront.Cart, error) {
	for _, c := range r.u.state.carts {
		if c.UserID == userID && c.Status == storefront.CartOpen {
			return r.u.loadCart(c), nil
		}
	}
	c := storefront.Cart{
		ID:        uuid.New(),
		CreatedAt: r.u.now(),
		UserID:    userID,
		Status:    storefront.CartOpen,
	}
	r.u.state.carts[c.ID] = c
	return r.u.loadCart(c), nil
}

func (u *unit) loadCart(c storefront.Cart) *storefront.Cart {
	c.Items = nil
	for _, ci := range u.state.cartItems {
		if ci.CartID != c.ID {
			continue
		}
		if p, ok := u.state.products[ci.ProductID]; ok {
			ci.Product = u.loadProduct(p)
		}
		c.Items = append(c.Items, ci)
	}
	slices.SortFunc(c.Items, func(a, b storefront.CartItem) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return &c
}

func (r cartRepo) Update(_ context.Context, c *storefront.Cart) error {
	stored, ok := r.u.state.carts[c.ID]
	if !ok {
		return storefront.ErrCartNotFound
	}
	stored.Status = c.Status
	r.u.state.carts[c.ID] = stored
	return nil
}

func (r cartRepo) AddItem(_ context.Context, item *storefront.CartItem) error {
	if _, ok := r.u.state.carts[item.CartID]; !ok {
		return storefront.ErrCartNotFound
	}
	if _, ok := r.u.state.products[item.ProductID]; !ok {
		return storefront.ErrProductNotFound
	}
	if item.Quantity < 1 {
		return storefront.ErrInvalidQuantity
	}
	item.ID = newID(item.ID)
	item.CreatedAt = r.u.now()
	stored := *item
	stored.Product = nil
	r.u.state.cartItems[item.ID] = stored
	return nil
}

func (r cartRepo) UpdateItem(_ context.Context, item *storefront.CartItem) error {
	stored, ok := r.u.state.cartItems[item.ID]
	if !ok || stored.CartID != item.CartID {
		return storefront.ErrCartItemNotFound
	}
	if item.Quantity < 1 {
		return storefront.ErrInvalidQuantity
	}
	stored.Quantity = item.Quantity
	r.u.state.cartItems[item.ID] = stored
	return nil
}

func (r cartRepo) DeleteItem(_ context.Context, cartID, itemID uuid.UUID) error {
	stored, ok := r.u.state.cartItems[itemID]
	if !ok || stored.CartID != cartID {
		return storefront.ErrCartItemNotFound
	}
	delete(r.u.state.cartItems, itemID)
	return nil
}

type orderRepo struct{ u *unit }

func (r orderRepo) Create(_ context.Context, o *storefront.Order) error {
	o.ID = newID(o.ID)
	o.CreatedAt = r.u.now()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].ID = newID(o.Items[i].ID)
		o.Items[i].OrderID = o.ID
		stored := o.Items[i]
		stored.Product = nil
		r.u.state.orderItems[stored.ID] = stored
	}
	stored := *o
	stored.Items = nil
	r.u.state.orders[o.ID] = stored
	return nil
}

func (u *unit) loadOrder(o storefront.Order) *storefront.Order {
	o.Items = nil
	for _, oi := range u.state.orderItems {
		if oi.OrderID == o.ID {
			o.Items = append(o.Items, oi)
		}
	}
	slices.SortFunc(o.Items, func(a, b storefront.OrderItem) int {
		return strings.Compare(a.Name, b.Name)
	})
	return &o
}

func (r orderRepo) GetByID(_ context.Context, id uuid.UUID) (*storefront.Order, error) {
	o, ok := r.u.state.orders[id]
	if !ok {
		return nil, storefront.ErrOrderNotFound
	}
	return r.u.loadOrder(o), nil
}

func (r orderRepo) UpdateStatus(_ context.Context, o *storefront.Order, from storefront.OrderStatus) error {
	stored, ok := r.u.state.orders[o.ID]
	if !ok {
		return storefront.ErrOrderNotFound
	}
	if stored.Status != from {
		return storefront.ErrInvalidStatusTransition
	}
	stored.Status = o.Status
	stored.UpdatedAt = r.u.now()
	r.u.state.orders[o.ID] = stored
	o.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r orderRepo) List(_ context.Context, q *storefront.ListOrdersQuery) (*storefront.PagedOrders, error) {
	var matched []*storefront.Order
	for _, o := range r.u.state.orders {
		if q.UserID != nil && o.UserID != *q.UserID {
			continue
		}
		if q.Status != nil && o.Status != *q.Status {
			continue
		}
		matched = append(matched, r.u.loadOrder(o))
	}
	slices.SortFunc(matched, func(a, b *storefront.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	from, to, pages := paginate(len(matched), q.Page, q.PageSize)
	return &storefront.PagedOrders{
		Orders:     matched[from:to],
		TotalCount: int64(len(matched)),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: pages,
	}, nil
}
