package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CatalogueEntry is a storefront product as shoppers see it.
type CatalogueEntry struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Kind            storefront.Kind `json:"kind"`
	StockID         uuid.UUID       `json:"stock_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	InStock         int             `json:"in_stock"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"image_url,omitempty"`
	Featured        bool            `json:"featured"`
	AvailableOnline bool            `json:"available_online"`
}

type CartLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	CartID uuid.UUID       `json:"cart_id"`
	Lines  []CartLine      `json:"lines"`
	Total  decimal.Decimal `json:"total"`
}

type StorefrontService struct {
	uow     uow.Factory
	audit   *AuditService
	metrics *metrics.Collector
	log     *zap.Logger
	now     func() time.Time
}

func NewStorefrontService(f uow.Factory, audit *AuditService, m *metrics.Collector, log *zap.Logger) *StorefrontService {
	return &StorefrontService{uow: f, audit: audit, metrics: m, log: log, now: time.Now}
}

// ListProduct puts a medicine batch or a non-medical product on sale.
func (s *StorefrontService) ListProduct(ctx context.Context, cmd *storefront.CreateProductCommand, caller Caller) (*CatalogueEntry, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	if !cmd.Kind.IsValid() {
		return nil, &ValidationError{Fields: []string{"kind must be medicine or non_medical"}}
	}

	var entry *CatalogueEntry
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var p *storefront.Product
		switch cmd.Kind {
		case storefront.KindMedicine:
			m, err := u.Medicines().GetByID(ctx, cmd.StockID)
			if err != nil {
				return err
			}
			if m.IsExpired(s.now()) {
				return storefront.ErrExpiredMedicine
			}
			p = storefront.NewMedicineProduct(m)
		case storefront.KindNonMedical:
			g, err := u.NonMedical().GetByID(ctx, cmd.StockID)
			if err != nil {
				return err
			}
			p = storefront.NewGoodsProduct(g)
		}
		p.Featured = cmd.Featured
		p.AvailableOnline = cmd.AvailableOnline
		if err := u.Products().Create(ctx, p); err != nil {
			return err
		}
		var err error
		entry, err = catalogueEntry(p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "storefront_product", entry.ProductID.String()))
	return entry, nil
}

func (s *StorefrontService) UpdateListing(ctx context.Context, id uuid.UUID, cmd *storefront.UpdateProductCommand, caller Caller) (*CatalogueEntry, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	var entry *CatalogueEntry
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		p, err := u.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cmd.Featured != nil {
			p.Featured = *cmd.Featured
		}
		if cmd.AvailableOnline != nil {
			p.AvailableOnline = *cmd.AvailableOnline
		}
		if err := u.Products().Update(ctx, p); err != nil {
			return err
		}
		entry, err = catalogueEntry(p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "storefront_product", id.String()))
	return entry, nil
}

func (s *StorefrontService) RemoveListing(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := caller.allow(dispensers...); err != nil {
		return err
	}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		return u.Products().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "storefront_product", id.String()))
	return nil
}

// Catalogue lists products for sale. Expired medicine batches are never
// shown; offline products only to staff.
func (s *StorefrontService) Catalogue(ctx context.Context, q *storefront.CatalogueQuery, caller Caller) ([]CatalogueEntry, error) {
	if q.IncludeOffline && !caller.Role.IsStaff() {
		return nil, ErrForbidden
	}
	if q.Kind != nil && !q.Kind.IsValid() {
		return nil, &ValidationError{Fields: []string{"kind must be medicine or non_medical"}}
	}
	now := s.now()
	var out []CatalogueEntry
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		products, err := u.Products().List(ctx, q)
		if err != nil {
			return err
		}
		out = make([]CatalogueEntry, 0, len(products))
		for _, p := range products {
			if p.Medicine != nil && p.Medicine.IsExpired(now) {
				continue
			}
			entry, err := catalogueEntry(p)
			if err != nil {
				s.log.Warn("skipping malformed storefront product",
					zap.String("product_id", p.ID.String()),
					zap.Error(err),
				)
				continue
			}
			out = append(out, *entry)
		}
		return nil
	})
	return out, err
}

func (s *StorefrontService) Product(ctx context.Context, id uuid.UUID, caller Caller) (*CatalogueEntry, error) {
	var entry *CatalogueEntry
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		p, err := u.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.AvailableOnline && !caller.Role.IsStaff() {
			return storefront.ErrProductNotFound
		}
		entry, err = catalogueEntry(p)
		return err
	})
	return entry, err
}

func (s *StorefrontService) Cart(ctx context.Context, caller Caller) (*CartView, error) {
	if err := shopper(caller); err != nil {
		return nil, err
	}
	var view *CartView
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		cart, err := u.Carts().OpenForUser(ctx, caller.ID)
		if err != nil {
			return err
		}
		view = cartView(cart)
		return nil
	})
	return view, err
}

// AddToCart adds quantity units of a product, merging with an existing line.
// Stock is checked at checkout, not here.
func (s *StorefrontService) AddToCart(ctx context.Context, productID uuid.UUID, quantity int, caller Caller) (*CartView, error) {
	if err := shopper(caller); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, storefront.ErrInvalidQuantity
	}
	now := s.now()
	var view *CartView
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		p, err := u.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if !p.AvailableOnline {
			return storefront.ErrProductUnavailable
		}
		if p.Medicine != nil && p.Medicine.IsExpired(now) {
			return storefront.ErrExpiredMedicine
		}

		cart, err := u.Carts().OpenForUser(ctx, caller.ID)
		if err != nil {
			return err
		}
		if line := cart.Line(productID); line != nil {
			line.Quantity += quantity
			err = u.Carts().UpdateItem(ctx, line)
		} else {
			err = u.Carts().AddItem(ctx, &storefront.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity})
		}
		if err != nil {
			return err
		}
		cart, err = u.Carts().OpenForUser(ctx, caller.ID)
		if err != nil {
			return err
		}
		view = cartView(cart)
		return nil
	})
	return view, err
}

func (s *StorefrontService) SetCartQuantity(ctx context.Context, itemID uuid.UUID, quantity int, caller Caller) (*CartView, error) {
	if err := shopper(caller); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, storefront.ErrInvalidQuantity
	}
	return s.editCart(ctx, caller, func(u uow.UnitOfWork, cart *storefront.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items[i].Quantity = quantity
				return u.Carts().UpdateItem(ctx, &cart.Items[i])
			}
		}
		return storefront.ErrCartItemNotFound
	})
}

func (s *StorefrontService) RemoveFromCart(ctx context.Context, itemID uuid.UUID, caller Caller) (*CartView, error) {
	if err := shopper(caller); err != nil {
		return nil, err
	}
	return s.editCart(ctx, caller, func(u uow.UnitOfWork, cart *storefront.Cart) error {
		return u.Carts().DeleteItem(ctx, cart.ID, itemID)
	})
}

func (s *StorefrontService) editCart(ctx context.Context, caller Caller, edit func(uow.UnitOfWork, *storefront.Cart) error) (*CartView, error) {
	var view *CartView
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		cart, err := u.Carts().OpenForUser(ctx, caller.ID)
		if err != nil {
			return err
		}
		if err := edit(u, cart); err != nil {
			return err
		}
		cart, err = u.Carts().OpenForUser(ctx, caller.ID)
		if err != nil {
			return err
		}
		view = cartView(cart)
		return nil
	})
	return view, err
}

// Checkout turns the open cart into a pending order. Every line is reserved
// from its ledger in a fixed order; if any line cannot be covered in full the
// whole checkout is rolled back and nothing is taken.
func (s *StorefrontService) Checkout(ctx context.Context, caller Caller) (order *storefront.Order, err error) {
	if err := shopper(caller); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "StorefrontService.Checkout", trace.WithAttributes(
		attribute.String("user.id", caller.ID.String()),
	))
	defer func() { endSpan(span, err) }()

	now := s.now()
	reserved := map[storefront.Kind]int{}
	err = uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		cart, err := u.Carts().OpenForUser(ctx, caller.ID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return storefront.ErrCartEmpty
		}

		type pick struct {
			line    storefront.CartItem
			listing storefront.Listing
		}
		picks := make([]pick, 0, len(cart.Items))
		for _, line := range cart.Items {
			if line.Product == nil {
				return storefront.ErrProductNotFound
			}
			if !line.Product.AvailableOnline {
				return storefront.ErrProductUnavailable
			}
			l, err := line.Product.Listing()
			if err != nil {
				return err
			}
			if ml, ok := l.(storefront.MedicineListing); ok && ml.Medicine.IsExpired(now) {
				return storefront.ErrExpiredMedicine
			}
			picks = append(picks, pick{line: line, listing: l})
		}
		slices.SortFunc(picks, func(a, b pick) int {
			if c := strings.Compare(string(a.listing.Kind()), string(b.listing.Kind())); c != 0 {
				return c
			}
			return strings.Compare(a.listing.StockID().String(), b.listing.StockID().String())
		})

		order = &storefront.Order{
			UserID:      caller.ID,
			CartID:      cart.ID,
			Status:      storefront.OrderPending,
			TotalAmount: decimal.Zero,
		}
		for _, p := range picks {
			got, err := ledgerFor(u, p.listing.Kind()).Reserve(ctx, p.listing.StockID(), p.line.Quantity)
			if err != nil {
				return err
			}
			if got < p.line.Quantity {
				return &storefront.InsufficientStockError{
					ProductID: p.line.ProductID,
					Name:      p.listing.Name(),
					Available: got,
					Requested: p.line.Quantity,
				}
			}
			reserved[p.listing.Kind()] += got
			item := storefront.OrderItem{
				ProductID: p.line.ProductID,
				Kind:      p.listing.Kind(),
				StockID:   p.listing.StockID(),
				Name:      p.listing.Name(),
				Quantity:  p.line.Quantity,
				Price:     p.listing.Price(),
			}
			order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
			order.Items = append(order.Items, item)
		}

		if err := u.Orders().Create(ctx, order); err != nil {
			return err
		}
		cart.Status = storefront.CartOrdered
		return u.Carts().Update(ctx, cart)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Order(string(storefront.OrderPending))
	s.metrics.Stock("medicine", "out", reserved[storefront.KindMedicine])
	s.metrics.Stock("goods", "out", reserved[storefront.KindNonMedical])
	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "order", order.ID.String()).with(map[string]any{
		"total": order.TotalAmount.StringFixed(2),
		"lines": len(order.Items),
	}))
	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", caller.ID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(order.Items)),
	)
	return order, nil
}

// Orders lists orders. Customers only ever see their own.
func (s *StorefrontService) Orders(ctx context.Context, q *storefront.ListOrdersQuery, caller Caller) (*storefront.PagedOrders, error) {
	if err := shopper(caller); err != nil {
		return nil, err
	}
	if !caller.Role.IsStaff() {
		id := caller.ID
		q.UserID = &id
	}
	if q.Status != nil && !q.Status.IsValid() {
		return nil, &ValidationError{Fields: []string{"status is invalid"}}
	}
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize)
	var out *storefront.PagedOrders
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		out, err = u.Orders().List(ctx, q)
		return err
	})
	return out, err
}

func (s *StorefrontService) Order(ctx context.Context, id uuid.UUID, caller Caller) (*storefront.Order, error) {
	if err := shopper(caller); err != nil {
		return nil, err
	}
	var o *storefront.Order
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		o, err = u.Orders().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !caller.Role.IsStaff() && o.UserID != caller.ID {
		return nil, ErrForbidden
	}
	return o, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Staff may ship,
// deliver or cancel; a customer may only cancel their own pending order.
// Cancelling returns every line to stock.
func (s *StorefrontService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, next storefront.OrderStatus, caller Caller) (*storefront.Order, error) {
	if err := shopper(caller); err != nil {
		return nil, err
	}
	if !next.IsValid() {
		return nil, &ValidationError{Fields: []string{"status is invalid"}}
	}

	var o *storefront.Order
	returned := map[storefront.Kind]int{}
	var from storefront.OrderStatus
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		o, err = u.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !caller.Role.IsStaff() && (o.UserID != caller.ID || next != storefront.OrderCancelled) {
			return ErrForbidden
		}
		if !o.CanTransitionTo(next) {
			return storefront.ErrInvalidStatusTransition
		}
		from = o.Status
		o.Status = next
		if err := u.Orders().UpdateStatus(ctx, o, from); err != nil {
			return err
		}
		if next == storefront.OrderCancelled {
			for _, it := range o.Items {
				if err := ledgerFor(u, it.Kind).Release(ctx, it.StockID, it.Quantity); err != nil {
					return err
				}
				returned[it.Kind] += it.Quantity
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Order(string(next))
	s.metrics.Stock("medicine", "in", returned[storefront.KindMedicine])
	s.metrics.Stock("goods", "in", returned[storefront.KindNonMedical])
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "order", id.String()).with(map[string]any{
		"from": from,
		"to":   next,
	}))
	s.log.Info("order status changed",
		zap.String("order_id", id.String()),
		zap.String("status", string(next)),
	)
	return o, nil
}

func ledgerFor(u uow.UnitOfWork, k storefront.Kind) inventory.Ledger {
	if k == storefront.KindMedicine {
		return u.Ledger()
	}
	return u.GoodsLedger()
}

func shopper(caller Caller) error {
	if caller.ID == uuid.Nil || !caller.Role.IsValid() {
		return ErrForbidden
	}
	return nil
}

func catalogueEntry(p *storefront.Product) (*CatalogueEntry, error) {
	l, err := p.Listing()
	if err != nil {
		return nil, err
	}
	return &CatalogueEntry{
		ProductID:       p.ID,
		Kind:            l.Kind(),
		StockID:         l.StockID(),
		Name:            l.Name(),
		Price:           l.Price(),
		InStock:         l.Stock(),
		Description:     l.Description(),
		ImageURL:        l.ImageURL(),
		Featured:        p.Featured,
		AvailableOnline: p.AvailableOnline,
	}, nil
}

func cartView(c *storefront.Cart) *CartView {
	view := &CartView{CartID: c.ID, Lines: make([]CartLine, 0, len(c.Items)), Total: c.Total()}
	for i := range c.Items {
		it := &c.Items[i]
		line := CartLine{ItemID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity}
		if it.Product != nil {
			if l, err := it.Product.Listing(); err == nil {
				line.Name = l.Name()
				line.Price = l.Price()
			}
		}
		line.Subtotal, _ = it.Subtotal()
		view.Lines = append(view.Lines, line)
	}
	return view
}
