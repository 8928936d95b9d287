package storefront

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allowed transitions:
//
//	pending → shipped → delivered
//	pending → cancelled (stock is returned)
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	CartID      uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex"`
	Status      OrderStatus     `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "storefront.orders"
}

func (o *Order) CanTransitionTo(next OrderStatus) bool {
	allowed := map[OrderStatus][]OrderStatus{
		OrderPending:   {OrderShipped, OrderCancelled},
		OrderShipped:   {OrderDelivered},
		OrderDelivered: {},
		OrderCancelled: {},
	}
	for _, s := range allowed[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// OrderItem keeps the price the customer paid, independent of later price changes.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Kind      Kind            `gorm:"column:kind;type:varchar(20);not null"`
	StockID   uuid.UUID       `gorm:"column:stock_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;type:varchar(150);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
}

func (OrderItem) TableName() string {
	return "storefront.order_items"
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ListOrdersQuery struct {
	UserID   *uuid.UUID
	Status   *OrderStatus
	Page     int
	PageSize int
}

type PagedOrders struct {
	Orders     []*Order
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
