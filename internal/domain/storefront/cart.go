package storefront

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartOpen    CartStatus = "open"
	CartOrdered CartStatus = "ordered"
)

// Cart belongs to one customer. A customer has at most one open cart;
// checkout closes it.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Status    CartStatus `gorm:"column:status;type:varchar(20);not null;default:'open';index"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (Cart) TableName() string {
	return "storefront.carts"
}

// Line returns the cart line for a product, if any.
func (c *Cart) Line(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Total prices the cart at current listing prices. Lines whose product is
// not loaded are skipped.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		if sub, ok := c.Items[i].Subtotal(); ok {
			total = total.Add(sub)
		}
	}
	return total
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index;uniqueIndex:uq_cart_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_cart_product"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity  int       `gorm:"column:quantity;not null;default:1;check:chk_cart_items_quantity,quantity >= 1"`
}

func (CartItem) TableName() string {
	return "storefront.cart_items"
}

// Subtotal is quantity times the current price.
func (i *CartItem) Subtotal() (decimal.Decimal, bool) {
	if i.Product == nil {
		return decimal.Zero, false
	}
	l, err := i.Product.Listing()
	if err != nil {
		return decimal.Zero, false
	}
	return l.Price().Mul(decimal.NewFromInt(int64(i.Quantity))), true
}
