package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NonMedicalProduct is anything sold over the counter that is not a medicine
// batch: hygiene, devices, cosmetics.
type NonMedicalProduct struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name        string `gorm:"column:name;type:varchar(150);not null;index"`
	Brand       string `gorm:"column:brand;type:varchar(100)"`
	Category    string `gorm:"column:category;type:varchar(50);index"`
	Description string `gorm:"column:description;type:text"`
	ImageURL    string `gorm:"column:image_url;type:varchar(255)"`

	CostPrice    decimal.Decimal `gorm:"column:cost_price;type:numeric(10,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"column:selling_price;type:numeric(10,2);not null;default:0"`

	QuantityInStock int `gorm:"column:quantity_in_stock;not null;check:chk_goods_stock_non_negative,quantity_in_stock >= 0"`
}

func (NonMedicalProduct) TableName() string {
	return "inventory.non_medical_products"
}

type CreateProductCommand struct {
	Name            string
	Brand           string
	Category        string
	Description     string
	ImageURL        string
	CostPrice       decimal.Decimal
	SellingPrice    decimal.Decimal
	QuantityInStock int
}

type UpdateProductCommand struct {
	Name         *string
	Brand        *string
	Category     *string
	Description  *string
	ImageURL     *string
	CostPrice    *decimal.Decimal
	SellingPrice *decimal.Decimal
}

func (c *UpdateProductCommand) Apply(p *NonMedicalProduct) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Brand != nil {
		p.Brand = *c.Brand
	}
	if c.Category != nil {
		p.Category = *c.Category
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.ImageURL != nil {
		p.ImageURL = *c.ImageURL
	}
	if c.CostPrice != nil {
		p.CostPrice = *c.CostPrice
	}
	if c.SellingPrice != nil {
		p.SellingPrice = *c.SellingPrice
	}
}
