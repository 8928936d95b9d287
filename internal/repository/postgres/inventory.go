package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// medicineColumns are the catalogue columns Update may write. Stock is left
// to the ledger.
var medicineColumns = []string{
	"name", "brand", "category", "medicine_type", "description", "dosage", "image_url",
	"cost_price", "selling_price", "reorder_level", "manufacture_date", "expiry_date",
	"batch_number", "supplier",
}

type MedicineRepository struct {
	db *gorm.DB
}

func (r *MedicineRepository) Create(ctx context.Context, m *inventory.Medicine) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return inventory.ErrBatchNumberTaken
		}
		return fmt.Errorf("inserting medicine: %w", err)
	}
	return nil
}

func (r *MedicineRepository) GetByID(ctx context.Context, id uuid.UUID) (*inventory.Medicine, error) {
	var m inventory.Medicine
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrMedicineNotFound
		}
		return nil, fmt.Errorf("fetching medicine: %w", err)
	}
	return &m, nil
}

func (r *MedicineRepository) GetByBatchNumber(ctx context.Context, batchNumber string) (*inventory.Medicine, error) {
	var m inventory.Medicine
	if err := r.db.WithContext(ctx).Where("batch_number = ?", batchNumber).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrMedicineNotFound
		}
		return nil, fmt.Errorf("fetching medicine by batch: %w", err)
	}
	return &m, nil
}

func (r *MedicineRepository) Update(ctx context.Context, m *inventory.Medicine) error {
	res := r.db.WithContext(ctx).Model(m).Select(medicineColumns).Updates(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return inventory.ErrBatchNumberTaken
		}
		return fmt.Errorf("updating medicine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrMedicineNotFound
	}
	return nil
}

func (r *MedicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&inventory.Medicine{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return inventory.ErrMedicineInUse
		}
		return fmt.Errorf("deleting medicine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrMedicineNotFound
	}
	return nil
}

func (r *MedicineRepository) List(ctx context.Context, q *inventory.ListMedicinesQuery) (*inventory.PagedMedicines, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	db := r.db.WithContext(ctx).Model(&inventory.Medicine{})

	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + s + "%"
		db = db.Where("name ILIKE ? OR brand ILIKE ? OR batch_number ILIKE ?", like, like, like)
	}
	if q.Category != nil {
		db = db.Where("category = ?", *q.Category)
	}
	if q.Type != nil {
		db = db.Where("medicine_type = ?", *q.Type)
	}
	if q.LowStock {
		db = db.Where("quantity_in_stock <= reorder_level")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting medicines: %w", err)
	}

	var medicines []*inventory.Medicine
	err := db.Order("name ASC, batch_number ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&medicines).Error
	if err != nil {
		return nil, fmt.Errorf("listing medicines: %w", err)
	}

	return &inventory.PagedMedicines{
		Medicines:  medicines,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages(total, size),
	}, nil
}

func (r *MedicineRepository) LowStock(ctx context.Context) ([]*inventory.Medicine, error) {
	var out []*inventory.Medicine
	err := r.db.WithContext(ctx).
		Where("quantity_in_stock <= reorder_level").
		Order("quantity_in_stock ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing low stock: %w", err)
	}
	return out, nil
}

func (r *MedicineRepository) ExpiringBefore(ctx context.Context, cutoff time.Time) ([]*inventory.Medicine, error) {
	var out []*inventory.Medicine
	err := r.db.WithContext(ctx).
		Where("expiry_date < ?", cutoff).
		Order("expiry_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing expiring medicines: %w", err)
	}
	return out, nil
}

type ActionRepository struct {
	db *gorm.DB
}

func (r *ActionRepository) Record(ctx context.Context, a *inventory.MedicineAction) error {
	if err := r.db.WithContext(ctx).Omit("Medicine").Create(a).Error; err != nil {
		return fmt.Errorf("recording medicine action: %w", err)
	}
	return nil
}

func (r *ActionRepository) ListByMedicine(ctx context.Context, medicineID uuid.UUID) ([]*inventory.MedicineAction, error) {
	var out []*inventory.MedicineAction
	err := r.db.WithContext(ctx).
		Where("medicine_id = ?", medicineID).
		Order("timestamp DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing medicine actions: %w", err)
	}
	return out, nil
}

var goodsColumns = []string{
	"name", "brand", "category", "description", "image_url", "cost_price", "selling_price",
}

type GoodsRepository struct {
	db *gorm.DB
}

func (r *GoodsRepository) Create(ctx context.Context, p *inventory.NonMedicalProduct) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (r *GoodsRepository) GetByID(ctx context.Context, id uuid.UUID) (*inventory.NonMedicalProduct, error) {
	var p inventory.NonMedicalProduct
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrProductNotFound
		}
		return nil, fmt.Errorf("fetching product: %w", err)
	}
	return &p, nil
}

func (r *GoodsRepository) Update(ctx context.Context, p *inventory.NonMedicalProduct) error {
	res := r.db.WithContext(ctx).Model(p).Select(goodsColumns).Updates(p)
	if res.Error != nil {
		return fmt.Errorf("updating product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrProductNotFound
	}
	return nil
}

func (r *GoodsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&inventory.NonMedicalProduct{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return inventory.ErrProductInUse
		}
		return fmt.Errorf("deleting product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrProductNotFound
	}
	return nil
}

func (r *GoodsRepository) List(ctx context.Context, search string) ([]*inventory.NonMedicalProduct, error) {
	db := r.db.WithContext(ctx)
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		db = db.Where("name ILIKE ? OR brand ILIKE ?", like, like)
	}
	var out []*inventory.NonMedicalProduct
	if err := db.Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return out, nil
}
