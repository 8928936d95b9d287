package inventory

import "errors"

var (
	ErrMedicineNotFound        = errors.New("medicine not found")
	ErrProductNotFound         = errors.New("non-medical product not found")
	ErrBatchNumberTaken        = errors.New("a medicine with this batch number already exists")
	ErrMedicineInUse           = errors.New("medicine is referenced by a prescription and cannot be deleted")
	ErrProductInUse            = errors.New("non-medical product is referenced by orders and cannot be deleted")
	ErrNegativeAmount          = errors.New("stock amount must not be negative")
	ErrExpiryBeforeManufacture = errors.New("expiry date must be after manufacture date")
	ErrInvalidCategory         = errors.New("invalid medicine category")
	ErrInvalidMedicineType     = errors.New("medicine type must be RX or OTC")
)
