package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

// ShortfallResponse is the 409 body of a dispense that needs confirmation.
type ShortfallResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code"`
	Shortfall prescription.Shortfall `json:"shortfall"`
}

// StockShortageResponse is the 409 body of a checkout that could not be filled.
type StockShortageResponse struct {
	Error    string                             `json:"error"`
	Code     string                             `json:"code"`
	Shortage *storefront.InsufficientStockError `json:"shortage"`
}

type PagedResponse[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	var shortErr *prescription.InsufficientStockError
	if errors.As(err, &shortErr) {
		c.JSON(http.StatusConflict, ShortfallResponse{
			Error:     shortErr.Error(),
			Code:      "INSUFFICIENT_STOCK",
			Shortfall: shortErr.Shortfall,
		})
		return
	}

	var shopErr *storefront.InsufficientStockError
	if errors.As(err, &shopErr) {
		c.JSON(http.StatusConflict, StockShortageResponse{
			Error:    shopErr.Error(),
			Code:     "INSUFFICIENT_STOCK",
			Shortage: shopErr,
		})
		return
	}

	switch {
	case errors.Is(err, clinic.ErrPatientNotFound),
		errors.Is(err, clinic.ErrDoctorNotFound),
		errors.Is(err, inventory.ErrMedicineNotFound),
		errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, prescription.ErrPrescriptionNotFound),
		errors.Is(err, prescription.ErrItemNotFound),
		errors.Is(err, prescription.ErrPaymentNotFound),
		errors.Is(err, prescription.ErrInteractionNotFound),
		errors.Is(err, storefront.ErrProductNotFound),
		errors.Is(err, storefront.ErrCartNotFound),
		errors.Is(err, storefront.ErrCartItemNotFound),
		errors.Is(err, storefront.ErrOrderNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, prescription.ErrPaymentExists),
		errors.Is(err, prescription.ErrAlreadyPaid),
		errors.Is(err, prescription.ErrInteractionExists),
		errors.Is(err, prescription.ErrDuplicateItem),
		errors.Is(err, clinic.ErrHasPrescriptions),
		errors.Is(err, clinic.ErrMedicalCodeTaken),
		errors.Is(err, inventory.ErrMedicineInUse),
		errors.Is(err, inventory.ErrProductInUse),
		errors.Is(err, inventory.ErrBatchNumberTaken),
		errors.Is(err, storefront.ErrProductInUse),
		errors.Is(err, storefront.ErrProductAlreadyListed),
		errors.Is(err, domain.ErrUserExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, prescription.ErrInvalidQuantity),
		errors.Is(err, prescription.ErrBatchImmutable),
		errors.Is(err, prescription.ErrEmptyPrescription),
		errors.Is(err, prescription.ErrInvalidPaymentMethod),
		errors.Is(err, clinic.ErrInvalidGender),
		errors.Is(err, clinic.ErrInvalidDateOfBirth),
		errors.Is(err, clinic.ErrMedicalCodeRequired),
		errors.Is(err, inventory.ErrNegativeAmount),
		errors.Is(err, inventory.ErrExpiryBeforeManufacture),
		errors.Is(err, inventory.ErrInvalidCategory),
		errors.Is(err, inventory.ErrInvalidMedicineType),
		errors.Is(err, storefront.ErrInvalidQuantity),
		errors.Is(err, storefront.ErrCartEmpty),
		errors.Is(err, storefront.ErrProductUnavailable),
		errors.Is(err, storefront.ErrExpiredMedicine),
		errors.Is(err, storefront.ErrInvalidStatusTransition),
		errors.Is(err, storefront.ErrInvalidVariant):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "account is inactive", Code: "ACCOUNT_INACTIVE"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// parseQueryUUID reads an optional UUID filter. A malformed value answers 400.
func parseQueryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": must be a valid UUID"})
		return nil, false
	}
	return &id, true
}

func parseQueryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": expected YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

func parseQueryBool(c *gin.Context, key string) (*bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": expected true or false"})
		return nil, false
	}
	return &v, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
