package v1

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// dateField parses an optional YYYY-MM-DD request field. Failures are
// collected into errs so a request reports every bad field at once.
func dateField(name, raw string, errs *[]string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		*errs = append(*errs, name+" must be a date in YYYY-MM-DD form")
	}
	return t
}

func optionalDate(name string, raw *string, errs *[]string) *time.Time {
	if raw == nil {
		return nil
	}
	t := dateField(name, *raw, errs)
	return &t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Auth

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type createUserRequest struct {
	registerRequest
	Role domain.Role `json:"role" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type userResponse struct {
	ID          uuid.UUID   `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Role        domain.Role `json:"role"`
	IsActive    bool        `json:"is_active"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// Inventory

type medicineRequest struct {
	Name            string                 `json:"name"`
	Brand           string                 `json:"brand"`
	Category        inventory.Category     `json:"category"`
	Type            inventory.MedicineType `json:"type"`
	Description     string                 `json:"description"`
	Dosage          string                 `json:"dosage"`
	ImageURL        string                 `json:"image_url"`
	CostPrice       decimal.Decimal        `json:"cost_price"`
	SellingPrice    decimal.Decimal        `json:"selling_price"`
	QuantityInStock int                    `json:"quantity_in_stock"`
	ReorderLevel    *int                   `json:"reorder_level"`
	ManufactureDate string                 `json:"manufacture_date"`
	ExpiryDate      string                 `json:"expiry_date"`
	BatchNumber     string                 `json:"batch_number"`
	Supplier        string                 `json:"supplier"`
}

func (r *medicineRequest) command() (*inventory.CreateMedicineCommand, []string) {
	var errs []string
	cmd := &inventory.CreateMedicineCommand{
		Name:            r.Name,
		Brand:           r.Brand,
		Category:        r.Category,
		Type:            r.Type,
		Description:     r.Description,
		Dosage:          r.Dosage,
		ImageURL:        r.ImageURL,
		CostPrice:       r.CostPrice,
		SellingPrice:    r.SellingPrice,
		QuantityInStock: r.QuantityInStock,
		ReorderLevel:    r.ReorderLevel,
		ManufactureDate: dateField("manufacture_date", r.ManufactureDate, &errs),
		ExpiryDate:      dateField("expiry_date", r.ExpiryDate, &errs),
		BatchNumber:     r.BatchNumber,
		Supplier:        r.Supplier,
	}
	return cmd, errs
}

type medicineUpdateRequest struct {
	Name            *string                 `json:"name"`
	Brand           *string                 `json:"brand"`
	Category        *inventory.Category     `json:"category"`
	Type            *inventory.MedicineType `json:"type"`
	Description     *string                 `json:"description"`
	Dosage          *string                 `json:"dosage"`
	ImageURL        *string                 `json:"image_url"`
	CostPrice       *decimal.Decimal        `json:"cost_price"`
	SellingPrice    *decimal.Decimal        `json:"selling_price"`
	ReorderLevel    *int                    `json:"reorder_level"`
	ManufactureDate *string                 `json:"manufacture_date"`
	ExpiryDate      *string                 `json:"expiry_date"`
	Supplier        *string                 `json:"supplier"`
}

func (r *medicineUpdateRequest) command() (*inventory.UpdateMedicineCommand, []string) {
	var errs []string
	cmd := &inventory.UpdateMedicineCommand{
		Name:            r.Name,
		Brand:           r.Brand,
		Category:        r.Category,
		Type:            r.Type,
		Description:     r.Description,
		Dosage:          r.Dosage,
		ImageURL:        r.ImageURL,
		CostPrice:       r.CostPrice,
		SellingPrice:    r.SellingPrice,
		ReorderLevel:    r.ReorderLevel,
		ManufactureDate: optionalDate("manufacture_date", r.ManufactureDate, &errs),
		ExpiryDate:      optionalDate("expiry_date", r.ExpiryDate, &errs),
		Supplier:        r.Supplier,
	}
	return cmd, errs
}

type restockRequest struct {
	Units int `json:"units"`
}

type medicineResponse struct {
	ID              uuid.UUID              `json:"id"`
	Name            string                 `json:"name"`
	Brand           string                 `json:"brand"`
	Category        inventory.Category     `json:"category"`
	Type            inventory.MedicineType `json:"type"`
	Description     string                 `json:"description,omitempty"`
	Dosage          string                 `json:"dosage"`
	ImageURL        string                 `json:"image_url,omitempty"`
	CostPrice       decimal.Decimal        `json:"cost_price"`
	SellingPrice    decimal.Decimal        `json:"selling_price"`
	QuantityInStock int                    `json:"quantity_in_stock"`
	ReorderLevel    int                    `json:"reorder_level"`
	NeedsReorder    bool                   `json:"needs_reorder"`
	Expired         bool                   `json:"expired"`
	ManufactureDate string                 `json:"manufacture_date"`
	ExpiryDate      string                 `json:"expiry_date"`
	BatchNumber     string                 `json:"batch_number"`
	Supplier        string                 `json:"supplier"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func toMedicineResponse(m *inventory.Medicine, now time.Time) medicineResponse {
	return medicineResponse{
		ID:              m.ID,
		Name:            m.Name,
		Brand:           m.Brand,
		Category:        m.Category,
		Type:            m.Type,
		Description:     m.Description,
		Dosage:          m.Dosage,
		ImageURL:        m.ImageURL,
		CostPrice:       m.CostPrice,
		SellingPrice:    m.SellingPrice,
		QuantityInStock: m.QuantityInStock,
		ReorderLevel:    m.ReorderLevel,
		NeedsReorder:    m.NeedsReorder(),
		Expired:         m.IsExpired(now),
		ManufactureDate: formatDate(m.ManufactureDate),
		ExpiryDate:      formatDate(m.ExpiryDate),
		BatchNumber:     m.BatchNumber,
		Supplier:        m.Supplier,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toMedicineResponses(ms []*inventory.Medicine, now time.Time) []medicineResponse {
	out := make([]medicineResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMedicineResponse(m, now))
	}
	return out
}

type medicineActionResponse struct {
	ID           uuid.UUID        `json:"id"`
	MedicineID   *uuid.UUID       `json:"medicine_id"`
	MedicineName string           `json:"medicine_name"`
	BatchNumber  string           `json:"batch_number"`
	Action       inventory.Action `json:"action"`
	Timestamp    time.Time        `json:"timestamp"`
	UserID       *uuid.UUID       `json:"user_id,omitempty"`
}

func toMedicineActionResponses(actions []*inventory.MedicineAction) []medicineActionResponse {
	out := make([]medicineActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, medicineActionResponse{
			ID:           a.ID,
			MedicineID:   a.MedicineID,
			MedicineName: a.MedicineName,
			BatchNumber:  a.BatchNumber,
			Action:       a.Action,
			Timestamp:    a.Timestamp,
			UserID:       a.UserID,
		})
	}
	return out
}

type alertsResponse struct {
	LowStock   []medicineResponse `json:"low_stock"`
	NearExpiry []medicineResponse `json:"near_expiry"`
	Expired    []medicineResponse `json:"expired"`
}

type goodsRequest struct {
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"image_url"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	QuantityInStock int             `json:"quantity_in_stock"`
}

func (r *goodsRequest) command() *inventory.CreateProductCommand {
	return &inventory.CreateProductCommand{
		Name:            r.Name,
		Brand:           r.Brand,
		Category:        r.Category,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		CostPrice:       r.CostPrice,
		SellingPrice:    r.SellingPrice,
		QuantityInStock: r.QuantityInStock,
	}
}

type goodsUpdateRequest struct {
	Name         *string          `json:"name"`
	Brand        *string          `json:"brand"`
	Category     *string          `json:"category"`
	Description  *string          `json:"description"`
	ImageURL     *string          `json:"image_url"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}

func (r *goodsUpdateRequest) command() *inventory.UpdateProductCommand {
	return &inventory.UpdateProductCommand{
		Name:         r.Name,
		Brand:        r.Brand,
		Category:     r.Category,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		CostPrice:    r.CostPrice,
		SellingPrice: r.SellingPrice,
	}
}

type goodsResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand,omitempty"`
	Category        string          `json:"category,omitempty"`
	Description     string          `json:"description,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toGoodsResponse(p *inventory.NonMedicalProduct) goodsResponse {
	return goodsResponse{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		CostPrice:       p.CostPrice,
		SellingPrice:    p.SellingPrice,
		QuantityInStock: p.QuantityInStock,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// Clinic

type patientRequest struct {
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	DateOfBirth string        `json:"date_of_birth"`
	Gender      clinic.Gender `json:"gender"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Address     string        `json:"address"`
	Allergies   []string      `json:"allergies"`
}

func (r *patientRequest) command() (*clinic.CreatePatientCommand, []string) {
	var errs []string
	cmd := &clinic.CreatePatientCommand{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: dateField("date_of_birth", r.DateOfBirth, &errs),
		Gender:      r.Gender,
		Phone:       r.Phone,
		Email:       r.Email,
		Address:     r.Address,
		Allergies:   r.Allergies,
	}
	return cmd, errs
}

type patientUpdateRequest struct {
	FirstName   *string        `json:"first_name"`
	LastName    *string        `json:"last_name"`
	DateOfBirth *string        `json:"date_of_birth"`
	Gender      *clinic.Gender `json:"gender"`
	Phone       *string        `json:"phone"`
	Email       *string        `json:"email"`
	Address     *string        `json:"address"`
	Allergies   *[]string      `json:"allergies"`
}

func (r *patientUpdateRequest) command() (*clinic.UpdatePatientCommand, []string) {
	var errs []string
	cmd := &clinic.UpdatePatientCommand{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: optionalDate("date_of_birth", r.DateOfBirth, &errs),
		Gender:      r.Gender,
		Phone:       r.Phone,
		Email:       r.Email,
		Address:     r.Address,
		Allergies:   r.Allergies,
	}
	return cmd, errs
}

type patientResponse struct {
	ID          uuid.UUID     `json:"id"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	DateOfBirth string        `json:"date_of_birth"`
	Age         int           `json:"age"`
	Gender      clinic.Gender `json:"gender"`
	Phone       string        `json:"phone,omitempty"`
	Email       string        `json:"email,omitempty"`
	Address     string        `json:"address,omitempty"`
	Allergies   []string      `json:"allergies"`
	CreatedAt   time.Time     `json:"created_at"`
}

func toPatientResponse(p *clinic.Patient, now time.Time) patientResponse {
	allergies := p.Allergies
	if allergies == nil {
		allergies = []string{}
	}
	return patientResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: formatDate(p.DateOfBirth),
		Age:         p.Age(now),
		Gender:      p.Gender,
		Phone:       p.Phone,
		Email:       p.Email,
		Address:     p.Address,
		Allergies:   allergies,
		CreatedAt:   p.CreatedAt,
	}
}

type doctorRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	MedicalCode    string `json:"medical_code"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
}

func (r *doctorRequest) command() *clinic.CreateDoctorCommand {
	return &clinic.CreateDoctorCommand{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		MedicalCode:    r.MedicalCode,
		Specialization: r.Specialization,
		Phone:          r.Phone,
		Email:          r.Email,
		Address:        r.Address,
	}
}

type doctorUpdateRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	MedicalCode    *string `json:"medical_code"`
	Specialization *string `json:"specialization"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Address        *string `json:"address"`
}

func (r *doctorUpdateRequest) command() *clinic.UpdateDoctorCommand {
	return &clinic.UpdateDoctorCommand{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		MedicalCode:    r.MedicalCode,
		Specialization: r.Specialization,
		Phone:          r.Phone,
		Email:          r.Email,
		Address:        r.Address,
	}
}

type doctorResponse struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	MedicalCode    string    `json:"medical_code"`
	Specialization string    `json:"specialization,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toDoctorResponse(d *clinic.Doctor) doctorResponse {
	return doctorResponse{
		ID:             d.ID,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		MedicalCode:    d.MedicalCode,
		Specialization: d.Specialization,
		Phone:          d.Phone,
		Email:          d.Email,
		Address:        d.Address,
		CreatedAt:      d.CreatedAt,
	}
}

// Prescriptions

type prescriptionRequest struct {
	PatientID        uuid.UUID `json:"patient_id"`
	DoctorID         uuid.UUID `json:"doctor_id"`
	PrescriptionDate string    `json:"prescription_date"`
	Notes            string    `json:"notes"`
}

type prescriptionUpdateRequest struct {
	PatientID        *uuid.UUID `json:"patient_id"`
	DoctorID         *uuid.UUID `json:"doctor_id"`
	PrescriptionDate *string    `json:"prescription_date"`
	Notes            *string    `json:"notes"`
}

func (r *prescriptionUpdateRequest) command() (*prescription.UpdatePrescriptionCommand, []string) {
	var errs []string
	cmd := &prescription.UpdatePrescriptionCommand{
		PatientID:        r.PatientID,
		DoctorID:         r.DoctorID,
		PrescriptionDate: optionalDate("prescription_date", r.PrescriptionDate, &errs),
		Notes:            r.Notes,
	}
	return cmd, errs
}

type dispenseRequest struct {
	MedicineID        uuid.UUID `json:"medicine_id"`
	RequestedQuantity int       `json:"requested_quantity"`
	Dosage            string    `json:"dosage"`
	Duration          string    `json:"duration"`
	ConfirmPartial    bool      `json:"confirm_partial"`
}

type itemUpdateRequest struct {
	MedicineID        *uuid.UUID `json:"medicine_id"`
	RequestedQuantity int        `json:"requested_quantity"`
	Dosage            *string    `json:"dosage"`
	Duration          *string    `json:"duration"`
	ConfirmPartial    bool       `json:"confirm_partial"`
}

type paymentRequest struct {
	Method    prescription.PaymentMethod `json:"method" binding:"required"`
	Reference string                     `json:"reference"`
}

type interactionRequest struct {
	MedicineA   string                `json:"medicine_a"`
	MedicineB   string                `json:"medicine_b"`
	Severity    prescription.Severity `json:"severity"`
	Description string                `json:"description"`
}

type itemResponse struct {
	ID                uuid.UUID       `json:"id"`
	Position          int             `json:"position"`
	MedicineID        uuid.UUID       `json:"medicine_id"`
	MedicineName      string          `json:"medicine_name,omitempty"`
	BatchNumber       string          `json:"batch_number,omitempty"`
	RequestedQuantity int             `json:"requested_quantity"`
	DispensedQuantity int             `json:"dispensed_quantity"`
	Dosage            string          `json:"dosage"`
	Duration          string          `json:"duration"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
}

func toItemResponse(it *prescription.Item) itemResponse {
	resp := itemResponse{
		ID:                it.ID,
		Position:          it.Position,
		MedicineID:        it.MedicineID,
		RequestedQuantity: it.RequestedQuantity,
		DispensedQuantity: it.DispensedQuantity,
		Dosage:            it.Dosage,
		Duration:          it.Duration,
		UnitPrice:         it.UnitPrice,
		TotalPrice:        it.TotalPrice(),
	}
	if it.Medicine != nil {
		resp.MedicineName = it.Medicine.Name
		resp.BatchNumber = it.Medicine.BatchNumber
	}
	return resp
}

type dispenseResponse struct {
	Item      *itemResponse           `json:"item"`
	Shortfall *prescription.Shortfall `json:"shortfall,omitempty"`
	Merged    bool                    `json:"merged"`
}

func toDispenseResponse(r *prescription.DispenseResult) dispenseResponse {
	resp := dispenseResponse{Shortfall: r.Shortfall, Merged: r.Merged}
	if r.Item != nil {
		item := toItemResponse(r.Item)
		resp.Item = &item
	}
	return resp
}

type paymentResponse struct {
	ID         uuid.UUID                  `json:"id"`
	Amount     decimal.Decimal            `json:"amount"`
	Method     prescription.PaymentMethod `json:"method"`
	Reference  string                     `json:"reference,omitempty"`
	ReceivedBy uuid.UUID                  `json:"received_by"`
	CreatedAt  time.Time                  `json:"created_at"`
}

func toPaymentResponse(p *prescription.Payment) paymentResponse {
	return paymentResponse{
		ID:         p.ID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		ReceivedBy: p.ReceivedBy,
		CreatedAt:  p.CreatedAt,
	}
}

type prescriptionResponse struct {
	ID                 uuid.UUID        `json:"id"`
	PatientID          uuid.UUID        `json:"patient_id"`
	PatientName        string           `json:"patient_name,omitempty"`
	DoctorID           uuid.UUID        `json:"doctor_id"`
	DoctorName         string           `json:"doctor_name,omitempty"`
	PrescriptionDate   string           `json:"prescription_date"`
	Notes              string           `json:"notes,omitempty"`
	IsValidated        bool             `json:"is_validated"`
	InteractionWarning *string          `json:"interaction_warning,omitempty"`
	IsPaid             bool             `json:"is_paid"`
	TotalCost          decimal.Decimal  `json:"total_cost"`
	Items              []itemResponse   `json:"items"`
	Payment            *paymentResponse `json:"payment,omitempty"`
	CreatedBy          uuid.UUID        `json:"created_by"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func toPrescriptionResponse(p *prescription.Prescription) prescriptionResponse {
	resp := prescriptionResponse{
		ID:                 p.ID,
		PatientID:          p.PatientID,
		DoctorID:           p.DoctorID,
		PrescriptionDate:   formatDate(p.PrescriptionDate),
		Notes:              p.Notes,
		IsValidated:        p.IsValidated,
		InteractionWarning: p.InteractionWarning,
		IsPaid:             p.IsPaid,
		TotalCost:          p.TotalCost(),
		Items:              make([]itemResponse, 0, len(p.Items)),
		CreatedBy:          p.CreatedBy,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if p.Patient != nil {
		resp.PatientName = p.Patient.FullName()
	}
	if p.Doctor != nil {
		resp.DoctorName = p.Doctor.FullName()
	}
	for i := range p.Items {
		resp.Items = append(resp.Items, toItemResponse(&p.Items[i]))
	}
	if p.Payment != nil {
		pay := toPaymentResponse(p.Payment)
		resp.Payment = &pay
	}
	return resp
}

type interactionResponse struct {
	ID          uuid.UUID             `json:"id"`
	MedicineA   string                `json:"medicine_a"`
	MedicineB   string                `json:"medicine_b"`
	Severity    prescription.Severity `json:"severity"`
	Description string                `json:"description"`
}

func toInteractionResponse(d *prescription.DrugInteraction) interactionResponse {
	return interactionResponse{
		ID:          d.ID,
		MedicineA:   d.MedicineA,
		MedicineB:   d.MedicineB,
		Severity:    d.Severity,
		Description: d.Description,
	}
}

// Storefront

type listingRequest struct {
	Kind            storefront.Kind `json:"kind" binding:"required"`
	StockID         uuid.UUID       `json:"stock_id"`
	Featured        bool            `json:"featured"`
	AvailableOnline *bool           `json:"available_online"`
}

func (r *listingRequest) command() *storefront.CreateProductCommand {
	online := true
	if r.AvailableOnline != nil {
		online = *r.AvailableOnline
	}
	return &storefront.CreateProductCommand{
		Kind:            r.Kind,
		StockID:         r.StockID,
		Featured:        r.Featured,
		AvailableOnline: online,
	}
}

type listingUpdateRequest struct {
	Featured        *bool `json:"featured"`
	AvailableOnline *bool `json:"available_online"`
}

type cartAddRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type orderStatusRequest struct {
	Status storefront.OrderStatus `json:"status" binding:"required"`
}

type orderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Kind      storefront.Kind `json:"kind"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"user_id"`
	Status      storefront.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	Items       []orderItemResponse    `json:"items"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func toOrderResponse(o *storefront.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Items:       make([]orderItemResponse, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for i := range o.Items {
		it := &o.Items[i]
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: it.ProductID,
			Kind:      it.Kind,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		})
	}
	return resp
}
