package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Caller identifies who is invoking a service operation. Handlers build it
// from the validated access token.
type Caller struct {
	ID        uuid.UUID
	Role      domain.Role
	IP        string
	RequestID string
}

func (c Caller) allow(roles ...domain.Role) error {
	if slices.Contains(roles, c.Role) {
		return nil
	}
	return ErrForbidden
}

func (c Caller) entry(action domain.AuditAction, resource, id string) AuditEntry {
	return AuditEntry{
		UserID:       c.ID,
		UserRole:     c.Role,
		Action:       action,
		ResourceType: resource,
		ResourceID:   id,
		IPAddress:    c.IP,
		RequestID:    c.RequestID,
	}
}

var (
	staff      = []domain.Role{domain.RoleAdmin, domain.RolePharmacist, domain.RoleCashier}
	dispensers = []domain.Role{domain.RoleAdmin, domain.RolePharmacist}
	adminsOnly = []domain.Role{domain.RoleAdmin}
)

type AuditEntry struct {
	UserID       uuid.UUID
	UserRole     domain.Role
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	StatusCode   int
	// Changes is stored as a JSON object next to the entry.
	Changes map[string]any
}

func (e AuditEntry) with(changes map[string]any) AuditEntry {
	e.Changes = changes
	return e
}

func asInsufficient(err error) (*prescription.InsufficientStockError, bool) {
	var e *prescription.InsufficientStockError
	ok := errors.As(err, &e)
	return e, ok
}

var tracer = otel.Tracer("github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/service")

func startSpan(ctx context.Context, name string, attrs ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, attrs...)
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
