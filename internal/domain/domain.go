package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RolePharmacist Role = "pharmacist"
	RoleCashier    Role = "cashier"
	RoleCustomer   Role = "customer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePharmacist, RoleCashier, RoleCustomer:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to pharmacy personnel.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RolePharmacist || r == RoleCashier
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("a user with this username or email already exists")
)

const (
	MaxFailedLogins = 5
	LoginLockout    = 15 * time.Minute
)

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Username     string `gorm:"column:username;type:varchar(150);uniqueIndex;not null"`
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	FirstName    string `gorm:"column:first_name;type:varchar(100)"`
	LastName     string `gorm:"column:last_name;type:varchar(100)"`
	Role         Role   `gorm:"column:role;type:varchar(30);not null;index"`

	IsActive          bool       `gorm:"column:is_active;default:true;index"`
	FailedLoginCount  int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil       *time.Time `gorm:"column:locked_until"`
	LastLoginAt       *time.Time `gorm:"column:last_login_at"`
	PasswordChangedAt time.Time  `gorm:"column:password_changed_at"`
}

func (User) TableName() string {
	return "auth.users"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// RecordLogin applies the outcome of a login attempt. Reaching
// MaxFailedLogins consecutive failures locks the account for LoginLockout.
func (u *User) RecordLogin(success bool, now time.Time) {
	if success {
		u.FailedLoginCount = 0
		u.LockedUntil = nil
		u.LastLoginAt = &now
		return
	}
	u.FailedLoginCount++
	if u.FailedLoginCount >= MaxFailedLogins {
		until := now.Add(LoginLockout)
		u.LockedUntil = &until
		u.FailedLoginCount = 0
	}
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	UserRole  Role      `gorm:"column:user_role;type:varchar(30);not null"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID  string `gorm:"column:request_id;type:varchar(50);index"`
	StatusCode int    `gorm:"column:status_code"`

	Changes string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID   uuid.UUID `json:"sub"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	// PasswordStamp is the user's PasswordChangedAt in Unix milliseconds.
	// Only refresh tokens carry it; a password change invalidates them.
	PasswordStamp int64 `json:"pwd,omitempty"`
}
