package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type RegisterCommand struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	// Role is honoured only when an admin creates the account; self
	// registration always yields a customer.
	Role domain.Role
}

type AuthService struct {
	userRepo   UserRepository
	jwtManager *auth.JWTManager
	audit      *AuditService
	log        *zap.Logger
	cost       int
}

func NewAuthService(userRepo UserRepository, jwtManager *auth.JWTManager, audit *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager, audit: audit, log: log, cost: bcrypt.DefaultCost}
}

// Register creates a customer account for the online shop.
func (s *AuthService) Register(ctx context.Context, cmd *RegisterCommand, ip string) (*domain.User, error) {
	cmd.Role = domain.RoleCustomer
	u, err := s.createUser(ctx, cmd)
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, AuditEntry{
		UserID: u.ID, UserRole: u.Role, Action: domain.ActionCreate,
		ResourceType: "user", ResourceID: u.ID.String(), IPAddress: ip,
	})
	return u, nil
}

// CreateUser lets an admin open an account with any role.
func (s *AuthService) CreateUser(ctx context.Context, cmd *RegisterCommand, caller Caller) (*domain.User, error) {
	if err := caller.allow(adminsOnly...); err != nil {
		return nil, err
	}
	if !cmd.Role.IsValid() {
		return nil, &ValidationError{Fields: []string{"role: must be admin, pharmacist, cashier or customer"}}
	}
	u, err := s.createUser(ctx, cmd)
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "user", u.ID.String()))
	return u, nil
}

func (s *AuthService) createUser(ctx context.Context, cmd *RegisterCommand) (*domain.User, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))

	var errs []string
	if cmd.Username == "" {
		errs = append(errs, "username is required")
	}
	if _, err := mail.ParseAddress(cmd.Email); err != nil {
		errs = append(errs, "email: invalid address")
	}
	if err := validatePasswordStrength(cmd.Password); err != nil {
		errs = append(errs, "password: "+err.Error())
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Username:          cmd.Username,
		Email:             cmd.Email,
		PasswordHash:      string(hash),
		FirstName:         strings.TrimSpace(cmd.FirstName),
		LastName:          strings.TrimSpace(cmd.LastName),
		Role:              cmd.Role,
		IsActive:          true,
		PasswordChangedAt: time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, ip string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Hash anyway so response time does not reveal whether the email exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), s.cost)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		_ = s.userRepo.UpdateLoginAttempt(ctx, user.ID, false)
		s.log.Warn("failed login attempt",
			zap.String("email", user.Email),
			zap.String("ip", ip),
		)
		return nil, ErrInvalidCredentials
	}

	_ = s.userRepo.UpdateLoginAttempt(ctx, user.ID, true)

	pair, err := s.jwtManager.GenerateTokenPair(claimsFor(user))
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.audit.LogAsync(ctx, AuditEntry{
		UserID: user.ID, UserRole: user.Role, Action: domain.ActionLogin,
		ResourceType: "session", ResourceID: user.ID.String(), IPAddress: ip,
	})
	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)

	return pair, nil
}

// RefreshToken issues a new pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Role or status may have changed since the token was issued.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if claims.PasswordStamp != passwordStamp(user) {
		s.log.Info("refresh token predates a password change", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(claimsFor(user))
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, caller Caller, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return &ValidationError{Fields: []string{"new_password: " + err.Error()}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "user_password", user.ID.String()))
	return nil
}

func claimsFor(u *domain.User) *domain.Claims {
	return &domain.Claims{
		UserID:        u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		PasswordStamp: passwordStamp(u),
	}
}

// passwordStamp survives the microsecond precision of the users table.
func passwordStamp(u *domain.User) int64 {
	return u.PasswordChangedAt.UnixMilli()
}

func validatePasswordStrength(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	return nil
}
