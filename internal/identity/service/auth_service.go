package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"task-manager/backend/internal/apperror"
	"task-manager/backend/internal/telemetry"
	userdomain "task-manager/backend/internal/user/domain"
	userrepo "task-manager/backend/internal/user/repository"
)

const (
	instrumentationName = "task-manager/identity"
	eventSource         = "auth-service"

	// DefaultMinPasswordLength applies when the service is built with a non-positive minimum.
	DefaultMinPasswordLength = 6
	// MaxPasswordLength is the longest password bcrypt can hash, in bytes.
	MaxPasswordLength = 72
)

// Messages returned to callers. Login never says which half of the credentials was wrong.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidToken       = "Token is not valid"
	MsgEmailTaken         = "User already exists"
)

// AuthResult is the outcome of Register and Login: a fresh session token and the public user view.
type AuthResult struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"-"`
	User      userdomain.PublicUser `json:"user"`
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) bool
}

// TokenIssuer mints and validates session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
	Validate(token string) (string, error)
}

// AuthService registers users, logs them in and verifies session tokens.
type AuthService struct {
	users       UserRepo
	hasher      PasswordHasher
	tokens      TokenIssuer
	minPassword int
	events      telemetry.EventEmitter
	attempts    metric.Int64Counter
}

// NewAuthService returns an AuthService. events may be nil to disable event emission.
func NewAuthService(users UserRepo, hasher PasswordHasher, tokens TokenIssuer, minPasswordLength int, events telemetry.EventEmitter) *AuthService {
	if minPasswordLength <= 0 {
		minPasswordLength = DefaultMinPasswordLength
	}
	attempts, _ := otel.Meter(instrumentationName).Int64Counter("auth.attempts",
		metric.WithDescription("Register and login attempts by outcome"))
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		minPassword: minPasswordLength,
		events:      events,
		attempts:    attempts,
	}
}

// Register creates a user with a bcrypt hash of password and returns a token for it.
// Fails with a validation error for missing fields, a malformed email, a short password or a taken email.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (res *AuthResult, err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "AuthService.Register")
	defer func() { s.finish(ctx, span, "register", err) }()

	name = strings.TrimSpace(name)
	email = userdomain.NormalizeEmail(email)
	if err := s.validateRegistration(name, email, password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Server("lookup user", err)
	}
	if existing != nil {
		return nil, apperror.Validation(MsgEmailTaken)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperror.Server("hash password", err)
	}
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return nil, apperror.Validation(MsgEmailTaken)
		}
		return nil, apperror.Server("create user", err)
	}
	res, err = s.issue(user)
	if err != nil {
		return nil, err
	}
	telemetry.EmitAsync(s.events, ctx, telemetry.NewEvent(telemetry.EventUserRegistered, eventSource, user.ID, "", nil))
	return res, nil
}

// Login checks email and password and returns a fresh token. Unknown email and wrong password
// fail identically with an auth error.
func (s *AuthService) Login(ctx context.Context, email, password string) (res *AuthResult, err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "AuthService.Login")
	defer func() { s.finish(ctx, span, "login", err) }()

	email = userdomain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Auth(MsgInvalidCredentials)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Server("lookup user", err)
	}
	if user == nil || !s.hasher.Matches(user.PasswordHash, password) {
		telemetry.EmitAsync(s.events, ctx, telemetry.NewEvent(telemetry.EventUserLoginFailed, eventSource, "", "", nil))
		return nil, apperror.Auth(MsgInvalidCredentials)
	}
	res, err = s.issue(user)
	if err != nil {
		return nil, err
	}
	telemetry.EmitAsync(s.events, ctx, telemetry.NewEvent(telemetry.EventUserLoggedIn, eventSource, user.ID, "", nil))
	return res, nil
}

// Verify validates token and returns the user ID it was issued for.
func (s *AuthService) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperror.Auth(MsgInvalidToken)
	}
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return "", apperror.Auth(MsgInvalidToken)
	}
	return userID, nil
}

func (s *AuthService) issue(user *userdomain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Server("issue token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

func (s *AuthService) validateRegistration(name, email, password string) error {
	switch {
	case name == "":
		return apperror.Validation("name is required")
	case email == "":
		return apperror.Validation("email is required")
	case password == "":
		return apperror.Validation("password is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return apperror.Validation("invalid email format")
	}
	if len(password) < s.minPassword {
		return apperror.Validation(fmt.Sprintf("password must be at least %d characters", s.minPassword))
	}
	if len(password) > MaxPasswordLength {
		return apperror.Validation(fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength))
	}
	return nil
}

func (s *AuthService) finish(ctx context.Context, span trace.Span, op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(apperror.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Message(err, "error"))
	}
	if s.attempts != nil {
		s.attempts.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
	}
	span.End()
}
