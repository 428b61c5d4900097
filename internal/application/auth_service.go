package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/helpers"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-ecommerce/pkg/mailer/templates"
)

// PasswordHasher hashes and verifies passwords with a slow, salted algorithm.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenIssuer signs access tokens with a process-wide secret.
type TokenIssuer interface {
	Sign(p helpers.TokenPayload) (string, time.Time, error)
}

// JobPublisher enqueues background jobs (welcome emails).
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService owns registration, login and current-user lookup.
type AuthService struct {
	Users    repo.UserRepository
	Audit    repo.AuditLogRepository
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Jobs     JobPublisher
	Branding mailtpl.Branding
	Logger   *logrus.Logger
}

func NewAuthService(users repo.UserRepository, audit repo.AuditLogRepository, hasher PasswordHasher, tokens TokenIssuer, jobs JobPublisher, branding mailtpl.Branding, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:    users,
		Audit:    audit,
		Hasher:   hasher,
		Tokens:   tokens,
		Jobs:     jobs,
		Branding: branding,
		Logger:   logger,
	}
}

// RegisterInput arrives already validated by the HTTP binding layer.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	IP        string
	UserAgent string
}

type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

type LoginResult struct {
	User        *entity.User
	AccessToken string
	ExpiresAt   time.Time
}

// Register creates a customer account and its "register" audit entry atomically.
// Failed registrations leave no audit entry.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := s.Hasher.Hash(in.Password)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return nil, Unprocessable("password must be at most 72 bytes", err)
	}
	if err != nil {
		s.logError(err, "hash password failed", logrus.Fields{"email": in.Email})
		return nil, Internal("error creating user", err)
	}

	u := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         entity.RoleCustomer,
		IsActive:     true,
	}
	entry := &entity.AuditLog{
		Action:    entity.AuditRegister,
		IPAddress: in.IP,
		UserAgent: in.UserAgent,
	}
	if err := s.Users.CreateWithAudit(ctx, u, entry); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return nil, Conflict("email already exists", err)
		case errors.Is(err, repo.ErrInvalidReference):
			return nil, Unprocessable("invalid data", err)
		default:
			s.logError(err, "create user failed", logrus.Fields{"email": in.Email})
			return nil, Internal("error creating user", err)
		}
	}
	recordAuthEvent(entity.AuditRegister)

	s.enqueueWelcome(ctx, u, in)
	return u, nil
}

// Login verifies credentials. Every outcome that resolves the email writes exactly one
// audit entry before returning.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	u, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		if aerr := s.writeAudit(ctx, entity.AuditLoginFailedUserNotFound, nil, in); aerr != nil {
			return nil, aerr
		}
		return nil, Unprocessable("user not found", nil)
	}
	if err != nil {
		s.logError(err, "load user by email failed", logrus.Fields{"email": in.Email})
		return nil, Internal("error loading user", err)
	}

	if !s.Hasher.Compare(u.PasswordHash, in.Password) {
		if aerr := s.writeAudit(ctx, entity.AuditLoginFailedInvalidPassword, &u.ID, in); aerr != nil {
			return nil, aerr
		}
		return nil, Unprocessable("invalid password", nil)
	}

	if aerr := s.writeAudit(ctx, entity.AuditLoginSuccessful, &u.ID, in); aerr != nil {
		return nil, aerr
	}

	token, exp, err := s.Tokens.Sign(helpers.TokenPayload{
		UserID:  u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin(),
	})
	if err != nil {
		s.logError(err, "sign access token failed", logrus.Fields{"user_id": u.ID})
		return nil, Internal("error issuing token", err)
	}
	return &LoginResult{User: u, AccessToken: token, ExpiresAt: exp}, nil
}

// GetUserData returns the user behind an authenticated request.
func (s *AuthService) GetUserData(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, Unprocessable("user not found", nil)
	}
	if err != nil {
		s.logError(err, "load user failed", logrus.Fields{"user_id": userID})
		return nil, Internal("error loading user", err)
	}
	return u, nil
}

func (s *AuthService) writeAudit(ctx context.Context, action string, userID *string, in LoginInput) error {
	entry := &entity.AuditLog{
		Action:    action,
		IPAddress: in.IP,
		UserAgent: in.UserAgent,
		UserID:    userID,
	}
	if err := s.Audit.Insert(ctx, entry); err != nil {
		s.logError(err, "write audit log failed", logrus.Fields{"action": action})
		return Internal("error recording login attempt", err)
	}
	recordAuthEvent(action)
	return nil
}

func (s *AuthService) enqueueWelcome(ctx context.Context, u *entity.User, in RegisterInput) {
	if s.Jobs == nil {
		return
	}
	data := mailtpl.NewWelcomeData(s.Branding, u.Name, u.Email,
		mailtpl.WithTime(u.CreatedAt),
		mailtpl.WithIP(in.IP),
		mailtpl.WithUserAgent(in.UserAgent),
	)
	job := mailer.EmailJob{To: u.Email, Template: mailtpl.Welcome, Data: data}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to publish welcome email job")
	}
}

func (s *AuthService) logError(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Error(msg)
}
