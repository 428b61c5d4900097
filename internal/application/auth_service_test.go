package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/helpers"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-ecommerce/pkg/mailer/templates"
)

const testSecret = "test-secret-test-secret-test-secret"

type authFixture struct {
	svc    *AuthService
	users  *memUserRepo
	audit  *memAuditRepo
	jobs   *recordingPublisher
	tokens *helpers.JWTManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	audit := &memAuditRepo{}
	users := newMemUserRepo(audit)
	jobs := &recordingPublisher{}
	tokens := helpers.NewJWTManager(testSecret, time.Hour)
	svc := NewAuthService(users, audit, helpers.NewBcryptHasher(4), tokens, jobs,
		mailtpl.Branding{AppName: "Shop", CompanyName: "Shop Inc"}, helpers.NewDiscardLogger())
	return &authFixture{svc: svc, users: users, audit: audit, jobs: jobs, tokens: tokens}
}

func (f *authFixture) register(t *testing.T, email, password string) *entity.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{
		Email: email, Password: password, Name: "Alice", IP: "10.0.0.1", UserAgent: "test-agent",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_CreatesCustomerWithAudit(t *testing.T) {
	f := newAuthFixture(t)

	u := f.register(t, "alice@example.com", "password123")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, entity.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.True(t, helpers.NewBcryptHasher(4).Compare(u.PasswordHash, "password123"))

	entries := f.audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditRegister, entries[0].Action)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, u.ID, *entries[0].UserID)
	assert.Equal(t, "10.0.0.1", entries[0].IPAddress)
	assert.Equal(t, "test-agent", entries[0].UserAgent)
}

func TestRegister_PublishesWelcomeJob(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "password123")

	require.Len(t, f.jobs.jobs, 1)
	job, ok := f.jobs.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, mailtpl.Welcome, job.Template)
	assert.True(t, job.Templated())
}

func TestRegister_PublishFailureIsNotSurfaced(t *testing.T) {
	f := newAuthFixture(t)
	f.jobs.err = errors.New("channel closed")

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "password123", Name: "A"})
	assert.NoError(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "password123")

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Password: "otherpass1", Name: "Bob"})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "email already exists", appErr.Message)
	assert.Len(t, f.audit.all(), 1, "failed registration must not add an audit entry")
}

func TestRegister_StorageErrors(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantKind Kind
		wantMsg  string
	}{
		{name: "foreign key violation", storeErr: repo.ErrInvalidReference, wantKind: KindUnprocessable, wantMsg: "invalid data"},
		{name: "anything else", storeErr: errStorage, wantKind: KindInternal, wantMsg: "error creating user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			f.users.createErr = tt.storeErr

			_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "password123", Name: "A"})
			var appErr *Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantKind, appErr.Kind)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.ErrorIs(t, err, tt.storeErr)
			assert.Empty(t, f.audit.all())
			assert.Empty(t, f.jobs.jobs)
		})
	}
}

func TestRegister_PasswordTooLongForBcrypt(t *testing.T) {
	for name, pw := range map[string]string{
		"ascii":     strings.Repeat("a", 80),
		"multibyte": strings.Repeat("€", 40),
	} {
		t.Run(name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, err := f.svc.Register(context.Background(), RegisterInput{Email: "long@example.com", Password: pw, Name: "L"})

			assert.Equal(t, KindUnprocessable, KindOf(err))
			assert.ErrorIs(t, err, helpers.ErrPasswordTooLong)
			assert.Empty(t, f.audit.all())
			_, lookupErr := f.users.GetByEmail(context.Background(), "long@example.com")
			assert.ErrorIs(t, lookupErr, repo.ErrNotFound)
		})
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever1", IP: "1.2.3.4", UserAgent: "ua"})
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindUnprocessable, appErr.Kind)
	assert.Equal(t, "user not found", appErr.Message)

	entries := f.audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditLoginFailedUserNotFound, entries[0].Action)
	assert.Nil(t, entries[0].UserID)
	assert.Equal(t, "1.2.3.4", entries[0].IPAddress)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice@example.com", "password123")

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "password124"})
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindUnprocessable, appErr.Kind)
	assert.Equal(t, "invalid password", appErr.Message)

	entries := f.audit.all()
	require.Len(t, entries, 2)
	last := entries[1]
	assert.Equal(t, entity.AuditLoginFailedInvalidPassword, last.Action)
	require.NotNil(t, last.UserID)
	assert.Equal(t, u.ID, *last.UserID)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice@example.com", "password123")

	res, err := f.svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.NotEmpty(t, res.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, 5*time.Second)

	claims, err := f.tokens.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID())
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)

	entries := f.audit.all()
	require.Len(t, entries, 2)
	assert.Equal(t, entity.AuditLoginSuccessful, entries[1].Action)
	require.NotNil(t, entries[1].UserID)
	assert.Equal(t, u.ID, *entries[1].UserID)
}

func TestLogin_AdminClaim(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "root@example.com", "password123")
	f.users.users[u.ID].Role = entity.RoleAdmin

	res, err := f.svc.Login(context.Background(), LoginInput{Email: "root@example.com", Password: "password123"})
	require.NoError(t, err)
	claims, err := f.tokens.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestLogin_AuditFailureIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "password123")
	f.audit.insertErr = errStorage

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, errStorage)
}

func TestLogin_LookupFailureWritesNoAudit(t *testing.T) {
	f := newAuthFixture(t)
	f.users.getErr = errStorage

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Empty(t, f.audit.all())
}

func TestGetUserData(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice@example.com", "password123")

	got, err := f.svc.GetUserData(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Len(t, f.audit.all(), 1, "lookup has no audit side effect")

	_, err = f.svc.GetUserData(context.Background(), "missing")
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindUnprocessable, appErr.Kind)
	assert.Equal(t, "user not found", appErr.Message)
}
