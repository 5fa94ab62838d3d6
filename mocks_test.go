package accounts_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// testConfig is a plain value implementation of accounts.Config
type testConfig struct {
	signingKey  string
	accessTTL   time.Duration
	refreshTTL  time.Duration
	emailTTL    time.Duration
	issuer      string
	audience    []string
	contextKey  string
	tokenLookup string
	authScheme  string
	baseURL     string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:  "test-signing-key",
		accessTTL:   15 * time.Minute,
		refreshTTL:  7 * 24 * time.Hour,
		emailTTL:    7 * 24 * time.Hour,
		issuer:      "test-issuer",
		audience:    []string{"test-audience"},
		contextKey:  "user",
		tokenLookup: "header:Authorization",
		authScheme:  "Bearer",
		baseURL:     "http://localhost:8572",
	}
}

func (c testConfig) GetSigningKey() string             { return c.signingKey }
func (c testConfig) GetIssuer() string                 { return c.issuer }
func (c testConfig) GetAudience() []string             { return c.audience }
func (c testConfig) GetAccessTokenTTL() time.Duration  { return c.accessTTL }
func (c testConfig) GetRefreshTokenTTL() time.Duration { return c.refreshTTL }
func (c testConfig) GetEmailTokenTTL() time.Duration   { return c.emailTTL }
func (c testConfig) GetContextKey() string             { return c.contextKey }
func (c testConfig) GetTokenLookup() string            { return c.tokenLookup }
func (c testConfig) GetAuthScheme() string             { return c.authScheme }
func (c testConfig) GetBaseURL() string                { return c.baseURL }

// MockUserStore implements accounts.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, email)
	var user *accounts.User
	if u := args.Get(0); u != nil {
		user = u.(*accounts.User)
	}
	return user, args.Error(1)
}

func (m *MockUserStore) TrackAttemptedLogin(ctx context.Context, user *accounts.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) TrackSuccessfulLogin(ctx context.Context, user *accounts.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockRefreshTokenStore implements accounts.RefreshTokenStore
type MockRefreshTokenStore struct {
	mock.Mock
}

func (m *MockRefreshTokenStore) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

// MockNotifier implements accounts.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ScheduleConfirmation(user *accounts.User) {
	m.Called(user)
}

// MockUsers implements accounts.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, email)
	var user *accounts.User
	if u := args.Get(0); u != nil {
		user = u.(*accounts.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, tx, email)
	var user *accounts.User
	if u := args.Get(0); u != nil {
		user = u.(*accounts.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, user)
	var out *accounts.User
	if u := args.Get(0); u != nil {
		out = u.(*accounts.User)
	}
	return out, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, tx, user)
	var out *accounts.User
	if u := args.Get(0); u != nil {
		out = u.(*accounts.User)
	}
	return out, args.Error(1)
}

func (m *MockUsers) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUsers) UpdateRefreshTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token *string) error {
	args := m.Called(ctx, tx, id, token)
	return args.Error(0)
}

func (m *MockUsers) ConfirmEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockUsers) ConfirmEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	args := m.Called(ctx, tx, email)
	return args.Error(0)
}

func (m *MockUsers) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) (*accounts.User, error) {
	args := m.Called(ctx, id, avatar)
	var out *accounts.User
	if u := args.Get(0); u != nil {
		out = u.(*accounts.User)
	}
	return out, args.Error(1)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *accounts.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *accounts.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *accounts.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *accounts.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

// fakeRepoManager satisfies accounts.RepositoryManager without a live
// database, transactions run the callback against a zero value Tx.
type fakeRepoManager struct {
	users    accounts.Users
	contacts accounts.Contacts
}

func (f *fakeRepoManager) Users() accounts.Users { return f.users }

func (f *fakeRepoManager) Contacts() accounts.Contacts { return f.contacts }

func (f *fakeRepoManager) Validate() error { return nil }

func (f *fakeRepoManager) MustValidate() {}

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

// capturingMailer records delivered messages for assertions
type capturingMailer struct {
	mu   sync.Mutex
	sent []accounts.Message
	done chan struct{}
}

func newCapturingMailer(expected int) *capturingMailer {
	return &capturingMailer{
		done: make(chan struct{}, expected),
	}
}

func (m *capturingMailer) Send(msg accounts.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *capturingMailer) messages() []accounts.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]accounts.Message, len(m.sent))
	copy(out, m.sent)
	return out
}
