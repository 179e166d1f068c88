package accountsvc_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/volunteerlog/internal/domain"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
	"github.com/mkrupp/volunteerlog/internal/svc/accountsvc"
)

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	users map[string]*domain.User
	err   error
	m     sync.Mutex
}

func (m *mockUserRepository) CreateUser(_ context.Context, username, email string, passwordHash []byte) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}
	if _, exists := m.users[username]; exists {
		return domain.ErrUserAlreadyExists
	}
	for _, u := range m.users {
		if u.Email == email {
			return domain.ErrEmailAlreadyExists
		}
	}
	m.users[username] = &domain.User{
		ID:           int64(len(m.users) + 1),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
	return nil
}

func (m *mockUserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	user, exists := m.users[username]
	if !exists {
		return nil, false, domain.ErrUserNotFound
	}
	return user, true, nil
}

func (m *mockUserRepository) Close() error {
	return m.err
}

func newMockUserRepo() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

var ErrRepoError = errors.New("repository error")

func setupTestService(t *testing.T) (*accountsvc.AccountService, *mockUserRepository) {
	t.Helper()

	mockRepo := newMockUserRepo()
	cfg := accountsvc.AccountConfig{
		MinPasswordLength: 8,
		BcryptCost:        bcrypt.MinCost,
	}

	svc := &accountsvc.AccountService{
		Config:   cfg,
		UserRepo: mockRepo,
		Log:      logging.GetLogger("test.accountsvc"),
	}

	return svc, mockRepo
}

//nolint:paralleltest
func TestAccountService_Register(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		confirm  string
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful registration",
			username: "newuser",
			email:    "new@example.com",
			password: "password123",
			confirm:  "password123",
			wantErr:  nil,
		},
		{
			name:     "missing username",
			username: "",
			email:    "no-name@example.com",
			password: "password123",
			confirm:  "password123",
			wantErr:  domain.ErrFieldsMissing,
		},
		{
			name:     "password confirmation mismatch",
			username: "mismatch",
			email:    "mismatch@example.com",
			password: "password123",
			confirm:  "password124",
			wantErr:  domain.ErrPasswordMismatch,
		},
		{
			name:     "password too short",
			username: "shorty",
			email:    "shorty@example.com",
			password: "short",
			confirm:  "short",
			wantErr:  domain.ErrPasswordTooShort,
		},
		{
			name:     "duplicate username",
			username: "existinguser",
			email:    "other@example.com",
			password: "password123",
			confirm:  "password123",
			wantErr:  domain.ErrUserAlreadyExists,
		},
		{
			name:     "duplicate email",
			username: "freshuser",
			email:    "taken@example.com",
			password: "password123",
			confirm:  "password123",
			wantErr:  domain.ErrEmailAlreadyExists,
		},
		{
			name:     "repository error",
			username: "erroruser",
			email:    "error@example.com",
			password: "password123",
			confirm:  "password123",
			repoErr:  ErrRepoError,
			wantErr:  ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup test case
			if tt.name == "duplicate username" {
				_ = svc.Register(context.Background(), tt.username, "first@example.com", "oldpass99", "oldpass99")
			}
			if tt.name == "duplicate email" {
				_ = svc.Register(context.Background(), "emailowner", tt.email, "oldpass99", "oldpass99")
			}
			mockRepo.err = tt.repoErr

			// Execute test
			err := svc.Register(context.Background(), tt.username, tt.email, tt.password, tt.confirm)

			// Verify results
			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountService_Register_CredentialNeverPlaintext(t *testing.T) {
	t.Parallel()

	svc, mockRepo := setupTestService(t)

	const password = "password123"

	if err := svc.Register(context.Background(), "alice", "a@x.com", password, password); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored := mockRepo.users["alice"].PasswordHash
	if bytes.Equal(stored, []byte(password)) {
		t.Error("stored credential equals the plaintext password")
	}

	if err := bcrypt.CompareHashAndPassword(stored, []byte(password)); err != nil {
		t.Errorf("stored credential does not verify the password: %v", err)
	}
}

func TestAccountService_Register_NoUserOnFailure(t *testing.T) {
	t.Parallel()

	svc, mockRepo := setupTestService(t)

	if err := svc.Register(context.Background(), "bob", "b@x.com", "longpass1", "longpass1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	before := len(mockRepo.users)

	if err := svc.Register(context.Background(), "bob", "c@x.com", "longpass2", "longpass2"); err == nil {
		t.Fatal("Register() expected error for duplicate username")
	}

	if len(mockRepo.users) != before {
		t.Errorf("user count changed on failed registration: %d != %d", len(mockRepo.users), before)
	}
}

func TestAccountService_Authenticate(t *testing.T) {
	t.Parallel()

	svc, mockRepo := setupTestService(t)

	// Create test user
	testPassword := "testpass123"
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	mockRepo.users["testuser"] = &domain.User{
		ID:           1,
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "successful authentication",
			username: "testuser",
			password: "testpass123",
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpass",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "anypass",
			wantErr:  domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			usr, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && usr.Username != tt.username {
				t.Errorf("Authenticate() user = %q, want %q", usr.Username, tt.username)
			}
		})
	}
}
