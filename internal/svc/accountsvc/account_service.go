package accountsvc

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/volunteerlog/internal/domain"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
	"github.com/mkrupp/volunteerlog/internal/repo/user"
)

// AccountConfig contains configuration parameters for the account service.
type AccountConfig struct {
	// MinPasswordLength is the minimum accepted password length
	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" default:"8"`

	// BcryptCost is the bcrypt work factor for credential derivation
	BcryptCost int `env:"BCRYPT_COST" default:"10"`
}

// dummyHash is compared against when the user does not exist, so the
// missing-user path costs the same as the wrong-password path.
//
//nolint:gochecknoglobals
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AccountService provides registration and authentication against the user
// store. Password credentials are bcrypt-derived; the plaintext never leaves
// the registration or login call.
type AccountService struct {
	Config   AccountConfig
	UserRepo user.Repository
	Log      logging.Logger
}

// NewAccountService creates a new AccountService with the given user repository
// factory and configuration. Returns an error if the user repository cannot be
// created.
func NewAccountService(repoFactory user.RepositoryFactory, cfg AccountConfig) (*AccountService, error) {
	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AccountService{
		Config:   cfg,
		UserRepo: userRepo,
		Log:      logging.GetLogger("svc.accountsvc.account_service"),
	}, nil
}

// Register creates a new user account. The password must match its
// confirmation and meet the minimum length; username and email must be
// unused. On any violation nothing is persisted and the caller can simply
// retry with corrected input.
func (s *AccountService) Register(
	ctx context.Context,
	username, email, password, confirmPassword string,
) (err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if username == "" || email == "" {
		return domain.ErrFieldsMissing
	}

	if password != confirmPassword {
		return domain.ErrPasswordMismatch
	}

	if len(password) < s.Config.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.Config.BcryptCost)
	if err != nil {
		return fmt.Errorf("derive credential: %w", err)
	}

	if err := s.UserRepo.CreateUser(ctx, username, email, passwordHash); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// Authenticate verifies a username/password pair and returns the identified
// user. A single generic ErrInvalidCredentials covers both unknown-user and
// wrong-password so the response does not reveal which field was wrong.
// Establishing the session is the caller's business.
func (s *AccountService) Authenticate(
	ctx context.Context,
	username, password string,
) (_ *domain.User, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "authenticate failed", "error", err)
		} else {
			log.DebugContext(ctx, "authenticate successful")
		}
	}()

	usr, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))

			return nil, errors.Join(domain.ErrInvalidCredentials, err)
		}

		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(password)); err != nil {
		return nil, errors.Join(domain.ErrInvalidCredentials, err)
	}

	return usr, nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *AccountService) Close() error {
	if err := s.UserRepo.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	return nil
}
