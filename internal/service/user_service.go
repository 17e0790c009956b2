package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/config"
	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/events"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service/auth"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// TokenPair is the result of a successful login or token refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserService orchestrates account management: registration, login with
// lockout, family linkage, subscriptions, preferences and usage tracking.
type UserService struct {
	db       *sql.DB
	users    store.UserStore
	jwt      auth.JWTService
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	emitter  events.EventEmitter
	logger   *slog.Logger

	maxLoginAttempts int
	lockoutDuration  time.Duration
}

// NewUserService creates a UserService. All dependencies are required
// except the logger, which falls back to the default.
func NewUserService(
	db *sql.DB,
	users store.UserStore,
	jwt auth.JWTService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	emitter events.EventEmitter,
	cfg config.AuthConfig,
	logger *slog.Logger,
) (*UserService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if jwt == nil {
		return nil, errors.New("jwt service cannot be nil")
	}
	if hasher == nil || verifier == nil {
		return nil, errors.New("password hasher and verifier cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		db:               db,
		users:            users,
		jwt:              jwt,
		hasher:           hasher,
		verifier:         verifier,
		emitter:          emitter,
		logger:           logger.With(slog.String("component", "user_service")),
		maxLoginAttempts: cfg.MaxLoginAttempts,
		lockoutDuration:  cfg.LockoutDuration,
	}, nil
}

// Register creates a parent account with a hashed password.
func (s *UserService) Register(ctx context.Context, email, displayName, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, displayName, domain.RoleParent)
	if err != nil {
		return nil, wrapError("register_user", "invalid account data", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, wrapError("register_user", "failed to hash password", err)
	}
	user.HashedPassword = hash

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, wrapError("register_user", "failed to save account", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	s.publishEvents(ctx, user)
	return user, nil
}

// Login authenticates a user and issues a token pair. Failed attempts count
// toward the lockout threshold; locked, deactivated and unverified accounts
// are rejected with the matching domain error.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, wrapError("login", "failed to load account", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		user.RegisterFailedLogin(s.maxLoginAttempts, s.lockoutDuration)
		if saveErr := s.saveUser(ctx, user); saveErr != nil {
			s.logger.Error("failed to record failed login", "error", saveErr, "user_id", user.ID)
		}
		s.publishEvents(ctx, user)
		if user.IsLocked() {
			return nil, nil, domain.ErrAccountLocked
		}
		return nil, nil, ErrInvalidCredentials
	}

	if err := user.RecordLogin(); err != nil {
		return nil, nil, err
	}
	if err := s.saveUser(ctx, user); err != nil {
		return nil, nil, wrapError("login", "failed to update account", err)
	}
	s.publishEvents(ctx, user)

	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// RefreshTokens exchanges a valid refresh token for a new token pair.
func (s *UserService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// The account must still be active and unlocked.
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, wrapError("refresh_tokens", "failed to load account", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}
	if user.IsLocked() {
		return nil, domain.ErrAccountLocked
	}

	return s.issueTokens(ctx, user.ID)
}

// VerifyEmail marks the user's email address as verified.
func (s *UserService) VerifyEmail(ctx context.Context, userID uuid.UUID) error {
	return s.mutateUser(ctx, userID, "verify_email", func(user *domain.User) error {
		user.VerifyEmail()
		return nil
	})
}

// UpdateProfile changes the display name and, optionally, the date of birth.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string, dateOfBirth *time.Time) error {
	return s.mutateUser(ctx, userID, "update_profile", func(user *domain.User) error {
		return user.UpdateProfile(displayName, dateOfBirth)
	})
}

// ChangePassword verifies the current password for adult accounts and
// installs the new hash. Child accounts are parent-managed and exempt from
// old-password verification.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	return s.mutateUser(ctx, userID, "change_password", func(user *domain.User) error {
		oldVerified := false
		if user.Role != domain.RoleChild {
			if err := s.verifier.Compare(user.HashedPassword, oldPassword); err != nil {
				return domain.ErrOldPasswordRequired
			}
			oldVerified = true
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return wrapError("change_password", "failed to hash password", err)
		}
		return user.ChangePassword(hash, oldVerified)
	})
}

// UpdateSubscription switches the subscription tier and resets the usage
// counters for the new billing period.
func (s *UserService) UpdateSubscription(ctx context.Context, userID uuid.UUID, tier domain.SubscriptionTier, expiresAt *time.Time) error {
	return s.mutateUser(ctx, userID, "update_subscription", func(user *domain.User) error {
		return user.UpdateSubscription(tier, expiresAt)
	})
}

// AddChildProfile creates a child account linked to the parent. Both
// accounts are saved in one transaction.
func (s *UserService) AddChildProfile(ctx context.Context, parentID uuid.UUID, name string, dateOfBirth time.Time) (*domain.User, error) {
	parent, err := s.users.GetByID(ctx, parentID)
	if err != nil {
		return nil, wrapError("add_child", "failed to load parent", err)
	}

	child, err := parent.CreateChildProfile(name, dateOfBirth)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)
		if err := txUsers.Create(ctx, child); err != nil {
			return err
		}
		return txUsers.Update(ctx, parent)
	})
	if err != nil {
		return nil, wrapError("add_child", "failed to save family link", err)
	}

	s.logger.Info("child profile created", "parent_id", parentID, "child_id", child.ID)
	s.publishEvents(ctx, parent, child)
	return child, nil
}

// RemoveChild unlinks the child from the parent and deletes the child
// account.
func (s *UserService) RemoveChild(ctx context.Context, parentID, childID uuid.UUID) error {
	parent, err := s.users.GetByID(ctx, parentID)
	if err != nil {
		return wrapError("remove_child", "failed to load parent", err)
	}

	if err := parent.RemoveChild(childID); err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)
		if err := txUsers.Delete(ctx, childID); err != nil {
			return err
		}
		return txUsers.Update(ctx, parent)
	})
	if err != nil {
		return wrapError("remove_child", "failed to remove child", err)
	}

	s.publishEvents(ctx, parent)
	return nil
}

// SetPreference validates and stores one preference key for the user.
func (s *UserService) SetPreference(ctx context.Context, userID uuid.UUID, key, value string) error {
	return s.mutateUser(ctx, userID, "set_preference", func(user *domain.User) error {
		return user.SetPreference(key, value)
	})
}

// TrackDailyUsage adds reading minutes to a child account and reports
// whether the daily limit is now exceeded.
func (s *UserService) TrackDailyUsage(ctx context.Context, childID uuid.UUID, minutes int) (bool, error) {
	var exceeded bool
	err := s.mutateUser(ctx, childID, "track_daily_usage", func(user *domain.User) error {
		var err error
		exceeded, err = user.TrackDailyUsage(minutes)
		return err
	})
	return exceeded, err
}

// Deactivate disables an account.
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	return s.mutateUser(ctx, userID, "deactivate_user", func(user *domain.User) error {
		user.Deactivate()
		return nil
	})
}

// Reactivate re-enables a deactivated account.
func (s *UserService) Reactivate(ctx context.Context, userID uuid.UUID) error {
	return s.mutateUser(ctx, userID, "reactivate_user", func(user *domain.User) error {
		user.Reactivate()
		return nil
	})
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapError("get_user", "failed to load account", err)
	}
	return user, nil
}

// ListChildren returns the child profiles linked to a parent.
func (s *UserService) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.User, error) {
	children, err := s.users.ListChildren(ctx, parentID)
	if err != nil {
		return nil, wrapError("list_children", "failed to load children", err)
	}
	return children, nil
}

// mutateUser loads a user, applies fn, and persists the result in a
// transaction. Domain events recorded by fn are published after commit.
func (s *UserService) mutateUser(ctx context.Context, userID uuid.UUID, operation string, fn func(*domain.User) error) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return wrapError(operation, "failed to load account", err)
	}

	if err := fn(user); err != nil {
		return err
	}

	if err := s.saveUser(ctx, user); err != nil {
		return wrapError(operation, "failed to save account", err)
	}
	s.publishEvents(ctx, user)
	return nil
}

func (s *UserService) saveUser(ctx context.Context, user *domain.User) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Update(ctx, user)
	})
}

func (s *UserService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return nil, wrapError("issue_tokens", "failed to sign access token", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, wrapError("issue_tokens", "failed to sign refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) publishEvents(ctx context.Context, users ...*domain.User) {
	for _, user := range users {
		publishEvents(ctx, s.emitter, s.logger, user)
	}
}
