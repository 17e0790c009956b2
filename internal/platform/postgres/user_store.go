package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/platform/logger"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// PostgresUserStore implements store.UserStore backed by PostgreSQL.
// Subscription, usage counters, restrictions and preferences are stored as
// JSONB; the parent/child linkage is a self-referencing parent_id column.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a PostgreSQL-backed user store. The caller
// owns the database handle. A nil logger falls back to the default.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

const userColumns = `id, email, display_name, hashed_password, role, is_active,
	email_verified, failed_login_attempts, locked_until, date_of_birth,
	subscription, usage, restrictions, preferences, parent_id,
	created_at, updated_at`

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	subscription, err := marshalColumn(user.Subscription)
	if err != nil {
		return err
	}
	usage, err := marshalColumn(user.Usage)
	if err != nil {
		return err
	}
	restrictions, err := marshalColumn(user.Restrictions)
	if err != nil {
		return err
	}
	preferences, err := marshalColumn(user.Preferences)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.HashedPassword,
		user.Role,
		user.IsActive,
		user.EmailVerified,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.DateOfBirth,
		subscription,
		usage,
		restrictions,
		preferences,
		user.ParentID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during user creation",
				slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := s.scanUser(ctx, s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	if err := s.loadChildIDs(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail. The email is normalized
// before lookup so callers can pass raw user input.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := s.scanUser(ctx, s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	if err := s.loadChildIDs(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListChildren implements store.UserStore.ListChildren.
func (s *PostgresUserStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE parent_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var children []*domain.User
	for rows.Next() {
		child, err := s.scanUser(ctx, rows)
		if err != nil {
			return nil, MapError(err)
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return children, nil
}

// Update implements store.UserStore.Update.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	subscription, err := marshalColumn(user.Subscription)
	if err != nil {
		return err
	}
	usage, err := marshalColumn(user.Usage)
	if err != nil {
		return err
	}
	restrictions, err := marshalColumn(user.Restrictions)
	if err != nil {
		return err
	}
	preferences, err := marshalColumn(user.Preferences)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET email = $1, display_name = $2, hashed_password = $3, role = $4,
			is_active = $5, email_verified = $6, failed_login_attempts = $7,
			locked_until = $8, date_of_birth = $9, subscription = $10,
			usage = $11, restrictions = $12, preferences = $13,
			parent_id = $14, updated_at = $15
		WHERE id = $16
	`
	result, err := s.db.ExecContext(ctx, query,
		user.Email,
		user.DisplayName,
		user.HashedPassword,
		user.Role,
		user.IsActive,
		user.EmailVerified,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.DateOfBirth,
		subscription,
		usage,
		restrictions,
		preferences,
		user.ParentID,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresUserStore) scanUser(_ context.Context, row rowScanner) (*domain.User, error) {
	var (
		user         domain.User
		role         string
		subscription []byte
		usage        []byte
		restrictions []byte
		preferences  []byte
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.HashedPassword,
		&role,
		&user.IsActive,
		&user.EmailVerified,
		&user.FailedLoginAttempts,
		&user.LockedUntil,
		&user.DateOfBirth,
		&subscription,
		&usage,
		&restrictions,
		&preferences,
		&user.ParentID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = domain.Role(role)
	if err := unmarshalColumn(subscription, &user.Subscription); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(usage, &user.Usage); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(restrictions, &user.Restrictions); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(preferences, &user.Preferences); err != nil {
		return nil, err
	}
	return &user, nil
}

// loadChildIDs populates the derived ChildIDs slice from the parent_id
// linkage column.
func (s *PostgresUserStore) loadChildIDs(ctx context.Context, user *domain.User) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM users WHERE parent_id = $1 ORDER BY created_at`, user.ID)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	user.ChildIDs = nil
	for rows.Next() {
		var childID uuid.UUID
		if err := rows.Scan(&childID); err != nil {
			return MapError(err)
		}
		user.ChildIDs = append(user.ChildIDs, childID)
	}
	return MapError(rows.Err())
}
