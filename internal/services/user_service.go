package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	contextutils "cyberadvisor/internal/utils"
)

// UserServiceInterface defines user account operations
type UserServiceInterface interface {
	CreateUser(ctx context.Context, email, password string, level models.KnowledgeLevel, language string) (*models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, level models.KnowledgeLevel, language string) error
	UpdateLastActive(ctx context.Context, userID int) error
}

// UserService handles user accounts and authentication
type UserService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewUserServiceWithLogger creates a new user service
func NewUserServiceWithLogger(db *sql.DB, logger *observability.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

const userColumns = `id, email, password_hash, knowledge_level, preferred_language, last_active, created_at, updated_at`

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *UserService) CreateUser(ctx context.Context, email, password string, level models.KnowledgeLevel, language string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "create_user")
	defer observability.FinishSpan(span, &err)

	email = strings.ToLower(strings.TrimSpace(email))
	if !contextutils.IsValidEmail(email) {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid email address")
	}
	if len(password) < 8 {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "password must be at least 8 characters")
	}
	if language != "my" {
		language = "en"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to hash password")
	}

	query := `
		INSERT INTO users (email, password_hash, knowledge_level, preferred_language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + userColumns

	user, err := s.scanUser(s.db.QueryRowContext(ctx, query,
		email, string(hash), string(models.ParseKnowledgeLevel(string(level))), language, time.Now()))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, contextutils.WrapErrorf(contextutils.ErrRecordExists, "email already registered")
		}
		return nil, contextutils.WrapError(err, "failed to create user")
	}

	s.logger.Info(ctx, "User registered", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// AuthenticateUser verifies credentials and returns the account. The same
// error comes back for a missing account and a wrong password.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "authenticate_user")
	defer observability.FinishSpan(span, &err)

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			return nil, contextutils.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.PasswordHash.Valid ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)) != nil {
		return nil, contextutils.ErrInvalidCredentials
	}

	if err := s.UpdateLastActive(ctx, user.ID); err != nil {
		s.logger.Warn(ctx, "Failed to update last active", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	return user, nil
}

// GetUserByID retrieves a user by primary key
func (s *UserService) GetUserByID(ctx context.Context, userID int) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_user_by_id",
		observability.AttributeUserID(userID),
	)
	defer observability.FinishSpan(span, &err)

	user, err := s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrRecordNotFound
		}
		return nil, contextutils.WrapError(err, "failed to get user")
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_user_by_email")
	defer observability.FinishSpan(span, &err)

	user, err := s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrRecordNotFound
		}
		return nil, contextutils.WrapError(err, "failed to get user")
	}
	return user, nil
}

// UpdateProfile changes the user's knowledge level and reply language.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, level models.KnowledgeLevel, language string) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "update_profile",
		observability.AttributeUserID(userID),
		observability.AttributeLanguage(language),
	)
	defer observability.FinishSpan(span, &err)

	if language != "my" {
		language = "en"
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET knowledge_level = $1, preferred_language = $2, updated_at = $3 WHERE id = $4`,
		string(models.ParseKnowledgeLevel(string(level))), language, time.Now(), userID,
	)
	if err != nil {
		return contextutils.WrapError(err, "failed to update profile")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if affected == 0 {
		return contextutils.ErrRecordNotFound
	}
	return nil
}

// UpdateLastActive stamps the user's last activity time.
func (s *UserService) UpdateLastActive(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_active = $1 WHERE id = $2`, time.Now(), userID)
	if err != nil {
		return contextutils.WrapError(err, "failed to update last active")
	}
	return nil
}

// EnsureAdminUser creates the configured admin account if it does not exist.
// Called once at startup.
func (s *UserService) EnsureAdminUser(ctx context.Context, email, password string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "ensure_admin_user")
	defer observability.FinishSpan(span, &err)

	user, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !contextutils.IsError(err, contextutils.ErrRecordNotFound) {
		return nil, err
	}

	return s.CreateUser(ctx, email, password, models.LevelAdvanced, "en")
}

// GetAllUsers returns every account, newest first. Admin tooling only.
func (s *UserService) GetAllUsers(ctx context.Context) (result0 []models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_all_users")
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to list users")
	}
	defer func() { _ = rows.Close() }()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.KnowledgeLevel,
			&user.PreferredLanguage,
			&user.LastActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "failed to iterate users")
	}
	return users, nil
}

// UpdateUserPassword replaces a user's password hash. Admin tooling only.
func (s *UserService) UpdateUserPassword(ctx context.Context, userID int, newPassword string) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "update_user_password",
		observability.AttributeUserID(userID),
	)
	defer observability.FinishSpan(span, &err)

	if len(newPassword) < 8 {
		return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return contextutils.WrapError(err, "failed to hash password")
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		string(hash), time.Now(), userID)
	if err != nil {
		return contextutils.WrapError(err, "failed to update password")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if affected == 0 {
		return contextutils.ErrRecordNotFound
	}
	return nil
}

func (s *UserService) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.KnowledgeLevel,
		&user.PreferredLanguage,
		&user.LastActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
