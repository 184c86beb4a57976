package repository

import (
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
)

type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	SetResetToken(userID int64, token string, expiry time.Time) error
	GetUserByResetToken(token string) (*models.User, error)
	UpdatePassword(userID int64, passwordHash string) error
	GetUserByVerifyToken(token string) (*models.User, error)
	MarkEmailVerified(userID int64) error
}

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

const userColumns = `id, email, password_hash, role, dk_encrypted, email_verified, verify_token, reset_token, reset_token_expiry, created_at`

func (r *userRepository) CreateUser(user *models.User) error {
	query := `INSERT INTO users (email, password_hash, role, dk_encrypted, verify_token)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowx(query, user.Email, user.PasswordHash, user.Role, user.DKEncrypted, user.VerifyToken).StructScan(user)
}

func (r *userRepository) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	if err := r.db.Get(&user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Get(&user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetResetToken(userID int64, token string, expiry time.Time) error {
	query := `UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`
	_, err := r.db.Exec(query, token, expiry, userID)
	return err
}

func (r *userRepository) GetUserByResetToken(token string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1`
	if err := r.db.Get(&user, query, token); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL WHERE id = $2`
	_, err := r.db.Exec(query, passwordHash, userID)
	return err
}

func (r *userRepository) GetUserByVerifyToken(token string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE verify_token = $1`
	if err := r.db.Get(&user, query, token); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) MarkEmailVerified(userID int64) error {
	query := `UPDATE users SET email_verified = true, verify_token = NULL WHERE id = $1`
	_, err := r.db.Exec(query, userID)
	return err
}
