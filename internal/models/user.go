package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID               int64      `db:"id"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	Role             string     `db:"role"` // "patient" or "admin"
	DKEncrypted      string     `db:"dk_encrypted"`
	EmailVerified    bool       `db:"email_verified"`
	VerifyToken      *string    `db:"verify_token"`
	ResetToken       *string    `db:"reset_token"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry"`
	CreatedAt        time.Time  `db:"created_at"`
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
