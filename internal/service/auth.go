package service

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/crypto"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/models"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/repository"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	resetTokenTTL = 30 * time.Minute
	accessTTL     = 24 * time.Hour
)

var jwtSecret = func() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dev-only-insecure-secret")
}()

// GetJWTSecret returns the JWT secret key.
func GetJWTSecret() []byte {
	return jwtSecret
}

type AuthService interface {
	Register(email, password string) (*models.User, error)
	Login(email, password string) (string, time.Time, error)
	Logout(userID int64)
	RequestPasswordReset(email string) (string, error)
	ResetPassword(token, newPassword string) error
	VerifyEmail(token string) error
}

type authService struct {
	repo       repository.UserRepository
	keyManager *crypto.KeyManager
	logger     *zap.Logger
}

func NewAuthService(repo repository.UserRepository, keyManager *crypto.KeyManager, logger *zap.Logger) AuthService {
	return &authService{
		repo:       repo,
		keyManager: keyManager,
		logger:     logger,
	}
}

func (s *authService) Register(email, password string) (*models.User, error) {
	if _, err := s.repo.GetUserByEmail(email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Every patient gets a data key for content encryption at rest.
	dkEncrypted, err := s.keyManager.GenerateAndEncryptDataKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate data key: %w", err)
	}

	verifyToken, err := generateToken()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         "patient",
		DKEncrypted:  dkEncrypted,
		VerifyToken:  &verifyToken,
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Delivery of the verification email is an external concern; the token
	// only needs to exist and be single-use here.
	s.logger.Info("User registered, verification pending", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *authService) Login(email, password string) (string, time.Time, error) {
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, ErrUserNotFound
		}
		return "", time.Time{}, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !s.verifyPassword(user.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(accessTTL)
	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("User logged in successfully.", zap.Int64("user_id", user.ID))
	return tokenString, expirationTime, nil
}

func (s *authService) Logout(userID int64) {
	s.keyManager.ForgetDataKey(userID)
	s.logger.Info("User logged out, data key dropped from memory.", zap.Int64("user_id", userID))
}

// RequestPasswordReset issues a short-lived reset token. The returned token
// would be emailed in production; callers must not include it in responses.
func (s *authService) RequestPasswordReset(email string) (string, error) {
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to retrieve user: %w", err)
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.SetResetToken(user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return token, nil
}

func (s *authService) ResetPassword(token, newPassword string) error {
	user, err := s.repo.GetUserByResetToken(token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return ErrTokenExpired
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(user.ID, passwordHash)
}

func (s *authService) VerifyEmail(token string) error {
	user, err := s.repo.GetUserByVerifyToken(token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}
	return s.repo.MarkEmailVerified(user.ID)
}

// hashPassword uses Argon2id and encodes salt and hash into one string:
// $argon2id$v=19$m=65536,t=1,p=4$BASE64_SALT$BASE64_HASH
func (s *authService) hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, encodedSalt, encodedHash), nil
}

// verifyPassword re-hashes the candidate with the parameters and salt stored
// in the encoded hash and compares.
func (s *authService) verifyPassword(hashedPassword, password string) bool {
	sections := strings.Split(strings.TrimPrefix(hashedPassword, "$"), "$")
	if len(sections) != 5 || sections[0] != "argon2id" {
		return false
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(sections[2], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(sections[3])
	if err != nil {
		return false
	}
	stored, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(stored)))
	return fmt.Sprintf("%x", candidate) == fmt.Sprintf("%x", stored)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
