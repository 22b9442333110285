package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/cronospark/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const pinLength = 4

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	Register(username, pin string) (models.User, error)
	Authenticate(username, pin string) (models.User, error)
}

// UserService provides business logic for account management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Register creates a new account from a username and a 4-digit PIN. The PIN is
// stored only as a bcrypt hash.
func (s *UserService) Register(username, pin string) (models.User, error) {
	username = strings.TrimSpace(username)
	pin = strings.TrimSpace(pin)

	if username == "" {
		return models.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if !validPin(pin) {
		return models.User{}, fmt.Errorf("%w: PIN must be exactly 4 digits", ErrValidation)
	}

	hashedPin, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash PIN: %w", err)
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
	}

	_, err = s.db.Exec("INSERT INTO users(id, username, pin_hash) VALUES(?, ?, ?)",
		user.ID, user.Username, string(hashedPin))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}

	return user, nil
}

// Authenticate verifies a username/PIN pair. The error is the same whether the
// user is unknown or the PIN is wrong.
func (s *UserService) Authenticate(username, pin string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, pin_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PinHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)) != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't hand the hash to the caller
	user.PinHash = ""
	return user, nil
}

func validPin(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isUniqueViolation reports whether err is the SQLite unique constraint error
// raised on a duplicate username insert.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
