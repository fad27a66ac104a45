package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/tripscribe-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for identity services.
type UserServiceProvider interface {
	Register(fullName, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
}

// UserService provides registration and authentication of journal owners.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new user, hashing their password. The email must not be
// in use by another account.
func (s *UserService) Register(fullName, email, password string) (models.User, error) {
	if fullName == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: full name, email and password are required", ErrValidation)
	}

	var existingID string
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&existingID)
	if err == nil {
		return models.User{}, ErrDuplicateEmail
	}
	if err != sql.ErrNoRows {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, full_name, email, password_hash, created_at) VALUES(?, ?, ?, ?, ?)",
		user.ID, user.FullName, user.Email, user.PasswordHash, user.CreatedAt.UnixMilli(),
	)
	if err != nil {
		// Two registrations racing past the pre-check still hit the unique index.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown emails and wrong
// passwords are deliberately indistinguishable.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	var user models.User
	var createdAt int64
	row := s.db.QueryRow("SELECT id, full_name, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user.CreatedAt = time.UnixMilli(createdAt)

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	var createdAt int64
	row := s.db.QueryRow("SELECT id, full_name, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.FullName, &user.Email, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return models.User{}, err
	}
	user.CreatedAt = time.UnixMilli(createdAt)
	return user, nil
}
