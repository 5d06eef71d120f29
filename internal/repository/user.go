package repository

import (
	"context" // Request-scoped cancellation
	"errors"  // Error inspection
	"strings" // Email normalization

	"voicebox/internal/domain" // Importing domain models

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// UserRepository stores accounts and their credentials
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register creates an account with a hashed password. Emails are unique, case-insensitively.
func (r *UserRepository) Register(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, domain.ValidationError("Please provide username, email and password")
	}
	if len(password) < MinPasswordLength {
		return nil, domain.ValidationError("Password must be at least 6 characters")
	}
	if role == "" {
		role = domain.RoleUser // Default role
	}
	// Check for an existing account first so the common case gets a clean message
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, domain.InternalError(err)
	}
	if count > 0 {
		return nil, domain.ConflictError("User already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.InternalError(err)
	}
	user := &domain.User{Username: username, Email: email, Password: string(hash), Role: role}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// A concurrent registration can still win the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ConflictError("User already exists")
		}
		return nil, domain.InternalError(err)
	}
	return user, nil
}

// Authenticate returns the account matching email and password
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.UnauthenticatedError("Invalid email or password")
	} else if err != nil {
		return nil, domain.InternalError(err)
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.UnauthenticatedError("Invalid email or password")
	}
	return &user, nil
}

// FindByID returns the account with the given id
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("User not found")
	} else if err != nil {
		return nil, domain.InternalError(err)
	}
	return &user, nil
}
