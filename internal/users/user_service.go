package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"tunevault/db"
	"tunevault/models"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username may only contain letters, digits, underscore and hyphen")
	ErrShortUsername      = errors.New("username must be at least 3 characters")
	ErrLongUsername       = errors.New("username must not exceed 50 characters")
	ErrShortPassword      = errors.New("password must be at least 6 characters")
	ErrLongPassword       = errors.New("password must not exceed 72 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// UserService owns the credential store: registration, login and the
// bootstrap admin account.
type UserService struct {
	repo      db.UserRepository
	dbManager *db.Manager
	logger    *log.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo db.UserRepository, dbManager *db.Manager, logger *log.Logger) *UserService {
	return &UserService{repo: repo, dbManager: dbManager, logger: logger}
}

// Register creates a new non-admin account
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	return s.create(ctx, username, password, false)
}

// Authenticate checks a username/password pair against the store. Unknown
// user and wrong password produce the same error so callers cannot probe
// for registered names.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
// An existing user with that name is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("error checking for admin account: %w", err)
	}

	if _, err := s.create(ctx, username, password, true); err != nil {
		return fmt.Errorf("error creating admin account: %w", err)
	}
	s.logger.Info("bootstrap admin account created", "username", username)
	return nil
}

func (s *UserService) create(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}

	created, err := s.dbManager.CreateUser(s.repo, ctx, user)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return ErrShortUsername
	}
	if len(username) > 50 {
		return ErrLongUsername
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return ErrShortPassword
	}
	// bcrypt only hashes the first 72 bytes and rejects anything longer.
	if len(password) > 72 {
		return ErrLongPassword
	}
	return nil
}
