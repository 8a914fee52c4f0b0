package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sbilibin2017/gw-secondchance/internal/docstore"
	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
)

// Error variables
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrValidation             = errors.New("invalid input")
)

// DefaultHashCost is the bcrypt work factor used when none is configured.
const DefaultHashCost = 10

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user models.UserDB) (string, error)
}

// TokenGenerator defines an interface for issuing signed identity tokens.
type TokenGenerator interface {
	Generate(ctx context.Context, userID string) (string, error)
}

// RegisterResult is returned on successful registration.
type RegisterResult struct {
	Token string
	Email string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	UserName  string
	UserEmail string
}

// AuthService handles registration and login.
type AuthService struct {
	reader   UserReader
	writer   UserWriter
	jwt      TokenGenerator
	hashCost int
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt TokenGenerator, hashCost int) *AuthService {
	if hashCost <= 0 {
		hashCost = DefaultHashCost
	}
	return &AuthService{
		reader:   reader,
		writer:   writer,
		jwt:      jwt,
		hashCost: hashCost,
	}
}

// Register creates a new user with a hashed password and issues a signed token
// carrying the store-assigned identifier.
func (svc *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*RegisterResult, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Errorw("email already registered", "email", email)
		return nil, ErrEmailAlreadyRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), svc.hashCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	userID, err := svc.writer.Save(ctx, models.UserDB{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// The unique index catches concurrent registrations of the same email.
		if errors.Is(err, docstore.ErrConflict) {
			logger.Log.Errorw("email already registered", "email", email)
			return nil, ErrEmailAlreadyRegistered
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	token, err := svc.jwt.Generate(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return nil, err
	}

	logger.Log.Infow("user registered", "email", email)
	return &RegisterResult{Token: token, Email: email}, nil
}

// Login authenticates a user and returns a signed token plus display fields.
// No store writes happen on login.
func (svc *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "email", email)
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "email", email)
		return nil, ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		UserName:  user.FirstName,
		UserEmail: user.Email,
	}, nil
}
