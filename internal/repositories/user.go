package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sbilibin2017/gw-secondchance/internal/docstore"
	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
)

// usersCollection is the document store collection holding user records.
const usersCollection = "users"

// UserReadRepository handles user lookups against the document store.
type UserReadRepository struct {
	store docstore.Store
}

func NewUserReadRepository(store docstore.Store) *UserReadRepository {
	return &UserReadRepository{store: store}
}

// GetByEmail returns the user with the given email, or nil when absent.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	doc, err := r.store.FindOne(ctx, usersCollection, map[string]any{"email": email})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("failed to find user", "email", email, "error", err)
		return nil, err
	}

	var user models.UserDB
	if err := json.Unmarshal(doc, &user); err != nil {
		logger.Log.Errorw("failed to decode user document", "email", email, "error", err)
		return nil, err
	}
	return &user, nil
}

// UserWriteRepository handles user persistence against the document store.
type UserWriteRepository struct {
	store docstore.Store
}

func NewUserWriteRepository(store docstore.Store) *UserWriteRepository {
	return &UserWriteRepository{store: store}
}

// Save persists a new user and returns the store-assigned identifier.
func (r *UserWriteRepository) Save(ctx context.Context, user models.UserDB) (string, error) {
	id, err := r.store.InsertOne(ctx, usersCollection, user)
	if err != nil {
		logger.Log.Errorw("failed to save user", "email", user.Email, "error", err)
		return "", err
	}
	return id, nil
}
