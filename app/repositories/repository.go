// Package repositories defines the persistence interfaces for users and
// cards, with MongoDB implementations and in-memory fakes for tests.
package repositories

import (
	"context"
	"errors"

	"github.com/bcardhq/bcard-api/app/models"
)

// Sentinel errors surfaced by every implementation.
var (
	ErrNotFound           = errors.New("document not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateBizNumber = errors.New("bizNumber already exists")
)

// UserRepository handles the users collection. Read methods never return
// the password hash except FindByEmail, which login needs for the
// credential check.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	All(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error

	// SetBusinessStatus updates only the isBusiness flag; the rest of the
	// document, password hash included, stays untouched.
	SetBusinessStatus(ctx context.Context, id string, isBusiness bool) error

	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// CardRepository handles the cards collection.
type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	FindByID(ctx context.Context, id string) (*models.Card, error)
	All(ctx context.Context) ([]models.Card, error)
	ByOwner(ctx context.Context, userID string) ([]models.Card, error)
	Update(ctx context.Context, card *models.Card) error

	// Like adds userID to the card's likes set as one atomic conditional
	// update. Returns false when userID was already a member.
	Like(ctx context.Context, cardID, userID string) (bool, error)

	Delete(ctx context.Context, id string) error
}
