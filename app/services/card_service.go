package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/bcardhq/bcard-api/app/models"
	"github.com/bcardhq/bcard-api/app/repositories"
	"github.com/bcardhq/bcard-api/pkg/auth"
	"github.com/bcardhq/bcard-api/pkg/httperr"
	"github.com/bcardhq/bcard-api/pkg/metrics"
	"github.com/bcardhq/bcard-api/pkg/storage"
)

// bizNumberAttempts bounds the retry loop when an auto-generated
// business number collides with the unique index.
const bizNumberAttempts = 10

// CardService implements card management and the like operation.
type CardService struct {
	cards repositories.CardRepository
	disk  storage.Disk
}

func NewCardService(cards repositories.CardRepository, disk storage.Disk) *CardService {
	return &CardService{cards: cards, disk: disk}
}

// List returns every card. Public.
func (s *CardService) List(ctx context.Context) ([]models.Card, error) {
	return s.cards.All(ctx)
}

// Mine returns the caller's own cards.
func (s *CardService) Mine(ctx context.Context, caller *auth.Claims) ([]models.Card, error) {
	return s.cards.ByOwner(ctx, caller.UserID)
}

// Get returns one card by id. Public.
func (s *CardService) Get(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.cards.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, httperr.NotFound("Card not found")
	}
	return card, err
}

// Create stores a new card owned by the caller. When the payload carries
// no bizNumber a random one is assigned, regenerated on collision with
// the unique index; an explicit bizNumber that collides is rejected.
func (s *CardService) Create(ctx context.Context, caller *auth.Claims, input *models.Card) (*models.Card, error) {
	input.UserID = caller.UserID
	autoAssigned := input.BizNumber == 0
	input.Normalize()

	for attempt := 0; ; attempt++ {
		err := s.cards.Create(ctx, input)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrDuplicateBizNumber) {
			return nil, err
		}
		if !autoAssigned {
			return nil, httperr.BadRequest("Business number already exists")
		}
		if attempt == bizNumberAttempts-1 {
			return nil, err
		}
		input.BizNumber = models.RandomBizNumber()
	}

	metrics.CardsCreated.Inc()
	return input, nil
}

// Update replaces a card. Owner-only: unlike delete, admins may not
// update other users' cards. Owner, likes and bizNumber survive from the
// stored document unless the payload sets a new bizNumber.
func (s *CardService) Update(ctx context.Context, caller *auth.Claims, id string, input *models.Card) (*models.Card, error) {
	existing, err := s.cards.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, httperr.NotFound("Card not found")
	}
	if err != nil {
		return nil, err
	}

	if existing.UserID != caller.UserID {
		return nil, httperr.Unauthorized("Not Authorized")
	}

	input.ID = existing.ID
	input.UserID = existing.UserID
	input.Likes = existing.Likes
	input.CreatedAt = existing.CreatedAt
	if input.BizNumber == 0 {
		input.BizNumber = existing.BizNumber
	}
	input.Normalize()

	if err := s.cards.Update(ctx, input); err != nil {
		if errors.Is(err, repositories.ErrDuplicateBizNumber) {
			return nil, httperr.BadRequest("Business number already exists")
		}
		return nil, err
	}

	return input, nil
}

// Like adds the caller to the card's likes set. A second like of the
// same card fails; there is no unlike.
func (s *CardService) Like(ctx context.Context, caller *auth.Claims, id string) (*models.Card, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	liked, err := s.cards.Like(ctx, id, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !liked {
		// A no-op update means either a repeat like or a card deleted
		// since the pre-check; tell them apart.
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, httperr.BadRequest("You already liked this card")
	}

	metrics.CardLikes.Inc()
	return s.Get(ctx, id)
}

// Delete removes a card. The owner or an admin may delete.
func (s *CardService) Delete(ctx context.Context, caller *auth.Claims, id string) (*models.Card, error) {
	card, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && card.UserID != caller.UserID {
		return nil, httperr.Unauthorized("Unauthorized to delete this card")
	}

	if err := s.cards.Delete(ctx, id); err != nil {
		return nil, err
	}
	return card, nil
}

// AttachImage stores an uploaded image on the configured disk and points
// the card's image at it. Owner-only.
func (s *CardService) AttachImage(ctx context.Context, caller *auth.Claims, id, filename string, file io.Reader) (*models.Card, error) {
	card, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if card.UserID != caller.UserID {
		return nil, httperr.Unauthorized("Not Authorized")
	}

	key := "cards/" + card.ID + "/" + sanitizeFilename(filename)
	if err := s.disk.PutStream(key, file); err != nil {
		return nil, err
	}

	if card.Image == nil {
		card.Image = &models.CardImage{Alt: card.Title}
	}
	card.Image.URL = s.disk.URL(key)

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// sanitizeFilename strips any path components and characters that have
// no business in an object key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '-'
	}, name)
}
