package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bcardhq/bcard-api/app/models"
)

// In-memory implementations backing service and controller tests. They
// honour the same sentinel errors and uniqueness rules as the MongoDB
// implementations.

// MemoryUserRepository is a map-backed UserRepository.
type MemoryUserRepository struct {
	mu    sync.Mutex
	seq   int
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]models.User{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		r.seq++
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUser(u)
	out.Password = ""
	return &out, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) All(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.User{}
	for _, u := range r.users {
		c := cloneUser(u)
		c.Password = ""
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) SetBusinessStatus(_ context.Context, id string, isBusiness bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.IsBusiness = isBusiness
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// MemoryCardRepository is a map-backed CardRepository.
type MemoryCardRepository struct {
	mu    sync.Mutex
	seq   int
	cards map[string]models.Card
}

func NewMemoryCardRepository() *MemoryCardRepository {
	return &MemoryCardRepository{cards: map[string]models.Card{}}
}

func (r *MemoryCardRepository) Create(_ context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.cards {
		if c.BizNumber == card.BizNumber {
			return ErrDuplicateBizNumber
		}
	}

	if card.ID == "" {
		r.seq++
		card.ID = fmt.Sprintf("card-%d", r.seq)
	}
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	r.cards[card.ID] = cloneCard(*card)
	return nil
}

func (r *MemoryCardRepository) FindByID(_ context.Context, id string) (*models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneCard(c)
	return &out, nil
}

func (r *MemoryCardRepository) All(_ context.Context) ([]models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Card{}
	for _, c := range r.cards {
		out = append(out, cloneCard(c))
	}
	return out, nil
}

func (r *MemoryCardRepository) ByOwner(_ context.Context, userID string) ([]models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Card{}
	for _, c := range r.cards {
		if c.UserID == userID {
			out = append(out, cloneCard(c))
		}
	}
	return out, nil
}

func (r *MemoryCardRepository) Update(_ context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.cards[card.ID]
	if !ok {
		return ErrNotFound
	}
	for id, c := range r.cards {
		if id != card.ID && c.BizNumber == card.BizNumber {
			return ErrDuplicateBizNumber
		}
	}

	card.CreatedAt = existing.CreatedAt
	card.UpdatedAt = time.Now().UTC()
	r.cards[card.ID] = cloneCard(*card)
	return nil
}

func (r *MemoryCardRepository) Like(_ context.Context, cardID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[cardID]
	if !ok {
		return false, nil
	}
	for _, id := range c.Likes {
		if id == userID {
			return false, nil
		}
	}
	c.Likes = append(c.Likes, userID)
	c.UpdatedAt = time.Now().UTC()
	r.cards[cardID] = c
	return true, nil
}

func (r *MemoryCardRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[id]; !ok {
		return ErrNotFound
	}
	delete(r.cards, id)
	return nil
}

func cloneUser(u models.User) models.User {
	if u.Image != nil {
		img := *u.Image
		u.Image = &img
	}
	return u
}

func cloneCard(c models.Card) models.Card {
	if c.Image != nil {
		img := *c.Image
		c.Image = &img
	}
	if c.Address != nil {
		addr := *c.Address
		c.Address = &addr
	}
	c.Likes = append([]string(nil), c.Likes...)
	return c
}
