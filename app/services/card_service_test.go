package services

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcardhq/bcard-api/app/models"
	"github.com/bcardhq/bcard-api/app/repositories"
	"github.com/bcardhq/bcard-api/pkg/auth"
	"github.com/bcardhq/bcard-api/pkg/httperr"
	"github.com/bcardhq/bcard-api/pkg/storage"
)

func newCardService(t *testing.T) (*CardService, *repositories.MemoryCardRepository) {
	t.Helper()
	repo := repositories.NewMemoryCardRepository()
	disk, err := storage.Open(storage.Options{
		Driver:    "local",
		LocalRoot: t.TempDir(),
		LocalURL:  "http://localhost:5000/storage",
	})
	require.NoError(t, err)
	return NewCardService(repo, disk), repo
}

func validCard() *models.Card {
	return &models.Card{
		Title:       "Baker's Bread",
		Subtitle:    "Fresh sourdough daily",
		Description: "A family bakery serving the neighbourhood.",
		Phone:       "04-8123456",
		Email:       "hello@bakery.example",
		Web:         "https://bakery.example",
		Image:       &models.CardImage{URL: "https://bakery.example/logo.png", Alt: "logo"},
		Address:     &models.CardAddress{Country: "Israel", City: "Haifa", Street: "Allenby", HouseNumber: 12, Zip: 31000},
	}
}

var (
	owner    = &auth.Claims{UserID: "owner-1", Role: models.RoleUser}
	admin    = &auth.Claims{UserID: "admin-1", Role: models.RoleAdmin}
	stranger = &auth.Claims{UserID: "stranger-1", Role: models.RoleUser}
)

func TestCreateAssignsOwnerAndDefaults(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)

	assert.Equal(t, owner.UserID, card.UserID)
	assert.NotNil(t, card.Likes)
	assert.Empty(t, card.Likes)
	assert.GreaterOrEqual(t, card.BizNumber, models.BizNumberMin)
	assert.LessOrEqual(t, card.BizNumber, models.BizNumberMax)
}

func TestCreateExplicitBizNumberCollision(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	first := validCard()
	first.BizNumber = 1234567
	_, err := svc.Create(ctx, owner, first)
	require.NoError(t, err)

	second := validCard()
	second.BizNumber = 1234567
	_, err = svc.Create(ctx, stranger, second)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperr.StatusOf(err))
	assert.EqualError(t, err, "Business number already exists")
}

// collideOnce rejects the first insert with a bizNumber collision and
// delegates afterwards, exercising the regenerate-and-retry path.
type collideOnce struct {
	repositories.CardRepository
	mu       sync.Mutex
	rejected bool
	firstBiz int
}

func (c *collideOnce) Create(ctx context.Context, card *models.Card) error {
	c.mu.Lock()
	if !c.rejected {
		c.rejected = true
		c.firstBiz = card.BizNumber
		c.mu.Unlock()
		return repositories.ErrDuplicateBizNumber
	}
	c.mu.Unlock()
	return c.CardRepository.Create(ctx, card)
}

func TestCreateRetriesAutoAssignedBizNumber(t *testing.T) {
	repo := &collideOnce{CardRepository: repositories.NewMemoryCardRepository()}
	svc := NewCardService(repo, nil)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)
	assert.NotZero(t, card.BizNumber)
	assert.NotEqual(t, repo.firstBiz, card.BizNumber)
}

func TestGetMissingCard(t *testing.T) {
	svc, _ := newCardService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, httperr.StatusOf(err))
}

func TestUpdateIsOwnerOnly(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)

	// unlike delete, not even an admin may update someone else's card
	_, err = svc.Update(ctx, admin, card.ID, validCard())
	assert.Equal(t, http.StatusUnauthorized, httperr.StatusOf(err))

	_, err = svc.Update(ctx, stranger, card.ID, validCard())
	assert.Equal(t, http.StatusUnauthorized, httperr.StatusOf(err))

	input := validCard()
	input.Title = "Baker's Bread & Pastry"
	input.UserID = "hijacker" // must not stick
	updated, err := svc.Update(ctx, owner, card.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Baker's Bread & Pastry", updated.Title)
	assert.Equal(t, owner.UserID, updated.UserID)
	assert.Equal(t, card.BizNumber, updated.BizNumber)
}

func TestUpdatePreservesLikes(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)
	_, err = svc.Like(ctx, stranger, card.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, card.ID, validCard())
	require.NoError(t, err)
	assert.Equal(t, []string{stranger.UserID}, updated.Likes)
}

func TestLikeTwiceFails(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)

	liked, err := svc.Like(ctx, stranger, card.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{stranger.UserID}, liked.Likes)

	_, err = svc.Like(ctx, stranger, card.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperr.StatusOf(err))
	assert.EqualError(t, err, "You already liked this card")
}

func TestLikeConcurrentDuplicates(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)

	const attempts = 16
	var wg sync.WaitGroup
	errCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Like(ctx, stranger, card.ID)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	successes := 0
	for err := range errCh {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent like may win")

	got, err := svc.Get(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{stranger.UserID}, got.Likes)
}

// vanishDuring deletes the card underneath the conditional like update,
// simulating a delete racing the like.
type vanishDuring struct {
	repositories.CardRepository
}

func (v *vanishDuring) Like(ctx context.Context, cardID, userID string) (bool, error) {
	if err := v.CardRepository.Delete(ctx, cardID); err != nil {
		return false, err
	}
	return false, nil
}

func TestLikeOfConcurrentlyDeletedCard(t *testing.T) {
	repo := &vanishDuring{CardRepository: repositories.NewMemoryCardRepository()}
	svc := NewCardService(repo, nil)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)

	_, err = svc.Like(ctx, stranger, card.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperr.StatusOf(err))
	assert.EqualError(t, err, "Card not found")
}

func TestLikeMissingCard(t *testing.T) {
	svc, _ := newCardService(t)

	_, err := svc.Like(context.Background(), stranger, "missing")
	assert.Equal(t, http.StatusNotFound, httperr.StatusOf(err))
}

func TestDeleteOwnerOrAdmin(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)

	_, err = svc.Delete(ctx, stranger, card.ID)
	assert.Equal(t, http.StatusUnauthorized, httperr.StatusOf(err))

	// admin may delete, unlike update
	deleted, err := svc.Delete(ctx, admin, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, deleted.ID)

	_, err = svc.Delete(ctx, admin, card.ID)
	assert.Equal(t, http.StatusNotFound, httperr.StatusOf(err))

	// owner path
	own, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)
	_, err = svc.Delete(ctx, owner, own.ID)
	require.NoError(t, err)
}

func TestCreateGetRoundTrip(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	input := validCard()
	created, err := svc.Create(ctx, owner, input)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, input.Title, got.Title)
	assert.Equal(t, input.Subtitle, got.Subtitle)
	assert.Equal(t, input.Description, got.Description)
	assert.Equal(t, input.Phone, got.Phone)
	assert.Equal(t, input.Email, got.Email)
	assert.Equal(t, input.Web, got.Web)
	assert.Equal(t, input.Image, got.Image)
	assert.Equal(t, input.Address, got.Address)
	assert.Equal(t, created.BizNumber, got.BizNumber)
	assert.Equal(t, owner.UserID, got.UserID)
}

func TestMineListsOnlyOwnCards(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)
	_, err = svc.Create(ctx, stranger, validCard())
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, owner.UserID, mine[0].UserID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAttachImageOwnerOnly(t *testing.T) {
	svc, _ := newCardService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, owner, validCard())
	require.NoError(t, err)

	_, err = svc.AttachImage(ctx, stranger, card.ID, "logo.png", strings.NewReader("png-bytes"))
	assert.Equal(t, http.StatusUnauthorized, httperr.StatusOf(err))

	updated, err := svc.AttachImage(ctx, owner, card.ID, "../evil/logo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Contains(t, updated.Image.URL, "cards/"+card.ID+"/")
	assert.NotContains(t, updated.Image.URL, "..")

	got, err := svc.Get(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Image.URL, got.Image.URL)
}
