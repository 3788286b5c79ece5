package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bcardhq/bcard-api/app/models"
	"github.com/bcardhq/bcard-api/app/repositories"
	"github.com/bcardhq/bcard-api/pkg/auth"
)

func init() {
	Register("demo", SeedDemo)
}

// SeedDemo creates a demo admin, a business user and a couple of cards.
// Skips silently when users already exist.
func SeedDemo(ctx context.Context, db *mongo.Database) error {
	users := repositories.NewMongoUserRepository(db)
	cards := repositories.NewMongoCardRepository(db)

	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	adminHash, err := auth.HashPassword("Admin123!")
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:     models.UserName{First: "Ada", Last: "Admin"},
		Email:    "admin@bcard.local",
		Password: adminHash,
		Role:     models.RoleAdmin,
		Phone:    "05512345678",
		Address: models.UserAddress{
			Country:     "Israel",
			City:        "Tel Aviv",
			Street:      "Herzl",
			HouseNumber: "1",
		},
	}
	admin.Normalize()
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	bizHash, err := auth.HashPassword("Business123!")
	if err != nil {
		return err
	}
	owner := &models.User{
		Name:       models.UserName{First: "Boaz", Last: "Baker"},
		Email:      "owner@bcard.local",
		Password:   bizHash,
		Phone:      "05598765432",
		IsBusiness: true,
		Address: models.UserAddress{
			Country:     "Israel",
			City:        "Haifa",
			Street:      "Allenby",
			HouseNumber: "12",
		},
	}
	owner.Normalize()
	if err := users.Create(ctx, owner); err != nil {
		return err
	}

	demoCards := []*models.Card{
		{
			Title:       "Baker's Bread",
			Subtitle:    "Fresh sourdough daily",
			Description: "A family bakery serving the neighbourhood since 1998.",
			Phone:       "04-8123456",
			Email:       "hello@bakersbread.example",
			Web:         "https://bakersbread.example",
			Image:       &models.CardImage{URL: models.PlaceholderImageURL, Alt: "storefront"},
			Address:     &models.CardAddress{Country: "Israel", City: "Haifa", Street: "Allenby", HouseNumber: 12, Zip: 31000},
			UserID:      owner.ID,
		},
		{
			Title:       "Fix-It Plumbing",
			Subtitle:    "Emergency plumbing, day or night",
			Description: "Licensed plumbers for homes and small businesses.",
			Phone:       "04-8765432",
			Email:       "call@fixit.example",
			Web:         "https://fixit.example",
			Image:       &models.CardImage{URL: models.PlaceholderImageURL, Alt: "logo"},
			Address:     &models.CardAddress{Country: "Israel", City: "Haifa", Street: "HaNamal", HouseNumber: 3, Zip: 31001},
			UserID:      owner.ID,
		},
	}

	for _, card := range demoCards {
		card.Normalize()
		if err := cards.Create(ctx, card); err != nil {
			return err
		}
	}

	return nil
}
