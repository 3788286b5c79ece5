package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bcardhq/bcard-api/app/models"
	"github.com/bcardhq/bcard-api/pkg/database"
)

// MongoCardRepository is the cards collection implementation.
type MongoCardRepository struct {
	col *mongo.Collection
}

func NewMongoCardRepository(db *mongo.Database) *MongoCardRepository {
	return &MongoCardRepository{col: db.Collection("cards")}
}

func (r *MongoCardRepository) Create(ctx context.Context, card *models.Card) error {
	if card.ID == "" {
		card.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, card)
	if database.IsDup(err) {
		return ErrDuplicateBizNumber
	}
	return err
}

func (r *MongoCardRepository) FindByID(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&card)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *MongoCardRepository) All(ctx context.Context) ([]models.Card, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoCardRepository) ByOwner(ctx context.Context, userID string) ([]models.Card, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoCardRepository) find(ctx context.Context, filter bson.M) ([]models.Card, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	cards := []models.Card{}
	if err := cur.All(ctx, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *MongoCardRepository) Update(ctx context.Context, card *models.Card) error {
	card.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": card.ID}, card)
	if database.IsDup(err) {
		return ErrDuplicateBizNumber
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Like is a single conditional update: the filter only matches when
// userID is not yet in the likes array, so concurrent duplicates cannot
// both succeed.
func (r *MongoCardRepository) Like(ctx context.Context, cardID, userID string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": cardID, "likes": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"likes": userID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoCardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
