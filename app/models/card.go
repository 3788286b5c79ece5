package models

import (
	"math/rand/v2"
	"time"
)

// Business number bounds. Auto-generated numbers are uniform in this
// range; uniqueness is enforced by the cards.bizNumber index.
const (
	BizNumberMin = 1_000_000
	BizNumberMax = 9_999_999
)

// CardImage is required on every card, both fields included.
type CardImage struct {
	URL string `bson:"url" json:"url" validate:"required"`
	Alt string `bson:"alt" json:"alt" validate:"required"`
}

// CardAddress differs from the user's address: houseNumber and zip are
// required numbers.
type CardAddress struct {
	State       string `bson:"state,omitempty" json:"state,omitempty" validate:"nullable"`
	Country     string `bson:"country" json:"country" validate:"required"`
	City        string `bson:"city" json:"city" validate:"required"`
	Street      string `bson:"street" json:"street" validate:"required"`
	HouseNumber int    `bson:"houseNumber" json:"houseNumber" validate:"required"`
	Zip         int    `bson:"zip" json:"zip" validate:"required"`
}

// Card is the cards collection document. UserID is the owning user's id,
// set on creation and immutable afterwards. Likes is a set of user ids.
type Card struct {
	ID          string       `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string       `bson:"title" json:"title" validate:"required,min=4,max=75"`
	Subtitle    string       `bson:"subtitle" json:"subtitle" validate:"required,min=5,max=75"`
	Description string       `bson:"description" json:"description" validate:"required,min=5,max=1024"`
	Phone       string       `bson:"phone" json:"phone" validate:"required,min=9,max=11"`
	Email       string       `bson:"email" json:"email" validate:"required,email,min=5,max=30"`
	Web         string       `bson:"web" json:"web" validate:"required,url"`
	Image       *CardImage   `bson:"image" json:"image" validate:"required"`
	Address     *CardAddress `bson:"address" json:"address" validate:"required"`
	BizNumber   int          `bson:"bizNumber" json:"bizNumber" validate:"nullable,min=1000000,max=9999999"`
	Likes       []string     `bson:"likes" json:"likes"`
	UserID      string       `bson:"user_id" json:"user_id"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt,omitempty"`
	UpdatedAt   time.Time    `bson:"updatedAt" json:"updatedAt,omitempty"`
}

// RandomBizNumber returns a uniformly random 7-digit business number.
func RandomBizNumber() int {
	return BizNumberMin + rand.IntN(BizNumberMax-BizNumberMin+1)
}

// Normalize applies default values for absent fields. Runs after
// validation, before persistence.
func (c *Card) Normalize() {
	if c.Likes == nil {
		c.Likes = []string{}
	}
	if c.BizNumber == 0 {
		c.BizNumber = RandomBizNumber()
	}
}
