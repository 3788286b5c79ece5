// Package models defines the User and Card documents with their
// validation schemas and default-value rules.
package models

import "time"

// Roles a user can hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// PlaceholderImageURL is the profile image applied when none is provided.
const PlaceholderImageURL = "https://res.cloudinary.com/dlpjcvsii/image/upload/v1688459756/file-upload/tmp-1-1688459755587_hvt1fy.png"

// UserName is the structured name sub-document.
type UserName struct {
	First  string `bson:"first" json:"first" validate:"required"`
	Middle string `bson:"middle,omitempty" json:"middle,omitempty" validate:"nullable"`
	Last   string `bson:"last" json:"last" validate:"required"`
}

// UserAddress is the user's postal address. houseNumber is a free-form
// string here, unlike the numeric one on cards.
type UserAddress struct {
	State       string `bson:"state,omitempty" json:"state,omitempty" validate:"nullable"`
	Country     string `bson:"country" json:"country" validate:"required"`
	City        string `bson:"city" json:"city" validate:"required"`
	Street      string `bson:"street" json:"street" validate:"required"`
	HouseNumber string `bson:"houseNumber" json:"houseNumber" validate:"required"`
}

// UserImage is the optional profile image.
type UserImage struct {
	URL string `bson:"url,omitempty" json:"url,omitempty" validate:"nullable,url"`
	Alt string `bson:"alt,omitempty" json:"alt,omitempty" validate:"nullable"`
}

// User is the users collection document. Password holds the bcrypt hash;
// it is blanked before any user leaves the service layer, and omitempty
// keeps it out of the JSON.
type User struct {
	ID         string      `bson:"_id,omitempty" json:"_id,omitempty"`
	Name       UserName    `bson:"name" json:"name"`
	Email      string      `bson:"email" json:"email" validate:"required,email"`
	Password   string      `bson:"password,omitempty" json:"password,omitempty" validate:"required"`
	Role       string      `bson:"role" json:"role" validate:"nullable,in=admin,user"`
	Phone      string      `bson:"phone" json:"phone" validate:"required,min=11"`
	Address    UserAddress `bson:"address" json:"address"`
	IsBusiness bool        `bson:"isBusiness" json:"isBusiness" validate:"boolean"`
	Image      *UserImage  `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt  time.Time   `bson:"createdAt" json:"createdAt,omitempty"`
	UpdatedAt  time.Time   `bson:"updatedAt" json:"updatedAt,omitempty"`
}

// Normalize applies default values for absent fields. Runs after
// validation, before persistence.
func (u *User) Normalize() {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Image == nil {
		u.Image = &UserImage{}
	}
	if u.Image.URL == "" {
		u.Image.URL = PlaceholderImageURL
	}
}

// Sanitize blanks the credential so it never reaches a response body.
func (u *User) Sanitize() {
	u.Password = ""
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
