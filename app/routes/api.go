// Package routes defines the HTTP route table.
package routes

import (
	"github.com/bcardhq/bcard-api/app/controllers"
	"github.com/bcardhq/bcard-api/app/models"
	"github.com/bcardhq/bcard-api/pkg/middleware"
	"github.com/bcardhq/bcard-api/pkg/rbac"
	"github.com/bcardhq/bcard-api/pkg/router"
)

// RegisterAPI mounts every application route. Registration, login,
// logout and card reads are public; everything else sits behind the
// session cookie, with the admin gate on the user listing.
func RegisterAPI(
	r *router.Router,
	users *controllers.UserController,
	cards *controllers.CardController,
	authn *middleware.Authenticator,
) {
	u := r.Group("/users")
	u.Post("", "users.register", users.Register)
	u.Post("/login", "users.login", users.Login)
	u.Delete("/logout", "users.logout", users.Logout)
	u.Get("", "users.list", users.List, authn.Require, rbac.HasRole(models.RoleAdmin))
	u.Get("/{id}", "users.get", users.Get, authn.Require)
	u.Put("/{id}", "users.update", users.Update, authn.Require)
	u.Patch("/{id}", "users.status", users.UpdateStatus, authn.Require)
	u.Delete("/{id}", "users.delete", users.Delete, authn.Require)

	c := r.Group("/cards")
	c.Get("", "cards.list", cards.List)
	c.Get("/my-cards", "cards.mine", cards.Mine, authn.Require)
	c.Post("", "cards.create", cards.Create, authn.Require)
	c.Get("/{id}", "cards.get", cards.Get)
	c.Put("/{id}", "cards.update", cards.Update, authn.Require)
	c.Patch("/{id}", "cards.like", cards.Like, authn.Require)
	c.Delete("/{id}", "cards.delete", cards.Delete, authn.Require)
	c.Post("/{id}/image", "cards.image", cards.UploadImage, authn.Require)
}
