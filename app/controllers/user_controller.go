// Package controllers contains the HTTP handlers. They decode and
// validate the request, call a service, and write the response; all
// business rules live in app/services.
package controllers

import (
	"net/http"

	"github.com/bcardhq/bcard-api/app/models"
	"github.com/bcardhq/bcard-api/app/services"
	"github.com/bcardhq/bcard-api/pkg/auth"
	"github.com/bcardhq/bcard-api/pkg/bind"
	"github.com/bcardhq/bcard-api/pkg/middleware"
	"github.com/bcardhq/bcard-api/pkg/response"
	"github.com/bcardhq/bcard-api/pkg/router"
)

// UserController handles registration, session and user management routes.
type UserController struct {
	users  *services.UserService
	cookie *auth.CookieBaker
}

func NewUserController(users *services.UserService, cookie *auth.CookieBaker) *UserController {
	return &UserController{users: users, cookie: cookie}
}

// Register handles POST /users.
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var input models.User
	errs, err := bind.JSON(r, &input)
	if err != nil {
		response.Msg(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs.Any() {
		response.Msg(w, http.StatusBadRequest, errs.First())
		return
	}

	user, err := c.users.Register(r.Context(), &input)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"msg":  "User Registered Successfully!",
		"user": user,
	})
}

// Login handles POST /users/login. On success the token is returned in
// the body and set as the sealed session cookie.
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if _, err := bind.JSON(r, &body); err != nil {
		response.Msg(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := c.users.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	cookie, err := c.cookie.Bake(token)
	if err != nil {
		response.Error(w, err)
		return
	}
	http.SetCookie(w, cookie)

	response.OK(w, map[string]string{"token": token})
}

// Logout handles DELETE /users/logout: overwrites the session cookie with an
// expired placeholder. Always succeeds.
func (c *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, c.cookie.Expired())
	response.Msg(w, http.StatusOK, "user logged out!")
}

// List handles GET /users. Admin-only (gated at the route).
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"users": users})
}

// Get handles GET /users/{id}.
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ClaimsFromCtx(r.Context())
	user, err := c.users.Get(r.Context(), caller, router.Param(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"user": user})
}

// Update handles PUT /users/{id}.
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	var input models.User
	errs, err := bind.JSON(r, &input)
	if err != nil {
		response.Msg(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs.Any() {
		response.Msg(w, http.StatusBadRequest, errs.First())
		return
	}

	caller := middleware.ClaimsFromCtx(r.Context())
	user, err := c.users.Update(r.Context(), caller, router.Param(r, "id"), &input)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"user": user})
}

// UpdateStatus handles PATCH /users/{id}: toggles isBusiness only.
func (c *UserController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsBusiness bool `json:"isBusiness" validate:"boolean"`
	}
	errs, err := bind.JSON(r, &body)
	if err != nil {
		response.Msg(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs.Any() {
		response.Msg(w, http.StatusBadRequest, errs.First())
		return
	}

	caller := middleware.ClaimsFromCtx(r.Context())
	user, err := c.users.SetBusinessStatus(r.Context(), caller, router.Param(r, "id"), body.IsBusiness)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"user": user})
}

// Delete handles DELETE /users/{id}.
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ClaimsFromCtx(r.Context())
	user, err := c.users.Delete(r.Context(), caller, router.Param(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"msg":  "Success! User Deleted.",
		"user": user,
	})
}
