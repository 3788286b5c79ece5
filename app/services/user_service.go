// Package services holds the business rules for users and cards:
// authorization decisions, uniqueness handling, credential checks and
// default assignment. Controllers stay thin; repositories stay dumb.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bcardhq/bcard-api/app/models"
	"github.com/bcardhq/bcard-api/app/repositories"
	"github.com/bcardhq/bcard-api/pkg/auth"
	"github.com/bcardhq/bcard-api/pkg/httperr"
	"github.com/bcardhq/bcard-api/pkg/metrics"
)

// UserService implements registration, login and user management.
type UserService struct {
	users  repositories.UserRepository
	tokens *auth.TokenService
}

func NewUserService(users repositories.UserRepository, tokens *auth.TokenService) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register creates a new account. The very first registered user becomes
// the admin; everyone after that is a regular user regardless of the
// payload's role field.
func (s *UserService) Register(ctx context.Context, input *models.User) (*models.User, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		input.Role = models.RoleAdmin
	} else {
		input.Role = models.RoleUser
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	input.Password = hash
	input.Normalize()

	if err := s.users.Create(ctx, input); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, httperr.BadRequest("Email already exists")
		}
		return nil, err
	}

	metrics.UsersRegistered.Inc()
	input.Sanitize()
	return input, nil
}

// Login verifies credentials and issues a session token. Unknown email
// and wrong password are deliberately indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", httperr.BadRequest("Please provide email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.AuthFailures.Inc()
			return "", httperr.Unauthenticated("Invalid credentials")
		}
		return "", err
	}

	if !auth.CheckPassword(user.Password, password) {
		metrics.AuthFailures.Inc()
		return "", httperr.Unauthenticated("Invalid credentials")
	}

	name := strings.TrimSpace(user.Name.First + " " + user.Name.Last)
	return s.tokens.Issue(user.ID, name, user.Role)
}

// List returns all users, passwords excluded. The admin gate is enforced
// at the route level.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

// Get returns one user. Only the subject themself or an admin may look
// a user up.
func (s *UserService) Get(ctx context.Context, caller *auth.Claims, id string) (*models.User, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return nil, httperr.Unauthorized("Not Authorized")
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, httperr.NotFound(fmt.Sprintf("No user with id : %s", id))
	}
	return user, err
}

// Update replaces the subject's profile. Only the subject themself may
// call it; admins may not edit other users' profiles. The role is kept
// from the stored document so a user cannot promote themself.
func (s *UserService) Update(ctx context.Context, caller *auth.Claims, id string, input *models.User) (*models.User, error) {
	if caller.UserID != id {
		return nil, httperr.Unauthorized("Not Authorized")
	}

	existing, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, httperr.NotFound(fmt.Sprintf("No user with id : %s", id))
	}
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	input.ID = existing.ID
	input.Role = existing.Role
	input.Password = hash
	input.CreatedAt = existing.CreatedAt
	input.Normalize()

	if err := s.users.Update(ctx, input); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, httperr.BadRequest("Email already exists")
		}
		return nil, err
	}

	input.Sanitize()
	return input, nil
}

// SetBusinessStatus toggles the subject's isBusiness flag. Subject-only,
// like Update. Issued as a partial update so the stored password hash
// survives the toggle.
func (s *UserService) SetBusinessStatus(ctx context.Context, caller *auth.Claims, id string, isBusiness bool) (*models.User, error) {
	if caller.UserID != id {
		return nil, httperr.Unauthorized("Not Authorized")
	}

	err := s.users.SetBusinessStatus(ctx, id, isBusiness)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, httperr.NotFound(fmt.Sprintf("No user with id : %s", id))
	}
	if err != nil {
		return nil, err
	}

	return s.users.FindByID(ctx, id)
}

// Delete removes a user. The subject themself or an admin may delete;
// the user's cards are left in place with a dangling owner id.
func (s *UserService) Delete(ctx context.Context, caller *auth.Claims, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, httperr.NotFound(fmt.Sprintf("No user with id : %s", id))
	}
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && caller.UserID != id {
		return nil, httperr.Unauthorized("Not Authorized")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return nil, err
	}

	user.Sanitize()
	return user, nil
}
