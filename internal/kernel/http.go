// Package kernel assembles the HTTP handler: middleware stack, route
// table and the metrics endpoint.
package kernel

import (
	"github.com/bcardhq/bcard-api/app/controllers"
	"github.com/bcardhq/bcard-api/app/repositories"
	"github.com/bcardhq/bcard-api/app/routes"
	"github.com/bcardhq/bcard-api/app/services"
	"github.com/bcardhq/bcard-api/pkg/auth"
	"github.com/bcardhq/bcard-api/pkg/metrics"
	"github.com/bcardhq/bcard-api/pkg/middleware"
	"github.com/bcardhq/bcard-api/pkg/reqid"
	"github.com/bcardhq/bcard-api/pkg/response"
	"github.com/bcardhq/bcard-api/pkg/router"
	"github.com/bcardhq/bcard-api/pkg/storage"
)

// Options carries everything the kernel needs to assemble the handler.
// Secrets are injected here once; nothing downstream reads config.
type Options struct {
	JWTSecret    string
	AppKey       string
	SecureCookie bool
	CORSOrigin   string

	Users repositories.UserRepository
	Cards repositories.CardRepository
	Disk  storage.Disk
}

// New builds the fully wired router.
//
// Middleware order matters: metrics first so it times everything,
// then request IDs, then recovery, then the request logger.
func New(opts Options) *router.Router {
	tokens := auth.NewTokenService(opts.JWTSecret)
	cookie := auth.NewCookieBaker(opts.AppKey, opts.SecureCookie)
	authn := middleware.NewAuthenticator(tokens, cookie)

	userService := services.NewUserService(opts.Users, tokens)
	cardService := services.NewCardService(opts.Cards, opts.Disk)

	userController := controllers.NewUserController(userService, cookie)
	cardController := controllers.NewCardController(cardService)

	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions(opts.CORSOrigin)),
	)
	r.NotFound(response.NotFoundHandler)

	routes.RegisterAPI(r, userController, cardController, authn)
	r.Get("/metrics", "metrics", metrics.Handler())

	return r
}
