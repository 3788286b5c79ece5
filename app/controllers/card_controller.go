package controllers

import (
	"net/http"

	"github.com/bcardhq/bcard-api/app/models"
	"github.com/bcardhq/bcard-api/app/services"
	"github.com/bcardhq/bcard-api/pkg/bind"
	"github.com/bcardhq/bcard-api/pkg/middleware"
	"github.com/bcardhq/bcard-api/pkg/response"
	"github.com/bcardhq/bcard-api/pkg/router"
)

// maxUploadBytes caps card image uploads at 8 MB.
const maxUploadBytes = 8 << 20

// CardController handles the card routes.
type CardController struct {
	cards *services.CardService
}

func NewCardController(cards *services.CardService) *CardController {
	return &CardController{cards: cards}
}

// List handles GET /cards. Public.
func (c *CardController) List(w http.ResponseWriter, r *http.Request) {
	cards, err := c.cards.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"cards": cards})
}

// Mine handles GET /cards/my-cards: the caller's own cards.
func (c *CardController) Mine(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ClaimsFromCtx(r.Context())
	cards, err := c.cards.Mine(r.Context(), caller)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"cards": cards})
}

// Get handles GET /cards/{id}. Public.
func (c *CardController) Get(w http.ResponseWriter, r *http.Request) {
	card, err := c.cards.Get(r.Context(), router.Param(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"card": card})
}

// Create handles POST /cards.
func (c *CardController) Create(w http.ResponseWriter, r *http.Request) {
	var input models.Card
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
	card, err := c.cards.Create(r.Context(), caller, &input)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, map[string]interface{}{"card": card})
}

// Update handles PUT /cards/{id}. Owner-only.
func (c *CardController) Update(w http.ResponseWriter, r *http.Request) {
	var input models.Card
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
	card, err := c.cards.Update(r.Context(), caller, router.Param(r, "id"), &input)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"card": card})
}

// Like handles PATCH /cards/{id}: adds the caller to the likes set.
func (c *CardController) Like(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ClaimsFromCtx(r.Context())
	card, err := c.cards.Like(r.Context(), caller, router.Param(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"msg":  "Card liked successfully",
		"card": card,
	})
}

// Delete handles DELETE /cards/{id}. Owner or admin.
func (c *CardController) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ClaimsFromCtx(r.Context())
	card, err := c.cards.Delete(r.Context(), caller, router.Param(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"msg":  "Card Deleted Successfully!",
		"card": card,
	})
}

// UploadImage handles POST /cards/{id}/image: multipart upload of the
// card image, stored on the configured disk. Owner-only.
func (c *CardController) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.Msg(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Msg(w, http.StatusBadRequest, "Please provide an image file")
		return
	}
	defer file.Close()

	caller := middleware.ClaimsFromCtx(r.Context())
	card, err := c.cards.AttachImage(r.Context(), caller, router.Param(r, "id"), header.Filename, file)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"card": card})
}
