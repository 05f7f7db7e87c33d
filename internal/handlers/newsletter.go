package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kimotaku1/Ecommerce-forever/internal/platform/httpx"
	"github.com/kimotaku1/Ecommerce-forever/internal/services"
)

// NewsletterHandlers exposes the public mailing-list opt-in endpoint.
type NewsletterHandlers struct {
	newsletter services.NewsletterService
}

// NewNewsletterHandlers constructs handlers backed by the newsletter service.
func NewNewsletterHandlers(newsletter services.NewsletterService) *NewsletterHandlers {
	return &NewsletterHandlers{newsletter: newsletter}
}

// Routes wires the /newsletter endpoints onto the provided router.
func (h *NewsletterHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.subscribe)
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *NewsletterHandlers) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.newsletter == nil {
		httpx.WriteError(ctx, w, httpx.NewError("newsletter_service_unavailable", "newsletter service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req subscribeRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	if err := h.newsletter.Subscribe(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, services.ErrNewsletterInvalidInput):
			httpx.WriteError(ctx, w, httpx.NewError("validation_error", err.Error(), http.StatusBadRequest))
		case errors.Is(err, services.ErrAlreadySubscribed):
			httpx.WriteError(ctx, w, httpx.NewError("already_subscribed", "this email is already subscribed", http.StatusConflict))
		case errors.Is(err, services.ErrNewsletterUnavailable):
			httpx.WriteError(ctx, w, httpx.NewError("newsletter_service_unavailable", "newsletter service is unavailable", http.StatusServiceUnavailable))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("newsletter_error", "subscription failed", http.StatusInternalServerError))
		}
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusCreated, "subscribed")
}
