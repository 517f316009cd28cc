package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// AddReview handles PUT /api/review/{productId} and responds with the
// updated product.
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req AddReviewRequest
	if !decode(w, r, &req) {
		return
	}

	product, err := h.service.AddReview(r.Context(), chi.URLParam(r, "productId"), req.Rating, req.ReviewMessage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// GetReviews handles GET /api/review/{productId}
func (h *ReviewHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetReviews(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, reviews)
}

// GetAllReviews handles GET /api/review/
func (h *ReviewHandler) GetAllReviews(w http.ResponseWriter, r *http.Request) {
	feed, err := h.service.GetAllReviews(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, feed)
}
