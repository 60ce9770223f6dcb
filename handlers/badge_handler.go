package handlers

import (
	"context"
	"net/http"
	"time"

	"zealAPI/internal/types/badge"
	"zealAPI/services"
)

type BadgeHandler struct {
	badgeService *services.BadgeService
}

func NewBadgeHandler(badgeService *services.BadgeService) *BadgeHandler {
	return &BadgeHandler{badgeService: badgeService}
}

// GET /api/v1/badges
func (h *BadgeHandler) ListBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	badges, err := h.badgeService.ListChallengeBadges(ctx)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}

type createBadgeRequest struct {
	Name        string `json:"name" validate:"required"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// POST /api/v1/badges
func (h *BadgeHandler) CreateBadge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req createBadgeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.badgeService.CreateBadge(ctx, &badge.Badge{
		Name:        req.Name,
		Image:       req.Image,
		Category:    req.Category,
		Description: req.Description,
		Type:        badge.TypeChallenge,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, b)
}
