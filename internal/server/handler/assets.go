package handler

import (
	"net/http"

	"github.com/bitvera/priceoracle/internal/domain"
)

// AssetsHandler serves the tracked-asset universe so callers can discover
// which IDs the oracle answers for.
type AssetsHandler struct{}

// NewAssetsHandler creates an AssetsHandler.
func NewAssetsHandler() *AssetsHandler {
	return &AssetsHandler{}
}

// ListAssets returns the canonical IDs of every tracked asset.
// GET /api/assets
func (h *AssetsHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"data": domain.TrackedAssets()})
}
