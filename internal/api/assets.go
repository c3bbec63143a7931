package api

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/katha/internal/storage"
)

// AssetHandler serves files that sit next to the deck (images, media) from
// GET /assets/*. The deck source itself is not served.
type AssetHandler struct {
	store    storage.Provider
	deckFile string
}

// NewAssetHandler creates an AssetHandler over store.
func NewAssetHandler(store storage.Provider, deckFile string) *AssetHandler {
	return &AssetHandler{store: store, deckFile: deckFile}
}

func (a *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if rel == "" || strings.HasPrefix(rel, ".") {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	abs, err := a.store.Abs(rel)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		return
	}
	if deckAbs, err := a.store.Abs(a.deckFile); err == nil && abs == deckAbs {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	info, err := a.store.Stat(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeError(w, "asset stat", err)
		return
	}
	if info.IsDir() {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, abs)
}
