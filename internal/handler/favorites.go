package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/catalog"
	"github.com/leafbound/bookstall/internal/domain/favorites"
)

func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	v := h.sessions.FromRequest(w, r)
	writeFavorites(w, r, v.Favorites)
}

func (h *Handler) addFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid book id")
		return
	}

	b, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusUnprocessableEntity, "book not found")
			return
		}
		zctx.From(r.Context()).Error("Snapshot book", zap.Int64("id", id), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}

	v := h.sessions.FromRequest(w, r)
	v.Favorites.Add(*b)
	writeFavorites(w, r, v.Favorites)
}

func (h *Handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid book id")
		return
	}

	v := h.sessions.FromRequest(w, r)
	v.Favorites.Remove(id)
	writeFavorites(w, r, v.Favorites)
}

func (h *Handler) clearFavorites(w http.ResponseWriter, r *http.Request) {
	v := h.sessions.FromRequest(w, r)
	v.Favorites.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func writeFavorites(w http.ResponseWriter, r *http.Request, f *favorites.Store) {
	books := f.Favorites()
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, b := range books {
			catalog.EncodeBook(e, b)
		}
		e.ArrEnd()
	})
}
