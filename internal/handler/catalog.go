package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/catalog"
)

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("List books", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, b := range books {
			catalog.EncodeBook(e, b)
		}
		e.ArrEnd()
	})
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid book id")
		return
	}

	b, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "book not found")
			return
		}
		zctx.From(r.Context()).Error("Get book", zap.Int64("id", id), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		catalog.EncodeBook(e, *b)
	})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("List categories", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, c := range categories {
			e.ObjStart()
			e.FieldStart("id")
			e.Int64(c.ID)
			e.FieldStart("name")
			e.Str(c.Name)
			e.ObjEnd()
		}
		e.ArrEnd()
	})
}
