package image

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/endoscribe/backend/internal/service/imagestore"
	"github.com/endoscribe/backend/pkg/utils"
)

// Handler serves the durable image archive over HTTP.
type Handler struct {
	store *imagestore.Store
}

// New creates the image archive handler.
func New(store *imagestore.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the image archive endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/images", h.handleList)
	r.Get("/images/{imageID}", h.handleGet)
	r.Get("/images/{imageID}/thumbnail", h.handleThumbnail)
	r.Delete("/images/{imageID}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 0)
	offset := parseQueryInt(r, "offset", 0)

	records, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"images": records,
		"count":  len(records),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseImageID(w, r)
	if !ok {
		return
	}

	record, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, record)
}

func (h *Handler) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseImageID(w, r)
	if !ok {
		return
	}

	record, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(record.Thumbnail)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseImageID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func parseImageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "imageID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "imageID must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseQueryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, imagestore.ErrImageNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
