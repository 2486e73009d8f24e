package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	imagesvc "cinehub/services/images"
)

type imageService interface {
	Get(ctx context.Context, size, filePath string) ([]byte, string, error)
}

var _ imageService = (*imagesvc.Service)(nil)

// ImagesHandler serves cached provider CDN images.
type ImagesHandler struct {
	Service imageService
}

func NewImagesHandler(s imageService) *ImagesHandler {
	return &ImagesHandler{Service: s}
}

// Get streams a poster or backdrop, caching it on first fetch. Cached
// responses carry a long max-age because image paths are content-addressed.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	size := vars["size"]
	file := vars["file"]

	data, contentType, err := h.Service.Get(r.Context(), size, file)
	if err != nil {
		if errors.Is(err, imagesvc.ErrNotFound) {
			http.Error(w, "image not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=604800")
	w.Write(data)
}
