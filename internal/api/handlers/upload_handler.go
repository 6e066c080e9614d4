package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/isdelr/aurora-be/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	uploadField = "image"
	sniffLen    = 512
	// room for multipart headers around the file itself
	multipartOverhead = 1 << 20
)

// UploadHandler stores post cover images.
type UploadHandler struct {
	store    storage.ImageStore
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler accepting files up to maxBytes.
func NewUploadHandler(store storage.ImageStore, maxBytes int64) *UploadHandler {
	return &UploadHandler{store: store, maxBytes: maxBytes}
}

type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// Upload accepts a multipart "image" field and returns its public URL.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusBadRequest, "Image is too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeMessage(w, http.StatusBadRequest, "Image is too large")
		return
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := storage.Extension(contentType)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	key := storage.NewKey(ext)
	url, err := h.store.Save(r.Context(), key, io.MultiReader(bytes.NewReader(head), file), contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Info().Str("key", key).Int64("bytes", header.Size).Msg("Image uploaded")
	writeJSON(w, http.StatusCreated, uploadResponse{ImageURL: url})
}
