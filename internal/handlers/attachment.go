package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/services"
	"github.com/diewo77/go-printshop/validation"
)

// multipart framing allowance on top of the file size limit
const uploadOverhead = 1 << 20

type AttachmentHandler struct {
	attachments *services.AttachmentService
	maxBytes    int64
}

func NewAttachmentHandler(attachments *services.AttachmentService, maxBytes int64) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, maxBytes: maxBytes}
}

// List is the JSON listing of an order's files; HTML callers see them on the order page.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !httpx.WantsJSON(r) {
		http.Redirect(w, r, orderURL(orderID), http.StatusSeeOther)
		return
	}
	atts, err := h.attachments.List(r.Context(), orderID)
	if err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	httpx.JSON(w, http.StatusOK, atts)
}

// Upload accepts a multipart "file" field for an order.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+uploadOverhead)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			err = &services.ValidationError{Violations: validation.Violations{"file": "file_too_large"}}
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			err = &services.ValidationError{Violations: validation.Violations{"file": "required"}}
		}
		fail(w, r, err, orderURL(orderID))
		return
	}
	defer file.Close()

	a, err := h.attachments.Upload(r.Context(), orderID, services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		fail(w, r, err, orderURL(orderID))
		return
	}
	done(w, r, http.StatusCreated, a, orderURL(orderID), "attachment_uploaded")
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, rc, err := h.attachments.Open(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	defer rc.Close()

	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	if a.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(a.Size))
	}
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("download attachment %d: %v", id, err)
	}
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	orderID, err := h.attachments.Delete(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, orderURL(orderID), "attachment_deleted")
}
