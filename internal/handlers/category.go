package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-printshop/internal/services"
)

type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	page(w, r, "categories/index.html", map[string]any{"Categories": categories}, categories)
}

func (h *CategoryHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "categories/form.html", map[string]any{
		"Form":   services.CategoryInput{},
		"Action": "/categories",
	})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/categories")
		return
	}
	c, err := h.categories.Create(r.Context(), in)
	if err != nil {
		failForm(w, r, err, "/categories", "categories/form.html", map[string]any{"Form": in, "Action": "/categories"})
		return
	}
	done(w, r, http.StatusCreated, c, "/categories", "category_created")
}

func (h *CategoryHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.categories.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/categories")
		return
	}
	page(w, r, "categories/form.html", map[string]any{
		"Form":   services.CategoryInput{Name: c.Name},
		"Action": categoryURL(id),
	}, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.CategoryInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/categories")
		return
	}
	c, err := h.categories.Update(r.Context(), id, in)
	if err != nil {
		failForm(w, r, err, "/categories", "categories/form.html", map[string]any{"Form": in, "Action": categoryURL(id)})
		return
	}
	done(w, r, http.StatusOK, c, "/categories", "category_updated")
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		fail(w, r, err, "/categories")
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, "/categories", "category_deleted")
}

func categoryURL(id uint) string { return "/categories/" + strconv.FormatUint(uint64(id), 10) }
