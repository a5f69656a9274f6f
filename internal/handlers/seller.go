package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
)

type SellerHandler struct {
	sellers    *services.SellerService
	categories *services.CategoryService
}

func NewSellerHandler(sellers *services.SellerService, categories *services.CategoryService) *SellerHandler {
	return &SellerHandler{sellers: sellers, categories: categories}
}

func (h *SellerHandler) List(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.sellers.List(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	page(w, r, "sellers/index.html", map[string]any{"Sellers": sellers}, sellers)
}

// form loads the category choices around a seller form.
func (h *SellerHandler) form(r *http.Request, in services.SellerInput, action string) (map[string]any, error) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		return nil, err
	}
	return map[string]any{"Form": in, "Action": action, "Categories": categories}, nil
}

func (h *SellerHandler) New(w http.ResponseWriter, r *http.Request) {
	data, err := h.form(r, services.SellerInput{}, "/sellers")
	if err != nil {
		fail(w, r, err, "/sellers")
		return
	}
	render(w, r, http.StatusOK, "sellers/form.html", data)
}

func (h *SellerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.SellerInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/sellers")
		return
	}
	s, err := h.sellers.Create(r.Context(), in)
	if err != nil {
		h.failForm(w, r, err, in, "/sellers")
		return
	}
	done(w, r, http.StatusCreated, s, "/sellers", "seller_created")
}

func (h *SellerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := h.sellers.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/sellers")
		return
	}
	data, err := h.form(r, sellerForm(s), sellerURL(id))
	if err != nil {
		fail(w, r, err, "/sellers")
		return
	}
	page(w, r, "sellers/form.html", data, s)
}

func (h *SellerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.SellerInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err, "/sellers")
		return
	}
	s, err := h.sellers.Update(r.Context(), id, in)
	if err != nil {
		h.failForm(w, r, err, in, sellerURL(id))
		return
	}
	done(w, r, http.StatusOK, s, "/sellers", "seller_updated")
}

func (h *SellerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.sellers.Delete(r.Context(), id); err != nil {
		fail(w, r, err, "/sellers")
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, "/sellers", "seller_deleted")
}

func (h *SellerHandler) failForm(w http.ResponseWriter, r *http.Request, err error, in services.SellerInput, action string) {
	data, lerr := h.form(r, in, action)
	if lerr != nil {
		fail(w, r, err, "/sellers")
		return
	}
	failForm(w, r, err, "/sellers", "sellers/form.html", data)
}

func sellerURL(id uint) string { return "/sellers/" + strconv.FormatUint(uint64(id), 10) }

func sellerForm(s *models.Seller) services.SellerInput {
	return services.SellerInput{Name: s.Name, TaxID: s.TaxID, Phone: s.Phone, Email: s.Email, CategoryID: idString(s.CategoryID)}
}
