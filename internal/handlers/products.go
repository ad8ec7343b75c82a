package handlers

import (
	"context"
	"errors"
	"log"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"CAMPUSMARKET_BACK-END/internal/config"
	"CAMPUSMARKET_BACK-END/internal/dto"
	"CAMPUSMARKET_BACK-END/internal/media"
	"CAMPUSMARKET_BACK-END/internal/middleware"
	"CAMPUSMARKET_BACK-END/internal/models"
	"CAMPUSMARKET_BACK-END/internal/store"
	"CAMPUSMARKET_BACK-END/internal/utils"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 1000
	maxPrice          = 1_000_000
	maxImagesPerReq   = 5

	maxMultipartMemory = 32 << 20 // 32 MB
)

// ProductHandler manages listing-related endpoints
type ProductHandler struct {
	products store.ProductStore
	users    store.UserStore
	media    media.Store
	cfg      *config.Config
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products store.ProductStore, users store.UserStore, mediaStore media.Store, cfg *config.Config) *ProductHandler {
	return &ProductHandler{products: products, users: users, media: mediaStore, cfg: cfg}
}

// Collection dispatches /api/products by HTTP method
func (h *ProductHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		middleware.OptionalAuth(h.ListProducts, h.users, &h.cfg.JWT)(w, r)
	case http.MethodPost:
		middleware.RequireAuth(h.CreateProduct, h.users, &h.cfg.JWT)(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item dispatches /api/products/{id} and its subroutes
func (h *ProductHandler) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")

	if rest == "my-products" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		middleware.RequireAuth(h.MyProducts, h.users, &h.cfg.JWT)(w, r)
		return
	}

	if strings.HasSuffix(rest, "/mark-sold") {
		if r.Method != http.MethodPatch {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		middleware.RequireAuth(h.MarkSold, h.users, &h.cfg.JWT)(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		middleware.OptionalAuth(h.ProductDetail, h.users, &h.cfg.JWT)(w, r)
	case http.MethodPut:
		middleware.RequireAuth(h.UpdateProduct, h.users, &h.cfg.JWT)(w, r)
	case http.MethodDelete:
		middleware.RequireAuth(h.DeleteProduct, h.users, &h.cfg.JWT)(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// productIDFromPath extracts the listing id from /api/products/{id}[/mark-sold]
func productIDFromPath(r *http.Request) (uuid.UUID, bool) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")
	rest = strings.TrimSuffix(rest, "/mark-sold")
	id, err := uuid.Parse(strings.Trim(rest, "/"))
	return id, err == nil
}

// formValue reports the multipart field's value and whether the client sent
// the field at all, so omitted fields can keep their stored values. Values
// are stripped of HTML markup before anything downstream sees them.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(utils.SanitizeText(values[0])), true
}

func validatePrice(raw string) (float64, *dto.FieldError) {
	price, err := strconv.ParseFloat(raw, 64)
	// ParseFloat accepts "NaN" and "Inf", and NaN slips past both range
	// comparisons below
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &dto.FieldError{Field: "price", Message: "Product price must be a number"}
	}
	if price < 0 || price > maxPrice {
		return 0, &dto.FieldError{Field: "price", Message: "Price must be between 0 and 1,000,000"}
	}
	return price, nil
}

// uploadImages sends each multipart image to the media delegate and returns
// the hosted URLs
func (h *ProductHandler) uploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		url, err := h.media.Upload(ctx, header.Filename, file)
		file.Close()
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// CreateProduct handles POST /api/products
// @Summary Create a product listing
// @Tags products
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title (max 100 chars)"
// @Param description formData string true "Description (max 1000 chars)"
// @Param price formData number true "Price in [0, 1000000]"
// @Param category formData string true "One of Books, Electronics, Furniture, Apparel, Sports, Accessories, Other"
// @Param contactInfo formData string false "Contact info (defaults to the seller's contact number or email)"
// @Param whatsappNumber formData string false "WhatsApp number"
// @Param images formData file false "Up to 5 images"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title, _ := formValue(r, "title")
	description, _ := formValue(r, "description")
	priceRaw, _ := formValue(r, "price")
	category, _ := formValue(r, "category")
	contactInfo, _ := formValue(r, "contactInfo")
	whatsappNumber, _ := formValue(r, "whatsappNumber")

	var errs []dto.FieldError
	if title == "" {
		errs = append(errs, dto.FieldError{Field: "title", Message: "Product title is required"})
	} else if len(title) > maxTitleLen {
		errs = append(errs, dto.FieldError{Field: "title", Message: "Title cannot exceed 100 characters"})
	}
	if description == "" {
		errs = append(errs, dto.FieldError{Field: "description", Message: "Product description is required"})
	} else if len(description) > maxDescriptionLen {
		errs = append(errs, dto.FieldError{Field: "description", Message: "Description cannot exceed 1000 characters"})
	}
	price, priceErr := validatePrice(priceRaw)
	if priceErr != nil {
		errs = append(errs, *priceErr)
	}
	if !models.ValidCategory(category) {
		errs = append(errs, dto.FieldError{Field: "category", Message: "Please select a valid category"})
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}
	if len(files) > maxImagesPerReq {
		errs = append(errs, dto.FieldError{Field: "images", Message: "A maximum of 5 images is allowed"})
	}

	if len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	images, err := h.uploadImages(r.Context(), files)
	if err != nil {
		log.Printf("Error uploading images: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Contact fields fall back to the seller's own profile
	if contactInfo == "" {
		if user.ContactNumber != nil && *user.ContactNumber != "" {
			contactInfo = *user.ContactNumber
		} else {
			contactInfo = user.Email
		}
	}
	if whatsappNumber == "" && user.ContactNumber != nil {
		whatsappNumber = *user.ContactNumber
	}

	now := time.Now()
	product := &models.Product{
		ID:             uuid.New(),
		Title:          title,
		Description:    description,
		Price:          price,
		Category:       category,
		Images:         images,
		SellerID:       user.ID,
		ContactInfo:    contactInfo,
		WhatsappNumber: whatsappNumber,
		IsSold:         false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.products.CreateProduct(r.Context(), product); err != nil {
		log.Printf("Error creating product: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	seller := user.PublicInfo()
	product.Seller = &seller

	utils.WriteJSONResponse(w, http.StatusCreated, dto.ProductResponse{
		Success: true,
		Message: "Product listed successfully",
		Product: product,
	})
}

// ListProducts handles GET /api/products
// @Summary List active product listings
// @Description Returns unsold listings newest first, optionally filtered by free-text search, category, and price range.
// @Tags products
// @Produce json
// @Param search query string false "Free-text search over title and description"
// @Param category query string false "Category filter"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Success 200 {object} dto.ProductListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.ProductFilter{
		Search:   strings.TrimSpace(query.Get("search")),
		Category: strings.TrimSpace(query.Get("category")),
	}

	var errs []dto.FieldError
	if raw := query.Get("minPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			filter.MinPrice = &v
		} else {
			errs = append(errs, dto.FieldError{Field: "minPrice", Message: "minPrice must be a number"})
		}
	}
	if raw := query.Get("maxPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			filter.MaxPrice = &v
		} else {
			errs = append(errs, dto.FieldError{Field: "maxPrice", Message: "maxPrice must be a number"})
		}
	}
	if len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	products, err := h.products.SearchProducts(r.Context(), filter)
	if err != nil {
		log.Printf("Error fetching products: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ProductListResponse{Success: true, Products: products})
}

// MyProducts handles GET /api/products/my-products
// @Summary List the authenticated user's listings
// @Description Returns all of the caller's listings including sold ones, newest first.
// @Tags products
// @Produce json
// @Success 200 {object} dto.ProductListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/products/my-products [get]
func (h *ProductHandler) MyProducts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	products, err := h.products.ProductsBySeller(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error fetching user products: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ProductListResponse{Success: true, Products: products})
}

// ProductDetail handles GET /api/products/{id}
// @Summary Get a single product listing
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/products/{id} [get]
func (h *ProductHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDFromPath(r)
	if !ok {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("Error fetching product: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ProductResponse{Success: true, Product: product})
}

// fetchOwned loads the listing and authorizes the current user against it,
// writing the rejection itself. Returns nil when the request was rejected.
func (h *ProductHandler) fetchOwned(w http.ResponseWriter, r *http.Request) *models.Product {
	user, _ := middleware.CurrentUser(r.Context())

	id, ok := productIDFromPath(r)
	if !ok {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Product not found")
		return nil
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Error fetching product: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return nil
	}

	// A typed nil must not reach the authorizer as a non-nil interface
	var resource middleware.Owned
	if product != nil {
		resource = product
	}
	if err := middleware.AuthorizeOwner(user, resource); err != nil {
		switch {
		case errors.Is(err, middleware.ErrAuthRequired):
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.")
		case errors.Is(err, middleware.ErrResourceMissing):
			utils.WriteErrorResponse(w, http.StatusNotFound, "Resource not found.")
		default:
			utils.WriteErrorResponse(w, http.StatusForbidden, "Access denied. You can only modify your own resources.")
		}
		return nil
	}
	return product
}

// UpdateProduct handles PUT /api/products/{id}
// @Summary Update a product listing
// @Description Partial update: omitted fields keep their stored values. New images are appended to the existing list, never replacing it.
// @Tags products
// @Accept mpfd
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/products/{id} [put]
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	product := h.fetchOwned(w, r)
	if product == nil {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	var errs []dto.FieldError

	if title, sent := formValue(r, "title"); sent && title != "" {
		if len(title) > maxTitleLen {
			errs = append(errs, dto.FieldError{Field: "title", Message: "Title cannot exceed 100 characters"})
		} else {
			product.Title = title
		}
	}
	if description, sent := formValue(r, "description"); sent && description != "" {
		if len(description) > maxDescriptionLen {
			errs = append(errs, dto.FieldError{Field: "description", Message: "Description cannot exceed 1000 characters"})
		} else {
			product.Description = description
		}
	}
	if priceRaw, sent := formValue(r, "price"); sent && priceRaw != "" {
		if price, priceErr := validatePrice(priceRaw); priceErr != nil {
			errs = append(errs, *priceErr)
		} else {
			product.Price = price
		}
	}
	if category, sent := formValue(r, "category"); sent && category != "" {
		if !models.ValidCategory(category) {
			errs = append(errs, dto.FieldError{Field: "category", Message: "Invalid category"})
		} else {
			product.Category = category
		}
	}
	if contactInfo, sent := formValue(r, "contactInfo"); sent && contactInfo != "" {
		product.ContactInfo = contactInfo
	}
	// whatsappNumber may be cleared, so presence alone applies it
	if whatsappNumber, sent := formValue(r, "whatsappNumber"); sent {
		product.WhatsappNumber = whatsappNumber
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}
	if len(files) > maxImagesPerReq {
		errs = append(errs, dto.FieldError{Field: "images", Message: "A maximum of 5 images is allowed"})
	}

	if len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	if len(files) > 0 {
		urls, err := h.uploadImages(r.Context(), files)
		if err != nil {
			log.Printf("Error uploading images: %v", err)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		product.Images = append(product.Images, urls...)
	}

	product.UpdatedAt = time.Now()
	if err := h.products.UpdateProduct(r.Context(), product); err != nil {
		log.Printf("Error updating product: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ProductResponse{
		Success: true,
		Message: "Product updated successfully",
		Product: product,
	})
}

// DeleteProduct handles DELETE /api/products/{id}
// @Summary Delete a product listing
// @Description Removes the listing after deleting its hosted images. Image cleanup is best-effort; an individual failure is logged and skipped.
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	product := h.fetchOwned(w, r)
	if product == nil {
		return
	}

	for _, imageURL := range product.Images {
		if err := h.media.Delete(r.Context(), imageURL); err != nil {
			log.Printf("Error deleting image %s: %v", imageURL, err)
		}
	}

	if err := h.products.DeleteProduct(r.Context(), product.ID); err != nil {
		log.Printf("Error deleting product: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Success: true, Message: "Product deleted successfully"})
}

// MarkSold handles PATCH /api/products/{id}/mark-sold
// @Summary Mark a product as sold
// @Description Flips the sold flag irreversibly. A listing that is already sold cannot be marked again.
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/products/{id}/mark-sold [patch]
func (h *ProductHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	product := h.fetchOwned(w, r)
	if product == nil {
		return
	}

	if product.IsSold {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Product is already marked as sold")
		return
	}

	sold, err := h.products.MarkSold(r.Context(), product.ID)
	if err != nil {
		log.Printf("Error marking product as sold: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !sold {
		// Lost a race with another mark-sold for the same listing
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Product is already marked as sold")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Success: true, Message: "Product marked as sold"})
}
