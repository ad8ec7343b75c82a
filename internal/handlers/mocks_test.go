package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"CAMPUSMARKET_BACK-END/internal/config"
	"CAMPUSMARKET_BACK-END/internal/middleware"
	"CAMPUSMARKET_BACK-END/internal/models"
	"CAMPUSMARKET_BACK-END/internal/store"
)

// mockUserStore implements store.UserStore in memory.
type mockUserStore struct {
	users map[uuid.UUID]*models.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserStore) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return store.ErrDuplicateUser
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

// mockProductStore implements store.ProductStore in memory with the same
// observable semantics as the Postgres implementation.
type mockProductStore struct {
	products map[uuid.UUID]*models.Product
	users    *mockUserStore
}

func newMockProductStore(users *mockUserStore) *mockProductStore {
	return &mockProductStore{products: make(map[uuid.UUID]*models.Product), users: users}
}

func (m *mockProductStore) copyOf(p *models.Product) *models.Product {
	dup := *p
	dup.Images = append([]string{}, p.Images...)
	if seller, ok := m.users.users[p.SellerID]; ok {
		info := seller.PublicInfo()
		dup.Seller = &info
	}
	return &dup
}

func (m *mockProductStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.products[product.ID] = m.copyOf(product)
	return nil
}

func (m *mockProductStore) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.copyOf(p), nil
}

func newestFirst(products []models.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

func (m *mockProductStore) SearchProducts(_ context.Context, filter store.ProductFilter) ([]models.Product, error) {
	results := []models.Product{}
	for _, p := range m.products {
		if p.IsSold {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.Search != "" {
			text := strings.ToLower(p.Title + " " + p.Description)
			if !strings.Contains(text, strings.ToLower(filter.Search)) {
				continue
			}
		}
		results = append(results, *m.copyOf(p))
	}
	newestFirst(results)
	return results, nil
}

func (m *mockProductStore) ProductsBySeller(_ context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	results := []models.Product{}
	for _, p := range m.products {
		if p.SellerID == sellerID {
			results = append(results, *m.copyOf(p))
		}
	}
	newestFirst(results)
	return results, nil
}

func (m *mockProductStore) UpdateProduct(_ context.Context, product *models.Product) error {
	existing, ok := m.products[product.ID]
	if !ok {
		return store.ErrNotFound
	}
	updated := m.copyOf(product)
	// the store never rewrites the seller reference or the sold flag
	updated.SellerID = existing.SellerID
	updated.IsSold = existing.IsSold
	m.products[product.ID] = updated
	return nil
}

func (m *mockProductStore) MarkSold(_ context.Context, id uuid.UUID) (bool, error) {
	p, ok := m.products[id]
	if !ok {
		return false, store.ErrNotFound
	}
	if p.IsSold {
		return false, nil
	}
	p.IsSold = true
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockProductStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// mockMedia implements media.Store in memory.
type mockMedia struct {
	uploaded  []string
	deleted   []string
	deleteErr map[string]error
}

func newMockMedia() *mockMedia {
	return &mockMedia{deleteErr: make(map[string]error)}
}

func (m *mockMedia) Upload(_ context.Context, filename string, _ io.Reader) (string, error) {
	url := "https://res.cloudinary.com/test/image/upload/v1/campusmarket/" + filename
	m.uploaded = append(m.uploaded, url)
	return url, nil
}

func (m *mockMedia) Delete(_ context.Context, imageURL string) error {
	if err, ok := m.deleteErr[imageURL]; ok {
		return err
	}
	m.deleted = append(m.deleted, imageURL)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:         "0123456789abcdef0123456789abcdef",
			AccessTokenTTL: time.Hour,
		},
	}
}

func seedUser(t *testing.T, users *mockUserStore, username string) *models.User {
	t.Helper()

	contact := "+15550100"
	user := &models.User{
		ID:            uuid.New(),
		Username:      username,
		Email:         username + "@example.edu",
		PasswordHash:  "irrelevant",
		ContactNumber: &contact,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	users.users[user.ID] = user
	return user
}

// withUser attaches the identity to the request as RequireAuth would
func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

// multipartRequest builds a multipart form request with the given fields and
// zero or more fake image files under the "images" key
func multipartRequest(t *testing.T, method, target string, fields map[string]string, images ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, name := range images {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		fmt.Fprint(part, "fake image bytes")
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
