package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

type stubCatalog struct {
	products []models.Product
	created  *models.Product
	err      error
}

func (s *stubCatalog) List(_ context.Context, limit, offset int) ([]models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if offset >= len(s.products) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.products) {
		end = len(s.products)
	}
	return s.products[offset:end], nil
}

func (s *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalog) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	product.ID = uuid.New()
	s.created = product
	return product, nil
}

func (s *stubCatalog) Update(_ context.Context, product *models.Product) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = product
	return product, nil
}

func TestProductListSuccess(t *testing.T) {
	catalog := &stubCatalog{products: []models.Product{
		{ID: uuid.New(), Code: "WIDGET", Name: "Widget", Price: decimal.NewFromInt(10)},
		{ID: uuid.New(), Code: "GADGET", Name: "Gadget", Price: decimal.RequireFromString("4.50")},
	}}
	handler := ProductList(catalog, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data []models.Product `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 products got %d", len(envelope.Data))
	}
}

func TestProductListRejectsBadPagination(t *testing.T) {
	handler := ProductList(&stubCatalog{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=9999", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestProductCreateSuccess(t *testing.T) {
	catalog := &stubCatalog{}
	handler := ProductCreate(catalog, nil)

	body, _ := json.Marshal(map[string]any{
		"code":  "WIDGET",
		"name":  "  Widget  ",
		"price": "10.00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	if catalog.created == nil {
		t.Fatal("expected product to reach the store")
	}
	if catalog.created.Name != "Widget" {
		t.Fatalf("expected trimmed name, got %q", catalog.created.Name)
	}
	if !catalog.created.IsActive {
		t.Fatal("expected product active by default")
	}
}

func TestProductCreateRejectsNegativePrice(t *testing.T) {
	handler := ProductCreate(&stubCatalog{}, nil)

	body, _ := json.Marshal(map[string]any{
		"code":  "WIDGET",
		"name":  "Widget",
		"price": "-1.00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rec.Code, rec.Body.String())
	}
}
