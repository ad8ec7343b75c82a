package dto

import "CAMPUSMARKET_BACK-END/internal/models"

// ProductResponse wraps a single listing
type ProductResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Product *models.Product `json:"product"`
}

// ProductListResponse wraps a set of listings
type ProductListResponse struct {
	Success  bool             `json:"success"`
	Products []models.Product `json:"products"`
}
