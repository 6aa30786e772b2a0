package api

import (
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/scanner"
)

// PinListResponse wraps the current ordered pin set.
type PinListResponse struct {
	Pins  []models.Pin `json:"pins"`
	Total int          `json:"total"`
}

// ReorderRequest is the body for PUT /pins/order.
type ReorderRequest struct {
	Order []string `json:"order"`
}

// RootsRequest is the body for PUT /roots.
type RootsRequest struct {
	Roots []string `json:"roots"`
}

// RootsResponse reports which roots were accepted and why the rest were not.
type RootsResponse struct {
	Valid   []string              `json:"valid"`
	Invalid []scanner.InvalidRoot `json:"invalid"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}
