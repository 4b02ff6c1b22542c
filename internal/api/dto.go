package api

import (
	"github.com/starford/roamdeck/internal/cardservice"
	"github.com/starford/roamdeck/internal/collection"
)

// PreviewRequest is the request body for rendering a block.
type PreviewRequest struct {
	Text      string `json:"text" example:"{Mitochondria} make ATP" validate:"required"`
	PageTitle string `json:"page_title" example:"Biology"`
}

// CardDetail is a stored card (aliased from the domain layer).
type CardDetail = cardservice.CardDetail

// Preview is a rendered block (aliased from the domain layer).
type Preview = cardservice.Preview

// UploadResult reports an uploaded export (aliased from the domain layer).
type UploadResult = cardservice.UploadResult

// SearchResult is a single search hit.
type SearchResult = collection.SearchResult

// CardListResponse wraps paginated card listings.
type CardListResponse struct {
	Cards []CardDetail `json:"cards" validate:"required"`
	Total int          `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
