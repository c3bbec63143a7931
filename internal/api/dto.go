package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/katha/internal/index"
	"github.com/starford/katha/internal/slideservice"
)

// NavigateRequest is the body of POST /api/navigate: either an absolute
// index (and step) or an action.
type NavigateRequest struct {
	Index  *int   `json:"index,omitempty" example:"3"`
	Step   int    `json:"step" example:"0"`
	Action string `json:"action,omitempty" example:"next"`
}

// Validate implements validation.Validatable.
func (r NavigateRequest) Validate() error {
	if r.Action != "" {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Action, validation.In(slideservice.ActionNext, slideservice.ActionPrev)),
			validation.Field(&r.Index, validation.Nil.Error("must be empty when action is set")),
		)
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Index, validation.NotNil, validation.Min(1)),
		validation.Field(&r.Step, validation.Min(0)),
	)
}

// SlideListResponse is the deck overview (aliased from the domain layer).
type SlideListResponse = slideservice.SlideList

// SlideDetail is a resolved, rendered slide (aliased from the domain layer).
type SlideDetail = slideservice.SlideDetail

// SearchResult is a single search hit (aliased from the index).
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// StateResponse is the navigation state of the server surface.
type StateResponse struct {
	Index    int    `json:"index" example:"2"`
	Step     int    `json:"step" example:"0"`
	Checksum string `json:"checksum" example:"abc123..."`
}
