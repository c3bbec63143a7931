package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/katha/internal/navigation"
	"github.com/starford/katha/internal/slideservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *slideservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *slideservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListSlides handles GET /api/slides.
//
//	@Summary		List the slides of the deck
//	@Tags			slides
//	@Produce		json
//	@Success		200	{object}	SlideListResponse
//	@Router			/slides [get]
func (h *Handler) ListSlides(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListSlides(r.Context()))
}

// GetSlide handles GET /api/slides/{location}.
//
// location is a 1-based number or a slug. Out-of-range numbers are clamped
// and unknown slugs land on the first slide with not_found set.
//
//	@Summary		Resolve and render one slide
//	@Tags			slides
//	@Produce		json
//	@Param			location	path		string	true	"Slide number or slug"
//	@Param			step		query		int		false	"Reveal step"
//	@Success		200			{object}	SlideDetail
//	@Failure		404			{object}	errResponse
//	@Router			/slides/{location} [get]
func (h *Handler) GetSlide(w http.ResponseWriter, r *http.Request) {
	loc := navigation.ParseLocation(chi.URLParam(r, "location"))
	step, _ := strconv.Atoi(r.URL.Query().Get("step"))

	detail, err := h.svc.GetSlide(r.Context(), loc, step)
	if err != nil {
		writeError(w, "get slide", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// TOC handles GET /api/toc.
//
//	@Summary		Table of contents
//	@Tags			slides
//	@Produce		json
//	@Success		200	{array}	models.TocEntry
//	@Router			/toc [get]
func (h *Handler) TOC(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": h.svc.TOC(r.Context()),
	})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across slides and notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// State handles GET /api/state.
//
//	@Summary		Current location of the presentation
//	@Tags			navigation
//	@Produce		json
//	@Success		200	{object}	StateResponse
//	@Router			/state [get]
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	st := h.svc.State(r.Context())
	writeJSON(w, http.StatusOK, StateResponse{
		Index:    st.Index,
		Step:     st.Step,
		Checksum: h.svc.Checksum(),
	})
}

// Navigate handles POST /api/navigate.
//
//	@Summary		Move the presentation and sync every surface
//	@Tags			navigation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NavigateRequest	true	"Target index/step or action"
//	@Success		200		{object}	StateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/navigate [post]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	var (
		st  navigation.State
		err error
	)
	if req.Action != "" {
		st, err = h.svc.Step(r.Context(), req.Action)
	} else {
		st, err = h.svc.Navigate(r.Context(), *req.Index, req.Step)
	}
	if err != nil {
		writeError(w, "navigate", err)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{
		Index:    st.Index,
		Step:     st.Step,
		Checksum: h.svc.Checksum(),
	})
}
