package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.store.ListReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

type CreateReviewRequest struct {
	Author string `json:"author"`
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Author == "" {
		httpError(w, http.StatusBadRequest, "author is required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		httpError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	review, err := s.store.CreateReview(r.Context(), chi.URLParam(r, "id"), req.Author, req.Rating, req.Body)
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}
