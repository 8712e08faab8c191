package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atendo/crm-campaigns/internal/handler"
)

func setupRouter(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Mount("/api/v1", h.Routes())

	return r
}
