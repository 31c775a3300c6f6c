package main

import (
	"errors"
	"net/http"

	"tarelka/internal/domain/menu"
	"tarelka/internal/params"

	"github.com/go-chi/chi/v5"
)

func (app *application) listMenuHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	category := r.URL.Query().Get("category")

	items, total, err := app.menu.List(r.Context(), category, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	resp := struct {
		Items      []menu.Item       `json:"items"`
		Pagination params.Pagination `json:"pagination"`
	}{Items: items, Pagination: p}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	item, err := app.menu.GetByID(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, item); err != nil {
		app.internalServerError(w, r, err)
	}
}
