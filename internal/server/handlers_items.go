package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"girlmathbackend/internal/items"
)

type itemResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *items.Item `json:"data,omitempty"`
}

type itemListResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Data    []items.Item `json:"data"`
}

func validateItemCreate(in items.ItemCreate) error {
	if in.Name == "" || len(in.Name) > 100 {
		return errors.New("name must be 1-100 characters")
	}
	if len(in.Description) > 500 {
		return errors.New("description must be at most 500 characters")
	}
	if in.Price < 0 {
		return errors.New("price must be non-negative")
	}
	if in.Quantity < 0 {
		return errors.New("quantity must be non-negative")
	}
	return nil
}

func validateItemUpdate(in items.ItemUpdate) error {
	if in.Name != nil && (*in.Name == "" || len(*in.Name) > 100) {
		return errors.New("name must be 1-100 characters")
	}
	if in.Description != nil && len(*in.Description) > 500 {
		return errors.New("description must be at most 500 characters")
	}
	if in.Price != nil && *in.Price < 0 {
		return errors.New("price must be non-negative")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return errors.New("quantity must be non-negative")
	}
	return nil
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	var (
		list []items.Item
		err  error
	)
	if q := r.URL.Query().Get("search"); q != "" {
		list, err = s.items.Search(q)
	} else {
		list, err = s.items.List()
	}
	if err != nil {
		s.log.Error().Err(err).Msg("item list failed")
		writeError(w, http.StatusInternalServerError, "could not list items")
		return
	}
	if list == nil {
		list = []items.Item{}
	}
	writeJSON(w, http.StatusOK, itemListResponse{Success: true, Count: len(list), Data: list})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	item, err := s.items.Get(id)
	if err != nil {
		s.writeItemError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{Success: true, Message: "Item retrieved successfully", Data: &item})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in items.ItemCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateItemCreate(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := s.items.Create(in)
	if err != nil {
		s.log.Error().Err(err).Msg("item create failed")
		writeError(w, http.StatusInternalServerError, "could not create item")
		return
	}
	writeJSON(w, http.StatusCreated, itemResponse{Success: true, Message: "Item created successfully", Data: &item})
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	var in items.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateItemUpdate(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := s.items.Update(id, in)
	if err != nil {
		s.writeItemError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{Success: true, Message: "Item updated successfully", Data: &item})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	if err := s.items.Delete(id); err != nil {
		s.writeItemError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Item with id '%s' deleted successfully", id),
	})
}

func (s *Server) writeItemError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, items.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item with id '%s' not found", id))
		return
	}
	s.log.Error().Err(err).Str("item_id", id).Msg("item store failure")
	writeError(w, http.StatusInternalServerError, "item store failure")
}
