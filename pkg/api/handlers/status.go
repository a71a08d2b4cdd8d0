package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"sparkchat/pkg/auth"
	"sparkchat/pkg/models"
	"sparkchat/pkg/store"
	"sparkchat/pkg/utils"
	"sparkchat/pkg/validation"
)

// StatusHandlers serves ephemeral status posts and the shared feed.
type StatusHandlers struct{}

func (h *StatusHandlers) Register(r *mux.Router) {
	r.HandleFunc("/status", h.create).Methods(http.MethodPost)
	r.HandleFunc("/status/feed", h.feed).Methods(http.MethodGet)
}

func (h *StatusHandlers) create(w http.ResponseWriter, r *http.Request) {
	var s models.Status
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.ID = utils.GenID()
	s.Author = auth.IdentityFromContext(r.Context())
	s.TS = time.Now().UTC().UnixNano()
	if err := validation.ValidateStatus(s); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.SaveStatus(s); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, s)
}

func (h *StatusHandlers) feed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		if n, err := strconv.Atoi(limStr); err == nil {
			limit = n
		}
	}
	feed, err := store.ListStatusFeed(limit)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Statuses []models.Status `json:"statuses"`
	}{Statuses: feed})
}
