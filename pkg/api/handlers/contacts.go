package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"sparkchat/pkg/models"
	"sparkchat/pkg/store"
	"sparkchat/pkg/utils"
)

// ContactHandlers serves address-book discovery.
type ContactHandlers struct{}

func (h *ContactHandlers) Register(r *mux.Router) {
	r.HandleFunc("/api/contacts/sync", h.sync).Methods(http.MethodPost)
}

type syncRequest struct {
	Contacts []string `json:"contacts"`
}

// sync returns the subset of candidate identities that are registered,
// public summary fields only. Unknown identities are simply absent from
// the response.
func (h *ContactHandlers) sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	found, err := store.LookupUsers(req.Contacts)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Users []models.UserSummary `json:"users"`
	}{Users: found})
}
