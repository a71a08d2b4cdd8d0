package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sparkchat/pkg/auth"
	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
	"sparkchat/pkg/store"
	"sparkchat/pkg/utils"
	"sparkchat/pkg/validation"
)

// GroupHandlers serves group creation and membership listing.
type GroupHandlers struct{}

func (h *GroupHandlers) Register(r *mux.Router) {
	r.HandleFunc("/api/groups/create", h.create).Methods(http.MethodPost)
	r.HandleFunc("/api/groups/{identity}", h.listFor).Methods(http.MethodGet)
}

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func (h *GroupHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	g := models.Group{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Members: req.Members,
		TS:      time.Now().UTC().UnixNano(),
	}
	// The creator always belongs to the group, whether or not the client
	// listed them.
	creator := auth.IdentityFromContext(r.Context())
	if !g.HasMember(creator) {
		g.Members = append(g.Members, creator)
	}
	if err := validation.ValidateGroup(g); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.SaveGroup(g); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("group_created", "group", g.ID, "creator", creator, "members", len(g.Members))
	_ = utils.JSONWrite(w, http.StatusCreated, g)
}

func (h *GroupHandlers) listFor(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]
	groups, err := store.ListGroupsFor(identity)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Groups []models.Group `json:"groups"`
	}{Groups: groups})
}
