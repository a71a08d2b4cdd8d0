package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"sparkchat/pkg/auth"
	"sparkchat/pkg/dispatch"
	"sparkchat/pkg/logger"
	"sparkchat/pkg/metrics"
	"sparkchat/pkg/models"
	"sparkchat/pkg/store"
	"sparkchat/pkg/uploads"
	"sparkchat/pkg/utils"
	"sparkchat/pkg/validation"
)

// MessageHandlers serves conversation history, sends and deletions.
type MessageHandlers struct {
	Dispatcher *dispatch.Dispatcher
	Uploads    *uploads.Store
}

// Register registers HTTP handlers for message endpoints. The router is
// expected to sit behind the session gate.
func (h *MessageHandlers) Register(r *mux.Router) {
	r.HandleFunc("/api/messages/{a}/{b}", h.listConversation).Methods(http.MethodGet)
	r.HandleFunc("/api/messages", h.createMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/message/{id}/{identity}", h.deleteMessage).Methods(http.MethodDelete)
}

func (h *MessageHandlers) listConversation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	a, b := vars["a"], vars["b"]
	limit := 0
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		if n, err := strconv.Atoi(limStr); err == nil {
			limit = n
		}
	}
	msgs, err := store.ListConversation(a, b, limit)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Debug("conversation_list", "a", a, "b", b, "count", len(msgs))
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Messages []models.Message `json:"messages"`
	}{Messages: msgs})
}

// createMessage accepts either a JSON body or a multipart form with an
// optional file attachment. The sender claim is always overwritten by the
// authenticated identity.
func (h *MessageHandlers) createMessage(w http.ResponseWriter, r *http.Request) {
	var m models.Message
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
	} else {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid form")
			return
		}
		m.Receiver = r.FormValue("receiver")
		m.Text = r.FormValue("text")
		m.IsGroup = r.FormValue("isGroup") == "true"
		if fhs := r.MultipartForm.File["file"]; len(fhs) > 0 {
			path, err := h.Uploads.Save(fhs[0])
			if err != nil {
				utils.JSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			m.File = path
		}
	}
	m.Sender = auth.IdentityFromContext(r.Context())

	persisted, err := SendMessage(h.Dispatcher, m)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			utils.JSONError(w, http.StatusBadRequest, verr.Error())
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, persisted)
}

func (h *MessageHandlers) deleteMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requester := auth.IdentityFromContext(r.Context())
	if requester != vars["identity"] {
		utils.JSONError(w, http.StatusForbidden, "identity mismatch")
		return
	}
	m, err := store.DeleteMessage(id, requester)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			utils.JSONError(w, http.StatusNotFound, "message not found")
		case store.ErrForbidden:
			utils.JSONError(w, http.StatusForbidden, "only the sender can delete a message")
		default:
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	metrics.MessagesDeleted.Inc()
	h.Dispatcher.DispatchDelete(m)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"id": id})
}
