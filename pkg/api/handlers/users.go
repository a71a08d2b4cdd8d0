package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"sparkchat/pkg/auth"
	"sparkchat/pkg/logger"
	"sparkchat/pkg/store"
	"sparkchat/pkg/uploads"
	"sparkchat/pkg/utils"
	"sparkchat/pkg/validation"
)

// UserHandlers serves profile updates.
type UserHandlers struct {
	Uploads *uploads.Store
}

func (h *UserHandlers) Register(r *mux.Router) {
	r.HandleFunc("/user/{identity}/profile", h.updateProfile).Methods(http.MethodPut)
}

// updateProfile applies a partial update: only the fields present in the
// form change; the identity key itself is immutable.
func (h *UserHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]
	if auth.IdentityFromContext(r.Context()) != identity {
		utils.JSONError(w, http.StatusForbidden, "identity mismatch")
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		if err := r.ParseForm(); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid form")
			return
		}
	}
	u, err := store.GetUser(identity)
	if err != nil {
		if err == store.ErrNotFound {
			utils.JSONError(w, http.StatusNotFound, "user not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if name := r.FormValue("name"); name != "" {
		u.Name = name
	}
	if password := r.FormValue("password"); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, "failed to hash credential")
			return
		}
		u.CredentialHash = string(hash)
	}
	if privacy := r.FormValue("privacy"); privacy != "" {
		u.Privacy = privacy
	}
	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["avatar"]; len(fhs) > 0 {
			path, err := h.Uploads.Save(fhs[0])
			if err != nil {
				utils.JSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			u.Avatar = path
		}
	}
	if err := validation.ValidateUser(u); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.PutUser(u); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("profile_updated", "identity", identity)
	_ = utils.JSONWrite(w, http.StatusOK, u.Summary())
}
