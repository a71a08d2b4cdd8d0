package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"sparkchat/pkg/auth"
	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
	"sparkchat/pkg/store"
	"sparkchat/pkg/uploads"
	"sparkchat/pkg/utils"
	"sparkchat/pkg/validation"
)

const maxMultipartMemory = 32 << 20

// AuthHandlers serves registration and login; these are the only routes
// that issue credentials instead of requiring them.
type AuthHandlers struct {
	Gate    *auth.Gate
	Uploads *uploads.Store
}

// Register registers HTTP handlers for the credential endpoints.
func (h *AuthHandlers) Register(r *mux.Router) {
	r.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
}

func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		if err := r.ParseForm(); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid form")
			return
		}
	}
	identity := strings.TrimSpace(r.FormValue("identity"))
	password := r.FormValue("password")
	if identity == "" || password == "" {
		utils.JSONError(w, http.StatusBadRequest, "identity and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to hash credential")
		return
	}
	u := models.User{
		Identity:       identity,
		Name:           r.FormValue("name"),
		CredentialHash: string(hash),
		Privacy:        r.FormValue("privacy"),
		TS:             time.Now().UTC().UnixNano(),
	}
	if u.Privacy == "" {
		u.Privacy = models.PrivacyEveryone
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
	if err := store.CreateUser(u); err != nil {
		if err == store.ErrConflict {
			utils.JSONError(w, http.StatusBadRequest, "identity already registered")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("user_registered", "identity", identity)
	_ = utils.JSONWrite(w, http.StatusCreated, u.Summary())
}

type loginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid form")
			return
		}
		req.Identity = r.FormValue("identity")
		req.Password = r.FormValue("password")
	}
	u, err := store.GetUser(req.Identity)
	if err != nil {
		// Same response as a wrong password so login failures don't leak
		// which identities exist.
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.CredentialHash), []byte(req.Password)); err != nil {
		logger.Warn("login_failed", "identity", req.Identity)
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	logger.Info("login_ok", "identity", req.Identity)
	_ = utils.JSONWrite(w, http.StatusOK, loginResponse{Token: h.Gate.Sign(u.Identity), User: u.Summary()})
}
