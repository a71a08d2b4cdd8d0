package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"sparkchat/pkg/api/handlers"
	"sparkchat/pkg/auth"
	"sparkchat/pkg/dispatch"
	"sparkchat/pkg/uploads"
	"sparkchat/pkg/ws"
)

// Deps carries the wired components the router serves. Everything is
// injected; the api package owns no state of its own.
type Deps struct {
	Gate       *auth.Gate
	Dispatcher *dispatch.Dispatcher
	Uploads    *uploads.Store
	WS         *ws.Handler
}

// NewRouter assembles the full HTTP surface. Credential issuance, health,
// metrics, docs and uploaded files are public; every data route sits
// behind the session gate. The websocket endpoint verifies its own
// handshake credential.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	r.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, "docs/openapi.yaml")
	}).Methods(http.MethodGet)
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Uploads.Dir()))))

	ah := &handlers.AuthHandlers{Gate: d.Gate, Uploads: d.Uploads}
	ah.Register(r)

	r.Handle("/ws", d.WS).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(d.Gate.Require)
	(&handlers.MessageHandlers{Dispatcher: d.Dispatcher, Uploads: d.Uploads}).Register(protected)
	(&handlers.StatusHandlers{}).Register(protected)
	(&handlers.GroupHandlers{}).Register(protected)
	(&handlers.UserHandlers{Uploads: d.Uploads}).Register(protected)
	(&handlers.ContactHandlers{}).Register(protected)

	return r
}
