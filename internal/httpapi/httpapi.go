// Package httpapi exposes profiles and live generation sessions over HTTP,
// mounted under /api/v1 in the style of a chi router.
package httpapi

import (
	"net/http"
	"time"

	"github.com/dekarrin/constrain/internal/profiles"
	"github.com/dekarrin/constrain/internal/version"
	"github.com/dekarrin/constrain/server/result"
	"github.com/go-chi/chi/v5"
)

// API holds the dependencies endpoint handlers need and is the receiver for
// every HTTP* handler-constructor method.
type API struct {
	// Store is the persistence layer for profiles and session metadata.
	Store profiles.Store

	// Sessions is the in-memory registry of live engines bound to sessions.
	Sessions *SessionRegistry

	// AdminSecret authenticates the bearer token required of write requests
	// against /profiles.
	AdminSecret []byte

	// AdminPasswordHash is the bcrypt hash of the password that
	// HTTPAdminLogin will accept to mint an admin bearer token.
	AdminPasswordHash []byte

	// UnauthDelay is slept before responding to an HTTP-401/403/500, to
	// deprioritize processing of such requests.
	UnauthDelay time.Duration
}

// Router builds the full route tree for the service.
func (api API) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/info", api.HTTPGetInfo())
		r.Post("/admin/login", api.HTTPAdminLogin())

		r.Group(func(r chi.Router) {
			r.Use(api.requireAdmin)
			r.Post("/profiles", api.HTTPCreateProfile())
			r.Delete("/profiles/{id}", api.HTTPDeleteProfile())
		})
		r.Get("/profiles/{id}", api.HTTPGetProfile())

		r.Post("/sessions", api.HTTPCreateSession())
		r.Post("/sessions/{id}/accept", api.HTTPAcceptToken())
		r.Post("/sessions/{id}/reset", api.HTTPResetSession())
		r.Delete("/sessions/{id}", api.HTTPDeleteSession())
	})

	return r
}

// EndpointFunc is the signature every endpoint implementation has, prior to
// being adapted into an http.HandlerFunc by Endpoint.
type EndpointFunc func(req *http.Request) result.Result

// Endpoint adapts an EndpointFunc into an http.HandlerFunc, recovering from
// panics as an HTTP-500 and applying unauthDelay before writing back any
// HTTP-401, HTTP-403, or HTTP-500 response.
func Endpoint(ep EndpointFunc, unauthDelay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		res := ep(req)

		if res.Status == http.StatusUnauthorized || res.Status == http.StatusForbidden || res.Status == http.StatusInternalServerError {
			time.Sleep(unauthDelay)
		}

		res.WriteResponse(w)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if r := recover(); r != nil {
		result.InternalServerError("panic: %v", r).WriteResponse(w)
	}
}

// InfoModel is returned from GET /info.
type InfoModel struct {
	Version string `json:"version"`
}

func (api API) HTTPGetInfo() http.HandlerFunc {
	return Endpoint(api.epGetInfo, api.UnauthDelay)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	return result.OK(InfoModel{Version: version.Current}, "served info")
}
