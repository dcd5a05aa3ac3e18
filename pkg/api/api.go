// Package api contains the JSON HTTP interface to the registry
package api // import "github.com/joincivil/civil-tcr-registry/pkg/api"

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-tcr-registry/pkg/metrics"
	"github.com/joincivil/civil-tcr-registry/pkg/registry"
)

// Clock returns the current unix time in seconds
type Clock func() int64

// NewParams are the params used to create the API handler
type NewParams struct {
	Registry       *registry.Registry
	Clock          Clock
	AllowedOrigins []string
	// AccessLog receives combined format request logs if not nil
	AccessLog io.Writer
}

// New returns the http handler serving the registry API
func New(params *NewParams) http.Handler {
	a := &API{registry: params.Registry, clock: params.Clock}

	router := mux.NewRouter()
	router.Use(metricsMiddleware)
	a.Mount(router, "")
	router.Path("/metrics").Methods(http.MethodGet).Handler(metrics.Handler())

	origins := params.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	)(router)
	handler = handlers.RecoveryHandler()(handler)
	if params.AccessLog != nil {
		handler = handlers.CombinedLoggingHandler(params.AccessLog, handler)
	}
	return handler
}

// API serves registry operations
type API struct {
	registry *registry.Registry
	clock    Clock
}

// Mount adds the registry routes to root under pathPrefix
func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root
	if pathPrefix != "" {
		sub = root.PathPrefix(pathPrefix).Subrouter()
	}

	sub.Path("/listings").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handlePropose))
	sub.Path("/listings/{key}").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleGetListing))
	sub.Path("/listings/{key}/whitelisted").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleIsWhitelisted))
	sub.Path("/listings/{key}/challenge").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleChallenge))
	sub.Path("/listings/{key}/votes").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleVote))
	sub.Path("/listings/{key}/status").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleUpdateStatus))
	sub.Path("/listings/{key}/exit").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleExit))
	sub.Path("/challenges/{id}").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleGetChallenge))
	sub.Path("/challenges/{id}/claims").Methods(http.MethodPost).HandlerFunc(WrapHandlerFunc(a.handleClaim))
	sub.Path("/config").Methods(http.MethodGet).HandlerFunc(WrapHandlerFunc(a.handleGetConfig))
}

func (a *API) handlePropose(w http.ResponseWriter, req *http.Request) error {
	body := &ProposeRequest{}
	err := ParseJSON(req.Body, body)
	if err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := parseCaller(body.From)
	if err != nil {
		return BadRequest(err)
	}
	key, err := parseListingKey(body.Name)
	if err != nil {
		return BadRequest(errors.WithMessage(err, "name"))
	}
	err = a.registry.Propose(caller, key, amount(body.Deposit), body.Name, a.clock())
	if err != nil {
		return err
	}
	listing, err := a.registry.GetListingDetails(key)
	if err != nil {
		return err
	}
	return WriteJSONStatus(w, http.StatusCreated, convertListing(listing))
}

func (a *API) handleGetListing(w http.ResponseWriter, req *http.Request) error {
	key, err := parseListingKey(mux.Vars(req)["key"])
	if err != nil {
		return BadRequest(err)
	}
	listing, err := a.registry.GetListingDetails(key)
	if err != nil {
		return err
	}
	return WriteJSON(w, convertListing(listing))
}

func (a *API) handleIsWhitelisted(w http.ResponseWriter, req *http.Request) error {
	key, err := parseListingKey(mux.Vars(req)["key"])
	if err != nil {
		return BadRequest(err)
	}
	whitelisted, err := a.registry.IsWhitelisted(key, a.clock())
	if err != nil {
		return err
	}
	return WriteJSON(w, map[string]bool{"whitelisted": whitelisted})
}

func (a *API) handleChallenge(w http.ResponseWriter, req *http.Request) error {
	key, err := parseListingKey(mux.Vars(req)["key"])
	if err != nil {
		return BadRequest(err)
	}
	body := &ChallengeRequest{}
	err = ParseJSON(req.Body, body)
	if err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := parseCaller(body.From)
	if err != nil {
		return BadRequest(err)
	}
	id, err := a.registry.Challenge(caller, key, amount(body.Deposit), a.clock())
	if err != nil {
		return err
	}
	return WriteJSONStatus(w, http.StatusCreated, map[string]uint64{"challengeID": id})
}

func (a *API) handleVote(w http.ResponseWriter, req *http.Request) error {
	key, err := parseListingKey(mux.Vars(req)["key"])
	if err != nil {
		return BadRequest(err)
	}
	body := &VoteRequest{}
	err = ParseJSON(req.Body, body)
	if err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := parseCaller(body.From)
	if err != nil {
		return BadRequest(err)
	}
	err = a.registry.Vote(caller, key, amount(body.Stake), body.Keep, a.clock())
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (a *API) handleUpdateStatus(w http.ResponseWriter, req *http.Request) error {
	key, err := parseListingKey(mux.Vars(req)["key"])
	if err != nil {
		return BadRequest(err)
	}
	err = a.registry.UpdateStatus(key, a.clock())
	if err != nil {
		return err
	}
	listing, err := a.registry.GetListingDetails(key)
	if err != nil {
		return err
	}
	return WriteJSON(w, convertListing(listing))
}

func (a *API) handleExit(w http.ResponseWriter, req *http.Request) error {
	key, err := parseListingKey(mux.Vars(req)["key"])
	if err != nil {
		return BadRequest(err)
	}
	body := &CallerRequest{}
	err = ParseJSON(req.Body, body)
	if err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := parseCaller(body.From)
	if err != nil {
		return BadRequest(err)
	}
	err = a.registry.Exit(caller, key, a.clock())
	if err != nil {
		return err
	}
	listing, err := a.registry.GetListingDetails(key)
	if err != nil {
		return err
	}
	return WriteJSON(w, convertListing(listing))
}

func (a *API) handleGetChallenge(w http.ResponseWriter, req *http.Request) error {
	id, err := parseChallengeID(mux.Vars(req)["id"])
	if err != nil {
		return BadRequest(err)
	}
	challenge, err := a.registry.GetChallenge(id)
	if err != nil {
		return err
	}
	return WriteJSON(w, convertChallenge(challenge))
}

func (a *API) handleClaim(w http.ResponseWriter, req *http.Request) error {
	id, err := parseChallengeID(mux.Vars(req)["id"])
	if err != nil {
		return BadRequest(err)
	}
	body := &CallerRequest{}
	err = ParseJSON(req.Body, body)
	if err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := parseCaller(body.From)
	if err != nil {
		return BadRequest(err)
	}
	payout, err := a.registry.ClaimRewards(caller, id, a.clock())
	if err != nil {
		return err
	}
	return WriteJSON(w, map[string]string{"payout": payout.String()})
}

func (a *API) handleGetConfig(w http.ResponseWriter, req *http.Request) error {
	return WriteJSON(w, convertConfig(a.registry.Config()))
}

func parseChallengeID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.WithMessage(err, "id")
	}
	return id, nil
}

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mrw := &metricsResponseWriter{w, http.StatusOK}
		next.ServeHTTP(mrw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		path = strings.ReplaceAll(strings.TrimLeft(path, "/"), "/", "_")
		metrics.RecordRequest(path, strconv.Itoa(mrw.statusCode), r.Method)
	})
}
