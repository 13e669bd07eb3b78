package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/core"
	"github.com/hoermto/unifi-energy/util"
	"github.com/spf13/cast"
)

// Registry is the writable host registry exposed over HTTP
type Registry interface {
	Entry(entityID string) (api.Entry, bool)
	Create(e api.Entry) error
	Update(e api.Entry) error
	Remove(entityID string) error
	StateSetter
}

// Site is what the HTTP api needs from the running service
type Site struct {
	Hub       *core.Hub
	Discovery *core.Discovery
	Registry  Registry
	Bus       EventBus.Bus
	Cache     *util.Cache
	Metrics   *Metrics
	Socket    *SocketHub
}

// HTTPd wraps an http.Server and adds the api routes
type HTTPd struct {
	*http.Server
	log  *util.Logger
	site Site
}

type button struct {
	EntityID string `json:"entity_id"`
	UniqueID string `json:"unique_id"`
	Name     string `json:"name"`
	DeviceID string `json:"device_id"`
	Target   string `json:"target"`
}

// NewHTTPd creates HTTP server with configured routes
func NewHTTPd(addr string, site Site) *HTTPd {
	s := &HTTPd{
		log:  util.NewLogger("httpd"),
		site: site,
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(jsonHandler)

	routes := map[string]route{
		"state":        {[]string{"GET"}, "/state", s.stateHandler},
		"accumulators": {[]string{"GET"}, "/accumulators", s.accumulatorsHandler},
		"reset":        {[]string{"POST"}, "/accumulators/{id}/reset", s.resetHandler},
		"buttons":      {[]string{"GET"}, "/buttons", s.buttonsHandler},
		"press":        {[]string{"POST"}, "/buttons/{id}/press", s.pressHandler},
		"entry":        {[]string{"PUT"}, "/registry/{id}", s.entryHandler},
		"remove":       {[]string{"DELETE"}, "/registry/{id}", s.removeHandler},
		"power":        {[]string{"PUT"}, "/states/{id}", s.setStateHandler},
	}

	for _, r := range routes {
		apiRouter.Methods(r.Methods...).Path(r.Pattern).HandlerFunc(r.HandlerFunc)
	}

	if site.Metrics != nil {
		router.Handle("/metrics", site.Metrics.Handler())
	}

	if site.Socket != nil {
		router.HandleFunc("/ws", site.Socket.ServeWebsocket)
	}

	s.Server = &http.Server{
		Addr:         addr,
		Handler:      handlers.CompressHandler(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(router)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     s.log.ERROR,
	}
	s.SetKeepAlivesEnabled(true)

	return s
}

type route struct {
	Methods     []string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

func jsonHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

func jsonWrite(w http.ResponseWriter, content interface{}) {
	if err := json.NewEncoder(w).Encode(content); err != nil {
		log := util.NewLogger("httpd")
		log.ERROR.Printf("response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	jsonWrite(w, map[string]interface{}{"error": err.Error()})
}

// call executes fn on the event loop bound to the request's lifetime
func (s *HTTPd) call(r *http.Request, fn func() error) error {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	return s.site.Hub.Call(ctx, fn)
}

// stateHandler returns the cached published values
func (s *HTTPd) stateHandler(w http.ResponseWriter, r *http.Request) {
	res := make(map[string]interface{})
	for k, p := range s.site.Cache.State() {
		res[k] = p.Val
	}
	jsonWrite(w, res)
}

// accumulatorsHandler returns the states of all active accumulators
func (s *HTTPd) accumulatorsHandler(w http.ResponseWriter, r *http.Request) {
	var res []api.EnergyState

	if err := s.call(r, func() error {
		for _, acc := range s.site.Discovery.Accumulators() {
			res = append(res, acc.State())
		}
		return nil
	}); err != nil {
		jsonError(w, http.StatusServiceUnavailable, err)
		return
	}

	jsonWrite(w, res)
}

// resetHandler broadcasts a reset request for a known accumulator.
// Requests for a disabled accumulator are accepted and logged by its reset controller.
func (s *HTTPd) resetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var exists bool
	if err := s.call(r, func() error {
		_, exists = s.site.Discovery.Accumulator(id)
		return nil
	}); err != nil {
		jsonError(w, http.StatusServiceUnavailable, err)
		return
	}

	if !exists {
		jsonError(w, http.StatusNotFound, fmt.Errorf("accumulator %s: %w", id, api.ErrNotFound))
		return
	}

	s.site.Bus.Publish(api.EventResetEnergy, api.ResetEnergy{EntityID: id})

	w.WriteHeader(http.StatusAccepted)
	jsonWrite(w, api.ResetEnergy{EntityID: id})
}

// buttonsHandler returns all reset controllers
func (s *HTTPd) buttonsHandler(w http.ResponseWriter, r *http.Request) {
	var res []button

	if err := s.call(r, func() error {
		for _, c := range s.site.Discovery.Controllers() {
			res = append(res, button{
				EntityID: c.EntityID,
				UniqueID: c.UniqueID,
				Name:     c.Name,
				DeviceID: c.DeviceID,
				Target:   c.Target,
			})
		}
		return nil
	}); err != nil {
		jsonError(w, http.StatusServiceUnavailable, err)
		return
	}

	jsonWrite(w, res)
}

// pressHandler presses a reset controller. A dangling target is logged, not reported.
func (s *HTTPd) pressHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := s.call(r, func() error {
		c, ok := s.site.Discovery.Controller(id)
		if !ok {
			return fmt.Errorf("button %s: %w", id, api.ErrNotFound)
		}
		c.Press()
		return nil
	})

	switch {
	case errors.Is(err, api.ErrNotFound):
		jsonError(w, http.StatusNotFound, err)
	case err != nil:
		jsonError(w, http.StatusServiceUnavailable, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// entryHandler creates or updates a registry entry. Unknown fields are rejected.
func (s *HTTPd) entryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}

	var e api.Entry
	if err := util.DecodeOther(req, &e); err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}
	e.EntityID = id

	var err error
	if _, ok := s.site.Registry.Entry(id); ok {
		err = s.site.Registry.Update(e)
	} else {
		err = s.site.Registry.Create(e)
	}

	if err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}

	jsonWrite(w, e)
}

// removeHandler removes a registry entry
func (s *HTTPd) removeHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.site.Registry.Remove(id); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, api.ErrNotFound) {
			status = http.StatusNotFound
		}
		jsonError(w, status, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setStateHandler sets an entity's state
func (s *HTTPd) setStateHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		State interface{} `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, err)
		return
	}

	s.site.Registry.SetState(id, cast.ToString(req.State))

	w.WriteHeader(http.StatusNoContent)
}
