// Package httpapi serves resource queries against a loaded engine over
// HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"resengine/internal/app"
	"resengine/internal/core"
	"resengine/internal/shared"
)

type Server struct {
	engine *app.Engine
	m      *mux.Router
}

func NewServer(engine *app.Engine) *Server {
	m := mux.NewRouter()
	s := &Server{engine: engine, m: m}
	v1 := m.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/resources/{ref:.+}", s.hResource).Methods(http.MethodGet)
	v1.HandleFunc("/bags/{ref:.+}", s.hBag).Methods(http.MethodGet)
	v1.HandleFunc("/names/{ref:.+}", s.hName).Methods(http.MethodGet)
	v1.HandleFunc("/ids", s.hID).Methods(http.MethodGet)
	v1.HandleFunc("/configuration", s.hGetConfiguration).Methods(http.MethodGet)
	v1.HandleFunc("/configuration", s.hPutConfiguration).Methods(http.MethodPut)
	v1.HandleFunc("/configurations", s.hConfigurations).Methods(http.MethodGet)
	v1.HandleFunc("/locales", s.hLocales).Methods(http.MethodGet)
	v1.HandleFunc("/sources", s.hSources).Methods(http.MethodGet)
	v1.HandleFunc("/themes/resolve", s.hTheme).Methods(http.MethodPost)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.m.ServeHTTP(w, r)
}

// Handler wraps the router with panic recovery and access logging.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	return handlers.CustomLoggingHandler(io.Discard, h, logAccess)
}

func logAccess(_ io.Writer, p handlers.LogFormatterParams) {
	log.Info().
		Str("method", p.Request.Method).
		Str("path", p.URL.Path).
		Int("status", p.StatusCode).
		Int("bytes", p.Size).
		Msg("request")
}

func (s *Server) hResource(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := app.ResolveRequest{
		Ref:     mux.Vars(r)["ref"],
		Density: query.Get("density"),
		Follow:  true,
	}
	var err error
	if req.MayBeBag, err = boolParam(query.Get("bag"), false); err != nil {
		writeError(w, err)
		return
	}
	if req.Follow, err = boolParam(query.Get("follow"), true); err != nil {
		writeError(w, err)
		return
	}
	report, err := s.engine.Resolve(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) hBag(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Bag(r.Context(), app.BagRequest{Ref: mux.Vars(r)["ref"]})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type nameResponse struct {
	ResID string `json:"resid"`
	Name  string `json:"name"`
}

func (s *Server) hName(w http.ResponseWriter, r *http.Request) {
	id, err := s.engine.ParseRef(mux.Vars(r)["ref"], "")
	if err != nil {
		writeError(w, err)
		return
	}
	name, err := s.engine.Name(r.Context(), id.String())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nameResponse{ResID: id.String(), Name: name.String()})
}

func (s *Server) hID(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("name")
	id, err := s.engine.ID(r.Context(), name, query.Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nameResponse{ResID: id.String(), Name: name})
}

type configurationBody struct {
	Configuration string `json:"configuration"`
	Changed       string `json:"changed,omitempty"`
}

func (s *Server) hGetConfiguration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configurationBody{Configuration: s.engine.Manager.Configuration().String()})
}

func (s *Server) hPutConfiguration(w http.ResponseWriter, r *http.Request) {
	var body configurationBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	diff, err := s.engine.SetConfiguration(body.Configuration)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configurationBody{
		Configuration: s.engine.Manager.Configuration().String(),
		Changed:       shared.FormatFlags(uint32(diff)),
	})
}

func (s *Server) hConfigurations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	excludeSystem, err := boolParam(query.Get("exclude_system"), false)
	if err != nil {
		writeError(w, err)
		return
	}
	excludeMipmap, err := boolParam(query.Get("exclude_mipmap"), false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Configurations(excludeSystem, excludeMipmap))
}

func (s *Server) hLocales(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	excludeSystem, err := boolParam(query.Get("exclude_system"), false)
	if err != nil {
		writeError(w, err)
		return
	}
	merge, err := boolParam(query.Get("merge"), true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Locales(excludeSystem, merge))
}

func (s *Server) hSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Sources())
}

type themeStyleBody struct {
	Ref   string `json:"ref"`
	Force bool   `json:"force"`
}

type themeBody struct {
	Styles     []themeStyleBody `json:"styles"`
	Attributes []string         `json:"attributes"`
	Follow     *bool            `json:"follow"`
}

func (s *Server) hTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	req := app.ThemeRequest{Attributes: body.Attributes, Follow: body.Follow == nil || *body.Follow}
	for _, style := range body.Styles {
		req.Styles = append(req.Styles, app.ThemeStyle{Ref: style.Ref, Force: style.Force})
	}
	report, err := s.engine.Theme(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func boolParam(raw string, fallback bool) (bool, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid boolean query parameter " + strconv.Quote(raw)).
			WithCause(err)
	}
	return v, nil
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid request body").
			WithCause(err)
	}
	return nil
}

type errorBody struct {
	Error          string `json:"error"`
	ChainExhausted bool   `json:"chain_exhausted,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		status = http.StatusBadRequest
	case errbuilder.CodeNotFound:
		status = http.StatusNotFound
	case errbuilder.CodeFailedPrecondition:
		status = http.StatusConflict
	}
	msg := err.Error()
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		msg = builder.Msg
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: msg, ChainExhausted: core.IsChainExhausted(err)})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
