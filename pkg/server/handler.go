package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/fieldrules/pkg/logger"
	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

// ValidateRequest is the body of POST /validate. Rules is either the string
// form or the object form of a rule declaration.
type ValidateRequest struct {
	Value        any               `json:"value"`
	Rules        any               `json:"rules"`
	Field        string            `json:"field,omitempty"`
	Values       map[string]any    `json:"values,omitempty"`
	Names        map[string]string `json:"names,omitempty"`
	Initial      bool              `json:"initial,omitempty"`
	Bails        *bool             `json:"bails,omitempty"`
	SkipOptional *bool             `json:"skip_optional,omitempty"`
}

// ValidateResponse is the body returned by POST /validate.
type ValidateResponse struct {
	Valid       bool              `json:"valid"`
	Required    *bool             `json:"required,omitempty"`
	Errors      []string          `json:"errors"`
	FailedRules map[string]string `json:"failed_rules,omitempty"`
}

// RuleInfo describes a registered rule.
type RuleInfo struct {
	Name             string   `json:"name"`
	Params           []string `json:"params"`
	Lazy             bool     `json:"lazy,omitempty"`
	ComputesRequired bool     `json:"computes_required,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandlerOption configures NewHandler.
type HandlerOption func(*handler)

// WithMetrics mounts h under GET /metrics.
func WithMetrics(h http.Handler) HandlerOption {
	return func(hd *handler) {
		hd.metrics = h
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(hd *handler) {
		if l != nil {
			hd.logger = l
		}
	}
}

// WithMaxBodyBytes limits the request body of POST /validate.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(hd *handler) {
		if n > 0 {
			hd.maxBody = n
		}
	}
}

type handler struct {
	v       *validator.Validator
	metrics http.Handler
	logger  *slog.Logger
	maxBody int64
}

// NewHandler exposes v over HTTP:
//
//	POST /validate      validate one value
//	GET  /rules         list registered rules
//	GET  /rules/{name}  describe one rule
//	GET  /healthz       liveness
//	GET  /metrics       only with WithMetrics
func NewHandler(v *validator.Validator, opts ...HandlerOption) http.Handler {
	h := &handler{
		v:       v,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBody: DefaultConfig().MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/validate", h.validate)
	r.Get("/rules", h.listRules)
	r.Get("/rules/{name}", h.showRule)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	return r
}

func (h *handler) validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.fail(w, r, http.StatusBadRequest, errors.Join(ErrBadRequest, err))
		return
	}
	if req.Rules == nil {
		h.fail(w, r, http.StatusBadRequest, ErrMissingRule)
		return
	}

	opts := []validator.ValidateOption{
		validator.WithName(req.Field),
		validator.WithValues(req.Values),
		validator.WithNames(req.Names),
	}
	if req.Bails != nil {
		opts = append(opts, validator.WithBails(*req.Bails))
	}
	if req.SkipOptional != nil {
		opts = append(opts, validator.WithSkipIfEmpty(*req.SkipOptional))
	}
	if req.Initial {
		opts = append(opts, validator.Initial())
	}

	res, err := h.v.Validate(r.Context(), req.Value, req.Rules, opts...)
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}

	resp := ValidateResponse{
		Valid:    res.Valid,
		Required: res.Required,
		Errors:   res.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if !res.Valid {
		resp.FailedRules = res.FailedRules
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) listRules(w http.ResponseWriter, _ *http.Request) {
	reg := h.v.Registry()
	names := reg.Names()
	out := make([]RuleInfo, 0, len(names))
	for _, name := range names {
		if def, ok := reg.Lookup(name); ok {
			out = append(out, ruleInfo(name, def))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) showRule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, ok := h.v.Registry().Lookup(name)
	if !ok {
		h.fail(w, r, http.StatusNotFound, &validator.UnknownRuleError{Rule: name})
		return
	}
	writeJSON(w, http.StatusOK, ruleInfo(name, def))
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "validation request failed",
		logger.Group("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
		),
		logger.Error(err),
	)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps declaration mistakes to 400. Anything else is a rule or
// infrastructure failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, validator.ErrInvalidRules),
		errors.Is(err, validator.ErrUnknownRule),
		errors.Is(err, validator.ErrUnschemedNamedParams):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func ruleInfo(name string, def validator.Definition) RuleInfo {
	params := make([]string, len(def.Params))
	for i, p := range def.Params {
		params[i] = p.Name
	}
	return RuleInfo{
		Name:             name,
		Params:           params,
		Lazy:             def.Lazy,
		ComputesRequired: def.ComputesRequired,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
