package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access for the storefront UI.
type CORSConfig struct {
	// AllowedOrigins lists exact origins ("https://shop.example.com"),
	// subdomain patterns ("https://*.example.com") or "*".
	AllowedOrigins []string

	// AllowedHeaders are the request headers a browser may send. The session
	// and correlation headers are always allowed.
	AllowedHeaders []string

	// ExposedHeaders are readable by the browser in addition to the
	// correlation id and Content-Disposition of exported files.
	ExposedHeaders []string

	MaxAge           int
	AllowCredentials bool

	// Environment "development" allows any origin.
	Environment string
}

// DefaultCORSConfig allows any origin, for local development of the UI.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		MaxAge:         3600,
		Environment:    "development",
	}
}

var (
	corsMethods        = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsRequestHeaders = []string{"Accept", "Content-Type", CorrelationIDHeader, SessionIDHeader}
	corsExposedHeaders = []string{CorrelationIDHeader, "Content-Disposition"}
)

type corsPolicy struct {
	any      bool
	exact    map[string]struct{}
	suffixes []originPattern
}

type originPattern struct {
	scheme string // "https://"
	suffix string // ".example.com"
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{
		any:   cfg.Environment == "development",
		exact: make(map[string]struct{}, len(cfg.AllowedOrigins)),
	}
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		switch {
		case o == "*":
			p.any = true
		case strings.Contains(o, "://*."):
			scheme, host, _ := strings.Cut(o, "://*")
			p.suffixes = append(p.suffixes, originPattern{scheme: scheme + "://", suffix: host})
		case o != "":
			p.exact[o] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, pat := range p.suffixes {
		host, ok := strings.CutPrefix(origin, pat.scheme)
		if ok && strings.HasSuffix(host, pat.suffix) && len(host) > len(pat.suffix) {
			return true
		}
	}
	return false
}

// joinHeaders merges base and extra without duplicates, keeping order.
func joinHeaders(base, extra []string) string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, h := range append(append([]string{}, base...), extra...) {
		key := http.CanonicalHeaderKey(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return strings.Join(out, ", ")
}

// CORS answers preflight requests and decorates responses for allowed
// origins. A preflight from an origin that is not allowed gets 403.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)
	methods := strings.Join(corsMethods, ", ")
	allowed := joinHeaders(corsRequestHeaders, cfg.AllowedHeaders)
	exposed := joinHeaders(corsExposedHeaders, cfg.ExposedHeaders)
	maxAge := strconv.Itoa(cfg.MaxAge)
	if cfg.MaxAge <= 0 {
		maxAge = "3600"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			h := w.Header()
			switch {
			case policy.any && !cfg.AllowCredentials:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && (policy.any || policy.allows(origin)):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			case preflight:
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			h.Set("Access-Control-Expose-Headers", exposed)

			if preflight {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", allowed)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
