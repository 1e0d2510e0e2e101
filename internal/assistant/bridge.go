// Package assistant forwards shopper questions to a search-grounded Gemini
// model.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
	"github.com/suleman231/provisimarket-hub/pkg/httpclient"
)

// Fixed texts returned to the shopper.
const (
	ApologyText    = "I'm having trouble searching the market right now. Please try again later."
	NoResponseText = "I couldn't find a response."
)

const systemInstruction = "You are a local marketplace expert assistant. Help users find provisions, stores, and compare prices. Keep answers concise and helpful."

const upstreamName = "gemini"

var errMissingAPIKey = errors.New("gemini api key is not configured")

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "assistant_requests_total",
		Help: "Assistant model calls by operation and outcome",
	},
	[]string{"operation", "outcome"},
)

// Doer posts a JSON payload. httpclient.CircuitBreakerClient satisfies it.
type Doer interface {
	PostJSON(ctx context.Context, url string, payload any, header http.Header) (*http.Response, error)
}

// Config selects the model endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Answer is the assistant's reply with the web sources it cited.
type Answer struct {
	Text  string   `json:"text"`
	Links []string `json:"links"`
}

// Bridge calls the model once per question. It keeps no history and does
// not cache.
type Bridge struct {
	client Doer
	cfg    Config
	logger *slog.Logger
}

// NewBridge creates a Bridge.
func NewBridge(client Doer, cfg Config, logger *slog.Logger) *Bridge {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Bridge{client: client, cfg: cfg, logger: logger}
}

// Ask sends query with an optional location hint. It never fails: any
// problem reaching or reading the model yields the apology text.
func (b *Bridge) Ask(ctx context.Context, query string, location *domain.Coordinates) Answer {
	req := generateRequest{
		Contents:          []content{{Parts: []part{{Text: searchPrompt(query, location)}}}},
		Tools:             []tool{{GoogleSearch: &struct{}{}}},
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
	}

	resp, err := b.generate(ctx, req)
	if err != nil {
		requestsTotal.WithLabelValues("search", "error").Inc()
		b.logger.WarnContext(ctx, "assistant search failed",
			slog.String("error", err.Error()),
		)
		return Answer{Text: ApologyText, Links: []string{}}
	}

	requestsTotal.WithLabelValues("search", "ok").Inc()
	text := resp.text()
	if text == "" {
		text = NoResponseText
	}
	return Answer{Text: text, Links: resp.links()}
}

// DescribeProduct asks the model for a short marketing description of a
// product. Unlike Ask it reports failures to the caller.
func (b *Bridge) DescribeProduct(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.InvalidInput("product name is required")
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{{
			Text: "Generate a catchy 2-sentence marketing description for a provision store product named: " + name,
		}}}},
	}

	resp, err := b.generate(ctx, req)
	if err != nil {
		requestsTotal.WithLabelValues("describe", "error").Inc()
		return "", fmt.Errorf("describe product: %w", err)
	}
	requestsTotal.WithLabelValues("describe", "ok").Inc()
	return resp.text(), nil
}

func (b *Bridge) generate(ctx context.Context, req generateRequest) (generateResponse, error) {
	if b.cfg.APIKey == "" {
		return generateResponse{}, apperrors.Unavailable(upstreamName, errMissingAPIKey)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", b.cfg.BaseURL, url.PathEscape(b.cfg.Model))
	header := http.Header{}
	header.Set("x-goog-api-key", b.cfg.APIKey)

	httpResp, err := b.client.PostJSON(ctx, endpoint, req, header)
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			return generateResponse{}, apperrors.Unavailable(upstreamName, err)
		}
		return generateResponse{}, fmt.Errorf("call %s: %w", upstreamName, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return generateResponse{}, httpclient.ParseResponseError(httpResp, upstreamName)
	}
	defer func() { _ = httpResp.Body.Close() }()

	var out generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return generateResponse{}, fmt.Errorf("decode %s response: %w", upstreamName, err)
	}
	return out, nil
}

func searchPrompt(query string, location *domain.Coordinates) string {
	where := "Unknown"
	if location != nil {
		if b, err := json.Marshal(location); err == nil {
			where = string(b)
		}
	}
	return fmt.Sprintf(
		"User is looking for: %q. Based on this, provide a helpful response helping them find what they need in a local marketplace. If location is provided: %s.",
		query, where,
	)
}
