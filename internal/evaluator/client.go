// Package evaluator provides the client for the remote rule evaluation
// service.
//
// The engine does not implement rule operator semantics; it batches every
// rule that currently needs a decision into a single JSON request and maps
// the ordered results back onto their owning questions. The client never
// returns an error: any failure (transport, non-2xx status, service-declared
// failure, malformed or mis-sized payload) degrades to one Unknown verdict
// per rule, which downstream treats as fail-open.
package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/calyx-health/formgate/internal/core/auth"
	"github.com/calyx-health/formgate/internal/types"
)

// DefaultTimeout bounds a single evaluation request. A request that never
// resolves would otherwise leave questions parked in the evaluating state.
const DefaultTimeout = 10 * time.Second

// Verdict is the per-rule outcome of an evaluation pass.
type Verdict int

const (
	// VerdictUnknown means no confident decision was made. Treated as
	// visible (fail-open) by the visibility store, never as hidden.
	VerdictUnknown Verdict = iota

	// VerdictShow means the rule evaluated true.
	VerdictShow

	// VerdictHide means the rule evaluated false.
	VerdictHide
)

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictShow:
		return "show"
	case VerdictHide:
		return "hide"
	default:
		return "unknown"
	}
}

// Client issues batched rule evaluation requests.
// Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *auth.Signer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithSigner enables HMAC request signing.
func WithSigner(s *auth.Signer) Option {
	return func(c *Client) { c.signer = s }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the evaluation service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// evaluateRequest is the request body for the /v1/evaluate endpoint.
type evaluateRequest struct {
	QuestionResponses []types.QuestionResponse `json:"question_responses"`
	Rules             []types.Rule             `json:"rules"`
}

// evaluateResponse is the response from the /v1/evaluate endpoint.
// Results entries are tri-state: true, false, or null for unknown.
type evaluateResponse struct {
	Success bool    `json:"success"`
	Code    string  `json:"code"`
	Message string  `json:"message,omitempty"`
	Results []*bool `json:"results"`
}

// EvaluateRules evaluates all rules in one batched request.
// Returns exactly one verdict per rule, in rule order. An empty rule list
// short-circuits without a network call. Never returns an error; failures
// are logged and reported as Unknown verdicts.
func (c *Client) EvaluateRules(ctx context.Context, responses []types.QuestionResponse, ruleList []types.Rule) []Verdict {
	if len(ruleList) == 0 {
		return []Verdict{}
	}

	unknown := func(reason string, attrs ...any) []Verdict {
		c.logger.Warn("rule evaluation failed, failing open",
			append([]any{"reason", reason, "rules", len(ruleList)}, attrs...)...)
		verdicts := make([]Verdict, len(ruleList))
		for i := range verdicts {
			verdicts[i] = VerdictUnknown
		}
		return verdicts
	}

	if responses == nil {
		responses = []types.QuestionResponse{}
	}
	body, err := json.Marshal(evaluateRequest{
		QuestionResponses: responses,
		Rules:             ruleList,
	})
	if err != nil {
		return unknown("marshal request", "error", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/evaluate", bytes.NewReader(body))
	if err != nil {
		return unknown("create request", "error", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.signer != nil {
		c.signer.Sign(req, body)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unknown("transport", "error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unknown("status", "status", resp.StatusCode)
	}

	var payload evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return unknown("decode response", "error", err)
	}
	if !payload.Success {
		return unknown("service declined", "code", payload.Code, "message", payload.Message)
	}
	if len(payload.Results) != len(ruleList) {
		return unknown("result count mismatch", "got", len(payload.Results))
	}

	verdicts := make([]Verdict, len(ruleList))
	for i, r := range payload.Results {
		switch {
		case r == nil:
			verdicts[i] = VerdictUnknown
		case *r:
			verdicts[i] = VerdictShow
		default:
			verdicts[i] = VerdictHide
		}
	}
	return verdicts
}
