package evaluator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calyx-health/formgate/internal/core/auth"
	"github.com/calyx-health/formgate/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRules(n int) []types.Rule {
	rules := make([]types.Rule, n)
	for i := range rules {
		rules[i] = types.Rule{
			ID:              types.NewRuleID(),
			BooleanOperator: "and",
			Conditions: []types.Condition{
				{ID: "c1", Reference: "q1", Operator: "equals", Operand: types.Operand{Value: "yes", Type: "string"}},
			},
		}
	}
	return rules
}

func TestEvaluateRules_EmptyRulesNoCall(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithLogger(discardLogger()))
	verdicts := client.EvaluateRules(context.Background(), nil, nil)

	if len(verdicts) != 0 {
		t.Errorf("EvaluateRules() returned %d verdicts, want 0", len(verdicts))
	}
	if hits != 0 {
		t.Errorf("server hit %d times for empty rules, want 0", hits)
	}
}

func TestEvaluateRules_OrderingFidelity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/evaluate" {
			t.Errorf("path = %s, want /v1/evaluate", r.URL.Path)
		}
		var req struct {
			QuestionResponses []types.QuestionResponse `json:"question_responses"`
			Rules             []types.Rule             `json:"rules"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Rules) != 3 {
			t.Errorf("request carried %d rules, want 3", len(req.Rules))
		}

		tr, fa := true, false
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"code":    "ok",
			"results": []*bool{&tr, &fa, nil},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithLogger(discardLogger()))
	verdicts := client.EvaluateRules(context.Background(), nil, testRules(3))

	want := []Verdict{VerdictShow, VerdictHide, VerdictUnknown}
	if len(verdicts) != len(want) {
		t.Fatalf("EvaluateRules() returned %d verdicts, want %d", len(verdicts), len(want))
	}
	for i := range want {
		if verdicts[i] != want[i] {
			t.Errorf("verdicts[%d] = %v, want %v", i, verdicts[i], want[i])
		}
	}
}

func TestEvaluateRules_FailureModes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "service declined",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"code":    "evaluation_failed",
					"message": "operator not supported",
				})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "result count mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				tr := true
				json.NewEncoder(w).Encode(map[string]any{
					"success": true,
					"code":    "ok",
					"results": []*bool{&tr},
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL, WithLogger(discardLogger()))
			verdicts := client.EvaluateRules(context.Background(), nil, testRules(2))

			if len(verdicts) != 2 {
				t.Fatalf("EvaluateRules() returned %d verdicts, want 2", len(verdicts))
			}
			for i, v := range verdicts {
				if v != VerdictUnknown {
					t.Errorf("verdicts[%d] = %v, want VerdictUnknown", i, v)
				}
			}
		})
	}
}

func TestEvaluateRules_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	client := NewClient(srv.URL, WithLogger(discardLogger()))
	verdicts := client.EvaluateRules(context.Background(), nil, testRules(3))

	if len(verdicts) != 3 {
		t.Fatalf("EvaluateRules() returned %d verdicts, want 3", len(verdicts))
	}
	for i, v := range verdicts {
		if v != VerdictUnknown {
			t.Errorf("verdicts[%d] = %v, want VerdictUnknown", i, v)
		}
	}
}

func TestEvaluateRules_SignsRequests(t *testing.T) {
	secretID := "0123456789abcdef0123456789abcdef"
	secret := []byte("0123456789abcdef0123456789abcdef") // 32 bytes
	apiKey := auth.FormatAPIKey(secretID,
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(auth.HeaderAPIKey); got != apiKey {
			t.Errorf("api key header = %q, want %q", got, apiKey)
		}
		body, _ := io.ReadAll(r.Body)
		sig, err := hex.DecodeString(r.Header.Get(auth.HeaderSignature))
		if err != nil {
			t.Errorf("signature header not hex: %v", err)
		}
		if !auth.VerifyHMAC(auth.ComputeHMAC(secret, body), sig) {
			t.Errorf("signature does not verify against request body")
		}

		tr := true
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"code":    "ok",
			"results": []*bool{&tr},
		})
	}))
	defer srv.Close()

	signer, err := auth.NewSigner(apiKey, map[string][]byte{secretID: secret})
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}

	client := NewClient(srv.URL, WithSigner(signer), WithLogger(discardLogger()))
	verdicts := client.EvaluateRules(context.Background(), nil, testRules(1))
	if len(verdicts) != 1 || verdicts[0] != VerdictShow {
		t.Errorf("EvaluateRules() = %v, want [VerdictShow]", verdicts)
	}
}
