// Package middleware validates JSON request bodies against a record schema at HTTP
// boundaries. The net/http middleware lives here; middleware/gin and middleware/echo
// adapt it to those frameworks.
package middleware

import (
	"context"
	"net/http"

	j "github.com/goccy/go-json"

	"github.com/reoring/constraint"
	"github.com/reoring/constraint/decode"
)

type ctxKeyValue struct{}

// ContextWithValue attaches a validated request value to ctx.
func ContextWithValue(ctx context.Context, v constraint.Value) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, v)
}

// ValueFromContext retrieves the validated request value.
func ValueFromContext(ctx context.Context) (constraint.Value, bool) {
	v, ok := ctx.Value(ctxKeyValue{}).(constraint.Value)
	return v, ok
}

// DefaultOptions returns the decode options recommended for HTTP JSON boundaries:
// duplicate keys are errors and nesting is capped.
func DefaultOptions() decode.Options {
	return decode.Options{Duplicates: decode.DuplicateError, MaxDepth: 128, MaxBytes: 1 << 20}
}

// IssuePayload is the JSON shape of one violation.
type IssuePayload struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// Payload is the 422 response body.
type Payload struct {
	Issues      []IssuePayload `json:"issues,omitempty"`
	Unsupported []string       `json:"unsupported,omitempty"`
}

// ErrorPayload shapes a failed result for JSON responses.
func ErrorPayload(res constraint.Result) Payload {
	p := Payload{Unsupported: res.Unsupported}
	for _, it := range res.Issues {
		p.Issues = append(p.Issues, IssuePayload{Path: it.Path, Code: it.Code, Message: it.Message, Params: it.Params})
	}
	return p
}

// Check decodes and validates an HTTP body. It returns the decoded value, the
// status to answer with when the request must be rejected (0 otherwise), and the
// body for that response.
func Check(r *http.Request, v *constraint.Validator, s *constraint.RecordSchema, opt decode.Options) (constraint.Value, int, any) {
	val, err := decode.JSONReader(r.Body, s, opt)
	if err != nil {
		if iss, ok := constraint.AsIssues(err); ok {
			return constraint.Value{}, http.StatusBadRequest, ErrorPayload(constraint.Result{Issues: iss})
		}
		return constraint.Value{}, http.StatusBadRequest, map[string]string{"error": err.Error()}
	}
	res, err := v.Validate(r.Context(), val, s)
	if err != nil {
		return constraint.Value{}, http.StatusInternalServerError, map[string]string{"error": err.Error()}
	}
	if !res.Valid() {
		return constraint.Value{}, http.StatusUnprocessableEntity, ErrorPayload(res)
	}
	return val, 0, nil
}

// ValidateJSON returns net/http middleware that validates the request body against
// s, stores the value in the request context and rejects malformed bodies with 400
// and violations with 422.
func ValidateJSON(v *constraint.Validator, s *constraint.RecordSchema, opt decode.Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			val, status, body := Check(r, v, s, opt)
			if status != 0 {
				WriteJSON(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), val)))
		})
	}
}

// WriteJSON writes body as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(body)
}
