package padctl

import "encoding/json"

const (
	StatusError = "error"

	// HintUnknown marks a failure whose admin tool output could not be classified.
	HintUnknown = "unknown"
	// HintInvalidIndex marks a pad argument outside 0..7.
	HintInvalidIndex = "pad:invalid-index"
)

// Result is the uniform return value of every pad control operation.
//
// Details is nil only for the reset-passwords no-op; otherwise it holds either
// the admin tool's decoded payload or an ErrorEnvelope.
type Result struct {
	Code    int `json:"code"`
	Details any `json:"details,omitempty"`
}

// ErrorEnvelope is the normalized failure shape. Validation failures carry
// Index; every other failure carries Dump.
type ErrorEnvelope struct {
	Status string
	Hint   string
	Dump   string
	Index  any
}

func (e ErrorEnvelope) MarshalJSON() ([]byte, error) {
	if e.Hint == HintInvalidIndex {
		return json.Marshal(struct {
			Status string `json:"status"`
			Hint   string `json:"hint"`
			Index  any    `json:"index"`
		}{e.Status, e.Hint, e.Index})
	}
	return json.Marshal(struct {
		Status string `json:"status"`
		Hint   string `json:"hint"`
		Dump   string `json:"dump"`
	}{e.Status, e.Hint, e.Dump})
}

func unknownError(dump string) ErrorEnvelope {
	return ErrorEnvelope{Status: StatusError, Hint: HintUnknown, Dump: dump}
}

func invalidIndex(index any) Result {
	return Result{
		Code:    1,
		Details: ErrorEnvelope{Status: StatusError, Hint: HintInvalidIndex, Index: index},
	}
}

// clearAllOK is the success payload synthesized for "pad clear-all".
func clearAllOK() map[string]any {
	return map[string]any{"type": "response", "status": "pad:ok"}
}

// ErrorEnvelope returns the failure envelope carried by r, if any.
func (r Result) ErrorEnvelope() (ErrorEnvelope, bool) {
	env, ok := r.Details.(ErrorEnvelope)
	return env, ok
}

// Payload returns the decoded admin tool object carried by r, if any.
func (r Result) Payload() (map[string]any, bool) {
	payload, ok := r.Details.(map[string]any)
	return payload, ok
}

// OK reports a zero code with a payload rather than an error envelope.
func (r Result) OK() bool {
	if r.Code != 0 {
		return false
	}
	_, failed := r.ErrorEnvelope()
	return !failed
}

// Discriminator returns the first string found among the payload's "code",
// "status" and "type" fields, e.g. "server:already-running". Business-level
// codes are passed through uninterpreted.
func (r Result) Discriminator() string {
	if env, ok := r.ErrorEnvelope(); ok {
		return env.Hint
	}
	payload, ok := r.Payload()
	if !ok {
		return ""
	}
	for _, key := range []string{"code", "status", "type"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
