package padctl

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/danmuck/padctl/internal/tools"
)

const (
	// LaunchFailureCode is reported when the admin tool could not be started.
	LaunchFailureCode = 1
	// TimeoutCode is reported when an invocation hit its deadline.
	TimeoutCode = 124
)

// Decode classifies one invocation outcome. It never fails: anything it
// cannot use degrades to an ErrorEnvelope.
//
// A non-zero exit dumps stderr; an unparseable zero-exit dumps stdout.
func Decode(out tools.Outcome) Result {
	switch out.Kind {
	case tools.OutcomeLaunchFailure:
		return Result{Code: LaunchFailureCode, Details: unknownError(out.Reason)}
	case tools.OutcomeTimeout:
		return Result{Code: TimeoutCode, Details: unknownError("timeout: " + out.Reason)}
	}

	if out.ExitCode != 0 {
		return Result{Code: out.ExitCode, Details: unknownError(out.Stderr)}
	}

	payload, err := decodePayload(out.Stdout)
	if err != nil {
		return Result{Code: 0, Details: unknownError(out.Stdout)}
	}
	if payload == nil {
		// a literal null is still a payload
		return Result{Code: 0, Details: json.RawMessage("null")}
	}
	return Result{Code: 0, Details: payload}
}

var errTrailingData = errors.New("padctl: trailing data after payload")

func decodePayload(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return payload, nil
}
