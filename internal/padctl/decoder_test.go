package padctl

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/danmuck/padctl/internal/testutil/testlog"
	"github.com/danmuck/padctl/internal/tools"
)

func TestDecodeValidPayloadIsVerbatim(t *testing.T) {
	testlog.Start(t)

	raw := `{"type":"response","code":"server:running","pads":[{"index":0,"password":"1234","bound":true}],"uptime_ms":1700000000123}`
	res := Decode(tools.Completed(raw, "ignored", 0))
	if res.Code != 0 {
		t.Fatalf("unexpected code: %d", res.Code)
	}
	if _, ok := res.Payload(); !ok {
		t.Fatalf("expected decoded object payload, got %#v", res.Details)
	}

	encoded, err := json.Marshal(res.Details)
	if err != nil {
		t.Fatalf("marshal details: %v", err)
	}
	var want bytes.Buffer
	if err := json.Compact(&want, []byte(raw)); err != nil {
		t.Fatalf("compact: %v", err)
	}
	if !jsonEqual(t, encoded, want.Bytes()) {
		t.Fatalf("details changed on round trip:\n got %s\nwant %s", encoded, want.Bytes())
	}
	if res.Discriminator() != "server:running" {
		t.Fatalf("unexpected discriminator: %q", res.Discriminator())
	}
}

func TestDecodeNullPayloadKeepsDetails(t *testing.T) {
	testlog.Start(t)

	res := Decode(tools.Completed("null", "", 0))
	if res.Code != 0 || res.Details == nil {
		t.Fatalf("expected non-nil details for null payload, got %#v", res)
	}
	if _, failed := res.ErrorEnvelope(); failed {
		t.Fatalf("null is valid JSON, not a decode failure")
	}
	encoded, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"code":0,"details":null}` {
		t.Fatalf("unexpected encoding: %s", encoded)
	}
	noop, _ := json.Marshal(Result{Code: 0})
	if bytes.Equal(encoded, noop) {
		t.Fatalf("null payload must not look like the reset no-op")
	}
}

func TestDecodeFailureShaping(t *testing.T) {
	testlog.Start(t)

	tests := []struct {
		name     string
		out      tools.Outcome
		wantCode int
		wantDump string
	}{
		{name: "unparseable stdout dumps stdout", out: tools.Completed("not json", "stderr text", 0), wantCode: 0, wantDump: "not json"},
		{name: "empty stdout", out: tools.Completed("", "", 0), wantCode: 0, wantDump: ""},
		{name: "trailing garbage", out: tools.Completed(`{"a":1} x`, "", 0), wantCode: 0, wantDump: `{"a":1} x`},
		{name: "non-zero exit dumps stderr", out: tools.Completed(`{"type":"response"}`, "boom", 2), wantCode: 2, wantDump: "boom"},
		{name: "launch failure", out: tools.LaunchFailure("exec: \"vpad\": executable file not found in $PATH"), wantCode: LaunchFailureCode, wantDump: "exec: \"vpad\": executable file not found in $PATH"},
		{name: "timeout", out: tools.Timeout("vpad exceeded 10s"), wantCode: TimeoutCode, wantDump: "timeout: vpad exceeded 10s"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Decode(tc.out)
			if res.Code != tc.wantCode {
				t.Fatalf("expected code %d, got %d", tc.wantCode, res.Code)
			}
			env, ok := res.ErrorEnvelope()
			if !ok {
				t.Fatalf("expected error envelope, got %#v", res.Details)
			}
			want := ErrorEnvelope{Status: StatusError, Hint: HintUnknown, Dump: tc.wantDump}
			if env != want {
				t.Fatalf("expected %+v, got %+v", want, env)
			}
			if res.OK() {
				t.Fatalf("error envelope must not report OK")
			}
		})
	}
}

func TestErrorEnvelopeJSONShape(t *testing.T) {
	testlog.Start(t)

	unknown, err := json.Marshal(Result{Code: 2, Details: unknownError("boom")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !jsonEqual(t, unknown, []byte(`{"code":2,"details":{"status":"error","hint":"unknown","dump":"boom"}}`)) {
		t.Fatalf("unexpected unknown envelope: %s", unknown)
	}

	invalid, err := json.Marshal(invalidIndex("x"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !jsonEqual(t, invalid, []byte(`{"code":1,"details":{"status":"error","hint":"pad:invalid-index","index":"x"}}`)) {
		t.Fatalf("unexpected invalid-index envelope: %s", invalid)
	}

	noop, err := json.Marshal(Result{Code: 0})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(noop) != `{"code":0}` {
		t.Fatalf("unexpected no-op result: %s", noop)
	}
}

func jsonEqual(t *testing.T, a, b []byte) bool {
	t.Helper()
	var left, right any
	if err := json.Unmarshal(a, &left); err != nil {
		t.Fatalf("unmarshal %s: %v", a, err)
	}
	if err := json.Unmarshal(b, &right); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	l, _ := json.Marshal(left)
	r, _ := json.Marshal(right)
	return bytes.Equal(l, r)
}
