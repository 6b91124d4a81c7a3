package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	perr "launchpipe/internal/platform/errors"
)

type payload struct {
	Limit int    `json:"limit" validate:"min=1,max=100"`
	Note  string `json:"note,omitempty"`
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		body    string
		code    perr.ErrorCode
		field   string
		wantErr bool
	}{
		{name: "ok", body: `{"limit":5}`},
		{name: "empty", body: ``, code: perr.ErrorCodeJSON, wantErr: true},
		{name: "garbage", body: `{`, code: perr.ErrorCodeJSON, wantErr: true},
		{name: "unknown field", body: `{"limit":5,"x":1}`, code: perr.ErrorCodeJSON, wantErr: true},
		{name: "trailing", body: `{"limit":5}{"limit":6}`, code: perr.ErrorCodeJSON, wantErr: true},
		{name: "too big", body: `{"limit":500}`, code: perr.ErrorCodeValidation, field: "limit", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			got, err := ParseJSON[payload](r)
			if !tc.wantErr {
				if err != nil || got.Limit != 5 {
					t.Fatalf("got %+v err=%v", got, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error")
			}
			if perr.CodeOf(err) != tc.code {
				t.Fatalf("code = %v, want %v", perr.CodeOf(err), tc.code)
			}
			if tc.field != "" && perr.WireFrom(err).Field != tc.field {
				t.Fatalf("field = %q", perr.WireFrom(err).Field)
			}
		})
	}
}

func TestParseJSONAllowEmpty(t *testing.T) {
	t.Parallel()
	type opt struct {
		Kind string `json:"kind" validate:"omitempty,oneof=manual"`
	}
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))
	got, err := ParseJSON[opt](r, JSONOptions{AllowEmptyBody: true, DisallowUnknown: true})
	if err != nil || got.Kind != "" {
		t.Fatalf("got %+v err=%v", got, err)
	}
}

func TestShortMinMessage(t *testing.T) {
	t.Parallel()
	err := Validate(payload{Limit: 0})
	if err == nil || !strings.Contains(err.Error(), "limit must be at least 1") {
		t.Fatalf("message = %v", err)
	}
}
