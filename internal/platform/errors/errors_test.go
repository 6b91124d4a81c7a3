package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestConstructorsAndAccessors(t *testing.T) {
	t.Parallel()
	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil render = %q", nilErr.Error())
	}

	src := stderrs.New("dial tcp: refused")
	e := Wrap(src, ErrorCodeUnavailable, "spacex latest")
	if CodeOf(e) != ErrorCodeUnavailable || e.Error() != "spacex latest: dial tcp: refused" {
		t.Fatalf("Wrap mismatch: %v", e)
	}
	if Root(fmt.Errorf("outer: %w", e)) != src {
		t.Fatalf("Root did not reach the source")
	}

	f := WithField(InvalidArgf("limit %d out of range", 0), "limit")
	if ee, ok := As(f); !ok || ee.Field() != "limit" {
		t.Fatalf("WithField lost field")
	}
	if WithField(src, "x") != src {
		t.Fatalf("WithField on foreign error should be identity")
	}
}

func TestWireAndStatus(t *testing.T) {
	t.Parallel()
	if w := WireFrom(nil); w != (Wire{}) {
		t.Fatalf("nil wire = %+v", w)
	}
	if w := WireFrom(stderrs.New("plain")); w.Code != ErrorCodeUnknown || w.Message != "plain" {
		t.Fatalf("foreign wire = %+v", w)
	}
	err := fmt.Errorf("run: %w", Newf(ErrorCodeConflict, "ingestion lease held by %s", "host:1"))
	if st, w := HTTPStatus(err), WireFrom(err); st != http.StatusConflict || w.Code != ErrorCodeConflict {
		t.Fatalf("status = %d wire = %+v", st, w)
	}
	if w := WireFrom(WithField(JSONErrf("bad body"), "trigger")); w.Field != "trigger" || w.Code != ErrorCodeJSON {
		t.Fatalf("field wire = %+v", w)
	}
}

func TestCodeStrings(t *testing.T) {
	t.Parallel()
	if ErrorCodeUnavailable.String() != "unavailable" || ErrorCode(999).String() != "unknown" {
		t.Fatalf("String mismatch")
	}
}
