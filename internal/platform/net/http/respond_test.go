package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "launchpipe/internal/platform/errors"
	pnet "launchpipe/internal/platform/net"
	phttp "launchpipe/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func reqWithID(method, path, rid string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	return req.WithContext(pnet.WithRequest(req.Context(), rid))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestHandleSuccessEnvelope(t *testing.T) {
	t.Parallel()
	h := phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.Created(map[string]int{"n": 1})
	})
	rec := httptest.NewRecorder()
	h(rec, reqWithID("GET", "/x", "rid-1", ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d", rec.Code)
	}
	env := decode(t, rec)
	if env.StatusCode != 201 || env.RequestID != "rid-1" || env.Data == nil || env.Error != "" {
		t.Fatalf("bad envelope: %+v", env)
	}
}

func TestHandleErrorEnvelope(t *testing.T) {
	t.Parallel()
	h := phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.Error(perr.WithField(perr.NotFoundf("launch %s not found", "abc"), "id"))
	})
	rec := httptest.NewRecorder()
	h(rec, reqWithID("GET", "/x", "rid-2", ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec.Code)
	}
	env := decode(t, rec)
	if env.Code != perr.ErrorCodeNotFound || env.Field != "id" || !strings.Contains(env.Error, "abc") {
		t.Fatalf("bad error envelope: %+v", env)
	}
}

func TestHandlePlainErrorIs500(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	phttp.RespondError(rec, reqWithID("GET", "/x", "", ""), errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestNoContentHasNoBody(t *testing.T) {
	t.Parallel()
	h := phttp.Handle(func(*http.Request) phttp.Response { return phttp.NoContent() })
	rec := httptest.NewRecorder()
	h(rec, reqWithID("DELETE", "/x", "", ""))
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

type createReq struct {
	Kind string `json:"kind" validate:"required,oneof=manual incremental"`
}

func TestPostJSONStatusBindsAndValidates(t *testing.T) {
	t.Parallel()
	m := chi.NewRouter()
	r := phttp.AdaptChi(m)
	phttp.PostJSONStatus(r, "/runs", http.StatusAccepted, func(_ *http.Request, in createReq) (any, error) {
		return map[string]string{"kind": in.Kind}, nil
	})

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("POST", "/runs", strings.NewReader(`{"kind":"manual"}`)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("code = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("POST", "/runs", strings.NewReader(`{"kind":"weird"}`)))
	if rec.Code != http.StatusUnprocessableEntity && rec.Code != http.StatusBadRequest {
		t.Fatalf("validation code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("POST", "/runs", strings.NewReader(`{"kind":"manual","extra":1}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field code = %d", rec.Code)
	}
}

func TestRouteAndURLParam(t *testing.T) {
	t.Parallel()
	m := chi.NewRouter()
	r := phttp.AdaptChi(m)
	r.Route("/v1", func(v1 phttp.Router) {
		phttp.GetJSON(v1, "/launches/{id}", func(req *http.Request) (any, error) {
			return phttp.URLParam(req, "id"), nil
		})
	})
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/launches/5eb87cd9", nil))
	env := decode(t, rec)
	if env.Data != "5eb87cd9" {
		t.Fatalf("data = %v", env.Data)
	}
}
