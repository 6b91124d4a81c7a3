package spacex

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "launchpipe/internal/platform/errors"
)

// StatusError carries a non-2xx upstream response
type StatusError struct {
	Status int
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("spacex %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("spacex %s: status %d body %s", e.Path, e.Status, e.Body)
}

// HTTPStatus returns the upstream status
func (e *StatusError) HTTPStatus() int { return e.Status }

// retryAfter reads a delay-seconds Retry-After, capped at maxBackoff
func retryAfter(h http.Header) time.Duration {
	s := h.Get("Retry-After")
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return min(time.Duration(n)*time.Second, maxBackoff)
	}
	return 0
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// decode reads a capped JSON body into dst and always closes it
func decode(resp *http.Response, path string, dst any) error {
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(dst); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "spacex %s: decode", path)
	}
	return nil
}
