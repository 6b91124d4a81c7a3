package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"launchpipe/internal/platform/logger"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	t.Parallel()
	in := "\n\tSELECT launch_id,\n\t       date_utc\n  FROM raw_launches  "
	if got := compact(in); got != "SELECT launch_id, date_utc FROM raw_launches" {
		t.Fatalf("compact = %q", got)
	}
}

func TestTracerWritesEvents(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	root := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	tr := Tracer(root)

	ctx := logger.WithRun(context.Background(), "pipeline_x")
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 1", ElapsedUS: 1500})
	tr.OnQuery(ctx, QueryEvent{SQL: "UPDATE ingestion_state", Slow: true, Err: errors.New("boom")})

	out := buf.String()
	for _, want := range []string{`"message":"pg query"`, `"elapsed_ms":1.5`, `"level":"warn"`, `"run_id":"pipeline_x"`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output missing %s:\n%s", want, out)
		}
	}
}
