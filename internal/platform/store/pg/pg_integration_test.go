//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"launchpipe/internal/platform/store/pg/pgtest"
)

func TestOpenAgainstContainer(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	p, err := Open(ctx, Config{URL: dsn, AppName: "launchpipe-pg-integration"}, nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(p.Close)

	var app string
	if err := p.Pool.QueryRow(ctx, `select current_setting('application_name')`).Scan(&app); err != nil {
		t.Fatalf("query: %v", err)
	}
	if app != "launchpipe-pg-integration" {
		t.Fatalf("application_name = %q", app)
	}
}
