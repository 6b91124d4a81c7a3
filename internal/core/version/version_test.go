package version

import "testing"

func TestInfoDefaults(t *testing.T) {
	t.Parallel()
	b := Info("launchpipe-api")
	if b.Service != "launchpipe-api" || b.Version != "dev" || b.Commit != "none" {
		t.Fatalf("Info = %+v", b)
	}
	if got := b.String(); got != "launchpipe-api dev (none, unknown)" {
		t.Fatalf("String = %q", got)
	}
}
