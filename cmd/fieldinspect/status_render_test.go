package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"fieldinspect/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Daemon:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestResultLineKinds(t *testing.T) {
	cases := []struct {
		result preflight.Result
		want   string
	}{
		{preflight.Result{Name: "Database", Passed: true, Detail: "ok"}, "[OK] ok"},
		{preflight.Result{Name: "Crop templates", Advisory: true, Detail: "none"}, "[WARN] none"},
		{preflight.Result{Name: "Data directory", Detail: "missing"}, "[ERROR] missing"},
	}
	for _, tc := range cases {
		if got := resultLine(tc.result, false); !strings.Contains(got, tc.want) {
			t.Fatalf("resultLine(%+v) = %q, want %q", tc.result, got, tc.want)
		}
	}
}

func TestLabelTitleCases(t *testing.T) {
	if got := label("provisional"); got != "Provisional" {
		t.Fatalf("label = %q", got)
	}
	if got := label(""); got != "-" {
		t.Fatalf("empty label = %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
