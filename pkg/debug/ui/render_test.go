package ui

import (
	"errors"
	"strings"
	"testing"

	"shorekits/pkg/concurrency/okvl"
)

func TestRenderTables_ContainsEveryMode(t *testing.T) {
	out := RenderTables()

	for _, title := range []string{"Compatibility", "Implication", "Combine", "Parent intent"} {
		if !strings.Contains(out, title) {
			t.Errorf("missing table %q", title)
		}
	}
	for _, m := range okvl.AllElementModes {
		if !strings.Contains(out, m.String()) {
			t.Errorf("missing mode %s", m)
		}
	}
}

func TestRenderLockMode(t *testing.T) {
	lm := okvl.FromPartition(1, okvl.X)
	lm.SetGapMode(okvl.S)

	out := RenderLockMode(lm)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and mode rows, got %d lines:\n%s", len(lines), out)
	}

	for _, h := range []string{"p0", "p1", "key", "gap"} {
		if !strings.Contains(lines[0], h) {
			t.Errorf("header row missing %q: %s", h, lines[0])
		}
	}
	if got := strings.Fields(lines[1]); strings.Join(got, " ") != "N X IX S" {
		t.Errorf("mode row = %q, want N X IX S", got)
	}
}

func TestRenderTable_WidensColumns(t *testing.T) {
	out := RenderTable([]string{"a", "b"}, [][]string{{"short", "a much longer cell"}}, []int{1, 1})

	if !strings.Contains(out, "a much longer cell") {
		t.Errorf("cell truncated:\n%s", out)
	}
}

func TestRenderDetails(t *testing.T) {
	out := RenderDetails("Workload", []KeyValue{{"committed", "10"}, {"aborted", "2"}})

	for _, want := range []string{"Workload", "committed:", "10", "aborted:", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("details missing %q:\n%s", want, out)
		}
	}
}

func TestModeStyle_InvalidMode(t *testing.T) {
	if got := ModeStyle(okvl.ElementLockMode(42)).Render("x"); !strings.Contains(got, "x") {
		t.Errorf("render with fallback style lost content: %q", got)
	}
}

func TestRenderError(t *testing.T) {
	if out := RenderError(errors.New("boom")); !strings.Contains(out, "Error: boom") {
		t.Errorf("unexpected error rendering: %q", out)
	}
}
