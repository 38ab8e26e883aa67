package tools_test

import (
	"testing"

	"github.com/0x6d61/connected/internal/tools"
)

func TestBuildCLIArgs_StringValue(t *testing.T) {
	tmpl := "-c {count!} {host!}"
	args := map[string]any{
		"host":  "example.com",
		"count": 4,
	}

	got, err := tools.BuildCLIArgs(tmpl, args)
	if err != nil {
		t.Fatalf("BuildCLIArgs: %v", err)
	}

	want := []string{"-c", "4", "example.com"}
	assertStringSliceEqual(t, got, want)
}

func TestBuildCLIArgs_SliceValueKeepsSpaces(t *testing.T) {
	// []string の要素は空白を含んでも 1 引数のまま
	tmpl := "-sS -o /dev/null -w {format!} {url!}"
	args := map[string]any{
		"url":    "https://example.com/",
		"format": []string{"dns: %{time_namelookup}\ntotal: %{time_total}"},
	}

	got, err := tools.BuildCLIArgs(tmpl, args)
	if err != nil {
		t.Fatalf("BuildCLIArgs: %v", err)
	}

	want := []string{"-sS", "-o", "/dev/null", "-w", "dns: %{time_namelookup}\ntotal: %{time_total}", "https://example.com/"}
	assertStringSliceEqual(t, got, want)
}

func TestBuildCLIArgs_AnySliceValue(t *testing.T) {
	got, err := tools.BuildCLIArgs("{flags} {host}", map[string]any{
		"host":  "10.0.0.5",
		"flags": []any{"-n", "-I"},
	})
	if err != nil {
		t.Fatalf("BuildCLIArgs: %v", err)
	}
	assertStringSliceEqual(t, got, []string{"-n", "-I", "10.0.0.5"})
}

func TestBuildCLIArgs_MissingOptionalKey(t *testing.T) {
	// max_hops が無い → "-m {max_hops}" を丸ごと除去
	tmpl := "-m {max_hops} -q {queries} -w {wait} {host!}"
	args := map[string]any{
		"host":    "example.com",
		"queries": 3,
	}

	got, err := tools.BuildCLIArgs(tmpl, args)
	if err != nil {
		t.Fatalf("BuildCLIArgs: %v", err)
	}

	if contains(got, "-m") || contains(got, "-w") {
		t.Errorf("expected -m and -w to be removed, got: %v", got)
	}
	assertStringSliceEqual(t, got, []string{"-q", "3", "example.com"})
}

func TestBuildCLIArgs_EmbeddedPlaceholder(t *testing.T) {
	got, err := tools.BuildCLIArgs("--max={n} {host!}", map[string]any{"n": 5, "host": "a.example"})
	if err != nil {
		t.Fatalf("BuildCLIArgs: %v", err)
	}
	assertStringSliceEqual(t, got, []string{"--max=5", "a.example"})
}

func TestBuildCLIArgs_NoTemplate_PassArgsAsIs(t *testing.T) {
	got, err := tools.BuildCLIArgs("", map[string]any{
		"_args": []any{"-h", "10.0.0.5"},
	})
	if err != nil {
		t.Fatalf("BuildCLIArgs: %v", err)
	}
	assertStringSliceEqual(t, got, []string{"-h", "10.0.0.5"})
}

func TestBuildCLIArgs_RequiredKeyMissing_ReturnsError(t *testing.T) {
	_, err := tools.BuildCLIArgs("+trace {domain!}", map[string]any{})
	if err == nil {
		t.Error("expected error for missing required key 'domain', got nil")
	}
}

func TestBuildCLIArgs_NonStringElement_ReturnsError(t *testing.T) {
	_, err := tools.BuildCLIArgs("{flags}", map[string]any{"flags": []any{"-n", 3}})
	if err == nil {
		t.Error("expected error for non-string element, got nil")
	}
}

// --- ヘルパー ---

func assertStringSliceEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("len: got %d (%v), want %d (%v)", len(got), got, len(want), want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
