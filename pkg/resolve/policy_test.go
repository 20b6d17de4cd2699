package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bomgraph/bomgraph/pkg/errors"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return path
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != ModeLenient {
		t.Errorf("Mode = %q, want %q", p.Mode, ModeLenient)
	}
	if !p.PreferRevisionRecency {
		t.Error("PreferRevisionRecency = false, want true")
	}
	if p.Strict() {
		t.Error("Strict() = true for default policy")
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		mode    Mode
		wantErr bool
	}{
		{ModeStrict, false},
		{ModeLenient, false},
		{"", true},
		{"permissive", true},
	}
	for _, tt := range tests {
		err := Policy{Mode: tt.mode}.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(mode=%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidPolicy) {
			t.Errorf("Validate(mode=%q) code = %q, want %q", tt.mode, errors.GetCode(err), errors.ErrCodeInvalidPolicy)
		}
	}
}

func TestPolicyMerge(t *testing.T) {
	base := Policy{
		Mode:                  ModeLenient,
		PreferredView:         "Design",
		PreferRevisionRecency: true,
	}

	merged := base.Merge(Policy{Mode: ModeStrict, PreferredContainer: "Release"})
	if merged.Mode != ModeStrict {
		t.Errorf("Mode = %q, want %q", merged.Mode, ModeStrict)
	}
	if merged.PreferredContainer != "Release" {
		t.Errorf("PreferredContainer = %q, want Release", merged.PreferredContainer)
	}
	// Zero overlay fields keep the base values.
	if merged.PreferredView != "Design" || !merged.PreferRevisionRecency {
		t.Errorf("merged = %+v, want base view and recency preserved", merged)
	}

	if got := base.Merge(Policy{}); got != base {
		t.Errorf("Merge(zero) = %+v, want base unchanged", got)
	}
}

func TestLoadPolicy(t *testing.T) {
	path := writePolicy(t, `
mode = "strict"
preferred_view = "Design"
preferred_container = "Release"
`)
	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if p.Mode != ModeStrict {
		t.Errorf("Mode = %q, want %q", p.Mode, ModeStrict)
	}
	if p.PreferredView != "Design" || p.PreferredContainer != "Release" {
		t.Errorf("preferences = %q, %q, want Design, Release", p.PreferredView, p.PreferredContainer)
	}
	// Unset keys keep their defaults.
	if !p.PreferRevisionRecency {
		t.Error("PreferRevisionRecency = false, want default true")
	}
}

func TestLoadPolicy_UnknownKey(t *testing.T) {
	path := writePolicy(t, `
mode = "lenient"
prefered_view = "Design"
`)
	_, err := LoadPolicy(path)
	if err == nil {
		t.Fatal("LoadPolicy() accepted an unknown key")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("GetCode() = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidPolicy)
	}
}

func TestLoadPolicy_InvalidMode(t *testing.T) {
	_, err := LoadPolicy(writePolicy(t, `mode = "yolo"`))
	if err == nil {
		t.Fatal("LoadPolicy() accepted an invalid mode")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("GetCode() = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidPolicy)
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("LoadPolicy() accepted a missing file")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("GetCode() = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidPolicy)
	}
}
