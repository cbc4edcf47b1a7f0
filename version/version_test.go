package version

import (
	"runtime"
	"testing"
)

func restore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestGetUsesLinkerValues(t *testing.T) {
	defer restore()()
	Version = "1.2.0"
	GitCommit = "abc1234"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("expected 1.2.0, got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected abc1234, got %q", info.GitCommit)
	}
	if info.BuildTime.Year() != 2026 || info.BuildTime.Month() != 1 {
		t.Errorf("unexpected build time %v", info.BuildTime)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected %s, got %s", runtime.Version(), info.GoVersion)
	}
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0", Dirty: true}, false},
	}
	for _, tt := range tests {
		if got := tt.info.IsRelease(); got != tt.want {
			t.Errorf("%+v: IsRelease = %v, want %v", tt.info, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0 (abc1234)"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0 (abc1234, dirty)"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("expected 0123456, got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}
