package hints

// ForBrowserConnect tests are not parallel: they use t.Setenv and replace
// the package-level IsInContainer.

import (
	"strings"
	"testing"
)

func stubContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		ci          string
		browserBin  string
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "container without sandbox override",
			container:   true,
			wantContain: []string{"hint:", "CI=true", "ROD_BROWSER_BIN", "livemd doctor"},
		},
		{
			name:        "container in CI",
			container:   true,
			ci:          "true",
			wantContain: []string{"ROD_BROWSER_BIN"},
			wantAbsent:  []string{"CI=true"},
		},
		{
			name:        "browser already configured",
			browserBin:  "/usr/bin/chromium",
			wantContain: []string{"livemd doctor"},
			wantAbsent:  []string{"ROD_BROWSER_BIN", "CI=true"},
		},
		{
			name:        "desktop",
			wantContain: []string{"ROD_BROWSER_BIN"},
			wantAbsent:  []string{"CI=true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubContainer(t, tt.container)
			t.Setenv("CI", tt.ci)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()
			for _, want := range tt.wantContain {
				if !strings.Contains(hint, want) {
					t.Errorf("hint %q missing %q", hint, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(hint, absent) {
					t.Errorf("hint %q should not contain %q", hint, absent)
				}
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		searched []string
		want     string
	}{
		{
			name:     "suggests user config path",
			searched: []string{"work.yaml", "/home/u/.config/livemd/work.yaml"},
			want:     "or create /home/u/.config/livemd/work.yaml",
		},
		{
			name:     "only local paths",
			searched: []string{"work.yaml", "work.yml"},
			want:     "use --config /path/to/livemd.yaml",
		},
		{name: "nothing searched", want: "use --config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ForConfigNotFound(tt.searched); !strings.Contains(got, tt.want) {
				t.Errorf("ForConfigNotFound() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestSimpleHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "timeout", got: ForTimeout(), want: "--timeout"},
		{name: "addr in use", got: ForAddrInUse(":8080"), want: ":8080"},
		{name: "store", got: ForUnsupportedStore(), want: "sqlite://"},
		{name: "styles", got: ForUnknownStyle([]string{"monokai", "github"}), want: "monokai, github"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !strings.HasPrefix(tt.got, "\n  hint: ") {
				t.Errorf("hint %q lacks the standard prefix", tt.got)
			}
			if !strings.Contains(tt.got, tt.want) {
				t.Errorf("hint %q missing %q", tt.got, tt.want)
			}
		})
	}
}

func TestForUnknownStyle_Empty(t *testing.T) {
	t.Parallel()

	if got := ForUnknownStyle(nil); got != "" {
		t.Errorf("ForUnknownStyle(nil) = %q, want empty", got)
	}
}

func TestFormatHints_Empty(t *testing.T) {
	t.Parallel()

	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
}
