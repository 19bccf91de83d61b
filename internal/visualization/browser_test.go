package visualization

import (
	"path/filepath"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
		{"darwin", "open"},
		{"windows", "cmd"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, "http://localhost:1234/")
			if err != nil {
				t.Fatalf("browserCommand: %v", err)
			}
			if got := filepath.Base(cmd.Args[0]); got != tt.want {
				t.Errorf("command = %s, want %s", got, tt.want)
			}
			if last := cmd.Args[len(cmd.Args)-1]; last != "http://localhost:1234/" {
				t.Errorf("url argument = %s", last)
			}
		})
	}

	if _, err := browserCommand("plan9", "http://x"); err == nil {
		t.Error("expected error for unsupported platform")
	}
}
