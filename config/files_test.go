package config

import "testing"

func TestSheetFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"large", "large.css"},
		{"  extra-large ", "extra-large.css"},
		{"tokens.CSS", "tokens.CSS"},
		{"../escape", "escape.css"},
		{"", "_bad_file_name_.css"},
		{"...", "_bad_file_name_.css"},
	}
	for _, tt := range tests {
		if got := SheetFileName(tt.in); got != tt.want {
			t.Errorf("SheetFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
