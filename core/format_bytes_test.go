package core

import (
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"zero bytes", 0, "0 B"},
		{"one byte", 1, "1 B"},
		{"512 bytes", 512, "512 B"},
		{"1023 bytes", 1023, "1023 B"},

		{"exactly 1 KB", 1024, "1.00 KB"},
		{"1.5 KB", 1536, "1.50 KB"},
		{"999 KB", 999 * 1024, "999.00 KB"},

		{"exactly 1 MB", 1024 * 1024, "1.00 MB"},
		{"1.5 MB", 1536 * 1024, "1.50 MB"},

		{"exactly 1 GB", 1024 * 1024 * 1024, "1.00 GB"},
		{"8 GB", 8 * 1024 * 1024 * 1024, "8.00 GB"},

		{"exactly 1 TB", 1024 * 1024 * 1024 * 1024, "1.00 TB"},
		{"2.5 TB", int64(2.5 * 1024 * 1024 * 1024 * 1024), "2.50 TB"},

		{"negative value", -100, "0 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatBytes(tt.bytes)
			if result != tt.expected {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, result, tt.expected)
			}
		})
	}
}
