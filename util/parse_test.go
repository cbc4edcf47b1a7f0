package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 7},
		{"10MB", 10 << 20},
		{" 512kb ", 512 << 10},
		{"1GB", 1 << 30},
		{"300B", 300},
		{"42", 42},
		{"lots", 7},
		{"-5MB", 7},
	}
	for _, tt := range tests {
		if got := ParseSize(tt.in, 7); got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
