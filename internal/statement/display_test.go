package statement

import (
	"strings"
	"testing"
)

func TestFormatDisplayName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"shouting merchant", "PYATEROCHKA 5351", "Pyaterochka 5351"},
		{"cyrillic", "МАГНИТ МОСКВА", "Магнит Москва"},
		{"short tokens stay upper", "ип иванов", "ИП Иванов"},
		{"mixed", "KRASNOE I BELOE", "Krasnoe I Beloe"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDisplayName(tc.raw); got != tc.want {
				t.Errorf("FormatDisplayName(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestFormatDisplayNameTruncates(t *testing.T) {
	raw := strings.Repeat("ABCD ", 20)
	got := FormatDisplayName(raw)
	if n := len([]rune(got)); n > maxDisplayLen {
		t.Errorf("display name length = %d, want at most %d", n, maxDisplayLen)
	}
}
