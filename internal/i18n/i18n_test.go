package i18n

import "testing"

func TestFromLanguageCode(t *testing.T) {
	tests := []struct {
		code string
		want Lang
	}{
		{"ru", RU},
		{"ru-RU", RU},
		{" RU ", RU},
		{"en", EN},
		{"en-US", EN},
		{"de", EN},
		{"", EN},
	}
	for _, tt := range tests {
		if got := FromLanguageCode(tt.code); got != tt.want {
			t.Errorf("FromLanguageCode(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestPick(t *testing.T) {
	if got := Pick(RU, "hi", "привет"); got != "привет" {
		t.Fatalf("Pick(RU) = %q", got)
	}
	if got := Pick(Parse("xx"), "hi", "привет"); got != "hi" {
		t.Fatalf("Pick(unknown) = %q", got)
	}
}
