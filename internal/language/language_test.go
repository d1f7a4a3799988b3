package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		wantCode string
		wantCJK  bool
	}{
		{"en", "en", false},
		{"EN", "en", false},
		{" es ", "es", false},
		{"english", "en", false},
		{"Japanese", "ja", true},
		{"zh", "zh", true},
		{"zh-CN", "zh", true},
		{"pt-BR", "pt", false},
		{"korean", "ko", true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if err != nil {
			t.Errorf("Normalize(%q): %v", tt.in, err)
			continue
		}
		if got.Code != tt.wantCode {
			t.Errorf("Normalize(%q).Code = %q, want %q", tt.in, got.Code, tt.wantCode)
		}
		if got.CJK != tt.wantCJK {
			t.Errorf("Normalize(%q).CJK = %v, want %v", tt.in, got.CJK, tt.wantCJK)
		}
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "!!", "notalanguage"} {
		if _, err := Normalize(in); err == nil {
			t.Errorf("Normalize(%q) succeeded, want error", in)
		}
	}
}

func TestNormalizeDisplayName(t *testing.T) {
	lang, err := Normalize("de")
	if err != nil {
		t.Fatal(err)
	}
	if lang.Name != "German" {
		t.Errorf("Name = %q, want German", lang.Name)
	}
}
