package lang

import "testing"

func TestNameFromCode(t *testing.T) {
	cases := map[string]string{
		"en": "English",
		"vi": "Vietnamese",
		"ja": "Japanese",
		"ko": "Korean",
		"EN": "English",
	}
	for in, want := range cases {
		if got := Name(in); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNameFromDisplayName(t *testing.T) {
	if got := Name("vietnamese"); got != "Vietnamese" {
		t.Errorf("Name(vietnamese) = %q, want Vietnamese", got)
	}
	if got := Name("Klingon-ish"); got != "" {
		t.Errorf("Name on unknown value = %q, want empty", got)
	}
	if got := Name(""); got != "" {
		t.Errorf("Name on empty value = %q, want empty", got)
	}
}

func TestCode(t *testing.T) {
	cases := map[string]string{
		"Vietnamese": "vi",
		"vi":         "vi",
		"English":    "en",
		"":           "und",
		"no/such":    "nosuch",
	}
	for in, want := range cases {
		if got := Code(in); got != want {
			t.Errorf("Code(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSupported(t *testing.T) {
	langs := Supported()
	if len(langs) != len(supportedCodes) {
		t.Fatalf("Supported returned %d entries, want %d", len(langs), len(supportedCodes))
	}
	for _, l := range langs {
		if l.Code == "" || l.Name == "" {
			t.Errorf("incomplete language entry: %+v", l)
		}
	}
	if langs[0].Code != "en" || langs[0].Name != "English" {
		t.Errorf("first language = %+v, want en/English", langs[0])
	}
}
