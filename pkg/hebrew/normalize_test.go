package hebrew

import "testing"

func TestConsonants(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "pointed", in: "בְּרֵאשִׁית", want: "בראשית"},
		{name: "bare", in: "שלום", want: "שלום"},
		{name: "cantillation", in: "\u05D0\u05B8\u0591\u05E8\u05B6\u05E5\u05C3", want: "ארץ"},
		{name: "final forms kept", in: "מלך", want: "מלך"},
		{name: "presentation form", in: "\uFB2A\u05DC\u05D5\u05DD", want: "שלום"},
		{name: "meteg and rafe", in: "\u05D4\u05BD\u05D5\u05BF\u05D0", want: "הוא"},
		{name: "latin", in: "hello", want: ""},
		{name: "digits and spaces", in: " 12 ", want: ""},
		{name: "mixed", in: "abc שָׁלוֹם 123", want: "שלום"},
		{name: "empty", in: "", want: ""},
		{name: "marks only", in: "\u05B0\u05B4", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Consonants(tc.in); got != tc.want {
				t.Fatalf("Consonants(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestConsonantsIdempotent(t *testing.T) {
	inputs := []string{
		"וַיֹּאמֶר",
		"כָּל־הָאָרֶץ",
		"שׁלום",
		"x",
	}
	for _, in := range inputs {
		once := Consonants(in)
		if twice := Consonants(once); twice != once {
			t.Fatalf("Consonants not idempotent for %q: %q then %q", in, once, twice)
		}
		for _, r := range once {
			if !IsLetter(r) {
				t.Fatalf("Consonants(%q) produced non-letter %U", in, r)
			}
		}
	}
}

func TestStripMarks(t *testing.T) {
	in := "\u05E9\u05C1\u05B8\u05DC\u05D5\u05B9\u05DD!"
	if got, want := StripMarks(in), "שלום!"; got != want {
		t.Fatalf("StripMarks(%q) = %q, want %q", in, got, want)
	}
}
