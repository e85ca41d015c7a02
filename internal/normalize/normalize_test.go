package normalize

import "testing"

func TestTextCaseAndPunctuation(t *testing.T) {
	if got := Text("JOHN!!"); got != "john" {
		t.Fatalf("expected john, got %q", got)
	}
	if Text("JOHN!!") != Text("john") {
		t.Fatalf("expected case-insensitive normalization")
	}
}

func TestTextSteps(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>For God</p> so <b>loved", "for god so loved"},
		{"the world <sup", "the world"},
		{"“Come,” said He; (then) {left}", "come said he then left"},
		{"life—eternal", "life eternal"},
		{"  grace   and\t\tpeace  ", "grace and peace"},
		{"Don't be well-pleased", "don't be well-pleased"},
		{"a\nb", "a b"},
		{"grace\u00a0\u00a0and\u2009peace\u00a0", "grace and peace"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"In the beginning was the Word, and the Word was with God.",
		"<i>Blessed</i> — are   the poor in spirit!",
		"  ",
		"12 Amen; 3:16",
	}
	for _, in := range inputs {
		once := Text(in)
		if twice := Text(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("For God so loved...")
	want := []string{"for", "god", "so", "loved"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTokensEmpty(t *testing.T) {
	got := Tokens("")
	if len(got) != 1 || got[0] != "" {
		t.Fatalf("expected single empty token, got %q", got)
	}
	if !IsEmpty(got) {
		t.Fatalf("expected IsEmpty for empty input")
	}
	if IsEmpty(Tokens("word")) {
		t.Fatalf("expected non-empty tokens")
	}
}
