package grader

import (
	"testing"
)

var john316 = []string{"for", "god", "so", "loved"}

func TestClassify(t *testing.T) {
	got := Classify(john316, "For go sx loved world")
	want := []MatchClass{Exact, Partial, Wrong, Exact, Extra}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Class != w {
			t.Fatalf("word %d (%q): expected %s, got %s", i, got[i].Token, w, got[i].Class)
		}
	}
	if got[0].Token != "for" {
		t.Fatalf("expected normalized token, got %q", got[0].Token)
	}
}

func TestClassifyPartialBothDirections(t *testing.T) {
	got := Classify([]string{"god", "so"}, "gods s")
	if got[0].Class != Partial || got[1].Class != Partial {
		t.Fatalf("expected both partial, got %v", got)
	}
}

func TestClassifyEmpty(t *testing.T) {
	if got := Classify(john316, ""); len(got) != 0 {
		t.Fatalf("expected no results for empty transcript, got %v", got)
	}
	if got := Classify(john316, "   "); len(got) != 0 {
		t.Fatalf("expected no results for blank transcript, got %v", got)
	}
}

func TestCursorAndProgress(t *testing.T) {
	if got := Cursor(john316, "for god"); got != 2 {
		t.Fatalf("expected cursor 2, got %d", got)
	}
	if got := Progress(john316, "for god"); got != 50 {
		t.Fatalf("expected progress 50, got %d", got)
	}
	if got := Cursor(john316, "for got so"); got != 1 {
		t.Fatalf("expected cursor 1, got %d", got)
	}
	if got := Progress(john316, "for got so"); got != 50 {
		t.Fatalf("expected progress 50 without partial credit, got %d", got)
	}
	if got := Progress([]string{"a", "b", "c"}, "a b"); got != 67 {
		t.Fatalf("expected rounded progress 67, got %d", got)
	}
	if got := Progress(nil, "anything"); got != 0 {
		t.Fatalf("expected 0 progress for empty reference, got %d", got)
	}
}

func TestRevertWithHint(t *testing.T) {
	got, added := Revert(john316, "for got", true)
	if got != "for god" || !added {
		t.Fatalf("expected \"for god\" with hint, got %q (%v)", got, added)
	}
}

func TestRevertWithoutHint(t *testing.T) {
	got, added := Revert(john316, "for god so lovd", false)
	if got != "for god so" || added {
		t.Fatalf("expected \"for god so\", got %q (%v)", got, added)
	}
}

func TestRevertEmptyTranscript(t *testing.T) {
	got, added := Revert(john316, "", true)
	if got != "for" || !added {
		t.Fatalf("expected first word, got %q (%v)", got, added)
	}
	got, added = Revert(john316, "", false)
	if got != "" || added {
		t.Fatalf("expected unchanged empty transcript, got %q (%v)", got, added)
	}
}

func TestRevertAfterCorrectPrefixAppendsNext(t *testing.T) {
	got, added := Revert(john316, "For God ", true)
	if got != "for god so" || !added {
		t.Fatalf("expected next word appended, got %q (%v)", got, added)
	}
}

func TestRevertNoOpWhenComplete(t *testing.T) {
	transcript := "For God so loved!"
	got, added := Revert(john316, transcript, true)
	if got != transcript || added {
		t.Fatalf("expected no-op on complete transcript, got %q (%v)", got, added)
	}
	got, _ = Revert(john316, transcript+" extra", false)
	if got != transcript+" extra" {
		t.Fatalf("expected no-op on complete transcript, got %q", got)
	}
}

func TestIsComplete(t *testing.T) {
	if IsComplete(john316, "for god so") {
		t.Fatalf("expected incomplete")
	}
	if !IsComplete(john316, "for god so loved") {
		t.Fatalf("expected complete")
	}
	if IsComplete(john316, "for god so lovd") {
		t.Fatalf("expected a wrong last word to leave a hint available")
	}
	if !IsComplete(john316, "for god so loved the world") {
		t.Fatalf("expected extra words after a full match to stay complete")
	}
	if IsComplete(nil, "") {
		t.Fatalf("expected empty reference never complete")
	}
}

func TestCompletedWords(t *testing.T) {
	cases := map[string]int{
		"":          0,
		"for":       0,
		"for ":      1,
		"for god":   1,
		"for god  ": 2,
		"for god\n": 2,
	}
	for in, want := range cases {
		if got := CompletedWords(in); got != want {
			t.Fatalf("CompletedWords(%q) = %d, want %d", in, got, want)
		}
	}
}
