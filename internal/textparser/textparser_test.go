package textparser

import (
	"strings"
	"testing"
)

func TestLineStyleClosesAtNewline(t *testing.T) {
	p := NewParser()
	p.AddLineStyle("comment", "#")

	var starts, ends []string
	var chars strings.Builder

	p.Parse("plain #red warning\nmore plain", Callbacks{
		OnStyleStart: func(id string) {
			if id != "" {
				starts = append(starts, id)
			}
		},
		OnChar: func(c rune) { chars.WriteRune(c) },
		OnStyleEnd: func(id, inner, arg string) {
			if id != "" {
				ends = append(ends, id+"="+inner)
			}
		},
	})

	if len(starts) != 1 || starts[0] != "comment" {
		t.Fatalf("starts = %v, want [comment]", starts)
	}
	if len(ends) != 1 || ends[0] != "comment=red warning" {
		t.Fatalf("ends = %v, want [comment=red warning]", ends)
	}
	if !strings.Contains(chars.String(), "plain") {
		t.Fatalf("expected literal text to reach OnChar, got %q", chars.String())
	}
	if !strings.Contains(chars.String(), "more plain") {
		t.Fatalf("expected text after the newline to still be scanned, got %q", chars.String())
	}
}

func TestPairedStyleNestingWithDistinctTokens(t *testing.T) {
	p := NewParser()
	p.AddStyle("yellow", "[", "]")
	p.AddStyle("red", "[[", "]]")

	var events []string
	p.Parse("a[b]c[[d]]e", Callbacks{
		OnStyleStart: func(id string) {
			if id != "" {
				events = append(events, "start:"+id)
			}
		},
		OnStyleEnd: func(id, inner, arg string) {
			if id != "" {
				events = append(events, "end:"+id+":"+inner)
			}
		},
	})

	want := []string{"start:yellow", "end:yellow:b", "start:red", "end:red:d"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events[%d] = %q, want %q (full: %v)", i, events[i], want[i], events)
		}
	}
}

func TestLongestStartTokenWins(t *testing.T) {
	p := NewParser()
	p.AddStyle("yellow", "[", "]")
	p.AddStyle("red", "[[", "]]")

	var started string
	p.Parse("[[x]]", Callbacks{
		OnStyleStart: func(id string) {
			if id != "" && started == "" {
				started = id
			}
		},
	})
	if started != "red" {
		t.Fatalf("expected the longer token [[ to win over [, got %q", started)
	}
}

func TestRubyArgAfterPipe(t *testing.T) {
	p := NewParser()
	p.AddStyle("ruby", "{", "}")

	var gotLeft, gotArg string
	p.Parse("{base|reading}", Callbacks{
		OnStyleEnd: func(id, inner, arg string) {
			if id == "ruby" {
				gotLeft, gotArg = inner, arg
			}
		},
	})
	if gotLeft != "base" || gotArg != "reading" {
		t.Fatalf("got left=%q arg=%q, want base/reading", gotLeft, gotArg)
	}
}

func TestEscapeCharacterPassesThroughLiterally(t *testing.T) {
	p := NewParser()
	p.AddLineStyle("comment", "#")

	var chars []rune
	p.Parse(`\#not a style`, Callbacks{
		OnChar: func(c rune) { chars = append(chars, c) },
	})
	if len(chars) == 0 || chars[0] != '#' {
		t.Fatalf("expected escaped '#' as first literal char, got %v", chars)
	}
}

func TestMismatchedEndReportsEmptyID(t *testing.T) {
	p := NewParser()
	p.AddStyle("a", "<a>", "</a>")
	p.AddStyle("b", "<b>", "</b>")

	var ends []string
	p.Parse("<a>x</b>", Callbacks{
		OnStyleEnd: func(id, inner, arg string) {
			ends = append(ends, id)
		},
	})
	// "</b>" doesn't match the open "<a>" on top of the stack, so it's never
	// recognised as an end token at all and is scanned as literal characters.
	// At end of input "<a>" is still open where the default style is
	// expected, which is reported once as a mismatch with an empty id.
	if len(ends) != 1 || ends[0] != "" {
		t.Fatalf("ends = %v, want a single mismatch report", ends)
	}
}
