package game

import "testing"

func TestTrimStripsCarriageReturns(t *testing.T) {
	input := "look\r\n"
	got := Trim(input)
	want := "look"
	if got != want {
		t.Fatalf("Trim(%q) = %q, want %q", input, got, want)
	}
}

func TestTrimTrimsSurroundingWhitespace(t *testing.T) {
	input := "  say hello  "
	got := Trim(input)
	want := "say hello"
	if got != want {
		t.Fatalf("Trim(%q) = %q, want %q", input, got, want)
	}
}

func TestTrimLeavesInternalWhitespaceAlone(t *testing.T) {
	input := "say\thello"
	got := Trim(input)
	if got != input {
		t.Fatalf("Trim(%q) = %q, want unchanged", input, got)
	}
}
