package dev

import (
	"strings"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		answer string
		def    bool
		want   bool
	}{
		{"", true, true},
		{"\n", true, true},
		{"", false, false},
		{"y", false, true},
		{"Y", false, true},
		{"yes", false, true},
		{"  YES  \n", false, true},
		{"n", true, false},
		{"no", true, false},
		{"whatever", true, false},
	}

	for _, tt := range tests {
		if got := ParseAnswer(tt.answer, tt.def); got != tt.want {
			t.Errorf("ParseAnswer(%q, %v) = %v, want %v", tt.answer, tt.def, got, tt.want)
		}
	}
}

func TestStdioConfirmer(t *testing.T) {
	var out strings.Builder
	c := &StdioConfirmer{In: strings.NewReader("y\n"), Out: &out}

	ok, err := c.Confirm("Generate missing types now?", true)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected yes")
	}
	if !strings.Contains(out.String(), "Generate missing types now? [Y/n]") {
		t.Errorf("prompt = %q", out.String())
	}
}

func TestStdioConfirmerDefaultOnEmptyLine(t *testing.T) {
	var out strings.Builder
	c := &StdioConfirmer{In: strings.NewReader("\n"), Out: &out}

	ok, err := c.Confirm("Proceed?", true)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("empty answer should pick the default")
	}
}
