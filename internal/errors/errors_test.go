package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "A100",
			wantMsg: "No arkos.json found",
			wantCat: CategoryConfig,
		},
		{
			name:    "entry point error",
			code:    "A110",
			wantMsg: "Application entry point not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "env error",
			code:    "A141",
			wantMsg: "Required environment variable missing",
			wantCat: CategoryEnv,
		},
		{
			name:    "unknown error code",
			code:    "A999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "main.go")
	if err.Message != `file "main.go" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code should be empty, got %q", err.Code)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := New("A140").Wrap(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "A160") != nil {
		t.Error("FromError(nil) should return nil")
	}

	ae := New("A110")
	if got := FromError(ae, "A160"); got != ae {
		t.Error("FromError should pass through an existing ArkosError")
	}

	plain := errors.New("boom")
	got := FromError(plain, "A160")
	if got.Code != "A160" {
		t.Errorf("Code = %q, want A160", got.Code)
	}
	if !errors.Is(got, plain) {
		t.Error("FromError should wrap the original error")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("A110").
		WithDetail("Looked for main.go in the project root").
		WithSuggestion("Set \"entry\" in arkos.json")

	out := err.Format()
	for _, want := range []string{
		"ERROR A110:",
		"Application entry point not found",
		"Looked for main.go",
		"Hint: Set \"entry\" in arkos.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestErrorString(t *testing.T) {
	if got := New("A160").Error(); got != "A160: Build failed" {
		t.Errorf("Error() = %q", got)
	}
	if got := Newf(CategoryBuild, "plain").Error(); got != "plain" {
		t.Errorf("Error() = %q", got)
	}
}
