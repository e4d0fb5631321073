package models

import (
	"strings"
	"testing"
)

func TestTitleFromMessage(t *testing.T) {
	testCases := []struct {
		name    string
		message string
		want    string
	}{
		{name: "short message kept", message: "Hello", want: "Hello"},
		{name: "exactly thirty", message: strings.Repeat("a", 30), want: strings.Repeat("a", 30)},
		{name: "truncated with ellipsis", message: strings.Repeat("b", 31), want: strings.Repeat("b", 30) + "..."},
		{name: "multibyte counted by character", message: strings.Repeat("가", 35), want: strings.Repeat("가", 30) + "..."},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := TitleFromMessage(testCase.message); got != testCase.want {
				t.Fatalf("expected %q, got %q", testCase.want, got)
			}
		})
	}
}
