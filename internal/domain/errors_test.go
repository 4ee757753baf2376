package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage(t *testing.T) {
	apiErr := &Error{Kind: KindAPI, Message: "API error: 500 Internal Server Error", Status: "500"}
	wrapped := fmt.Errorf("search: %w", apiErr)

	if got := UserMessage(wrapped); got != apiErr.Message {
		t.Errorf("UserMessage = %q, want %q", got, apiErr.Message)
	}
	if got := KindOf(wrapped); got != KindAPI {
		t.Errorf("KindOf = %v, want %v", got, KindAPI)
	}
	if got := UserMessage(errors.New("boom")); got != MsgAPIError {
		t.Errorf("UserMessage(plain) = %q, want fallback", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil) = %q, want empty", got)
	}
}

func TestRouteColorClampsToLast(t *testing.T) {
	cases := map[int]string{0: "#1976D2", 1: "#388E3C", 2: "#F57C00", 3: "#F57C00", 9: "#F57C00"}
	for i, want := range cases {
		if got := RouteColor(i); got != want {
			t.Errorf("RouteColor(%d) = %q, want %q", i, got, want)
		}
	}
}
