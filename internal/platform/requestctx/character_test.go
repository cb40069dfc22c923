package requestctx

import (
	"context"
	"testing"
)

func TestCharacterIDFromContextRoundTrip(t *testing.T) {
	ctx := WithCharacterID(context.Background(), "char-42")
	if got := CharacterIDFromContext(ctx); got != "char-42" {
		t.Fatalf("CharacterIDFromContext = %q, want %q", got, "char-42")
	}
}

func TestCharacterIDFromContextEmpty(t *testing.T) {
	if got := CharacterIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := CharacterIDFromContext(nil); got != "" {
		t.Fatalf("expected empty string for nil context, got %q", got)
	}
}

func TestWithCharacterIDNilContext(t *testing.T) {
	ctx := WithCharacterID(nil, "char-1")
	if got := CharacterIDFromContext(ctx); got != "char-1" {
		t.Fatalf("CharacterIDFromContext = %q, want %q", got, "char-1")
	}
}

func TestRequestIDDefaultsToDash(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "-" {
		t.Fatalf("RequestIDFromContext = %q, want -", got)
	}
	ctx := WithRequestID(context.Background(), "req-7")
	if got := RequestIDFromContext(ctx); got != "req-7" {
		t.Fatalf("RequestIDFromContext = %q, want req-7", got)
	}
}
