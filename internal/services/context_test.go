package services_test

import (
	"context"
	"testing"

	"nutrilog/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEntryID(ctx, "abc-123")
	ctx = services.WithDomain(ctx, "meal")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.EntryIDFromContext(ctx); !ok || id != "abc-123" {
		t.Fatalf("unexpected entry id: %v %v", id, ok)
	}
	if domain, ok := services.DomainFromContext(ctx); !ok || domain != "meal" {
		t.Fatalf("unexpected domain: %v %v", domain, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithDomain(ctx, "")
	ctx = services.WithEntryID(ctx, "")
	if _, ok := services.DomainFromContext(ctx); ok {
		t.Fatal("expected blank domain to be ignored")
	}
	if _, ok := services.EntryIDFromContext(ctx); ok {
		t.Fatal("expected blank entry id to be ignored")
	}
}
