package services_test

import (
	"context"
	"testing"

	"fieldinspect/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithReturnID(ctx, 42)
	ctx = services.WithStage(ctx, "Mid-season")
	ctx = services.WithSubject(ctx, "inspector-7")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ReturnIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected return id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "Mid-season" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if subject, ok := services.SubjectFromContext(ctx); !ok || subject != "inspector-7" {
		t.Fatalf("unexpected subject: %v %v", subject, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithSubject(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.SubjectFromContext(ctx); ok {
		t.Fatal("expected no subject value")
	}
	if _, ok := services.ReturnIDFromContext(ctx); ok {
		t.Fatal("expected no return id")
	}
}
