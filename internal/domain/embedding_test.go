package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result    EmbeddingResult
	err       error
	got       string
	healthErr error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func (s *stubEmbedder) HealthCheck(_ context.Context) error { return s.healthErr }

type plainEmbedder struct{}

func (plainEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	return EmbeddingResult{}, nil
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "Represent this role for retrieving candidate profiles: ")

	result, err := emb.Embed(context.Background(), "Senior React Developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "Represent this role for retrieving candidate profiles: Senior React Developer" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	emb := NewInstructionEmbedder(&stubEmbedder{err: innerErr}, "q: ")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestInstructionEmbedder_EmptyInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.5}}}
	emb := NewInstructionEmbedder(inner, "")

	if _, err := emb.Embed(context.Background(), "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "test" {
		t.Errorf("expected 'test', got %q", inner.got)
	}
}

func TestInstructionEmbedder_HealthCheck(t *testing.T) {
	down := errors.New("down")
	if err := NewInstructionEmbedder(&stubEmbedder{healthErr: down}, "").HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}
	if err := NewInstructionEmbedder(plainEmbedder{}, "").HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check should report healthy, got %v", err)
	}
}

func TestConfigurationError_Is(t *testing.T) {
	err := NewSearchFunctionNotFound("match_candidates")
	if !errors.Is(err, ErrConfiguration) {
		t.Error("expected ErrConfiguration")
	}
	if !errors.Is(err, ErrSearchFunctionNotFound) {
		t.Error("expected ErrSearchFunctionNotFound")
	}
	if errors.Is(err, ErrMissingCredential) {
		t.Error("did not expect ErrMissingCredential")
	}
	want := "configuration error: similarity search function not found: match_candidates"
	if err.Error() != want {
		t.Errorf("message: got %q, want %q", err.Error(), want)
	}

	cred := NewMissingCredential("embedding")
	if !errors.Is(cred, ErrConfiguration) || !errors.Is(cred, ErrMissingCredential) {
		t.Errorf("missing credential should match both sentinels: %v", cred)
	}
}
