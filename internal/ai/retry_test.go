package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type flakyProvider struct {
	failures int
	calls    int
	outcome  *Outcome
}

func (p *flakyProvider) Invoke(ctx context.Context, req Request) (*Outcome, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("transient failure")
	}
	return p.outcome, nil
}

func TestWithRetry_RecoversAfterFailure(t *testing.T) {
	inner := &flakyProvider{
		failures: 1,
		outcome:  &Outcome{Reply: "ok", Directive: DirectiveContinue},
	}
	p := WithRetry(inner, RetryConfig{MaxRetries: 2, Backoff: time.Millisecond})

	out, err := p.Invoke(context.Background(), Request{Stage: "resume_fit"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out.Reply != "ok" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", inner.calls)
	}
}

func TestWithRetry_Exhaustion(t *testing.T) {
	inner := &flakyProvider{failures: 100}
	p := WithRetry(inner, RetryConfig{MaxRetries: 2, Backoff: time.Millisecond})

	_, err := p.Invoke(context.Background(), Request{Stage: "resume_fit"})
	if err == nil {
		t.Fatalf("expected error after exhaustion")
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.calls)
	}
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithRetry_InvalidOutcomeCountsAsFailure(t *testing.T) {
	// advance without a score never validates
	inner := &flakyProvider{outcome: &Outcome{Reply: "bad", Directive: DirectiveAdvance}}
	p := WithRetry(inner, RetryConfig{MaxRetries: 1})

	_, err := p.Invoke(context.Background(), Request{Stage: "resume_fit"})
	if err == nil {
		t.Fatalf("expected validation-driven failure")
	}
	if inner.calls != 2 {
		t.Fatalf("expected retry on invalid outcome, got %d calls", inner.calls)
	}
}

func TestWithRetry_CancelledParentIsNotRetried(t *testing.T) {
	inner := &flakyProvider{failures: 100}
	p := WithRetry(inner, RetryConfig{MaxRetries: 5, Backoff: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Invoke(ctx, Request{Stage: "resume_fit"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls > 1 {
		t.Fatalf("cancelled context must not retry, got %d calls", inner.calls)
	}
}
