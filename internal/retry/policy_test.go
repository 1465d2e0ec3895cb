package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/docnav/internal/config"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != config.RetryBackoffLinear {
		t.Fatalf("expected linear default mode got %s", p.Mode)
	}
	if p.MaxRetries != 0 {
		t.Fatalf("expected no retries by default got %d", p.MaxRetries)
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Mode != config.RetryBackoffFixed {
		t.Fatalf("expected fixed mode got %s", p.Mode)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected maxRetries 5 got %d", p.MaxRetries)
	}
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	linear := NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	cases := []struct {
		attempt int
		want    time.Duration
	}{{1, 100 * time.Millisecond}, {2, 200 * time.Millisecond}, {3, 250 * time.Millisecond}}
	for _, c := range cases {
		if got := linear.Delay(c.attempt); got != c.want {
			t.Fatalf("linear attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}

	exp := NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	expCases := []struct {
		attempt int
		want    time.Duration
	}{{1, 50 * time.Millisecond}, {2, 100 * time.Millisecond}, {3, 160 * time.Millisecond}}
	for _, c := range expCases {
		if got := exp.Delay(c.attempt); got != c.want {
			t.Fatalf("exp attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}

	if d := linear.Delay(0); d != 0 {
		t.Fatalf("attempt 0 expected 0 got %v", d)
	}
}

// TestValidate covers validation error paths.
func TestValidate(t *testing.T) {
	if err := (Policy{Initial: 0, Max: time.Second}).Validate(); err == nil {
		t.Fatalf("expected error for zero initial")
	}
	if err := (Policy{Initial: time.Second, Max: 2 * time.Second, MaxRetries: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative retries")
	}
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestDoRetriesOnlyTransientErrors(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)

	calls := 0
	err := p.Do(context.Background(), func(int) error {
		calls++
		if calls < 3 {
			return ferrors.NetworkError("connection reset").Build()
		}
		return nil
	}, nil)
	if err != nil || calls != 3 {
		t.Fatalf("expected success after 3 calls, got err=%v calls=%d", err, calls)
	}

	calls = 0
	err = p.Do(context.Background(), func(int) error {
		calls++
		return ferrors.NotFoundError("missing").Build()
	}, nil)
	if err == nil || calls != 1 {
		t.Fatalf("not found must not be retried, calls=%d", calls)
	}

	calls = 0
	plain := errors.New("plain")
	if err := p.Do(context.Background(), func(int) error { calls++; return plain }, nil); !errors.Is(err, plain) || calls != 1 {
		t.Fatalf("unclassified errors must not be retried, calls=%d", calls)
	}
}

func TestDoHonorsMaxRetriesAndContext(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls, retries := 0, 0
	_ = p.Do(context.Background(), func(int) error {
		calls++
		return ferrors.NetworkError("down").Build()
	}, func(int, error) { retries++ })
	if calls != 3 || retries != 2 {
		t.Fatalf("expected 3 calls and 2 retries got %d/%d", calls, retries)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
	calls = 0
	_ = slow.Do(ctx, func(int) error {
		calls++
		return ferrors.NetworkError("down").Build()
	}, nil)
	if calls != 1 {
		t.Fatalf("canceled context must stop retries, calls=%d", calls)
	}
}
