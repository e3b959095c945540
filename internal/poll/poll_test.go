package poll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"scribe/internal/poll"
)

func noSleep(delays *[]time.Duration) poll.Option {
	return poll.WithSleep(func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	})
}

func TestUntilReturnsFirstReadyValue(t *testing.T) {
	calls := 0
	var delays []time.Duration
	value, err := poll.Until(context.Background(), 20, func(context.Context) (string, bool, error) {
		calls++
		return "ready", true, nil
	}, noSleep(&delays))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "ready" {
		t.Fatalf("unexpected value %q", value)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one producer call, got %d", calls)
	}
	if len(delays) != 0 {
		t.Fatalf("expected no sleeps on immediate success, got %v", delays)
	}
}

func TestUntilDelaySequenceIsLinear(t *testing.T) {
	calls := 0
	var delays []time.Duration
	_, err := poll.Until(context.Background(), 4, func(context.Context) (int, bool, error) {
		calls++
		return 0, false, nil
	}, noSleep(&delays))
	if !errors.Is(err, poll.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected exactly 4 producer calls, got %d", calls)
	}
	want := []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), delays)
	}
	for i, d := range want {
		if delays[i] != d {
			t.Fatalf("sleep %d: got %v, want %v", i, delays[i], d)
		}
	}
}

func TestUntilSucceedsMidway(t *testing.T) {
	calls := 0
	var delays []time.Duration
	value, err := poll.Until(context.Background(), 20, func(context.Context) (int, bool, error) {
		calls++
		if calls == 3 {
			return 42, true, nil
		}
		return 0, false, nil
	}, noSleep(&delays))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 42 {
		t.Fatalf("unexpected value %d", value)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(delays) != 2 {
		t.Fatalf("expected 2 sleeps before success, got %v", delays)
	}
}

func TestUntilJoinsLastProducerError(t *testing.T) {
	boom := errors.New("boom")
	var delays []time.Duration
	_, err := poll.Until(context.Background(), 2, func(context.Context) (int, bool, error) {
		return 0, false, boom
	}, noSleep(&delays))
	if !errors.Is(err, poll.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected producer error joined, got %v", err)
	}
}

func TestUntilHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := poll.Until(ctx, 20, func(context.Context) (int, bool, error) {
		calls++
		cancel()
		return 0, false, nil
	}, poll.WithSleep(func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cancellation after first call, got %d calls", calls)
	}
}

func TestUntilLinearBackoffWithCustomBase(t *testing.T) {
	var delays []time.Duration
	_, err := poll.Until(context.Background(), 3, func(context.Context) (int, bool, error) {
		return 0, false, nil
	}, poll.WithBaseDelay(time.Millisecond), noSleep(&delays))
	if !errors.Is(err, poll.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond}
	for i, d := range want {
		if delays[i] != d {
			t.Fatalf("sleep %d: got %v, want %v", i, delays[i], d)
		}
	}
}
