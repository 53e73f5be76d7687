package timer

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestCountdownTicksToZero(t *testing.T) {
	var ticks []int
	expired := 0
	c := &Countdown{
		Remaining: 3,
		Interval:  time.Millisecond,
		OnTick:    func(_ context.Context, r int) { ticks = append(ticks, r) },
		OnExpire:  func(context.Context) { expired++ },
	}

	if !c.Run(context.Background()) {
		t.Fatal("Run returned false, want expiry")
	}
	if want := []int{2, 1, 0}; !reflect.DeepEqual(ticks, want) {
		t.Errorf("ticks = %v, want %v", ticks, want)
	}
	if expired != 1 {
		t.Errorf("OnExpire ran %d times, want 1", expired)
	}
}

func TestCountdownAlreadyExpired(t *testing.T) {
	expired := 0
	c := &Countdown{Remaining: 0, OnExpire: func(context.Context) { expired++ }}
	if !c.Run(context.Background()) || expired != 1 {
		t.Errorf("zero countdown should expire immediately, expired=%d", expired)
	}
}

func TestCountdownCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	expired := false
	c := &Countdown{
		Remaining: 1000,
		Interval:  time.Millisecond,
		OnTick: func(_ context.Context, r int) {
			if r == 995 {
				cancel()
			}
		},
		OnExpire: func(context.Context) { expired = true },
	}

	if c.Run(ctx) {
		t.Fatal("Run reported expiry after cancel")
	}
	if expired {
		t.Error("OnExpire ran after cancel")
	}
	if c.Remaining != 995 {
		t.Errorf("Remaining = %d, want to stop at 995", c.Remaining)
	}
}

func TestCountdownCancelOnFinalTickSkipsExpire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var ticks []int
	expired := false
	c := &Countdown{
		Remaining: 1,
		Interval:  time.Millisecond,
		OnTick: func(_ context.Context, r int) {
			ticks = append(ticks, r)
			cancel()
		},
		OnExpire: func(context.Context) { expired = true },
	}

	if c.Run(ctx) {
		t.Fatal("Run reported expiry after the tick cancelled it")
	}
	if expired {
		t.Error("OnExpire ran on a cancelled countdown")
	}
	if want := []int{0}; !reflect.DeepEqual(ticks, want) {
		t.Errorf("ticks = %v, want %v", ticks, want)
	}
}
