// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockTimerFiresAtDeadline(t *testing.T) {
	clock := Fake(epoch)
	timer := clock.NewTimer(5 * time.Second)

	clock.Advance(3 * time.Second)
	select {
	case <-timer.C:
		t.Fatal("timer fired before deadline")
	default:
	}

	clock.Advance(2 * time.Second)
	select {
	case fired := <-timer.C:
		if want := epoch.Add(5 * time.Second); !fired.Equal(want) {
			t.Errorf("fire time = %v, want %v", fired, want)
		}
	default:
		t.Fatal("timer did not fire at exact deadline")
	}
}

func TestFakeClockTimerNonPositiveFiresImmediately(t *testing.T) {
	clock := Fake(epoch)
	for _, d := range []time.Duration{0, -time.Second} {
		timer := clock.NewTimer(d)
		select {
		case <-timer.C:
		default:
			t.Fatalf("NewTimer(%v) should fire immediately", d)
		}
		if clock.PendingCount() != 0 {
			t.Fatalf("NewTimer(%v) registered a waiter", d)
		}
	}
}

func TestFakeClockTimerStop(t *testing.T) {
	clock := Fake(epoch)
	timer := clock.NewTimer(time.Second)

	if !timer.Stop() {
		t.Fatal("Stop on an armed timer should return true")
	}
	if timer.Stop() {
		t.Fatal("second Stop should return false")
	}

	clock.Advance(2 * time.Second)
	select {
	case <-timer.C:
		t.Fatal("stopped timer fired")
	default:
	}
}

func TestFakeClockTimerStopAfterFire(t *testing.T) {
	clock := Fake(epoch)
	timer := clock.NewTimer(time.Second)
	clock.Advance(time.Second)

	if timer.Stop() {
		t.Fatal("Stop after fire should return false")
	}
}

func TestFakeClockOneShotDoesNotRepeat(t *testing.T) {
	clock := Fake(epoch)
	timer := clock.NewTimer(time.Second)

	clock.Advance(time.Second)
	<-timer.C

	clock.Advance(time.Second)
	select {
	case <-timer.C:
		t.Fatal("one-shot timer fired twice")
	default:
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	clock := Fake(epoch)
	done := make(chan struct{})

	go func() {
		timer := clock.NewTimer(10 * time.Second)
		<-timer.C
		close(done)
	}()

	clock.WaitForTimers(1)
	clock.Advance(10 * time.Second)
	<-done
}

func TestFakeClockPendingCountExcludesStoppedAndFired(t *testing.T) {
	clock := Fake(epoch)
	first := clock.NewTimer(time.Second)
	clock.NewTimer(5 * time.Second)
	clock.NewTimer(10 * time.Second)

	if got := clock.PendingCount(); got != 3 {
		t.Fatalf("PendingCount() = %d, want 3", got)
	}

	first.Stop()
	if got := clock.PendingCount(); got != 2 {
		t.Fatalf("PendingCount() after Stop = %d, want 2", got)
	}

	clock.Advance(5 * time.Second)
	if got := clock.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() after Advance = %d, want 1", got)
	}
}

func TestFakeClockImplementsClock(t *testing.T) {
	var _ Clock = Fake(epoch)
}

func TestRealClockImplementsClock(t *testing.T) {
	var _ Clock = Real()
}

func TestFakeClockConcurrentAccess(t *testing.T) {
	clock := Fake(epoch)
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer := clock.NewTimer(time.Second)
			<-timer.C
		}()
	}

	clock.WaitForTimers(10)
	clock.Advance(time.Second)
	wg.Wait()
}
