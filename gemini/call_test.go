package gemini

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCallWait(t *testing.T) {
	call := newCall[*CountTokensResponse]("POST models/m:countTokens")

	go func() {
		time.Sleep(10 * time.Millisecond)
		call.complete(&CountTokensResponse{TotalTokens: 3}, nil)
	}()

	got, err := call.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got.TotalTokens != 3 {
		t.Errorf("TotalTokens = %d, want 3", got.TotalTokens)
	}
}

func TestCallDone(t *testing.T) {
	call := newCall[*Model]("GET models/m")

	select {
	case <-call.Done():
		t.Fatal("Done closed before completion")
	default:
	}

	call.complete(&Model{Name: "models/m"}, nil)

	select {
	case <-call.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after completion")
	}
}

func TestCallValueAndErr(t *testing.T) {
	call := newCall[*Model]("GET models/m")

	// Before completion both accessors return zero values.
	if got := call.Value(); got != nil {
		t.Errorf("Value() before completion = %v, want nil", got)
	}
	if err := call.Err(); err != nil {
		t.Errorf("Err() before completion = %v, want nil", err)
	}

	wantErr := errors.New("boom")
	call.complete(nil, wantErr)

	if got := call.Value(); got != nil {
		t.Errorf("Value() = %v, want nil for failed call", got)
	}
	if err := call.Err(); !errors.Is(err, wantErr) {
		t.Errorf("Err() = %v, want %v", err, wantErr)
	}
}

func TestCallCompletesOnce(t *testing.T) {
	call := newCall[*Model]("GET models/m")
	call.complete(&Model{Name: "models/first"}, nil)
	call.complete(&Model{Name: "models/second"}, errors.New("late"))

	got, err := call.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	// The first completion wins; later ones are ignored.
	if got.Name != "models/first" {
		t.Errorf("Name = %q, want models/first", got.Name)
	}
}

func TestCallWaitContextCanceled(t *testing.T) {
	call := newCall[*Model]("GET models/m")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := call.Wait(ctx)
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	if !errors.Is(err, ErrUnexpected) {
		t.Errorf("errors.Is(err, ErrUnexpected) = false, err = %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("errors.Is(err, context.Canceled) = false, err = %v", err)
	}

	// The call is still pending; a later completion reaches other waiters.
	call.complete(&Model{Name: "models/m"}, nil)
	got, err := call.Wait(context.Background())
	if err != nil || got.Name != "models/m" {
		t.Errorf("Wait after completion = (%v, %v), want the outcome", got, err)
	}
}

func TestCallManyWaiters(t *testing.T) {
	call := newCall[*CountTokensResponse]("POST models/m:countTokens")

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := call.Wait(context.Background())
			if err == nil {
				results[i] = got.TotalTokens
			}
		}(i)
	}

	call.complete(&CountTokensResponse{TotalTokens: 7}, nil)
	wg.Wait()

	for i, n := range results {
		if n != 7 {
			t.Errorf("waiter %d got %d, want 7", i, n)
		}
	}
}
