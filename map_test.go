package sharedexec

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// itoaFunc converts its single argument to a string, optionally sleeping
// first so completion order differs from input order.
func itoaFunc(delays map[int]time.Duration) MapFunc {
	return func(ctx context.Context, args ...any) (any, error) {
		n := args[0].(int)
		if d, ok := delays[n]; ok {
			time.Sleep(d)
		}
		return strconv.Itoa(n), nil
	}
}

func collectStrings(t *testing.T, res *Results) []string {
	t.Helper()
	out := make([]string, 0, res.Len())
	for res.Next() {
		out = append(out, res.Value().(string))
	}
	return out
}

func TestExecutor_Map_OrderPreserved(t *testing.T) {
	e, err := New(WithWorkers(3))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer e.Shutdown(true)

	// The middle element finishes last; output order must not change.
	fn := itoaFunc(map[int]time.Duration{1: 80 * time.Millisecond})

	res, err := e.Map(context.Background(), fn, []any{3, 1, 2})
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	got := collectStrings(t, res)
	if err := res.Err(); err != nil {
		t.Fatalf("unexpected iteration error: %v", err)
	}

	want := []string{"3", "1", "2"}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestExecutor_Map_ZipStopsAtShortest(t *testing.T) {
	e, err := New(WithWorkers(2))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer e.Shutdown(true)

	add := func(ctx context.Context, args ...any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	}

	res, err := e.Map(context.Background(), add, []any{1, 2, 3, 4}, []any{10, 20})
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	var got []int
	for res.Next() {
		got = append(got, res.Value().(int))
	}
	if err := res.Err(); err != nil {
		t.Fatalf("unexpected iteration error: %v", err)
	}

	want := []int{11, 22}
	if len(got) != len(want) {
		t.Fatalf("expected %d results (shortest iterable), got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestExecutor_Map_TaskErrorSurfacesInOrder(t *testing.T) {
	e, err := New(WithWorkers(3))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer e.Shutdown(true)

	taskErr := errors.New("element two failed")
	fn := func(ctx context.Context, args ...any) (any, error) {
		n := args[0].(int)
		if n == 2 {
			return nil, taskErr
		}
		return n, nil
	}

	res, err := e.Map(context.Background(), fn, []any{1, 2, 3})
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	// Element one is consumable; the failure surfaces when its slot is
	// reached, not at submission time.
	if !res.Next() {
		t.Fatalf("expected first result, iteration ended with %v", res.Err())
	}
	if res.Value() != 1 {
		t.Errorf("expected 1, got %v", res.Value())
	}

	if res.Next() {
		t.Error("iteration should stop at the failed element")
	}
	if !errors.Is(res.Err(), taskErr) {
		t.Errorf("expected the task's own error, got %v", res.Err())
	}

	// Single pass: the iterator stays exhausted.
	if res.Next() {
		t.Error("iterator advanced after failure")
	}
}

func TestExecutor_Map_TimeoutDoesNotCancelTasks(t *testing.T) {
	e, err := New(WithWorkers(2))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	release := make(chan struct{})
	var slowRan atomic.Bool

	fn := func(ctx context.Context, args ...any) (any, error) {
		if args[0].(int) == 1 {
			<-release
			slowRan.Store(true)
		}
		return args[0], nil
	}

	opts := MapOptions{Timeout: 40 * time.Millisecond}
	res, err := e.MapWithOptions(context.Background(), opts, fn, []any{0, 1, 2})
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	if !res.Next() {
		t.Fatalf("expected first result before the deadline, got %v", res.Err())
	}
	if res.Next() {
		t.Fatal("expected iteration to fail at the blocked element")
	}
	if !errors.Is(res.Err(), ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", res.Err())
	}

	// The timed-out task was not cancelled. Releasing it and draining the
	// pool shows it still ran to completion.
	close(release)
	e.Shutdown(true)

	if !slowRan.Load() {
		t.Error("timed-out task should have kept running to completion")
	}
}

func TestExecutor_Map_ReadyResultBeatsExpiredDeadline(t *testing.T) {
	e, err := New(WithWorkers(1))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer e.Shutdown(true)

	fn := itoaFunc(nil)
	opts := MapOptions{Timeout: 20 * time.Millisecond}
	res, err := e.MapWithOptions(context.Background(), opts, fn, []any{7})
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	// Let the deadline lapse with the result already recorded; a finished
	// slot is still consumable.
	time.Sleep(50 * time.Millisecond)

	if !res.Next() {
		t.Fatalf("expected finished result despite expired deadline, got %v", res.Err())
	}
	if res.Value() != "7" {
		t.Errorf("expected %q, got %v", "7", res.Value())
	}
}

func TestExecutor_Map_ChunkSizes(t *testing.T) {
	tests := []struct {
		name  string
		chunk int
	}{
		{name: "chunk 1", chunk: 1},
		{name: "chunk 2", chunk: 2},
		{name: "chunk larger than input", chunk: 16},
		{name: "chunk 0 means 1", chunk: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(WithWorkers(4))
			if err != nil {
				t.Fatalf("failed to create executor: %v", err)
			}
			defer e.Shutdown(true)

			fn := itoaFunc(map[int]time.Duration{2: 40 * time.Millisecond})
			input := []any{5, 2, 9, 0, 4}

			opts := MapOptions{ChunkSize: tt.chunk}
			res, err := e.MapWithOptions(context.Background(), opts, fn, input)
			if err != nil {
				t.Fatalf("map failed: %v", err)
			}

			got := collectStrings(t, res)
			if err := res.Err(); err != nil {
				t.Fatalf("unexpected iteration error: %v", err)
			}

			want := []string{"5", "2", "9", "0", "4"}
			if len(got) != len(want) {
				t.Fatalf("expected %d results, got %d", len(want), len(got))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("result %d: expected %q, got %q", i, want[i], got[i])
				}
			}
		})
	}
}

func TestExecutor_Map_Validation(t *testing.T) {
	e, err := New(WithWorkers(1))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer e.Shutdown(true)

	ctx := context.Background()
	fn := itoaFunc(nil)

	tests := []struct {
		name        string
		run         func() (*Results, error)
		errContains string
	}{
		{
			name: "nil function",
			run: func() (*Results, error) {
				return e.Map(ctx, nil, []any{1})
			},
			errContains: "nil",
		},
		{
			name: "no iterables",
			run: func() (*Results, error) {
				return e.Map(ctx, fn)
			},
			errContains: "at least one iterable",
		},
		{
			name: "negative chunk size",
			run: func() (*Results, error) {
				return e.MapWithOptions(ctx, MapOptions{ChunkSize: -1}, fn, []any{1})
			},
			errContains: "chunk size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if res != nil {
				t.Error("expected nil results on error")
			}
			if !contains(err.Error(), tt.errContains) {
				t.Errorf("expected error to contain %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func TestExecutor_Map_EmptyInput(t *testing.T) {
	e, err := New(WithWorkers(1))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	defer e.Shutdown(true)

	res, err := e.Map(context.Background(), itoaFunc(nil), []any{})
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}
	if res.Len() != 0 {
		t.Errorf("expected 0 elements, got %d", res.Len())
	}
	if res.Next() {
		t.Error("expected no results for empty input")
	}
	if err := res.Err(); err != nil {
		t.Errorf("expected nil error after empty traversal, got %v", err)
	}
}

func TestExecutor_Map_AfterShutdown(t *testing.T) {
	e, err := New(WithWorkers(1))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	e.Shutdown(true)

	_, err = e.Map(context.Background(), itoaFunc(nil), []any{1, 2})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestExecutor_Map_ContextCanceled(t *testing.T) {
	e, err := New(WithWorkers(1))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	release := make(chan struct{})
	fn := func(ctx context.Context, args ...any) (any, error) {
		<-release
		return args[0], nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	res, err := e.Map(ctx, fn, []any{1, 2})
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if res.Next() {
		t.Error("expected iteration to stop on context cancellation")
	}
	if !errors.Is(res.Err(), context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err())
	}

	close(release)
	e.Shutdown(true)
}
