package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestFetch_TransientRetriedOnce(t *testing.T) {
	attempts := 0
	result, failure := Fetch(context.Background(), time.Second, func(ctx context.Context) (string, *Failure) {
		attempts++
		if attempts == 1 {
			return "", &Failure{Kind: KindTransient, Source: "test", Err: errors.New("connection reset")}
		}
		return "ok", nil
	})

	if failure != nil {
		t.Fatalf("retry should have succeeded, got %v", failure)
	}
	if result != "ok" {
		t.Errorf("unexpected result %q", result)
	}
	if attempts != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestFetch_TransientRetriedAtMostOnce(t *testing.T) {
	attempts := 0
	_, failure := Fetch(context.Background(), time.Second, func(ctx context.Context) (int, *Failure) {
		attempts++
		return 0, &Failure{Kind: KindTransient, Source: "test", Err: errors.New("still down")}
	})

	if failure == nil {
		t.Fatal("expected a failure")
	}
	if attempts != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestFetch_BadQueryNotRetried(t *testing.T) {
	attempts := 0
	_, failure := Fetch(context.Background(), time.Second, func(ctx context.Context) (int, *Failure) {
		attempts++
		return 0, &Failure{Kind: KindBadQuery, Source: "test", Err: errors.New("404")}
	})

	if failure == nil || failure.Kind != KindBadQuery {
		t.Fatalf("expected bad query failure, got %v", failure)
	}
	if attempts != 1 {
		t.Errorf("bad query must not be retried, got %d attempts", attempts)
	}
}

func TestFetch_TimeoutNotRetried(t *testing.T) {
	attempts := 0
	_, failure := Fetch(context.Background(), time.Second, func(ctx context.Context) (int, *Failure) {
		attempts++
		return 0, &Failure{Kind: KindTimeout, Source: "test", Err: context.DeadlineExceeded}
	})

	if failure == nil || failure.Kind != KindTimeout {
		t.Fatalf("expected timeout failure, got %v", failure)
	}
	if attempts != 1 {
		t.Errorf("timeout must not be retried, got %d attempts", attempts)
	}
}

func TestFetch_ExhaustedBudgetBecomesTimeout(t *testing.T) {
	attempts := 0
	_, failure := Fetch(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, *Failure) {
		attempts++
		<-ctx.Done()
		return 0, &Failure{Kind: KindTransient, Source: "test", Err: errors.New("slow")}
	})

	if failure == nil {
		t.Fatal("expected a failure")
	}
	if failure.Kind != KindTimeout {
		t.Errorf("transient failure past the budget should become a timeout, got %s", failure.Kind)
	}
	if attempts != 1 {
		t.Errorf("no budget remained for a retry, got %d attempts", attempts)
	}
}

func TestFetch_RespectsDeadlineInContext(t *testing.T) {
	start := time.Now()
	_, failure := Fetch(context.Background(), 50*time.Millisecond, func(ctx context.Context) (int, *Failure) {
		select {
		case <-time.After(5 * time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ClassifyError("test", ctx.Err())
		}
	})

	if time.Since(start) > time.Second {
		t.Fatal("fetch ignored its budget")
	}
	if failure == nil || failure.Kind != KindTimeout {
		t.Errorf("expected timeout, got %v", failure)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected FailureKind
	}{
		{http.StatusBadRequest, KindBadQuery},
		{http.StatusNotFound, KindBadQuery},
		{http.StatusTooManyRequests, KindBadQuery},
		{http.StatusInternalServerError, KindTransient},
		{http.StatusBadGateway, KindTransient},
	}

	for _, tt := range tests {
		if got := ClassifyStatus("test", tt.status).Kind; got != tt.expected {
			t.Errorf("status %d: expected %s, got %s", tt.status, tt.expected, got)
		}
	}
}

func TestClassifyError(t *testing.T) {
	if got := ClassifyError("test", context.DeadlineExceeded).Kind; got != KindTimeout {
		t.Errorf("deadline should classify as timeout, got %s", got)
	}
	if got := ClassifyError("test", errors.New("connection refused")).Kind; got != KindTransient {
		t.Errorf("connection error should classify as transient, got %s", got)
	}
}
