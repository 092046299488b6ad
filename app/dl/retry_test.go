package dl

import (
	"context"
	"errors"
	"testing"

	"pixivdl/app/pixiv"
)

type fakeAuth struct {
	calls int
	err   error
}

func (f *fakeAuth) Authenticate(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	gate := NewGate(&fakeAuth{})

	calls := 0
	res, err := Retry(context.Background(), gate, "test", func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	})
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if res != 7 {
		t.Errorf("Expected 7, got %d", res)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetryTransientErrorsExhaust(t *testing.T) {
	gate := NewGate(&fakeAuth{})

	calls := 0
	_, err := Retry(context.Background(), gate, "flaky call", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("connection aborted")
	})
	if calls != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", calls)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("Expected ErrRetriesExhausted, got %v", err)
	}
}

func TestRetryTransientThenSuccess(t *testing.T) {
	gate := NewGate(&fakeAuth{})

	calls := 0
	res, err := Retry(context.Background(), gate, "test", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("timeout")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if res != "ok" || calls != 3 {
		t.Errorf("Expected success on attempt 3, got %q after %d calls", res, calls)
	}
}

func TestRetryReauthenticatesOnExpiredGrant(t *testing.T) {
	auth := &fakeAuth{}
	gate := NewGate(auth)

	calls := 0
	res, err := Retry(context.Background(), gate, "test", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &pixiv.APIError{Status: 400, Message: "error occurred at the oauth process: invalid_grant"}
		}
		return 1, nil
	})
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if res != 1 {
		t.Errorf("Expected success after re-auth, got %d", res)
	}
	if auth.calls != 1 {
		t.Errorf("Expected 1 re-authentication, got %d", auth.calls)
	}
}

func TestRetryFailsFastOnOtherAPIErrors(t *testing.T) {
	auth := &fakeAuth{}
	gate := NewGate(auth)

	calls := 0
	_, err := Retry(context.Background(), gate, "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, &pixiv.APIError{Status: 404, Message: "not found"}
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Non-auth API errors must not be retried, got %d calls", calls)
	}
	if auth.calls != 0 {
		t.Errorf("Expected no re-authentication, got %d", auth.calls)
	}
}

func TestRetryFailsFastOnAuthFailure(t *testing.T) {
	auth := &fakeAuth{err: errors.New("refresh token revoked")}
	gate := NewGate(auth)

	calls := 0
	_, err := Retry(context.Background(), gate, "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, &pixiv.APIError{Status: 400, Message: "invalid_grant"}
	})
	if err == nil {
		t.Fatal("Expected error when re-authentication fails")
	}
	if calls != 1 {
		t.Errorf("Expected no retry after failed re-auth, got %d calls", calls)
	}
}

func TestRetryFailsFastOnDecodeError(t *testing.T) {
	gate := NewGate(&fakeAuth{})

	calls := 0
	_, err := Retry(context.Background(), gate, "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, &pixiv.DecodeError{Entity: "illust", Field: "id"}
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Decode errors must not be retried, got %d calls", calls)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	gate := NewGate(&fakeAuth{})

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Retry(ctx, gate, "test", func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("interrupted")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected no retry after cancellation, got %d calls", calls)
	}
}
