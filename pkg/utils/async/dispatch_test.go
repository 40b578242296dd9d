package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/utils/async"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDispatch(t *testing.T) {
	t.Run("runs handler with context that outlives the caller", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		async.Dispatch(ctx, func(ctx context.Context) error {
			done <- ctx.Err()
			return nil
		})
		cancel()

		select {
		case err := <-done:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler was not executed")
		}
	})

	t.Run("logs handler error with caller logger", func(t *testing.T) {
		buf := &syncBuffer{}
		ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(buf, nil)))
		done := make(chan struct{})

		async.Dispatch(ctx, func(ctx context.Context) error {
			defer close(done)
			return errors.New("graph unavailable")
		})

		<-done
		gt.Bool(t, eventually(func() bool {
			return bytes.Contains([]byte(buf.String()), []byte("graph unavailable"))
		})).True()
	})

	t.Run("recovers from panic", func(t *testing.T) {
		buf := &syncBuffer{}
		ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(buf, nil)))

		async.Dispatch(ctx, func(ctx context.Context) error {
			panic("boom")
		})

		gt.Bool(t, eventually(func() bool {
			return bytes.Contains([]byte(buf.String()), []byte("panic in async handler"))
		})).True()
	})
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
