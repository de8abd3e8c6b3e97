package source

import (
	"context"
	"fmt"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/table"
)

// Result is the single outcome of an asynchronous load
type Result struct {
	Table *table.Table
	Err   error
}

// LoadAsync reads path on its own goroutine. The returned channel delivers exactly one Result and
// is then closed. If ctx is done before the read finishes the result carries the context error,
// classified as LoadCancelled, and the table read is discarded.
func (l *Loader) LoadAsync(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)

		if err := ctx.Err(); err != nil {
			out <- Result{Err: fmt.Errorf("%s, %w, %w", path, err, errkind.ErrLoadCancelled)}
			return
		}

		done := make(chan Result, 1)
		go func() {
			t, err := l.Load(path)
			done <- Result{Table: t, Err: err}
		}()

		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			out <- Result{Err: fmt.Errorf("%s, %w, %w", path, ctx.Err(), errkind.ErrLoadCancelled)}
		}
	}()
	return out
}
