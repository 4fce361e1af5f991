package resolve

import (
	psync "github.com/Tangerg/pyflow/pkg/sync"
)

// ResolveAsync runs a query on a background goroutine and returns a
// cancellable future for it. The outer scheduler may Cancel the future
// to drop an in-flight query and discard its partial result; the memo
// table is still populated by the underlying walk, so a repeated query
// after cancellation is cheap.
func (r *Resolver) ResolveAsync(importingFile, name string, mode Mode) *psync.Future[*ResolvedModule] {
	return psync.Run(func(cancel <-chan struct{}) (*ResolvedModule, error) {
		select {
		case <-cancel:
			return nil, psync.ErrCancelled
		default:
		}
		module, _ := r.Resolve(importingFile, name, mode)
		return module, nil
	})
}
