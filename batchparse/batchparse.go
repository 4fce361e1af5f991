// Package batchparse parses many source files in parallel, one arena
// per file, with no shared mutable state across files. It is
// the concurrency harness around parser.ParseModule: fan out over a
// bounded worker group, recover panics per file, and report results in
// input order.
package batchparse

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/lexer"
	"github.com/Tangerg/pyflow/parser"
	"github.com/Tangerg/pyflow/pkg/safe"
	psync "github.com/Tangerg/pyflow/pkg/sync"
)

// Source is one file to parse.
type Source struct {
	Path    string
	Content string
	Mode    parser.Mode
}

// Result is the outcome for one source: the arena-owned AST plus the
// accumulated diagnostics, or Err when the worker itself failed (a
// recovered panic — never a parse error, which is always expressed as
// diagnostics).
type Result struct {
	Path        string
	AST         *ast.ModuleAST
	Diagnostics []diag.Diagnostic
	Err         error
}

// Runner parses batches of files. The zero value is usable: unlimited
// concurrency, a quiet logger, direct goroutines.
type Runner struct {
	// Concurrency bounds the number of files parsed at once; <= 0
	// means one goroutine per file.
	Concurrency int
	// Logger receives a debug line at the start and at the end of each
	// run, and one error line per recovered panic.
	Logger logrus.FieldLogger
	// Pool, when set, supplies the goroutines (any of the pkg/sync
	// pool adapters: ants, workerpool, conc, or plain go).
	Pool psync.Pool
}

// Run parses every source and returns results in input order. A
// cancelled context stops dispatching new files; files already being
// parsed run to completion (a single parse has no suspension points).
func (r *Runner) Run(ctx context.Context, sources []Source) []Result {
	logger := r.Logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	runLog := logger.WithFields(logrus.Fields{
		"component": "batchparse",
		"run_id":    uuid.NewString(),
		"files":     len(sources),
	})
	runLog.Debug("starting parse run")

	results := make([]Result, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	if r.Concurrency > 0 {
		g.SetLimit(r.Concurrency)
	}

	for i, src := range sources {
		i, src := i, src
		results[i].Path = src.Path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return nil
			default:
			}
			results[i] = r.parseOne(src)
			return nil
		})
	}
	_ = g.Wait()
	runLog.Debug("parse run complete")
	return results
}

// parseOne parses a single source on its own arena, converting a
// parser panic (forbidden by contract, so any occurrence is a bug in
// this module, not in the input) into a per-file error instead of a
// process crash.
func (r *Runner) parseOne(src Source) Result {
	result := Result{Path: src.Path}
	var panicErr error
	safe.WithRecover(func() {
		stream := lexer.NewStream(src.Content)
		result.AST, result.Diagnostics = parser.ParseModule(stream, src.Mode)
	}, func(err error) {
		panicErr = err
	})()
	if panicErr != nil {
		if r.Logger != nil {
			r.Logger.WithError(panicErr).WithField("path", src.Path).Error("parser panicked")
		}
		result.Err = panicErr
	}
	return result
}

// RunOnPool is Run for callers that injected a Pool: every file is
// submitted to the pool and awaited. It exists because pool adapters
// expose Submit rather than errgroup semantics.
func (r *Runner) RunOnPool(ctx context.Context, sources []Source) []Result {
	if r.Pool == nil {
		return r.Run(ctx, sources)
	}
	results := make([]Result, len(sources))
	done := make(chan int, len(sources))
	dispatched := 0
	for i, src := range sources {
		select {
		case <-ctx.Done():
			results[i] = Result{Path: src.Path, Err: ctx.Err()}
			continue
		default:
		}
		i, src := i, src
		if err := r.Pool.Submit(func() {
			results[i] = r.parseOne(src)
			done <- i
		}); err != nil {
			results[i] = Result{Path: src.Path, Err: err}
			continue
		}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-done
	}
	return results
}
