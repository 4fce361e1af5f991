package batchparse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/batchparse"
	"github.com/Tangerg/pyflow/parser"
	psync "github.com/Tangerg/pyflow/pkg/sync"
)

func sources() []batchparse.Source {
	return []batchparse.Source{
		{Path: "a.py", Content: "x = 1\n"},
		{Path: "b.py", Content: "def f():\n    return 2\n"},
		{Path: "c.py", Content: "broken = = 1\n"},
	}
}

func TestRunParsesAllFilesInInputOrder(t *testing.T) {
	runner := &batchparse.Runner{Concurrency: 2}
	results := runner.Run(context.Background(), sources())
	require.Len(t, results, 3)

	assert.Equal(t, "a.py", results[0].Path)
	assert.Equal(t, "b.py", results[1].Path)
	assert.Equal(t, "c.py", results[2].Path)

	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotNil(t, r.AST, "%s must produce an AST even when ill-formed", r.Path)
	}
	assert.Empty(t, results[0].Diagnostics)
	assert.Empty(t, results[1].Diagnostics)
	assert.NotEmpty(t, results[2].Diagnostics, "parse errors surface as diagnostics, not Err")
}

func TestArenasAreIndependent(t *testing.T) {
	runner := &batchparse.Runner{}
	results := runner.Run(context.Background(), sources())
	require.Len(t, results, 3)
	assert.NotSame(t, results[0].AST.Arena, results[1].AST.Arena,
		"each file parses into its own arena")
}

func TestRunEmptyBatch(t *testing.T) {
	runner := &batchparse.Runner{}
	assert.Empty(t, runner.Run(context.Background(), nil))
}

func TestCancelledContextSkipsRemainingFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &batchparse.Runner{Concurrency: 1}
	results := runner.Run(ctx, sources())
	require.Len(t, results, 3)
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestRunOnPool(t *testing.T) {
	runner := &batchparse.Runner{Pool: psync.Goroutines()}
	results := runner.RunOnPool(context.Background(), sources())
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotNil(t, r.AST)
	}
}

func TestNotebookModeFlowsThrough(t *testing.T) {
	runner := &batchparse.Runner{}
	results := runner.Run(context.Background(), []batchparse.Source{
		{Path: "nb.py", Content: "foo?\n", Mode: parser.InteractiveNotebook},
	})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Empty(t, results[0].Diagnostics)
}
