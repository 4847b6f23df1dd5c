package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	queue := NewQueue()
	queue.Push(DetectRoot{URI: "file:///a.tex"})
	queue.Push(PublishDiagnostics{})
	queue.Push(Build{URI: "file:///a.tex"})

	batch := queue.Take()
	require.Len(t, batch, 3)
	assert.Equal(t, DetectRoot{URI: "file:///a.tex"}, batch[0])
	assert.Equal(t, PublishDiagnostics{}, batch[1])
	assert.Equal(t, Build{URI: "file:///a.tex"}, batch[2])

	assert.Empty(t, queue.Take())
}

func TestQueueDrainsToExhaustion(t *testing.T) {
	queue := NewQueue()
	queue.Push(RunLinter{URI: "file:///a.tex", Reason: LintOnSave})

	// Dispatching one action may enqueue more; the drain loop keeps going
	// until a Take returns nothing.
	var processed []Action
	for {
		batch := queue.Take()
		if len(batch) == 0 {
			break
		}
		for _, act := range batch {
			processed = append(processed, act)
			if _, ok := act.(RunLinter); ok {
				queue.Push(PublishDiagnostics{})
			}
		}
	}

	require.Len(t, processed, 2)
	assert.IsType(t, RunLinter{}, processed[0])
	assert.IsType(t, PublishDiagnostics{}, processed[1])
	assert.Empty(t, queue.Take())
}

func TestQueueTakeClears(t *testing.T) {
	queue := NewQueue()
	queue.Push(LoadConfiguration{})

	first := queue.Take()
	second := queue.Take()
	assert.Len(t, first, 1)
	assert.Empty(t, second)
}
