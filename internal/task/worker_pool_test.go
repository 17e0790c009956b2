package task

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolExecutesTasks(t *testing.T) {
	queue := NewTaskQueue(10, discardLogger())
	pool := NewWorkerPool(queue, 2, discardLogger())

	tasks := make([]*mockTask, 5)
	for i := range tasks {
		tasks[i] = newMockTask()
		require.NoError(t, queue.Enqueue(tasks[i]))
	}

	pool.Start()
	queue.Close()
	pool.Wait()

	for _, task := range tasks {
		assert.Equal(t, int32(1), task.executed.Load())
	}
}

func TestWorkerPoolErrorHandler(t *testing.T) {
	queue := NewTaskQueue(2, discardLogger())
	pool := NewWorkerPool(queue, 1, discardLogger())

	var mu sync.Mutex
	var failed []Task
	pool.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, task)
	})

	failing := newMockTask()
	failing.execErr = errors.New("boom")
	require.NoError(t, queue.Enqueue(failing))
	require.NoError(t, queue.Enqueue(newMockTask()))

	pool.Start()
	queue.Close()
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 1)
	assert.Equal(t, failing.ID(), failed[0].ID())
}

func TestWorkerPoolSurvivesPanickingTask(t *testing.T) {
	queue := NewTaskQueue(2, discardLogger())
	pool := NewWorkerPool(queue, 1, discardLogger())

	panicking := newMockTask()
	panicking.panics = true
	healthy := newMockTask()
	require.NoError(t, queue.Enqueue(panicking))
	require.NoError(t, queue.Enqueue(healthy))

	pool.Start()
	queue.Close()
	pool.Wait()

	assert.Equal(t, int32(1), healthy.executed.Load())
}

func TestWorkerPoolStop(t *testing.T) {
	queue := NewTaskQueue(1, discardLogger())
	pool := NewWorkerPool(queue, 1, discardLogger())

	pool.Start()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker pool did not stop in time")
	}
}

func TestWorkerPoolDefaultsInvalidWorkerCount(t *testing.T) {
	pool := NewWorkerPool(NewTaskQueue(1, discardLogger()), 0, discardLogger())
	assert.Equal(t, 1, pool.workerCount)
}
