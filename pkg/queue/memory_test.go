package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue[int](2)

	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	assert.ErrorIs(t, q.Enqueue(3), ErrQueueFull)
	assert.Equal(t, 2, q.Size())

	assert.Equal(t, []int{1, 2}, q.ReadAllMessages())
	assert.Nil(t, q.ReadAllMessages())

	require.NoError(t, q.Enqueue(4))
	q.ClearQueue()
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueue_concurrentProducers(t *testing.T) {
	q := NewInMemoryQueue[int](0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NoError(t, q.Enqueue(i*100+j))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, q.ReadAllMessages(), 800)
}
