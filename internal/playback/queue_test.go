package playback

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewQueueValidatesBounds(t *testing.T) {
	t.Parallel()

	_, err := NewQueue(0, 4)
	require.Error(t, err)
	_, err = NewQueue(5, 4)
	require.Error(t, err)
	q, err := NewQueue(1, 1)
	require.NoError(t, err)
	require.True(t, q.Idle())
}

func TestQueuePlaysInArrivalOrderOneAtATime(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(1, 8)
	require.NoError(t, err)

	for i := byte(0); i < 5; i++ {
		q.Push([]byte{i})
	}

	var played []byte
	for {
		item, ok := q.Next(false)
		if !ok {
			break
		}
		// A second Next while playing never yields.
		_, again := q.Next(true)
		require.False(t, again)

		played = append(played, item.Data[0])
		require.True(t, q.Done(item.Gen))
	}
	require.Equal(t, []byte{0, 1, 2, 3, 4}, played)
	require.True(t, q.Idle())
}

func TestQueuePrebufferAndHighWater(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(3, 3)
	require.NoError(t, err)

	q.Push([]byte{1})
	_, ok := q.Next(false)
	require.False(t, ok)

	q.Push([]byte{2})
	q.Push([]byte{3})
	item, ok := q.Next(false)
	require.True(t, ok)
	require.Equal(t, uint64(1), item.Seq)
}

func TestQueueForceStartsBelowPrebuffer(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(4, 8)
	require.NoError(t, err)
	q.Push([]byte{1})

	item, ok := q.Next(true)
	require.True(t, ok)
	require.Equal(t, []byte{1}, item.Data)
}

func TestQueueClearRejectsStaleCompletion(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(1, 8)
	require.NoError(t, err)
	q.Push([]byte{1})
	q.Push([]byte{2})

	item, ok := q.Next(false)
	require.True(t, ok)

	q.Clear()
	require.Zero(t, q.Len())
	require.False(t, q.Playing())
	require.False(t, q.Done(item.Gen))
	require.Equal(t, uint64(1), q.Generation())
}
