package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer(t *testing.T) {
	t.Run("dequeues in insertion order", func(t *testing.T) {
		b := NewRingBuffer(4)
		b.Enqueue(Event{ClaimID: "1"})
		b.Enqueue(Event{ClaimID: "2"})

		batch := b.DequeueBatch(10)
		require.Len(t, batch, 2)
		assert.Equal(t, "1", batch[0].ClaimID)
		assert.Equal(t, "2", batch[1].ClaimID)
		assert.Equal(t, 0, b.Len())
	})

	t.Run("drops oldest when full", func(t *testing.T) {
		b := NewRingBuffer(2)
		b.Enqueue(Event{ClaimID: "1"})
		b.Enqueue(Event{ClaimID: "2"})
		b.Enqueue(Event{ClaimID: "3"})

		assert.Equal(t, 2, b.Len())
		assert.Equal(t, int64(1), b.Dropped())
		batch := b.DequeueBatch(2)
		assert.Equal(t, "2", batch[0].ClaimID)
		assert.Equal(t, "3", batch[1].ClaimID)
	})

	t.Run("partial batch wraps around", func(t *testing.T) {
		b := NewRingBuffer(3)
		for _, id := range []string{"a", "b", "c"} {
			b.Enqueue(Event{ClaimID: id})
		}
		require.Len(t, b.DequeueBatch(2), 2)
		b.Enqueue(Event{ClaimID: "d"})

		batch := b.DequeueBatch(5)
		require.Len(t, batch, 2)
		assert.Equal(t, "c", batch[0].ClaimID)
		assert.Equal(t, "d", batch[1].ClaimID)
	})

	t.Run("empty buffer", func(t *testing.T) {
		assert.Nil(t, NewRingBuffer(1).DequeueBatch(1))
	})
}
