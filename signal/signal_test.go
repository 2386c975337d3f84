package signal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CluelessD3v/Status/signal"
)

func TestSignal_FireInOrder(t *testing.T) {
	s := signal.New[int]()

	var got []string
	s.Connect(func(v int) { got = append(got, "a") })
	s.Connect(func(v int) { got = append(got, "b") })
	s.Connect(func(v int) { got = append(got, "c") })

	s.Fire(1)

	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 3, s.Len())
}

func TestSignal_FirePassesValue(t *testing.T) {
	s := signal.New[string]()

	var got string
	s.Connect(func(v string) { got = v })

	s.Fire("hello")
	assert.Equal(t, "hello", got)
}

func TestSignal_NoSubscribers(t *testing.T) {
	s := signal.New[int]()
	require.NotPanics(t, func() { s.Fire(42) })

	var zero signal.Signal[int]
	require.NotPanics(t, func() { zero.Fire(1) })

	called := false
	zero.Connect(func(int) { called = true })
	zero.Fire(1)
	assert.True(t, called)
}

func TestSubscription_Disconnect(t *testing.T) {
	s := signal.New[int]()

	count := 0
	sub := s.Connect(func(int) { count++ })
	assert.True(t, sub.Connected())

	s.Fire(0)
	sub.Disconnect()
	s.Fire(0)

	assert.Equal(t, 1, count)
	assert.False(t, sub.Connected())
	assert.Equal(t, 0, s.Len())

	require.NotPanics(t, sub.Disconnect)
}

func TestSignal_DisconnectDuringFire(t *testing.T) {
	s := signal.New[int]()

	var second *signal.Subscription
	calls := 0

	s.Connect(func(int) { second.Disconnect() })
	second = s.Connect(func(int) { calls++ })

	s.Fire(0)
	assert.Equal(t, 0, calls, "handler disconnected earlier in the same fire must be skipped")
	assert.Equal(t, 1, s.Len())
}

func TestSignal_ConnectDuringFire(t *testing.T) {
	s := signal.New[int]()

	late := 0
	s.Connect(func(int) {
		s.Connect(func(int) { late++ })
	})

	s.Fire(0)
	assert.Equal(t, 0, late)

	s.Fire(0)
	assert.Equal(t, 1, late)
}

func TestSignal_DisconnectAll(t *testing.T) {
	s := signal.New[int]()

	a := s.Connect(func(int) {})
	b := s.Connect(func(int) {})

	s.DisconnectAll()

	assert.Equal(t, 0, s.Len())
	assert.False(t, a.Connected())
	assert.False(t, b.Connected())
}

func TestSignal_PinSurvivesDisconnectAll(t *testing.T) {
	s := signal.New[int]()

	var seen []string
	s.Pin(func(int) { seen = append(seen, "pinned") })
	s.Connect(func(int) { seen = append(seen, "listener") })

	assert.Equal(t, 1, s.Len())

	s.Fire(1)
	s.DisconnectAll()
	s.Fire(2)

	assert.Equal(t, []string{"pinned", "listener", "pinned"}, seen)
	assert.Equal(t, 0, s.Len())
}

func TestSignal_ReentrantFire(t *testing.T) {
	s := signal.New[int]()

	var seen []int
	s.Connect(func(v int) {
		seen = append(seen, v)
		if v < 3 {
			s.Fire(v + 1)
		}
	})

	s.Fire(1)
	assert.Equal(t, []int{1, 2, 3}, seen)
}
