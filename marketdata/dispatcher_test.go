package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	ready   bool
	subs    map[string]map[string]bool
	sendErr error
	sent    [][]byte
}

func newFakeSubscriber(ready bool) *fakeSubscriber {
	return &fakeSubscriber{ready: ready, subs: make(map[string]map[string]bool)}
}

func (f *fakeSubscriber) sub(instrument, topic string) {
	if f.subs[instrument] == nil {
		f.subs[instrument] = make(map[string]bool)
	}
	f.subs[instrument][topic] = true
}

func (f *fakeSubscriber) Ready() bool { return f.ready }

func (f *fakeSubscriber) Subscribes(instrument, topic string) bool {
	return f.subs[instrument][topic]
}

func (f *fakeSubscriber) Send(raw []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, raw)
	return nil
}

func TestDrainOnceFansOutOnlyToMatchingReadySubscribers(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Instrument: "AAPL", Topic: "trade", Payload: []byte("trade-1")})
	q.Push(Event{Instrument: "AAPL", Topic: "orderBookL2", Payload: []byte("book-1")})
	q.Push(Event{Instrument: "MSFT", Topic: "trade", Payload: []byte("trade-msft")})

	subscribed := newFakeSubscriber(true)
	subscribed.sub("AAPL", "trade")
	subscribed.sub("AAPL", "orderBookL2")

	notReady := newFakeSubscriber(false)
	notReady.sub("AAPL", "trade")

	wrongTopic := newFakeSubscriber(true)
	wrongTopic.sub("AAPL", "orderBookL2")

	DrainOnce(q, []Subscriber{subscribed, notReady, wrongTopic})

	require.True(t, q.Empty())
	require.Len(t, subscribed.sent, 2)
	assert.Equal(t, []byte("trade-1"), subscribed.sent[0])
	assert.Equal(t, []byte("book-1"), subscribed.sent[1])

	assert.Empty(t, notReady.sent)
	require.Len(t, wrongTopic.sent, 1)
	assert.Equal(t, []byte("book-1"), wrongTopic.sent[0])
}
