package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"message-type":"A"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeAdd, env.MessageType)

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = DecodeEnvelope([]byte(`{}`))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeAddOrModify(t *testing.T) {
	raw := []byte(`{"message-type":"A","instrument":"AAPL","order-type":"LMT","side":"B","quantity":10,"price":100}`)
	req, err := DecodeAddOrModify(raw)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", req.Instrument)
	assert.Equal(t, WireOrderTypeLimit, req.OrderType)
	assert.Equal(t, WireSideBuy, req.Side)
	assert.EqualValues(t, 10, req.Quantity)
	assert.EqualValues(t, 100, req.Price)
	assert.Nil(t, req.OrderID)
}

func TestDecodeAddOrModifyModifyCarriesOrderID(t *testing.T) {
	raw := []byte(`{"message-type":"A","instrument":"AAPL","order-type":"LMT","side":"B","quantity":10,"price":100,"order-id":7}`)
	req, err := DecodeAddOrModify(raw)
	require.NoError(t, err)
	require.NotNil(t, req.OrderID)
	assert.EqualValues(t, 7, *req.OrderID)
}

func TestDecodeAddOrModifyRejectsBadFrames(t *testing.T) {
	cases := []string{
		`{"message-type":"A","order-type":"LMT","side":"B","quantity":10,"price":100}`,            // missing instrument
		`{"message-type":"A","instrument":"X","order-type":"FOO","side":"B","quantity":10}`,        // bad order-type
		`{"message-type":"A","instrument":"X","order-type":"LMT","side":"Q","quantity":10}`,        // bad side
		`{"message-type":"A","instrument":"X","order-type":"LMT","side":"B","quantity":0}`,         // bad quantity
		`{"message-type":"A","instrument":"X","order-type":"LMT","side":"B","quantity":1,"price":0}`, // limit needs price
	}
	for _, raw := range cases {
		_, err := DecodeAddOrModify([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedFrame, raw)
	}
}

func TestDecodeCancel(t *testing.T) {
	req, err := DecodeCancel([]byte(`{"message-type":"X","instrument":"AAPL","order-id":3}`))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", req.Instrument)
	assert.EqualValues(t, 3, req.OrderID)

	_, err = DecodeCancel([]byte(`{"message-type":"X","order-id":3}`))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeSubscribe(t *testing.T) {
	req, err := DecodeSubscribe([]byte(`{"args":["orderBookL2:AAPL","trade:AAPL"]}`))
	require.NoError(t, err)
	assert.Len(t, req.Args, 2)

	_, err = DecodeSubscribe([]byte(`{"args":[]}`))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestParseSubscriptionArgs(t *testing.T) {
	subs := ParseSubscriptionArgs([]string{"orderBookL2:AAPL", "trade:MSFT", "garbage", "bogusTopic:XYZ"})
	require.Len(t, subs, 2)
	assert.Equal(t, Subscription{Topic: TopicOrderBookL2, Instrument: "AAPL"}, subs[0])
	assert.Equal(t, Subscription{Topic: TopicTrade, Instrument: "MSFT"}, subs[1])
}

func TestSideAndOrderTypeRoundTrip(t *testing.T) {
	for _, s := range []string{WireSideBuy, WireSideSell} {
		side, err := SideFromWire(s)
		require.NoError(t, err)
		assert.Equal(t, s, SideToWire(side))
	}
	for _, ot := range []string{WireOrderTypeLimit, WireOrderTypeMarket} {
		parsed, err := OrderTypeFromWire(ot)
		require.NoError(t, err)
		assert.Equal(t, ot, OrderTypeToWire(parsed))
	}

	_, err := SideFromWire("Q")
	assert.ErrorIs(t, err, ErrMalformedFrame)
	_, err = OrderTypeFromWire("FOO")
	assert.ErrorIs(t, err, ErrMalformedFrame)
}
