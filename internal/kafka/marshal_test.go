package kafka

import (
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notice struct {
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
}

func TestUnwrapPayload(t *testing.T) {
	raw := json.RawMessage(`{"order_id":"o-1","total":945}`)

	n, err := UnwrapPayload[notice](raw)
	require.NoError(t, err)
	assert.Equal(t, notice{OrderID: "o-1", Total: 945}, n)

	_, err = UnwrapPayload[notice](json.RawMessage(`{"order_id":`))
	assert.Error(t, err)
}

func TestHeader(t *testing.T) {
	m := kafka.Message{Headers: []kafka.Header{
		{Key: HeaderEventType, Value: []byte("OrderSettled")},
		{Key: HeaderEventVersion, Value: []byte("1")},
	}}
	assert.Equal(t, "OrderSettled", Header(m, HeaderEventType))
	assert.Equal(t, "", Header(m, "missing"))
}

func TestMustMarshalPanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
	assert.JSONEq(t, `{"order_id":"o-1","total":1}`, string(MustMarshal(notice{OrderID: "o-1", Total: 1})))
}
