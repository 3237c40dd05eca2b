package mq

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload_BatchPending(t *testing.T) {
	id := uuid.New()
	body, err := json.Marshal(NewMessage(MessageTypeBatchPending, BatchPendingPayload{BatchID: id}))
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(body, &msg))

	payload, err := ParsePayload[BatchPendingPayload](&msg)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeBatchPending, msg.Type)
	assert.Equal(t, id, payload.BatchID)
}

func TestParsePayload_WrongShape(t *testing.T) {
	msg := &Message{Payload: map[string]any{"batch_id": 42}}

	_, err := ParsePayload[BatchPendingPayload](msg)
	assert.Error(t, err)
}

func TestTopology_PendingQueueHasDLQ(t *testing.T) {
	bindings := topology()
	require.Len(t, bindings, 2)

	pending := bindings[0]
	assert.Equal(t, QueueBatchesPending, pending.queue)
	assert.Equal(t, string(ExchangeDLQ), pending.args["x-dead-letter-exchange"])
	assert.Nil(t, bindings[1].args)
}
