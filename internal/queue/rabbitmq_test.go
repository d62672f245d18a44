package queue

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/tasks"
	"alfredoptarigan/cv-screening/internal/testutil"
)

type fakeAcknowledger struct {
	acked    int
	nacked   int
	requeued bool
	rejected int
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.rejected++
	return nil
}

func TestDecodeTask(t *testing.T) {
	task, err := decodeTask([]byte(`{"kind":"screen_applicant","id":12}`))
	require.NoError(t, err)
	assert.Equal(t, tasks.ScreenApplicant(12), task)

	task, err = decodeTask([]byte(`{"kind":"reextract_document","id":4}`))
	require.NoError(t, err)
	assert.Equal(t, tasks.ReextractDocument(4), task)

	_, err = decodeTask([]byte(`{"kind":"reindex","id":1}`))
	assert.Error(t, err)

	_, err = decodeTask([]byte(`{"kind":"extract_document"}`))
	assert.Error(t, err)

	_, err = decodeTask([]byte(`not json`))
	assert.Error(t, err)
}

func TestHandleDelivery(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	t.Run("forwards and acks", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		local := &testutil.RecordingDispatcher{}

		handleDelivery(ctx, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"kind":"extract_document","id":3}`)}, local, log)

		assert.Equal(t, []tasks.Task{tasks.ExtractDocument(3)}, local.Tasks())
		assert.Equal(t, 1, ack.acked)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		local := &testutil.RecordingDispatcher{}

		handleDelivery(ctx, amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`{}`)}, local, log)

		assert.Empty(t, local.Tasks())
		assert.Equal(t, 1, ack.rejected)
	})

	t.Run("requeues when local dispatch fails", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		local := &testutil.RecordingDispatcher{}
		local.Fail(errors.New("worker stopped"))

		handleDelivery(ctx, amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte(`{"kind":"screen_applicant","id":4}`)}, local, log)

		assert.Equal(t, 1, ack.nacked)
		assert.True(t, ack.requeued)
		assert.Zero(t, ack.acked)
	})
}
