package queue

import (
	"context"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/mailer"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}
func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func TestDispatch(t *testing.T) {
	logger := helpers.NewDiscardLogger()
	body := []byte(`{"to":"ann@example.com","template":"welcome","data":{"Name":"Ann"}}`)

	testCases := []struct {
		description string
		body        []byte
		handlerErr  error
		wantAck     bool
		wantRequeue bool
	}{
		{"handled", body, nil, true, false},
		{"malformed body is dropped", []byte(`{not json`), nil, false, false},
		{"bad job is dropped", body, fmt.Errorf("render: %w", mailer.ErrBadJob), false, false},
		{"transient failure is requeued", body, fmt.Errorf("mailgun: 503"), false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			rec := &ackRecorder{}
			var got mailer.EmailJob
			handle := func(_ context.Context, job mailer.EmailJob) error {
				got = job
				return tc.handlerErr
			}

			dispatch(context.Background(), amqp.Delivery{Acknowledger: rec, DeliveryTag: 1, Body: tc.body}, handle, logger)

			assert.Equal(t, tc.wantAck, rec.acked)
			assert.Equal(t, !tc.wantAck, rec.nacked)
			assert.Equal(t, tc.wantRequeue, rec.requeue)
			if tc.wantAck {
				require.Equal(t, "ann@example.com", got.To)
				assert.Equal(t, "Ann", got.Data["Name"])
			}
		})
	}
}
