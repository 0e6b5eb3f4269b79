package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{ calls int }

func (f *failing) PublishEvent(context.Context, string, string, any) error {
	f.calls++
	return errors.New("broker down")
}
func (f *failing) Close() error { return nil }

func TestPublish_Records(t *testing.T) {
	rec := &Recorder{}
	Publish(context.Background(), rec, TopicOrders, "o-1", map[string]any{"type": "order_created", "items": 3})
	Publish(context.Background(), rec, TopicUsers, "u-1", map[string]any{"type": "user_signed_up"})

	got := rec.Events(TopicOrders)
	require.Len(t, got, 1)
	assert.Equal(t, "o-1", got[0].Key)
	assert.Equal(t, "order_created", got[0].Event["type"])
	assert.EqualValues(t, 3, got[0].Event["items"])
	assert.Len(t, rec.Events(""), 2)
}

func TestPublish_SwallowsErrors(t *testing.T) {
	f := &failing{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	Publish(ctx, f, TopicProducts, "p", map[string]any{"type": "product_created"})
	assert.Equal(t, 1, f.calls)

	Publish(ctx, nil, TopicProducts, "p", map[string]any{"type": "product_created"})
}
