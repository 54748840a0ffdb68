package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// PubSub is a mock implementation of the mqtt.PubSub interface for testing.
type PubSub struct {
	mock.Mock
}

func (m *PubSub) Publish(ctx context.Context, topic string, msg any) error {
	args := m.Called(ctx, topic, msg)

	return args.Error(0)
}

func (m *PubSub) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
