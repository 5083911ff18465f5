package message_test

import (
	"context"
	"testing"

	msg "github.com/reitclub/arena-booking-backend/message"
	msg_mocks "github.com/reitclub/arena-booking-backend/message/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("new messages are active with defaulted priority", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := msg_mocks.NewMockStore(ctrl)
		service := msg.NewService(store)

		store.EXPECT().CreateMessage(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, m msg.Message) (msg.Message, error) {
				require.True(t, m.IsActive)
				require.Equal(t, msg.PriorityLow, m.Priority)
				return m, nil
			}).Times(1)

		_, err := service.CreateMessage(ctx, msg.Message{Title: "Arena closed", Content: "Maintenance on Friday"})

		require.Nil(t, err)
	})

	t.Run("missing title", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := msg_mocks.NewMockStore(ctrl)
		service := msg.NewService(store)

		store.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Times(0)

		_, err := service.CreateMessage(ctx, msg.Message{Content: "no title"})

		require.ErrorIs(t, err, msg.ErrInvalidMessage)
	})

	t.Run("missing content", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := msg_mocks.NewMockStore(ctrl)
		service := msg.NewService(store)

		store.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Times(0)

		_, err := service.CreateMessage(ctx, msg.Message{Title: "no content"})

		require.ErrorIs(t, err, msg.ErrInvalidMessage)
	})

	t.Run("unknown priority", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := msg_mocks.NewMockStore(ctrl)
		service := msg.NewService(store)

		store.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Times(0)

		_, err := service.CreateMessage(ctx, msg.Message{Title: "t", Content: "c", Priority: "urgent"})

		require.ErrorIs(t, err, msg.ErrInvalidMessage)
	})
}
