package producer

import (
	"context"
	"errors"
	"testing"

	mock_producer "github.com/RoyceAzure/lab/ordertracker/internal/infra/producer/mock"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestKafkaLogWriterCopiesEachLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)

	var values []string
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msgs ...kafka.Message) error {
			for _, m := range msgs {
				require.Nil(t, m.Key)
				values = append(values, string(m.Value))
			}
			return nil
		}).Times(2)
	writer.EXPECT().Close().Return(nil).Times(1)

	kw := NewKafkaLogWriter(writer)
	logger := zerolog.New(kw)
	logger.Info().Str("order_id", "o1").Msg("order created")
	logger.Warn().Msg("cache miss")

	require.Len(t, values, 2)
	require.JSONEq(t, `{"level":"info","order_id":"o1","message":"order created"}`, values[0])
	require.JSONEq(t, `{"level":"warn","message":"cache miss"}`, values[1])

	require.NoError(t, kw.Close())
	require.NoError(t, kw.Close())
	_, err := kw.Write([]byte("late"))
	require.ErrorIs(t, err, ErrProducerClosed)
}

func TestKafkaLogWriterReturnsWriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mock_producer.NewMockWriter(ctrl)
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	n, err := NewKafkaLogWriter(writer).Write([]byte(`{"level":"info"}`))
	require.Error(t, err)
	require.Zero(t, n)
}
