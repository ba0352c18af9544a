package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestSendEmailHandlerLogsDelivery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := NewSendEmailHandler(logger)

	task, err := NewSendEmailTask(SendEmailPayload{To: "pm@buildflow.com", Subject: "Bill approved"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Contains(t, buf.String(), "pm@buildflow.com")
}

func TestSendEmailHandlerSkipsMalformedPayload(t *testing.T) {
	handler := NewSendEmailHandler(nil)
	err := handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
