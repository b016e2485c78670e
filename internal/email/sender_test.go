package email

import (
	"context"
	"log/slog"
	"testing"

	"taskhub/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewSenderFromConfig(t *testing.T) {
	logger := slog.Default()

	sender := NewSenderFromConfig(&config.Config{}, logger)
	assert.IsType(t, &LogSender{}, sender)

	sender = NewSenderFromConfig(&config.Config{
		SMTPHost: "smtp.example.com",
		SMTPPort: "587",
		MailFrom: "no-reply@taskhub.dev",
	}, logger)
	assert.IsType(t, &SMTPSender{}, sender)
}

func TestLogSenderNeverFails(t *testing.T) {
	sender := NewLogSender(slog.Default())
	err := sender.Send(context.Background(), Message{
		To:      "mike@example.com",
		Subject: "Thanks for joining in!",
		Body:    "Welcome to the app, Mike.",
	})
	assert.NoError(t, err)
}
