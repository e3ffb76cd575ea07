package mailer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/pkg/mailer"
)

type failingSender struct{}

func (failingSender) Send(context.Context, *mailer.Email) error { return errors.New("rate limited") }

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	t.Run("renders markdown", func(t *testing.T) {
		t.Parallel()

		rec := &mailer.Recorder{}
		m := mailer.New(rec, mailer.Recipient("Academy", "noreply@academy.uz"))
		err := m.Send(context.Background(), mailer.Message{
			To:       []string{"admin@academy.uz"},
			Subject:  "New contact message",
			Markdown: "**From:** Ali",
			ReplyTo:  "ali@example.com",
		})
		require.NoError(t, err)

		sent := rec.Sent()
		require.Len(t, sent, 1)
		require.Equal(t, "Academy <noreply@academy.uz>", sent[0].From)
		require.Contains(t, sent[0].HTML, "<strong>From:</strong> Ali")
		require.Equal(t, "**From:** Ali", sent[0].Text)
		require.Equal(t, "ali@example.com", sent[0].ReplyTo)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		m := mailer.New(&mailer.Recorder{}, "")
		require.ErrorIs(t, m.Send(context.Background(), mailer.Message{Subject: "s", Markdown: "x"}), mailer.ErrNoRecipient)
		require.ErrorIs(t, m.Send(context.Background(), mailer.Message{To: []string{"a@b.c"}, Markdown: "x"}), mailer.ErrNoSubject)
		require.ErrorIs(t, m.Send(context.Background(), mailer.Message{To: []string{"a@b.c"}, Subject: "s"}), mailer.ErrNoContent)
	})

	t.Run("sender failure wrapped", func(t *testing.T) {
		t.Parallel()

		m := mailer.New(failingSender{}, "")
		err := m.Send(context.Background(), mailer.Message{To: []string{"a@b.c"}, Subject: "s", Markdown: "x"})
		require.ErrorIs(t, err, mailer.ErrSendFailed)
	})
}

func TestNoop(t *testing.T) {
	t.Parallel()
	require.NoError(t, mailer.Noop{}.Send(context.Background(), &mailer.Email{}))
}
