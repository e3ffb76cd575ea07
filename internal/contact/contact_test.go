package contact_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/internal/contact"
	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/kv"
	"github.com/dmitrymomot/academy/pkg/mailer"
)

type fixture struct {
	desk     *contact.Desk
	inbox    *notification.Inbox
	recorder *mailer.Recorder
}

func newFixture(t *testing.T, notifyTo string) fixture {
	t.Helper()
	mem := kv.NewMemory()
	inbox := notification.NewInbox(state.New[notification.Notifications](mem, notification.Key, nil, state.WithReread()))
	rec := &mailer.Recorder{}
	desk := contact.NewDesk(
		state.New[[]contact.Message](mem, contact.Key, nil),
		inbox,
		contact.WithAdmins(func(context.Context) []int { return []int{2, 5} }),
		contact.WithMailer(mailer.New(rec, "Academy <noreply@academy.uz>"), func(context.Context) string { return notifyTo }),
	)
	return fixture{desk: desk, inbox: inbox, recorder: rec}
}

func validForm() contact.Form {
	return contact.Form{
		Name:    "Bekzod",
		Email:   "bekzod@example.com",
		Subject: "Group courses",
		Message: "Do you offer evening groups for Go?",
	}
}

func TestDesk_Submit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "owner@academy.uz")

	msg, err := f.desk.Submit(ctx, validForm())
	require.NoError(t, err)
	require.False(t, msg.Handled)

	for _, admin := range []int{2, 5} {
		got := f.inbox.ForUser(ctx, admin)
		require.Len(t, got, 1)
		require.Contains(t, got[0].Title, "Bekzod")
	}
	require.Empty(t, f.inbox.ForUser(ctx, 1))

	sent := f.recorder.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"owner@academy.uz"}, sent[0].To)
	require.Equal(t, "bekzod@example.com", sent[0].ReplyTo)
	require.Contains(t, sent[0].HTML, "evening groups")

	require.Len(t, f.desk.List(ctx), 1)
	require.NoError(t, f.desk.MarkHandled(ctx, msg.ID))
	require.True(t, f.desk.List(ctx)[0].Handled)
}

func TestDesk_SubmitWithoutNotifyAddress(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "")

	_, err := f.desk.Submit(context.Background(), validForm())
	require.NoError(t, err)
	require.Empty(t, f.recorder.Sent())
}

func TestForm_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(f *contact.Form)
		want   error
	}{
		{"missing name", func(f *contact.Form) { f.Name = "<b></b>" }, contact.ErrInvalidName},
		{"bad email", func(f *contact.Form) { f.Email = "bekzod" }, contact.ErrInvalidEmail},
		{"short message", func(f *contact.Form) { f.Message = "hi" }, contact.ErrMessageTooShort},
		{"long message", func(f *contact.Form) { f.Message = strings.Repeat("a", 5001) }, contact.ErrMessageTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := validForm()
			tt.mutate(&f)
			require.ErrorIs(t, f.Validate(), tt.want)
		})
	}

	f := validForm()
	f.Message = "<script>x</script>Please call me back"
	require.NoError(t, f.Validate())
	require.Equal(t, "Please call me back", f.Message)
}
