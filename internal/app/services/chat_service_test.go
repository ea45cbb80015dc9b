package services

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *websocket.Subscription) *websocket.Event {
	t.Helper()
	select {
	case evt, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSendDeliversInOrder(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")
	chatID := f.connect(student, mentor)

	sub, err := f.svc.Chats.Subscribe(f.ctx, mentor, chatID)
	require.NoError(t, err)
	defer sub.Close()

	var sent []string
	for _, text := range []string{"hello", "are you there?", "  thanks  "} {
		msg, err := f.svc.Chats.Send(f.ctx, student, chatID, MessageInput{Text: text})
		require.NoError(t, err)
		assert.Equal(t, []string{student.UserID}, msg.ReadBy)
		sent = append(sent, msg.ID)
	}

	for _, id := range sent {
		evt := receive(t, sub)
		assert.Equal(t, EventMessageCreated, evt.Type)
		var msg models.ChatMessage
		require.NoError(t, json.Unmarshal(evt.Payload, &msg))
		assert.Equal(t, id, msg.ID)
	}

	list, err := f.svc.Chats.ListMessages(f.ctx, mentor, chatID, 0)
	require.NoError(t, err)
	require.Len(t, list.Messages, 3)
	assert.Equal(t, "thanks", list.Messages[2].Text)
	assert.Nil(t, list.Receipt)
}

func TestSendRules(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")
	outsider := f.register("outsider", models.RoleStudent, "IT")
	chatID := f.connect(student, mentor)

	_, err := f.svc.Chats.Send(f.ctx, student, chatID, MessageInput{Text: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.Chats.Send(f.ctx, outsider, chatID, MessageInput{Text: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.Chats.Subscribe(f.ctx, outsider, chatID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.Chats.ListMessages(f.ctx, student, "no-such-chat", 0)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestReadReceiptsAndUnreadCount(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")
	chatID := f.connect(student, mentor)

	first, err := f.svc.Chats.Send(f.ctx, student, chatID, MessageInput{Text: "one"})
	require.NoError(t, err)
	second, err := f.svc.Chats.Send(f.ctx, student, chatID, MessageInput{Text: "two"})
	require.NoError(t, err)

	summary, err := f.svc.Chats.GetChat(f.ctx, mentor, chatID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.UnreadCount)
	assert.Equal(t, "two", summary.Preview)
	require.NotNil(t, summary.Other)
	assert.Equal(t, student.UserID, summary.Other.ID)

	changed, err := f.svc.Chats.MarkRead(f.ctx, mentor, chatID, first.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.Chats.MarkRead(f.ctx, mentor, chatID, first.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	list, err := f.svc.Chats.ListMessages(f.ctx, student, chatID, 0)
	require.NoError(t, err)
	require.NotNil(t, list.Receipt)
	assert.Equal(t, second.ID, list.Receipt.MessageID)
	assert.False(t, list.Receipt.Read)

	sub, err := f.svc.Chats.Subscribe(f.ctx, student, chatID)
	require.NoError(t, err)
	defer sub.Close()

	resp, err := f.svc.Chats.MarkChannelRead(f.ctx, mentor, chatID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, resp.Updated)

	evt := receive(t, sub)
	assert.Equal(t, EventMessageRead, evt.Type)
	var read ReadEvent
	require.NoError(t, json.Unmarshal(evt.Payload, &read))
	assert.Equal(t, mentor.UserID, read.ReaderID)

	list, err = f.svc.Chats.ListMessages(f.ctx, student, chatID, 0)
	require.NoError(t, err)
	assert.True(t, list.Receipt.Read)

	summary, err = f.svc.Chats.GetChat(f.ctx, mentor, chatID)
	require.NoError(t, err)
	assert.Zero(t, summary.UnreadCount)

	_, err = f.svc.Chats.MarkRead(f.ctx, mentor, chatID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestTimelineMarksDateChanges(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")
	chatID := f.connect(student, mentor)

	_, err := f.svc.Chats.Send(f.ctx, student, chatID, MessageInput{Text: "morning"})
	require.NoError(t, err)
	_, err = f.svc.Chats.Send(f.ctx, mentor, chatID, MessageInput{Text: "hi"})
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)
	_, err = f.svc.Chats.Send(f.ctx, student, chatID, MessageInput{Text: "next day"})
	require.NoError(t, err)

	list, err := f.svc.Chats.ListMessages(f.ctx, student, chatID, 0)
	require.NoError(t, err)

	kinds := make([]string, 0, len(list.Timeline))
	for _, e := range list.Timeline {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{
		models.TimelineDate, models.TimelineMessage, models.TimelineMessage,
		models.TimelineDate, models.TimelineMessage,
	}, kinds)
	assert.Equal(t, "2024.03.01", list.Timeline[0].Date)
	assert.Equal(t, "2024.03.02", list.Timeline[3].Date)
}

func TestSendImage(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")
	chatID := f.connect(student, mentor)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	msg, err := f.svc.Chats.SendImage(f.ctx, student, chatID, &Upload{
		Filename: "my photo.png",
		Size:     int64(len(png)),
		Reader:   bytes.NewReader(png),
	}, "look")
	require.NoError(t, err)
	assert.Equal(t, "look", msg.Text)
	assert.Contains(t, msg.ImageURL, "/uploads/chatImages/"+chatID+"/")
	assert.Contains(t, msg.ImageURL, "my_photo.png")

	_, err = f.svc.Chats.SendImage(f.ctx, student, chatID, &Upload{
		Filename: "notes.txt",
		Size:     5,
		Reader:   bytes.NewReader([]byte("hello")),
	}, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
