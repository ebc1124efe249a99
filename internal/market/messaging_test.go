package market

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendMessageAndInbox(t *testing.T) {
	s, _ := newTestStore()
	a := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)
	b := register(t, s, "bob", "bob@x.com", "pw123456", RoleUser)

	_, err := s.SendMessage(a.ID, b.ID, "", MessageInfo)
	require.ErrorIs(t, err, ErrMissingField)
	_, err = s.SendMessage(a.ID, b.ID, "hi", MessageType("bogus"))
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.SendMessage(a.ID, "missing", "hi", MessageInfo)
	require.ErrorIs(t, err, ErrNotFound)

	// Empty type defaults to info.
	m, err := s.SendMessage(a.ID, b.ID, "hello", "")
	require.NoError(t, err)
	require.Equal(t, MessageInfo, m.Type)
	require.False(t, m.Read)

	_, err = s.SendMessage(a.ID, b.ID, "second", MessageChat)
	require.NoError(t, err)

	inbox := s.MessagesFor(b.ID)
	require.Len(t, inbox, 2)
	require.Equal(t, "hello", inbox[0].Content)
	require.Equal(t, "second", inbox[1].Content)
	require.Empty(t, s.MessagesFor(a.ID))
}

func TestBroadcastTypesRequireCapability(t *testing.T) {
	s, _ := newTestStore()
	ownerID, _ := s.OwnerID()
	a := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)

	_, err := s.SendMessage(a.ID, ownerID, "warn", MessageWarning)
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = s.SendMessage(a.ID, ownerID, "sys", MessageSystem)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = s.SendMessage(ownerID, a.ID, "behave", MessageWarning)
	require.NoError(t, err)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	s, _ := newTestStore()
	a := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)
	b := register(t, s, "bob", "bob@x.com", "pw123456", RoleUser)

	m1, err := s.SendMessage(a.ID, b.ID, "one", MessageInfo)
	require.NoError(t, err)
	_, err = s.SendMessage(a.ID, b.ID, "two", MessageInfo)
	require.NoError(t, err)

	require.Equal(t, 2, s.UnreadCount(b.ID))
	require.NoError(t, s.MarkRead(m1.ID))
	require.Equal(t, 1, s.UnreadCount(b.ID))

	// Idempotent.
	require.NoError(t, s.MarkRead(m1.ID))
	require.Equal(t, 1, s.UnreadCount(b.ID))

	require.ErrorIs(t, s.MarkRead("missing"), ErrNotFound)
}

func TestChannelChat(t *testing.T) {
	s, _ := newTestStore()
	a := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)

	_, err := s.PostChat(a.ID, "nope", "hi")
	require.ErrorIs(t, err, ErrUnknownChannel)
	_, err = s.PostChat(a.ID, "general", "")
	require.ErrorIs(t, err, ErrMissingField)
	_, err = s.PostChat("missing", "general", "hi")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.PostChat(a.ID, "general", "first")
	require.NoError(t, err)
	_, err = s.PostChat(a.ID, "showcase", "elsewhere")
	require.NoError(t, err)
	_, err = s.PostChat(a.ID, "general", "second")
	require.NoError(t, err)

	log, err := s.ChannelMessages("general")
	require.NoError(t, err)
	require.Len(t, log, 2)
	require.Equal(t, "first", log[0].Content)
	require.Equal(t, "second", log[1].Content)

	_, err = s.ChannelMessages("nope")
	require.ErrorIs(t, err, ErrUnknownChannel)
}

func TestOpenTicketReusesOpenPair(t *testing.T) {
	s, _ := newTestStore()
	a := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)
	b := register(t, s, "bob", "bob@x.com", "pw123456", RoleUser)

	_, err := s.OpenTicket(a.ID, b.ID, "")
	require.ErrorIs(t, err, ErrMissingField)

	first, err := s.OpenTicket(a.ID, b.ID, "help me")
	require.NoError(t, err)

	// Same open pair: the existing ticket comes back.
	again, err := s.OpenTicket(a.ID, b.ID, "different subject")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, "help me", again.Subject)

	// Reversed direction is a distinct ticket.
	reversed, err := s.OpenTicket(b.ID, a.ID, "other way")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, reversed.ID)

	// Once closed, a new ticket may be opened for the pair.
	_, err = s.CloseTicket(a.ID, first.ID)
	require.NoError(t, err)
	fresh, err := s.OpenTicket(a.ID, b.ID, "round two")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, fresh.ID)
}

func TestTicketThreadAndLifecycle(t *testing.T) {
	s, _ := newTestStore()
	ownerID, _ := s.OwnerID()
	a := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)
	b := register(t, s, "bob", "bob@x.com", "pw123456", RoleUser)
	stranger := register(t, s, "eve", "eve@x.com", "pw123456", RoleUser)

	tk, err := s.OpenTicket(a.ID, b.ID, "dispute")
	require.NoError(t, err)

	tk, err = s.PostToTicket(a.ID, tk.ID, "my side")
	require.NoError(t, err)
	tk, err = s.PostToTicket(b.ID, tk.ID, "their side")
	require.NoError(t, err)
	require.Len(t, tk.Messages, 2)

	_, err = s.PostToTicket(a.ID, tk.ID, "")
	require.ErrorIs(t, err, ErrMissingField)

	// Only participants or ticket managers may close.
	_, err = s.ResolveTicket(stranger.ID, tk.ID)
	require.ErrorIs(t, err, ErrAccessDenied)

	resolved, err := s.ResolveTicket(ownerID, tk.ID)
	require.NoError(t, err)
	require.Equal(t, TicketResolved, resolved.Status)

	_, err = s.PostToTicket(a.ID, tk.ID, "too late")
	require.ErrorIs(t, err, ErrTicketNotOpen)
	_, err = s.CloseTicket(a.ID, tk.ID)
	require.ErrorIs(t, err, ErrTicketNotOpen)
}

func TestTicketsFor(t *testing.T) {
	s, _ := newTestStore()
	a := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)
	b := register(t, s, "bob", "bob@x.com", "pw123456", RoleUser)
	c := register(t, s, "carol", "carol@x.com", "pw123456", RoleUser)

	t1, err := s.OpenTicket(a.ID, b.ID, "first")
	require.NoError(t, err)
	_, err = s.OpenTicket(b.ID, c.ID, "second")
	require.NoError(t, err)

	mine := s.TicketsFor(a.ID)
	require.Len(t, mine, 1)
	require.Equal(t, t1.ID, mine[0].ID)

	require.Len(t, s.TicketsFor(b.ID), 2)
	require.Empty(t, s.TicketsFor("missing"))
}
