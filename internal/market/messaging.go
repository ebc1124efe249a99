package market

import (
	"slices"

	"assethub.org/internal/authz"
	"assethub.org/internal/ids"
)

// Channels lists the chat channels in their fixed order.
func Channels() []string {
	return []string{"general", "showcase", "help", "off-topic"}
}

var validMessageTypes = map[MessageType]struct{}{
	MessageInfo:         {},
	MessageWarning:      {},
	MessageNotification: {},
	MessageSystem:       {},
	MessageChat:         {},
}

// SendMessage appends a new unread direct message. System and warning
// messages require the broadcast capability.
func (s *Store) SendMessage(fromID, toID, content string, typ MessageType) (Message, error) {
	if content == "" {
		return Message{}, ErrMissingField
	}
	if typ == "" {
		typ = MessageInfo
	}
	if _, ok := validMessageTypes[typ]; !ok {
		return Message{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.usersByID[fromID]
	if !ok {
		return Message{}, ErrNotFound
	}
	if _, ok := s.usersByID[toID]; !ok {
		return Message{}, ErrNotFound
	}
	if typ == MessageSystem || typ == MessageWarning {
		if !authz.Can(string(from.Role), authz.ActionBroadcast) {
			return Message{}, ErrAccessDenied
		}
	}

	m := &Message{
		ID:        ids.New(),
		FromID:    fromID,
		ToID:      toID,
		Content:   content,
		Type:      typ,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, m)
	s.messagesByID[m.ID] = m
	return *m, nil
}

// MarkRead transitions the message to read. Marking an already read message
// again is a no-op, not an error.
func (s *Store) MarkRead(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messagesByID[messageID]
	if !ok {
		return ErrNotFound
	}
	m.Read = true
	return nil
}

// MessagesFor returns the user's inbox in arrival order.
func (s *Store) MessagesFor(userID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, 0)
	for _, m := range s.messages {
		if m.ToID == userID {
			out = append(out, *m)
		}
	}
	return out
}

// UnreadCount is derived on read; no counter is maintained alongside the
// collection.
func (s *Store) UnreadCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if m.ToID == userID && !m.Read {
			n++
		}
	}
	return n
}

// PostChat appends a message to the channel's ordered log. The log is
// append-only; there is no edit or delete.
func (s *Store) PostChat(userID, channel, content string) (ChatMessage, error) {
	if content == "" {
		return ChatMessage{}, ErrMissingField
	}
	if !slices.Contains(Channels(), channel) {
		return ChatMessage{}, ErrUnknownChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByID[userID]; !ok {
		return ChatMessage{}, ErrNotFound
	}

	m := &ChatMessage{
		ID:        ids.New(),
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now(),
		Channel:   channel,
	}
	s.chat = append(s.chat, m)
	return *m, nil
}

// ChannelMessages returns the channel log ordered by creation time ascending.
func (s *Store) ChannelMessages(channel string) ([]ChatMessage, error) {
	if !slices.Contains(Channels(), channel) {
		return nil, ErrUnknownChannel
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChatMessage, 0)
	for _, m := range s.chat {
		if m.Channel == channel {
			out = append(out, *m)
		}
	}
	return out, nil
}

// OpenTicket creates a support ticket between the user and the target, or
// returns the existing open ticket for the same pair instead of creating a
// duplicate.
func (s *Store) OpenTicket(userID, targetID, subject string) (SupportTicket, error) {
	if subject == "" {
		return SupportTicket{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByID[userID]; !ok {
		return SupportTicket{}, ErrNotFound
	}
	if _, ok := s.usersByID[targetID]; !ok {
		return SupportTicket{}, ErrNotFound
	}
	for _, t := range s.tickets {
		if t.UserID == userID && t.TargetID == targetID && t.Status == TicketOpen {
			return cloneTicket(t), nil
		}
	}

	t := &SupportTicket{
		ID:        ids.New(),
		UserID:    userID,
		TargetID:  targetID,
		Subject:   subject,
		Status:    TicketOpen,
		Messages:  []TicketMessage{},
		CreatedAt: s.now(),
	}
	s.tickets = append(s.tickets, t)
	s.ticketsByID[t.ID] = t
	return cloneTicket(t), nil
}

// PostToTicket appends to the ticket thread. Appends are only accepted while
// the ticket is open.
func (s *Store) PostToTicket(userID, ticketID, content string) (SupportTicket, error) {
	if content == "" {
		return SupportTicket{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByID[userID]; !ok {
		return SupportTicket{}, ErrNotFound
	}
	t, ok := s.ticketsByID[ticketID]
	if !ok {
		return SupportTicket{}, ErrNotFound
	}
	if t.Status != TicketOpen {
		return SupportTicket{}, ErrTicketNotOpen
	}

	t.Messages = append(t.Messages, TicketMessage{
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now(),
	})
	return cloneTicket(t), nil
}

// ResolveTicket transitions open -> resolved.
func (s *Store) ResolveTicket(actorID, ticketID string) (SupportTicket, error) {
	return s.closeTicketAs(actorID, ticketID, TicketResolved)
}

// CloseTicket transitions open -> closed.
func (s *Store) CloseTicket(actorID, ticketID string) (SupportTicket, error) {
	return s.closeTicketAs(actorID, ticketID, TicketClosed)
}

func (s *Store) closeTicketAs(actorID, ticketID string, status TicketStatus) (SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.usersByID[actorID]
	if !ok {
		return SupportTicket{}, ErrNotFound
	}
	t, ok := s.ticketsByID[ticketID]
	if !ok {
		return SupportTicket{}, ErrNotFound
	}
	if actorID != t.UserID && actorID != t.TargetID &&
		!authz.Can(string(actor.Role), authz.ActionManageTickets) {
		return SupportTicket{}, ErrAccessDenied
	}
	if t.Status != TicketOpen {
		return SupportTicket{}, ErrTicketNotOpen
	}
	t.Status = status
	return cloneTicket(t), nil
}

// TicketsFor returns tickets where the user is either side of the
// conversation, in creation order.
func (s *Store) TicketsFor(userID string) []SupportTicket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SupportTicket, 0)
	for _, t := range s.tickets {
		if t.UserID == userID || t.TargetID == userID {
			out = append(out, cloneTicket(t))
		}
	}
	return out
}
