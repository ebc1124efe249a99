package httpapi

import (
	"net/http"

	"assethub.org/internal/market"
	"assethub.org/internal/stream"
)

type sendMessageRequest struct {
	ToID    string `json:"to_id"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type postChatRequest struct {
	Content string `json:"content"`
}

type openTicketRequest struct {
	TargetID string `json:"target_id"`
	Subject  string `json:"subject"`
}

type ticketMessageRequest struct {
	Content string `json:"content"`
}

func (a *API) inbox(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": a.store.MessagesFor(userID)})
}

func (a *API) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unread": a.store.UnreadCount(userID)})
}

func (a *API) sendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, err := a.store.SendMessage(userID, req.ToID, req.Content, market.MessageType(req.Type))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	if a.stream != nil {
		a.stream.Publish(stream.Event{
			Kind:      stream.KindDirectMessage,
			ActorID:   userID,
			SubjectID: req.ToID,
		})
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) markRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionUserID(w, r); !ok {
		return
	}
	if err := a.store.MarkRead(r.PathValue("id")); err != nil {
		handleMarketError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) chatChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": market.Channels()})
}

func (a *API) channelMessages(w http.ResponseWriter, r *http.Request) {
	items, err := a.store.ChannelMessages(r.PathValue("channel"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) postChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req postChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	channel := r.PathValue("channel")
	m, err := a.store.PostChat(userID, channel, req.Content)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	if a.stream != nil {
		a.stream.Publish(stream.Event{
			Kind:    stream.KindChatMessage,
			ActorID: userID,
			Channel: channel,
		})
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) myTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": a.store.TicketsFor(userID)})
}

func (a *API) openTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req openTicketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := a.store.OpenTicket(userID, req.TargetID, req.Subject)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (a *API) postToTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req ticketMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := a.store.PostToTicket(userID, r.PathValue("id"), req.Content)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) resolveTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	t, err := a.store.ResolveTicket(userID, r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) closeTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	t, err := a.store.CloseTicket(userID, r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
