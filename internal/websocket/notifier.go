package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/brawlhub/elo-ladder/internal/domain"
)

// Notifier publishes match lifecycle events over the hub.
type Notifier struct {
	hub *Hub
	log zerolog.Logger
}

var _ domain.Notifier = (*Notifier)(nil)

func NewNotifier(hub *Hub, log zerolog.Logger) *Notifier {
	return &Notifier{
		hub: hub,
		log: log.With().Str("component", "ws_notifier").Logger(),
	}
}

func (n *Notifier) MatchFormed(ev domain.MatchFormedEvent) {
	n.publish(MessageTypeMatchFormed, ev)
}

func (n *Notifier) VoteUpdate(ev domain.VoteUpdateEvent) {
	n.publish(MessageTypeVoteUpdate, ev)
}

func (n *Notifier) MatchSettled(ev domain.MatchSettledEvent) {
	n.publish(MessageTypeMatchSettled, ev)
}

func (n *Notifier) MatchCancelled(ev domain.MatchCancelledEvent) {
	n.publish(MessageTypeMatchCancelled, ev)
}

func (n *Notifier) MatchUndone(ev domain.MatchUndoneEvent) {
	n.publish(MessageTypeMatchUndone, ev)
}

func (n *Notifier) publish(msgType MessageType, payload any) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		n.log.Error().Err(err).Str("type", string(msgType)).Msg("marshal event payload")
		return
	}

	frame, err := json.Marshal(msg)
	if err != nil {
		n.log.Error().Err(err).Str("type", string(msgType)).Msg("marshal event frame")
		return
	}

	n.hub.Broadcast(frame)
}
