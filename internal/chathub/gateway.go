package chathub

import (
	"time"

	"safecircle/backend/internal/errs"
	"safecircle/backend/internal/metrics"
	"safecircle/backend/internal/models"
	"safecircle/backend/internal/notify"
	"safecircle/backend/internal/safety"
	"safecircle/backend/internal/storage"
	"safecircle/backend/internal/trust"

	"github.com/rs/zerolog/log"
)

// Gateway dispatches inbound client events. Dispatch runs on the
// connection's own goroutine, so membership checks, trust lookups, safety
// scoring and persistence never block the hub loop; only the resulting
// room mutations and broadcasts are handed to it.
type Gateway struct {
	Hub      *ManagerService
	Storage  storage.Storage
	Trust    *trust.Service
	Notifier *notify.Notifier
}

// NewGateway creates the event dispatcher.
func NewGateway(hub *ManagerService, s storage.Storage, t *trust.Service, n *notify.Notifier) *Gateway {
	return &Gateway{Hub: hub, Storage: s, Trust: t, Notifier: n}
}

// Dispatch routes one inbound event. Errors surface as `error` events on
// the connection; they never kill the read loop.
func (g *Gateway) Dispatch(c Client, evt models.ClientEvent) {
	switch evt.Event {
	case models.EventJoinCircle:
		g.handleJoin(c, evt)
	case models.EventLeaveCircle:
		g.Hub.Leave(c, evt.CircleID)
	case models.EventSendMessage:
		g.handleSendMessage(c, evt)
	case models.EventTyping:
		// No joined-room guard here: the client's room field belongs to the
		// hub goroutine, which re-checks inside the loop.
		g.Hub.Typing(c, evt.CircleID)
	case models.EventStopTyping:
		g.Hub.StopTyping(c, evt.CircleID)
	case models.EventMessageReaction:
		g.handleReaction(c, evt)
	default:
		g.sendError(c, "Unknown event: "+evt.Event)
	}
}

func (g *Gateway) handleJoin(c Client, evt models.ClientEvent) {
	member, err := g.Storage.FindActiveMember(evt.CircleID, c.GetAnonymousID())
	if err != nil {
		log.Error().Err(err).Str("circle_id", evt.CircleID).Msg("membership lookup failed")
		g.sendError(c, "Error joining circle")
		return
	}
	if member == nil {
		g.sendError(c, "Not a member of this circle")
		return
	}

	if restricted, reason, err := g.Trust.IsRestricted(c.GetAnonymousID()); err != nil {
		// Stale trust is a bounded degradation; a hard failure is not.
		log.Warn().Err(err).Str("anon_id", c.GetAnonymousID()).Msg("trust check failed, admitting")
	} else if restricted {
		modErr := &errs.ModerationError{AnonymousID: c.GetAnonymousID(), Reason: reason}
		g.sendError(c, modErr.Error())
		return
	}

	g.Hub.Join(c, evt.CircleID, member.DisplayName)
}

func (g *Gateway) handleSendMessage(c Client, evt models.ClientEvent) {
	anonID := c.GetAnonymousID()

	// Re-validate membership on every send; the connection may be stale.
	member, err := g.Storage.FindActiveMember(evt.CircleID, anonID)
	if err != nil {
		log.Error().Err(err).Str("circle_id", evt.CircleID).Msg("membership lookup failed")
		g.sendError(c, "Error sending message")
		return
	}
	if member == nil {
		metrics.MessagesRejected.WithLabelValues("membership").Inc()
		g.sendError(c, "Not a member of this circle")
		return
	}

	if restricted, reason, err := g.Trust.IsRestricted(anonID); err != nil {
		log.Warn().Err(err).Str("anon_id", anonID).Msg("trust check failed, proceeding")
	} else if restricted {
		metrics.MessagesRejected.WithLabelValues("moderation").Inc()
		modErr := &errs.ModerationError{AnonymousID: anonID, Reason: reason}
		log.Info().Str("anon_id", anonID).Str("reason", reason).Msg("message rejected")
		g.sendError(c, modErr.Error())
		return
	}

	score := safety.Score(evt.Message)
	msg := &models.CircleMessage{
		CircleID:          evt.CircleID,
		SenderID:          anonID,
		SenderDisplayName: member.DisplayName,
		Message:           evt.Message,
		AIRiskScore:       score,
		FlaggedByAI:       safety.Flagged(score),
		Reactions:         []models.Reaction{},
	}

	// Persist and broadcast are one operation under the circle's append
	// lock; nothing may run between them or broadcast order can invert
	// persistence order.
	if err := g.Storage.SaveAndPublishMessage(msg); err != nil {
		log.Error().Err(err).Str("circle_id", evt.CircleID).Msg("failed to send message")
		g.sendError(c, "Error sending message")
		return
	}

	member.MessageCount++
	member.LastActive = time.Now()
	if err := g.Storage.SaveMember(member); err != nil {
		log.Warn().Err(err).Str("anon_id", anonID).Msg("failed to bump member activity")
	}

	metrics.MessagesSent.Inc()
	if msg.FlaggedByAI {
		metrics.MessagesFlagged.Inc()
		go g.Notifier.FlaggedMessage(msg)
	}

	// The broadcast, not the sender's local echo, is the source of truth
	// for displayed order; the ack lets the sender reconcile optimistic UI.
	g.send(c, models.ServerEvent{
		Event: models.EventMessageSent,
		Data:  models.MessageSentPayload{MessageID: msg.ID, Timestamp: msg.Timestamp},
	})
}

func (g *Gateway) handleReaction(c Client, evt models.ClientEvent) {
	// Load, toggle, save and broadcast all serialize inside the storage
	// layer; concurrent toggles on one message cannot duplicate a bucket
	// or drop each other's updates.
	msg, err := g.Storage.ToggleReaction(evt.CircleID, evt.MessageID, evt.Emoji, c.GetAnonymousID())
	if err != nil {
		log.Error().Err(err).Str("message_id", evt.MessageID).Msg("failed to update reaction")
		g.sendError(c, "Error updating reaction")
		return
	}
	if msg == nil {
		g.sendError(c, "Message not found")
	}
}

func (g *Gateway) sendError(c Client, message string) {
	g.send(c, models.ServerEvent{
		Event: models.EventError,
		Data:  models.ErrorPayload{Message: message},
	})
}

// send writes directly to the connection's outbound channel; Dispatch runs
// while the pumps are alive, so the channel is open.
func (g *Gateway) send(c Client, evt models.ServerEvent) {
	select {
	case c.GetSendChannel() <- evt:
	default:
		log.Warn().Str("anon_id", c.GetAnonymousID()).Str("event", evt.Event).
			Msg("send buffer full, dropping event")
	}
}
