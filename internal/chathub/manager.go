package chathub

import (
	"time"

	"safecircle/backend/internal/metrics"
	"safecircle/backend/internal/models"
	"safecircle/backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// TypingTTL is how long a typing signal stays visible without a refresh.
// Expiry is a best-effort UI signal; duplicate stop-typing broadcasts are
// tolerated by clients.
const TypingTTL = 3 * time.Second

// room is the runtime state of one circle: who is connected and who is
// typing. Never persisted; rebuilt from zero on restart as clients rejoin.
type room struct {
	members map[string]Client    // anonymousId -> connection
	typing  map[string]time.Time // anonymousId -> last typing signal
}

type joinRequest struct {
	client      Client
	circleID    string
	displayName string
}

type roomSignal struct {
	client   Client
	circleID string
}

// ManagerService is the realtime hub. All room state is owned by the Run
// goroutine: presence and typing maps are only touched there, so join,
// leave, disconnect and typing expiry cannot race.
type ManagerService struct {
	RegisterCh   chan Client
	UnregisterCh chan Client

	joinCh          chan joinRequest
	leaveCh         chan roomSignal
	typingCh        chan joinRequest
	stopTypingCh    chan roomSignal
	typingExpiredCh chan roomSignal
	broadcastCh     chan storage.Envelope

	Storage storage.Storage

	clients map[Client]bool
	rooms   map[string]*room
}

// NewManagerService creates the hub.
func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		RegisterCh:      make(chan Client),
		UnregisterCh:    make(chan Client),
		joinCh:          make(chan joinRequest),
		leaveCh:         make(chan roomSignal),
		typingCh:        make(chan joinRequest),
		stopTypingCh:    make(chan roomSignal),
		typingExpiredCh: make(chan roomSignal),
		broadcastCh:     make(chan storage.Envelope, 64),
		Storage:         s,
		clients:         make(map[Client]bool),
		rooms:           make(map[string]*room),
	}
}

// Run is the hub dispatcher. It must be the only goroutine that mutates
// room state.
func (m *ManagerService) Run() {
	log.Info().Msg("chat hub started")

	for {
		select {
		case c := <-m.RegisterCh:
			m.clients[c] = true
			metrics.ActiveConnections.Inc()

		case c := <-m.UnregisterCh:
			m.removeClient(c)

		case req := <-m.joinCh:
			m.handleJoin(req)

		case sig := <-m.leaveCh:
			m.handleLeave(sig.client, sig.circleID)

		case req := <-m.typingCh:
			m.handleTyping(req)

		case sig := <-m.stopTypingCh:
			if sig.client.GetCircleID() == sig.circleID {
				m.clearTyping(sig.circleID, sig.client.GetAnonymousID())
			}

		case sig := <-m.typingExpiredCh:
			m.clearTyping(sig.circleID, sig.client.GetAnonymousID())

		case env := <-m.broadcastCh:
			m.broadcastToRoom(env.CircleID, env.Event, "")
		}
	}
}

// Join asks the hub to add the connection to a circle room. Membership must
// already be verified by the caller.
func (m *ManagerService) Join(c Client, circleID, displayName string) {
	m.joinCh <- joinRequest{client: c, circleID: circleID, displayName: displayName}
}

// Leave asks the hub to remove the connection from a circle room.
func (m *ManagerService) Leave(c Client, circleID string) {
	m.leaveCh <- roomSignal{client: c, circleID: circleID}
}

// Typing records a typing signal and schedules its expiry. The display
// name is resolved inside the hub loop, which owns the client's room
// fields.
func (m *ManagerService) Typing(c Client, circleID string) {
	m.typingCh <- joinRequest{client: c, circleID: circleID}
}

// StopTyping clears a typing signal.
func (m *ManagerService) StopTyping(c Client, circleID string) {
	m.stopTypingCh <- roomSignal{client: c, circleID: circleID}
}

// Broadcast fans an event out to every connection in a circle room.
func (m *ManagerService) Broadcast(circleID string, evt models.ServerEvent) {
	m.broadcastCh <- storage.Envelope{CircleID: circleID, Event: evt}
}

func (m *ManagerService) handleJoin(req joinRequest) {
	c := req.client
	anonID := c.GetAnonymousID()

	// One room per connection: joining a second room implicitly leaves the
	// first.
	if prev := c.GetCircleID(); prev != "" && prev != req.circleID {
		m.handleLeave(c, prev)
	}

	r := m.rooms[req.circleID]
	if r == nil {
		r = &room{members: make(map[string]Client), typing: make(map[string]time.Time)}
		m.rooms[req.circleID] = r
	}
	r.members[anonID] = c
	c.SetCircleID(req.circleID)
	c.SetDisplayName(req.displayName)

	m.broadcastToRoom(req.circleID, models.ServerEvent{
		Event: models.EventMemberOnline,
		Data:  models.MemberOnlinePayload{AnonymousID: anonID, DisplayName: req.displayName},
	}, anonID)

	// Snapshot after join so the joiner neither misses its own join nor
	// double-counts itself.
	members := make([]models.OnlineMember, 0, len(r.members))
	for id := range r.members {
		members = append(members, models.OnlineMember{AnonymousID: id})
	}
	m.send(c, models.ServerEvent{
		Event: models.EventOnlineMembers,
		Data:  models.OnlineMembersPayload{Members: members},
	})

	metrics.RoomJoins.Inc()
	log.Debug().Str("circle_id", req.circleID).Str("anon_id", anonID).Msg("joined room")
}

func (m *ManagerService) handleLeave(c Client, circleID string) {
	if c.GetCircleID() != circleID {
		return
	}
	anonID := c.GetAnonymousID()
	c.SetCircleID("")

	r := m.rooms[circleID]
	if r == nil {
		return
	}
	// A newer connection for the same identity may have replaced this one.
	if r.members[anonID] != c {
		return
	}
	delete(r.members, anonID)
	delete(r.typing, anonID)
	if len(r.members) == 0 {
		delete(m.rooms, circleID)
	}

	m.broadcastToRoom(circleID, models.ServerEvent{
		Event: models.EventMemberOffline,
		Data:  models.MemberOfflinePayload{AnonymousID: anonID},
	}, anonID)

	log.Debug().Str("circle_id", circleID).Str("anon_id", anonID).Msg("left room")
}

func (m *ManagerService) handleTyping(req joinRequest) {
	c := req.client
	if c.GetCircleID() != req.circleID {
		return
	}
	r := m.rooms[req.circleID]
	if r == nil {
		return
	}
	anonID := c.GetAnonymousID()
	r.typing[anonID] = time.Now()

	m.broadcastToRoom(req.circleID, models.ServerEvent{
		Event: models.EventUserTyping,
		Data:  models.TypingPayload{AnonymousID: anonID, DisplayName: c.GetDisplayName()},
	}, anonID)

	// No cancellation on a fresh signal; a stale expiry just produces a
	// harmless duplicate stop-typing.
	sig := roomSignal{client: c, circleID: req.circleID}
	time.AfterFunc(TypingTTL, func() {
		m.typingExpiredCh <- sig
	})
}

func (m *ManagerService) clearTyping(circleID, anonymousID string) {
	r := m.rooms[circleID]
	if r == nil {
		return
	}
	delete(r.typing, anonymousID)

	m.broadcastToRoom(circleID, models.ServerEvent{
		Event: models.EventUserStopTyping,
		Data:  models.TypingPayload{AnonymousID: anonymousID},
	}, anonymousID)
}

// removeClient tears a connection down exactly once, emitting leave-room
// side effects if it was joined.
func (m *ManagerService) removeClient(c Client) {
	if !m.clients[c] {
		return
	}
	delete(m.clients, c)
	metrics.ActiveConnections.Dec()

	if circleID := c.GetCircleID(); circleID != "" {
		m.handleLeave(c, circleID)
	}
	c.Close()
}

func (m *ManagerService) broadcastToRoom(circleID string, evt models.ServerEvent, exceptAnonID string) {
	r := m.rooms[circleID]
	if r == nil {
		return
	}
	for anonID, member := range r.members {
		if exceptAnonID != "" && anonID == exceptAnonID {
			continue
		}
		m.send(member, evt)
	}
}

// send never blocks the hub loop; a slow consumer loses the event.
func (m *ManagerService) send(c Client, evt models.ServerEvent) {
	select {
	case c.GetSendChannel() <- evt:
	default:
		log.Warn().Str("anon_id", c.GetAnonymousID()).Str("event", evt.Event).
			Msg("send buffer full, dropping event")
	}
}
