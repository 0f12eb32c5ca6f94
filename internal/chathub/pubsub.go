package chathub

import (
	"encoding/json"

	"safecircle/backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// StartPubSubListener subscribes to the Redis broadcast channel and feeds
// received room events into the hub loop. Message and reaction fan-out
// rides pub/sub so the path stays intact when presence later moves to a
// shared layer.
func (m *ManagerService) StartPubSubListener() {
	go func() {
		pubsub := m.Storage.SubscribeEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var env storage.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn().Err(err).Msg("dropping malformed broadcast payload")
				continue
			}
			m.broadcastCh <- env
		}
	}()
}
