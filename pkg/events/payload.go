// Package events contains the consumers of registry governance events: a
// recorder that stores them and a Google Pub/Sub publisher
package events // import "github.com/joincivil/civil-tcr-registry/pkg/events"

import (
	"encoding/json"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

// PubSubMessage is the JSON message published for each governance event
type PubSubMessage struct {
	EventType   string         `json:"eventType"`
	ListingKey  string         `json:"listingKey"`
	ChallengeID uint64         `json:"challengeID"`
	Sender      string         `json:"sender"`
	Timestamp   int64          `json:"timestamp"`
	Payload     model.Metadata `json:"payload"`
}

// BuildPayload returns the message bytes for a governance event
func BuildPayload(govEvent *model.GovernanceEvent) ([]byte, error) {
	msg := &PubSubMessage{
		EventType:   govEvent.GovernanceEventType(),
		ListingKey:  govEvent.ListingKey().Hex(),
		ChallengeID: govEvent.ChallengeID(),
		Sender:      govEvent.SenderAddress().Hex(),
		Timestamp:   govEvent.Timestamp(),
		Payload:     govEvent.Metadata(),
	}
	if msg.Payload == nil {
		msg.Payload = model.Metadata{}
	}
	return json.Marshal(msg)
}
