package mypublisher

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MarcGrol/cafeshop/lib/myevents"
	"github.com/MarcGrol/cafeshop/lib/mytime"
)

// enveloper wraps domain events, such as a placed order or a registered user, for the outbox.
type enveloper struct {
	nower mytime.Nower
}

func newEnveloper(nower mytime.Nower) enveloper {
	return enveloper{
		nower: nower,
	}
}

func (e enveloper) wrap(topic string, event myevents.Event) (myevents.EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling %s event: %s", event.GetEventTypeName(), err)
	}

	envelope := myevents.EventEnvelope{
		UID:           contentUID(topic, event.GetEventTypeName(), event.GetAggregateName(), payload),
		CreatedAt:     e.nower.Now(),
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	}

	return envelope, nil
}

// contentUID ignores the creation time: the same order.created for the same order always gets the same uid,
// so a retried transaction stores and queues it once.
func contentUID(topic string, eventTypeName string, aggregateUID string, payload []byte) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{topic, eventTypeName, aggregateUID, string(payload)}, "\n")))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
