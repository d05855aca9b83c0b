package mypublisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/cafeshop/lib/myevents"
	"github.com/MarcGrol/cafeshop/lib/mypubsub"
	"github.com/MarcGrol/cafeshop/lib/myqueue"
	"github.com/MarcGrol/cafeshop/lib/mystore"
	"github.com/MarcGrol/cafeshop/lib/mytime"
)

type somethingHappened struct {
	ThingUID string
}

func (e somethingHappened) GetEventTypeName() string { return "thing.happened" }
func (e somethingHappened) GetAggregateName() string { return e.ThingUID }

func setup(t *testing.T, ctrl *gomock.Controller) (*mux.Router, *transactionalPublisher, *mystore.InMemoryStore[myevents.EventEnvelope], *mypubsub.FakePubSub, *myqueue.FakeTaskQueue) {
	c := context.Background()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	outbox, _, _ := mystore.NewInMemoryStore[myevents.EventEnvelope](c)
	pubsub := mypubsub.NewFakePubSub()
	queue := myqueue.NewFakeTaskQueue()

	publisher := newTransactionalPublisher(outbox, pubsub, queue, nower)
	router := mux.NewRouter()
	publisher.RegisterEndpoints(c, router)

	return router, publisher, outbox, pubsub, queue
}

func TestPublish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	c := context.Background()

	t.Run("event is stored and trigger is queued", func(t *testing.T) {
		// given
		_, publisher, outbox, _, queue := setup(t, ctrl)

		// when
		err := publisher.Publish(c, "thing", somethingHappened{ThingUID: "1"})

		// then
		assert.NoError(t, err)
		envelopes, _ := outbox.List(c)
		assert.Len(t, envelopes, 1)
		assert.Equal(t, "thing", envelopes[0].Topic)
		assert.Equal(t, "thing.happened", envelopes[0].EventTypeName)
		assert.Equal(t, "1", envelopes[0].AggregateUID)
		assert.Equal(t, `{"ThingUID":"1"}`, envelopes[0].EventPayload)
		assert.Equal(t, mytime.ExampleTime, envelopes[0].CreatedAt)
		assert.False(t, envelopes[0].Published)

		tasks := queue.Tasks()
		assert.Len(t, tasks, 1)
		assert.Equal(t, "/pubsub/thing/"+envelopes[0].UID, tasks[0].WebhookURLPath)
		assert.Equal(t, publicationDelay, tasks[0].Delay)
	})

	t.Run("same event is stored once", func(t *testing.T) {
		// given
		_, publisher, outbox, _, _ := setup(t, ctrl)

		// when
		_ = publisher.Publish(c, "thing", somethingHappened{ThingUID: "1"})
		_ = publisher.Publish(c, "thing", somethingHappened{ThingUID: "1"})

		// then
		envelopes, _ := outbox.List(c)
		assert.Len(t, envelopes, 1)
	})

	t.Run("rolled back with surrounding transaction", func(t *testing.T) {
		// given
		_, publisher, outbox, _, _ := setup(t, ctrl)

		// when
		err := outbox.RunInTransaction(c, func(c context.Context) error {
			err := publisher.Publish(c, "thing", somethingHappened{ThingUID: "1"})
			assert.NoError(t, err)
			return assert.AnError
		})

		// then
		assert.Error(t, err)
		envelopes, _ := outbox.List(c)
		assert.Empty(t, envelopes)
	})
}

func TestProcessTrigger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	c := context.Background()

	// given
	router, publisher, outbox, pubsub, _ := setup(t, ctrl)
	_ = publisher.CreateTopic(c, "thing")
	_ = publisher.Publish(c, "thing", somethingHappened{ThingUID: "1"})
	_ = publisher.Publish(c, "thing", somethingHappened{ThingUID: "2"})
	envelopes, _ := outbox.List(c)

	// when
	request, _ := http.NewRequest(http.MethodPut, "/pubsub/thing/"+envelopes[0].UID, nil)
	request.Host = "localhost:8888"
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	// then
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "Successfully published 2 event(s)")

	messages := pubsub.Messages("thing")
	assert.Len(t, messages, 2)
	published := myevents.EventEnvelope{}
	err := json.Unmarshal([]byte(messages[0]), &published)
	assert.NoError(t, err)
	assert.Equal(t, "thing", published.Topic)

	stored, _ := outbox.List(c)
	for _, e := range stored {
		assert.True(t, e.Published)
	}

	t.Run("nothing left to publish", func(t *testing.T) {
		// when
		request, _ := http.NewRequest(http.MethodPut, "/pubsub/thing/"+envelopes[1].UID, nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully published 0 event(s)")
		assert.Len(t, pubsub.Messages("thing"), 2)
	})
}

func TestCreatePubsubMessage(t *testing.T) {
	body := CreatePubsubMessage("thing", somethingHappened{ThingUID: "1"})

	envelope, err := myevents.ParseEventEnvelope(strings.NewReader(body))
	assert.NoError(t, err)
	assert.Equal(t, "thing.happened", envelope.EventTypeName)
	assert.Equal(t, `{"ThingUID":"1"}`, envelope.EventPayload)
}
