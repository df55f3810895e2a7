package eventpubsub

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
)

var bus EventBus.Bus

func Init() {
	bus = EventBus.New()
}

func Publish(topic string, event interface{}) {
	bus.Publish(topic, event)
}

// Subscribe registers callbackFn to run in its own goroutine for every event
// on topic. Callbacks on the same topic do not wait for each other.
func Subscribe(topic string, callbackFn interface{}) error {
	if err := bus.SubscribeAsync(topic, callbackFn, false); err != nil {
		return fmt.Errorf("Subscribe: %s: %w", topic, err)
	}

	log.Infof("Subscribed to topic %s", topic)
	return nil
}

func Unsubscribe(topic string, callbackFn interface{}) error {
	if err := bus.Unsubscribe(topic, callbackFn); err != nil {
		return fmt.Errorf("Unsubscribe: %s: %w", topic, err)
	}

	return nil
}

// Wait blocks until every async callback in flight has returned.
func Wait() {
	bus.WaitAsync()
}
