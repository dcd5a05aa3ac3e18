package events // import "github.com/joincivil/civil-tcr-registry/pkg/events"

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	log "github.com/golang/glog"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

const (
	recorderBufferSize = 256
	publishTimeout     = 10 * time.Second
)

// Source is anything that emits governance events
type Source interface {
	SubscribeEvents(sink chan<- *model.GovernanceEvent) event.Subscription
}

// NewRecorder returns a Recorder that stores events with persister and
// publishes them with publisher. Either may be nil.
func NewRecorder(source Source, persister model.GovernanceEventPersister,
	publisher Publisher) *Recorder {
	return &Recorder{
		source:    source,
		persister: persister,
		publisher: publisher,
	}
}

// Recorder consumes governance events from a source until stopped. Received
// events are queued without bound and handled in order by a separate goroutine,
// so a slow store or publisher never blocks the source.
type Recorder struct {
	source    Source
	persister model.GovernanceEventPersister
	publisher Publisher
	sub       event.Subscription
	quit      chan struct{}
	wg        sync.WaitGroup

	mutex  sync.Mutex
	queue  []*model.GovernanceEvent
	closed bool
	ready  chan struct{}
}

// Start subscribes to the source and handles events in a goroutine
func (r *Recorder) Start() {
	sink := make(chan *model.GovernanceEvent, recorderBufferSize)
	r.quit = make(chan struct{})
	r.ready = make(chan struct{}, 1)
	r.closed = false
	r.sub = r.source.SubscribeEvents(sink)
	r.wg.Add(2)
	go r.receive(sink)
	go r.work()
}

// Stop unsubscribes, handles the events already received and waits for the
// goroutines to exit
func (r *Recorder) Stop() {
	if r.sub == nil {
		return
	}
	r.sub.Unsubscribe()
	close(r.quit)
	r.wg.Wait()
	r.sub = nil
}

// Pending returns the number of received events waiting for the handler
func (r *Recorder) Pending() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.queue)
}

func (r *Recorder) receive(sink chan *model.GovernanceEvent) {
	defer r.wg.Done()
	defer r.close()
Loop:
	for {
		select {
		case govEvent := <-sink:
			r.enqueue(govEvent)
		case err := <-r.sub.Err():
			if err != nil {
				log.Errorf("Event subscription failed: err: %v", err)
			}
			break Loop
		case <-r.quit:
			break Loop
		}
	}
	for {
		select {
		case govEvent := <-sink:
			r.enqueue(govEvent)
		default:
			return
		}
	}
}

func (r *Recorder) enqueue(govEvent *model.GovernanceEvent) {
	r.mutex.Lock()
	r.queue = append(r.queue, govEvent)
	pending := len(r.queue)
	r.mutex.Unlock()
	if pending > recorderBufferSize && pending%recorderBufferSize == 1 {
		log.Warningf("Governance event recorder is behind: %v pending", pending)
	}
	r.signal()
}

func (r *Recorder) close() {
	r.mutex.Lock()
	r.closed = true
	r.mutex.Unlock()
	r.signal()
}

func (r *Recorder) signal() {
	select {
	case r.ready <- struct{}{}:
	default:
	}
}

func (r *Recorder) work() {
	defer r.wg.Done()
	for {
		r.mutex.Lock()
		batch := r.queue
		r.queue = nil
		closed := r.closed
		r.mutex.Unlock()

		for _, govEvent := range batch {
			r.Handle(govEvent)
		}
		if len(batch) == 0 {
			if closed {
				return
			}
			<-r.ready
		}
	}
}

// Handle stores and publishes a single event. Failures are logged.
func (r *Recorder) Handle(govEvent *model.GovernanceEvent) {
	if r.persister != nil {
		err := r.persister.CreateGovernanceEvent(govEvent)
		if err != nil {
			log.Errorf("Error saving governance event %v: err: %v",
				govEvent.GovernanceEventType(), err)
		}
	}
	if r.publisher == nil {
		return
	}
	payload, err := BuildPayload(govEvent)
	if err != nil {
		log.Errorf("Error building pubsub payload: err: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	err = r.publisher.Publish(ctx, payload)
	if err != nil {
		log.Errorf("Error publishing governance event %v: err: %v",
			govEvent.GovernanceEventType(), err)
	}
}
