// Package registrymain contains the wiring used by the registry cmd
package registrymain

import (
	"context"
	"errors"
	"io"

	log "github.com/golang/glog"

	"github.com/joincivil/civil-tcr-registry/pkg/events"
	"github.com/joincivil/civil-tcr-registry/pkg/helpers"
	"github.com/joincivil/civil-tcr-registry/pkg/ledger"
	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/registry"
	"github.com/joincivil/civil-tcr-registry/pkg/utils"
)

// Initialized contains the initialized components needed to run the registry
type Initialized struct {
	Registry  *registry.Registry
	Ledger    *ledger.MemoryLedger
	Persister model.RegistryPersister
	EventLog  model.GovernanceEventPersister
	Recorder  *events.Recorder
	Publisher *events.PubSubPublisher
}

// Close stops the recorder and closes the publisher and persister if needed
func (i *Initialized) Close() {
	i.Recorder.Stop()
	if i.Publisher != nil {
		err := i.Publisher.Close()
		if err != nil {
			log.Errorf("Error closing publisher: err: %v", err)
		}
	}
	if closer, ok := i.Persister.(io.Closer); ok {
		err := closer.Close()
		if err != nil {
			log.Errorf("Error closing persister: err: %v", err)
		}
	}
}

// Init inits the persister, ledger, registry and event recorder from the config.
// The recorder is not started.
func Init(config *utils.RegistryConfig) (*Initialized, error) {
	p, err := helpers.Persister(config)
	if err != nil {
		log.Errorf("Error getting the persister: err: %v", err)
		return nil, err
	}
	persister, ok := p.(model.RegistryPersister)
	if !ok {
		return nil, errors.New("Persister is not a registry persister")
	}
	eventLog, ok := p.(model.GovernanceEventPersister)
	if !ok {
		return nil, errors.New("Persister is not a governance event persister")
	}

	stakeLedger, err := helpers.StakeLedger(config)
	if err != nil {
		log.Errorf("Error w stakeLedger: err: %v", err)
		return nil, err
	}

	regConfig, err := helpers.RegistryConfig(config)
	if err != nil {
		log.Errorf("Error w registry config: err: %v", err)
		return nil, err
	}
	reg, err := registry.NewRegistry(regConfig, persister, stakeLedger)
	if err != nil {
		log.Errorf("Error w registry: err: %v", err)
		return nil, err
	}

	initialized := &Initialized{
		Registry:  reg,
		Ledger:    stakeLedger,
		Persister: persister,
		EventLog:  eventLog,
	}

	// Publisher can be nil
	var publisher events.Publisher
	if config.PubSubEnabled() {
		initialized.Publisher, err = events.NewPubSubPublisher(
			context.Background(),
			config.PubSubProjectID,
			config.PubSubEventsTopicName,
			config.PubSubCredentialsFile,
		)
		if err != nil {
			log.Errorf("Error initializing pubsub: err: %v", err)
			return nil, err
		}
		publisher = initialized.Publisher
	}
	initialized.Recorder = events.NewRecorder(reg, eventLog, publisher)
	return initialized, nil
}
