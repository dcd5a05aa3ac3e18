package events // import "github.com/joincivil/civil-tcr-registry/pkg/events"

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// Publisher sends a message payload to a topic
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// NewPubSubPublisher returns a publisher for topicID in projectID. If
// credentialsFile is empty the default application credentials are used.
func NewPubSubPublisher(ctx context.Context, projectID string, topicID string,
	credentialsFile string) (*PubSubPublisher, error) {
	if projectID == "" {
		return nil, errors.New("Need pubsub project id")
	}
	if topicID == "" {
		return nil, errors.New("Need pubsub topic name")
	}
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error creating pubsub client")
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "error checking pubsub topic")
	}
	if !exists {
		_ = client.Close()
		return nil, errors.Errorf("pubsub topic %v does not exist", topicID)
	}
	return &PubSubPublisher{client: client, topic: topic}, nil
}

// PubSubPublisher publishes messages to a Google Pub/Sub topic
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// Publish sends data and waits for the server to acknowledge it
func (p *PubSubPublisher) Publish(ctx context.Context, data []byte) error {
	result := p.topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err := result.Get(ctx)
	return err
}

// Close flushes pending messages and closes the client
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
