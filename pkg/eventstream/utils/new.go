// Package eventstreamutils builds an eventstream.Publisher from configuration.
package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/ragnotes/pkg/eventstream"
	"github.com/papercomputeco/ragnotes/pkg/eventstream/kafka"
	"github.com/papercomputeco/ragnotes/pkg/eventstream/nop"
)

const (
	ProviderNone  = "none"
	ProviderKafka = "kafka"
)

// Providers lists the supported publisher backends.
var Providers = []string{ProviderNone, ProviderKafka}

type NewPublisherOpts struct {
	ProviderType string
	Brokers      string
	Topic        string
	Logger       *slog.Logger
}

// NewPublisher returns a publisher for the configured backend. An empty
// provider type selects the no-op publisher.
func NewPublisher(opts *NewPublisherOpts) (eventstream.Publisher, error) {
	switch opts.ProviderType {
	case "", ProviderNone:
		return nop.NewPublisher(), nil
	case ProviderKafka:
		return kafka.NewPublisher(kafka.Config{
			Brokers: opts.Brokers,
			Topic:   opts.Topic,
		}, opts.Logger)
	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q (supported: %v)", opts.ProviderType, Providers)
	}
}
