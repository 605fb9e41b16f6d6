package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/resilience"
)

var transientErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrConnectionReconnecting,
	nats.ErrDisconnected,
}

// publishError tags connection-level failures as temporary so the shared
// domain classifier retries them.
func publishError(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	for _, target := range transientErrors {
		if errors.Is(err, target) {
			return domain.WrapError(domain.ErrTemporary, "nats publish", err)
		}
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "nats publish", err)
	}
	return err
}
