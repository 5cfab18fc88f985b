// internal/command/dispatcher.go
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrInvalidCommand rejects anything outside {ON, OFF, AUTO}.
var ErrInvalidCommand = errors.New("invalid relay command")

// Publisher is the outbound side of the transport. Satisfied by mqtt.Client.
type Publisher interface {
	Publish(topic, payload string) error
}

// Dispatcher validates relay commands and forwards them to the actuator
// control topic. Fire-and-forget: success means the command was handed to the
// transport, not that the actuator confirmed it. Confirmation, if any, arrives
// later as an ordinary relay_status update.
type Dispatcher struct {
	pub   Publisher
	topic string
	log   *logrus.Logger
}

func NewDispatcher(pub Publisher, topic string, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, topic: topic, log: log}
}

// Dispatch normalizes the command to uppercase, validates it and publishes.
// Returns the normalized command on success. Validation is pure and lock-free;
// no store state is involved.
func (d *Dispatcher) Dispatch(command string) (string, error) {
	cmd := strings.ToUpper(strings.TrimSpace(command))
	switch cmd {
	case "ON", "OFF", "AUTO":
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCommand, command)
	}

	if err := d.pub.Publish(d.topic, cmd); err != nil {
		return "", fmt.Errorf("publishing relay command: %w", err)
	}
	d.log.Infof("relay command dispatched: %s", cmd)
	return cmd, nil
}
