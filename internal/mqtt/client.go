// internal/mqtt/client.go
package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/config"
)

// MessageHandler receives every inbound delivery. It runs on the paho client's
// own goroutine; downstream state must be synchronized (the store is).
type MessageHandler func(topic, payload string)

// Client wraps the paho MQTT client: subscribes the configured topic set on
// every (re)connect and exposes a QoS1 publish for outbound commands.
type Client struct {
	cli     paho.Client
	topics  []string
	handler MessageHandler
	log     *logrus.Logger
}

func NewClient(cfg config.MQTT, topics []string, handler MessageHandler, log *logrus.Logger) *Client {
	c := &Client{
		topics:  topics,
		handler: handler,
		log:     log,
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	c.cli = paho.NewClient(opts)
	return c
}

// Connect attempts the initial broker connection. On timeout the client keeps
// retrying in the background and the caller should continue in degraded mode;
// the HTTP surface stays available with stale/zero data.
func (c *Client) Connect(timeout time.Duration) error {
	token := c.cli.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("broker not reachable within %s, retrying in background", timeout)
	}
	return token.Error()
}

// Publish sends payload at QoS1 (at-least-one delivery attempt) and waits for
// the client to accept it.
func (c *Client) Publish(topic, payload string) error {
	token := c.cli.Publish(topic, 1, false, payload)
	token.Wait()
	return token.Error()
}

func (c *Client) Disconnect() {
	c.cli.Disconnect(250)
}

// onConnect runs on every successful (re)connection; subscriptions are not
// persisted across clean sessions, so they are re-established here.
func (c *Client) onConnect(cli paho.Client) {
	c.log.Info("connected to MQTT broker")
	for _, topic := range c.topics {
		token := cli.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) {
			c.handler(msg.Topic(), string(msg.Payload()))
		})
		if token.Wait() && token.Error() != nil {
			c.log.Errorf("subscribing to %s: %v", topic, token.Error())
			continue
		}
		c.log.Infof("subscribed to topic: %s", topic)
	}
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	c.log.Warnf("MQTT connection lost: %v", err)
}
