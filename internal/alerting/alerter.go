// internal/alerting/alerter.go
package alerting

import (
	"github.com/sirupsen/logrus"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/websocket"
)

// Alerter fans alerts out to notification channels (currently the websocket
// hub).
type Alerter struct {
	hub *websocket.Hub
	log *logrus.Logger
}

func NewAlerter(hub *websocket.Hub, log *logrus.Logger) *Alerter {
	return &Alerter{hub: hub, log: log}
}

// Process sends each alert via the configured channels.
func (a *Alerter) Process(alerts []data.Alert) {
	for _, alert := range alerts {
		a.log.Infof("processing alert for %s", alert.Metric)
		if a.hub != nil {
			a.hub.BroadcastAlert(alert)
		}
	}
}
