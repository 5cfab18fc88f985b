// internal/ingest/router.go
package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/alerting"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/anomaly"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/config"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/storage"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/websocket"
)

// ErrUnknownTopic marks messages on topics outside the configured route
// table. Not an error condition for the caller; the message is just ignored.
var ErrUnknownTopic = errors.New("unknown topic")

// Router maps inbound (topic, payload) pairs to typed store mutations. It is
// the single writer path into the store: the transport delivers every message
// here, on its own goroutine.
type Router struct {
	store    *storage.Store
	routes   map[string]config.TopicRoute
	detector *anomaly.Detector
	alerter  *alerting.Alerter
	hub      *websocket.Hub
	log      *logrus.Logger
}

// NewRouter builds the route table. detector, alerter and hub may be nil;
// the corresponding side effects are skipped.
func NewRouter(store *storage.Store, routes []config.TopicRoute, detector *anomaly.Detector, alerter *alerting.Alerter, hub *websocket.Hub, log *logrus.Logger) *Router {
	table := make(map[string]config.TopicRoute, len(routes))
	for _, rt := range routes {
		table[rt.Topic] = rt
	}
	return &Router{
		store:    store,
		routes:   table,
		detector: detector,
		alerter:  alerter,
		hub:      hub,
		log:      log,
	}
}

// Route parses one delivery and applies it to the store. Malformed payloads
// are dropped with a warning and mutate nothing; processing continues with
// the next message. At-most-once: no retry, the transport does not redeliver
// through this layer.
func (r *Router) Route(topic, payload string) (data.Update, error) {
	r.log.Infof("[%s] %s", topic, payload)

	rt, ok := r.routes[topic]
	if !ok {
		r.log.Debugf("ignoring message on unmapped topic %q", topic)
		return data.Update{}, ErrUnknownTopic
	}

	now := time.Now()
	upd := data.Update{Metric: rt.Metric, Kind: rt.Kind, Timestamp: now}

	switch rt.Kind {
	case data.KindFloat:
		value, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
		if err != nil {
			r.log.Warnf("dropping malformed payload on %s: %v", topic, err)
			return data.Update{}, fmt.Errorf("parsing %s payload %q: %w", topic, payload, err)
		}
		upd.Value = value
		if err := r.store.Update(rt.Metric, value, now); err != nil {
			return data.Update{}, err
		}

	case data.KindInt:
		value, err := strconv.Atoi(strings.TrimSpace(payload))
		if err != nil {
			r.log.Warnf("dropping malformed payload on %s: %v", topic, err)
			return data.Update{}, fmt.Errorf("parsing %s payload %q: %w", topic, payload, err)
		}
		upd.Value = float64(value)
		if err := r.store.Update(rt.Metric, upd.Value, now); err != nil {
			return data.Update{}, err
		}

	case data.KindStatus:
		upd.Status = normalize(payload, rt.Case)
		if err := r.store.SetStatus(rt.Metric, upd.Status, now); err != nil {
			return data.Update{}, err
		}

	default:
		return data.Update{}, fmt.Errorf("route for %s has unsupported kind %q", topic, rt.Kind)
	}

	// Side effects run after the store mutation, outside its lock.
	if r.detector != nil && rt.Kind != data.KindStatus {
		if alerts := r.detector.Check(upd); len(alerts) > 0 && r.alerter != nil {
			r.alerter.Process(alerts)
		}
	}
	if r.hub != nil {
		r.hub.BroadcastUpdate(upd)
	}

	return upd, nil
}

func normalize(payload string, policy data.CasePolicy) string {
	switch policy {
	case data.CaseUpper:
		return strings.ToUpper(payload)
	case data.CaseLower:
		return strings.ToLower(payload)
	default:
		return payload
	}
}
