package ingest

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/config"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/storage"
)

func newTestRouter(t *testing.T) (*Router, *storage.Store) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce log noise

	routes := config.DefaultRoutes()
	store := storage.NewStore(100)
	for _, rt := range routes {
		if rt.Kind == data.KindStatus {
			store.RegisterStatus(rt.Metric, rt.Default)
		} else {
			store.RegisterNumeric(rt.Metric, rt.Axis)
		}
	}

	return NewRouter(store, routes, nil, nil, nil, logger), store
}

func TestRouteTemperature(t *testing.T) {
	r, store := newTestRouter(t)

	upd, err := r.Route("sensor/temperature", "21.50")
	require.NoError(t, err)
	assert.Equal(t, "temperature", upd.Metric)
	assert.Equal(t, 21.5, upd.Value)

	snap := store.Snapshot()
	assert.Equal(t, 21.5, snap.Values["temperature"])

	h := store.HistorySnapshot()
	assert.Equal(t, []float64{21.5}, h.Series["temperature"])
	assert.Len(t, h.Timestamps, 1)
}

func TestRouteTolerantOfSurroundingWhitespace(t *testing.T) {
	r, store := newTestRouter(t)

	_, err := r.Route("sensor/humidity", " 63.2\n")
	require.NoError(t, err)
	assert.Equal(t, 63.2, store.Snapshot().Values["humidity"])
}

func TestMalformedPayloadDropped(t *testing.T) {
	r, store := newTestRouter(t)

	_, err := r.Route("sensor/soil_moisture", "abc")
	require.Error(t, err)

	// The failed message produced no entry; the next one processes normally.
	_, err = r.Route("sensor/soil_moisture", "40")
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.Equal(t, 40.0, snap.Values["soil_moisture"])
	assert.Len(t, store.HistorySnapshot().Series["soil_moisture"], 1)
}

func TestMalformedPayloadLeavesStateUnchanged(t *testing.T) {
	r, store := newTestRouter(t)

	_, err := r.Route("sensor/temperature", "20.0")
	require.NoError(t, err)
	before := store.HistorySnapshot()

	_, err = r.Route("sensor/temperature", "not-a-number")
	require.Error(t, err)

	after := store.HistorySnapshot()
	assert.Equal(t, before.Series["temperature"], after.Series["temperature"])
	assert.Equal(t, before.Timestamps, after.Timestamps)
	assert.Equal(t, 20.0, store.Snapshot().Values["temperature"])
}

func TestIntMetricRejectsFloatPayload(t *testing.T) {
	r, store := newTestRouter(t)

	_, err := r.Route("sensor/soil_moisture", "40.5")
	require.Error(t, err)
	assert.Empty(t, store.HistorySnapshot().Series["soil_moisture"])
}

func TestUnknownTopicIgnored(t *testing.T) {
	r, store := newTestRouter(t)

	_, err := r.Route("sensor/pressure", "1013")
	assert.ErrorIs(t, err, ErrUnknownTopic)

	snap := store.Snapshot()
	assert.Empty(t, snap.LastUpdate, "unknown topics must not touch the store")
}

func TestStatusCaseNormalization(t *testing.T) {
	r, store := newTestRouter(t)

	t.Run("relay status uppercased", func(t *testing.T) {
		upd, err := r.Route("actuator/relay_status", "on")
		require.NoError(t, err)
		assert.Equal(t, "ON", upd.Status)
		assert.Equal(t, "ON", store.Snapshot().Statuses["relay_status"])
	})

	t.Run("device status lowercased", func(t *testing.T) {
		upd, err := r.Route("sensor/status", "ONLINE")
		require.NoError(t, err)
		assert.Equal(t, "online", upd.Status)
		assert.Equal(t, "online", store.Snapshot().Statuses["status"])
	})
}
