package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
)

func TestUpdateEvictsOldest(t *testing.T) {
	s := NewStore(3)
	s.RegisterNumeric("temperature", data.AxisAlways)

	now := time.Now()
	for _, v := range []float64{21.0, 21.5, 22.0, 22.5} {
		require.NoError(t, s.Update("temperature", v, now))
	}

	h := s.HistorySnapshot()
	assert.Equal(t, []float64{21.5, 22.0, 22.5}, h.Series["temperature"])
	assert.Len(t, h.Timestamps, 3, "primary metric drives the timestamp axis")

	snap := s.Snapshot()
	assert.Equal(t, 22.5, snap.Values["temperature"])
}

func TestHistoryLengthBelowCapacity(t *testing.T) {
	s := NewStore(100)
	s.RegisterNumeric("humidity", data.AxisNever)

	now := time.Now()
	for i := 0; i < 7; i++ {
		require.NoError(t, s.Update("humidity", float64(i), now))
	}

	h := s.HistorySnapshot()
	assert.Len(t, h.Series["humidity"], 7)
}

func TestAxisPolicies(t *testing.T) {
	now := time.Now()

	t.Run("never", func(t *testing.T) {
		s := NewStore(10)
		s.RegisterNumeric("humidity", data.AxisNever)

		require.NoError(t, s.Update("humidity", 55.0, now))
		require.NoError(t, s.Update("humidity", 56.0, now))

		assert.Empty(t, s.HistorySnapshot().Timestamps)
	})

	t.Run("catchup appends while the axis trails", func(t *testing.T) {
		s := NewStore(10)
		s.RegisterNumeric("soil_moisture", data.AxisCatchup)

		require.NoError(t, s.Update("soil_moisture", 40, now))
		assert.Len(t, s.HistorySnapshot().Timestamps, 1)

		require.NoError(t, s.Update("soil_moisture", 41, now))
		assert.Len(t, s.HistorySnapshot().Timestamps, 2)
	})

	t.Run("catchup skips when the primary already appended", func(t *testing.T) {
		s := NewStore(10)
		s.RegisterNumeric("temperature", data.AxisAlways)
		s.RegisterNumeric("soil_moisture", data.AxisCatchup)

		require.NoError(t, s.Update("temperature", 22.0, now))
		require.NoError(t, s.Update("soil_moisture", 40, now))

		// One temperature sample already put the axis at 1; the soil series
		// is also at 1, so no repair append happens.
		assert.Len(t, s.HistorySnapshot().Timestamps, 1)
	})
}

func TestSetStatus(t *testing.T) {
	s := NewStore(10)
	s.RegisterStatus("relay_status", "OFF")

	snap := s.Snapshot()
	assert.Equal(t, "OFF", snap.Statuses["relay_status"])
	assert.Empty(t, snap.LastUpdate, "no mutation yet")

	require.NoError(t, s.SetStatus("relay_status", "ON", time.Now()))

	snap = s.Snapshot()
	assert.Equal(t, "ON", snap.Statuses["relay_status"])
	assert.NotEmpty(t, snap.LastUpdate)

	_, hasHistory := s.HistorySnapshot().Series["relay_status"]
	assert.False(t, hasHistory, "status metrics carry no history")
}

func TestUnregisteredMetricRejected(t *testing.T) {
	s := NewStore(10)

	assert.Error(t, s.Update("temperature", 1.0, time.Now()))
	assert.Error(t, s.SetStatus("relay_status", "ON", time.Now()))
}

func TestLastUpdateFormat(t *testing.T) {
	s := NewStore(10)
	s.RegisterNumeric("temperature", data.AxisAlways)

	require.NoError(t, s.Update("temperature", 20.0, time.Now()))

	snap := s.Snapshot()
	_, err := time.Parse("2006-01-02 15:04:05", snap.LastUpdate)
	assert.NoError(t, err, "last_update must be second-precision")
}

func TestSnapshotsAreDefensiveCopies(t *testing.T) {
	s := NewStore(10)
	s.RegisterNumeric("temperature", data.AxisAlways)
	require.NoError(t, s.Update("temperature", 20.0, time.Now()))

	h := s.HistorySnapshot()
	h.Series["temperature"][0] = 99.0
	h.Timestamps[0] = "tampered"

	snap := s.Snapshot()
	snap.Values["temperature"] = 99.0

	fresh := s.HistorySnapshot()
	assert.Equal(t, []float64{20.0}, fresh.Series["temperature"])
	assert.NotEqual(t, "tampered", fresh.Timestamps[0])
	assert.Equal(t, 20.0, s.Snapshot().Values["temperature"])
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	const (
		capacity = 50
		writers  = 8
		updates  = 200
	)

	s := NewStore(capacity)
	s.RegisterNumeric("temperature", data.AxisAlways)
	s.RegisterNumeric("humidity", data.AxisNever)
	s.RegisterNumeric("soil_moisture", data.AxisCatchup)
	s.RegisterStatus("relay_status", "OFF")

	metrics := []string{"temperature", "humidity", "soil_moisture"}

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < updates; i++ {
				key := metrics[(w+i)%len(metrics)]
				_ = s.Update(key, float64(i), time.Now())
				if i%10 == 0 {
					_ = s.SetStatus("relay_status", "ON", time.Now())
				}
			}
		}(w)
	}

	// Concurrent readers must never observe torn state or over-long buffers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h := s.HistorySnapshot()
			for key, series := range h.Series {
				if len(series) > capacity {
					t.Errorf("series %s exceeded capacity: %d", key, len(series))
					return
				}
			}
			if len(h.Timestamps) > capacity {
				t.Errorf("timestamp axis exceeded capacity: %d", len(h.Timestamps))
				return
			}
			_ = s.Snapshot()
		}
	}()

	wg.Wait()
	<-done

	h := s.HistorySnapshot()
	for _, key := range metrics {
		assert.Len(t, h.Series[key], capacity)
	}
	assert.Len(t, h.Timestamps, capacity)
}
