package bluetooth

import (
	"sort"
	"sync"
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/config"
)

// BeaconStore is a thread-safe table of beacons heard recently.
type BeaconStore struct {
	mu      sync.RWMutex
	beacons map[string]*Sighting
	now     func() time.Time
}

// NewBeaconStore creates a new empty BeaconStore.
func NewBeaconStore() *BeaconStore {
	return &BeaconStore{
		beacons: make(map[string]*Sighting),
		now:     time.Now,
	}
}

// Upsert records one reception. RSSI of a known beacon is smoothed using
// EMA; distance is estimated against the beacon's own measured power.
func (s *BeaconStore) Upsert(d beacon.Discovered) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := sightingKey(d)
	rssi := float64(d.RSSI)
	power := float64(d.MeasuredPower)

	if existing, ok := s.beacons[key]; ok {
		existing.RSSI = existing.RSSI*(1-config.SmoothingAlpha) + rssi*config.SmoothingAlpha
		existing.Distance = RSSIToDistance(existing.RSSI, power, config.PathLossExp)
		existing.Discovered = d
		existing.LastSeen = now
		existing.Count++
		existing.history.push(rssi)
		return
	}

	history := newRSSIWindow(config.HistoryLen)
	history.push(rssi)
	s.beacons[key] = &Sighting{
		Discovered: d,
		Key:        key,
		RSSI:       rssi,
		Distance:   RSSIToDistance(rssi, power, config.PathLossExp),
		FirstSeen:  now,
		LastSeen:   now,
		Count:      1,
		history:    history,
	}
}

// Evict removes beacons not heard within the timeout duration.
// Returns the number of evicted beacons.
func (s *BeaconStore) Evict(timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-timeout)
	count := 0
	for key, b := range s.beacons {
		if b.LastSeen.Before(cutoff) {
			delete(s.beacons, key)
			count++
		}
	}
	return count
}

// Snapshot returns a sorted copy of all beacons (strongest RSSI first).
func (s *BeaconStore) Snapshot() []*Sighting {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Sighting, 0, len(s.beacons))
	for _, b := range s.beacons {
		cp := *b
		cp.History = b.history.values()
		cp.history = nil
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].RSSI != result[j].RSSI {
			return result[i].RSSI > result[j].RSSI // Strongest first (less negative)
		}
		return result[i].Key < result[j].Key
	})
	return result
}

// Count returns the total number of tracked beacons.
func (s *BeaconStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.beacons)
}
