package resolve

import (
	"sync"
	"time"
)

// maxStatsEntries bounds the advisory stats table. Once full, an arbitrary
// entry is evicted to make room; the table is a diagnostic aid, not a
// system of record.
const maxStatsEntries = 4096

type statsKey struct {
	animeID int
	episode int
}

// EpisodeStats is a rolling per-episode resolution tally.
type EpisodeStats struct {
	Attempts     int       `json:"attempts"`
	Successes    int       `json:"successes"`
	LastProvider string    `json:"last_provider,omitempty"`
	LastResolved time.Time `json:"last_resolved,omitempty"`
}

type statsTable struct {
	mu      sync.Mutex
	entries map[statsKey]*EpisodeStats
}

func newStatsTable() *statsTable {
	return &statsTable{entries: make(map[statsKey]*EpisodeStats)}
}

func (t *statsTable) record(animeID, episode int, providerName string, ok bool) {
	key := statsKey{animeID: animeID, episode: episode}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, exists := t.entries[key]
	if !exists {
		if len(t.entries) >= maxStatsEntries {
			for victim := range t.entries {
				delete(t.entries, victim)
				break
			}
		}
		st = &EpisodeStats{}
		t.entries[key] = st
	}

	st.Attempts++
	if ok {
		st.Successes++
		st.LastProvider = providerName
		st.LastResolved = time.Now()
	}
}

func (t *statsTable) get(animeID, episode int) (EpisodeStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.entries[statsKey{animeID: animeID, episode: episode}]
	if !ok {
		return EpisodeStats{}, false
	}
	return *st, true
}

func (t *statsTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
