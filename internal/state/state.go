// Package state persists player state across sessions. Each concern is
// an independent JSON document in a key-value table; reads are
// defensive (a malformed document counts as absent) so a corrupt store
// can never take the player down.
package state

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "cadence"
	dbFileName   = "cadence.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager owns the store. Playlist snapshots are debounced because they
// fire on every structural mutation; everything else writes through.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string][]byte
}

// Open opens the store at its XDG data path, creating it if needed.
func Open() (*Manager, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the store at an explicit path.
func OpenPath(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db, pending: map[string][]byte{}}, nil
}

// Close flushes pending writes and closes the store.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = map[string][]byte{}
	m.saveMu.Unlock()

	for key, doc := range pending {
		if err := m.putRaw(key, doc); err != nil {
			log.Printf("state: write %s: %v", key, err)
		}
	}

	return m.db.Close()
}

// put marshals a document and writes it through immediately.
func (m *Manager) put(key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return m.putRaw(key, raw)
}

// putSoon marshals a document and schedules a debounced write.
func (m *Manager) putSoon(key string, doc any) {
	raw, err := json.Marshal(doc)
	if err != nil {
		log.Printf("state: marshal %s: %v", key, err)
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending[key] = raw

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = map[string][]byte{}
		m.saveMu.Unlock()

		for k, d := range pending {
			if err := m.putRaw(k, d); err != nil {
				log.Printf("state: write %s: %v", k, err)
			}
		}
	})
}

// Flush writes any debounced documents now.
func (m *Manager) Flush() {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = map[string][]byte{}
	m.saveMu.Unlock()

	for key, doc := range pending {
		if err := m.putRaw(key, doc); err != nil {
			log.Printf("state: write %s: %v", key, err)
		}
	}
}

func (m *Manager) putRaw(key string, doc []byte) error {
	_, err := m.db.Exec(`
		INSERT INTO documents (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(doc), time.Now().Unix())
	return err
}

// get unmarshals the document at key into out. A missing key or a
// document that fails to parse both report absent; parse failures are
// logged and never propagated.
func (m *Manager) get(key string, out any) bool {
	var raw string
	err := m.db.QueryRow(`SELECT value FROM documents WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		log.Printf("state: read %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("state: parse %s: %v (treating as absent)", key, err)
		return false
	}
	return true
}

func (m *Manager) has(key string) bool {
	var n int
	if err := m.db.QueryRow(`SELECT COUNT(*) FROM documents WHERE key = ?`, key).Scan(&n); err != nil {
		return false
	}
	return n > 0
}
