package fakesessionstore

import (
	"errors"
	"maps"
	"sync"

	"github.com/jrsteele09/go-billing-console/sessions"
)

var _ sessions.Store = (*FakeSessionStore)(nil)

// ErrInjected is returned by Save or Clear when the fake is told to fail.
var ErrInjected = errors.New("injected store failure")

// FakeSessionStore keeps the persisted entries in memory. Entries are stored
// in their serialised form so Load never hands back a pointer that was saved.
type FakeSessionStore struct {
	entries   map[string]string
	failSave  bool
	failClear bool
	saves     int
	clears    int
	lock      sync.RWMutex
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{entries: make(map[string]string)}
}

func (fs *FakeSessionStore) Save(session sessions.Session) error {
	entries, err := sessions.Entries(session)
	if err != nil {
		return err
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.failSave {
		return ErrInjected
	}
	fs.saves++
	fs.entries = entries
	return nil
}

func (fs *FakeSessionStore) Load() (sessions.Session, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return sessions.FromEntries(fs.entries)
}

func (fs *FakeSessionStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.failClear {
		return ErrInjected
	}
	fs.clears++
	fs.entries = make(map[string]string)
	return nil
}

// Entries returns a copy of the raw persisted entries.
func (fs *FakeSessionStore) Entries() map[string]string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return maps.Clone(fs.entries)
}

func (fs *FakeSessionStore) FailSave(fail bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failSave = fail
}

func (fs *FakeSessionStore) FailClear(fail bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failClear = fail
}

func (fs *FakeSessionStore) Saves() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.saves
}

func (fs *FakeSessionStore) Clears() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.clears
}
