// Package hooks manages inline detours on the client's code. All attach and
// detach work runs inside engine transactions so a half-applied batch never
// leaves the process in a mixed state.
package hooks

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Record is one installed detour. Original is the trampoline the detour
// calls to reach the displaced prologue.
type Record struct {
	Name     string
	Target   uintptr
	Detour   uintptr
	Original uintptr
}

// Engine applies detours. The native engine rewrites prologues; tests plug
// in fakes.
type Engine interface {
	Begin() (Txn, error)
}

// Txn is a single attach/detach batch. After Commit or Abort the Txn is
// dead.
type Txn interface {
	Attach(target, detour uintptr) (original uintptr, err error)
	Detach(rec Record) error
	Commit() error
	Abort()
}

// Manager tracks installed detours by name. Names are labels, not keys:
// installing the same name twice yields two records, and Remove takes the
// oldest match first.
type Manager struct {
	mu      sync.Mutex
	engine  Engine
	records []Record
	log     *zap.SugaredLogger
}

func NewManager(engine Engine) *Manager {
	return &Manager{
		engine: engine,
		log:    zap.S().Named("hooks"),
	}
}

// Install attaches detour over target and returns the trampoline for
// calling the original code. On any failure the transaction is aborted and
// the record table is untouched.
func (m *Manager) Install(name string, target, detour uintptr) (uintptr, error) {
	if target == 0 || detour == 0 {
		return 0, errors.Errorf("hooks: install %q with nil target or detour", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.engine.Begin()
	if err != nil {
		return 0, errors.Wrapf(err, "hooks: begin for %q", name)
	}
	original, err := txn.Attach(target, detour)
	if err != nil {
		txn.Abort()
		return 0, errors.Wrapf(err, "hooks: attach %q at %#x", name, target)
	}
	if err := txn.Commit(); err != nil {
		txn.Abort()
		return 0, errors.Wrapf(err, "hooks: commit %q", name)
	}

	m.records = append(m.records, Record{Name: name, Target: target, Detour: detour, Original: original})
	m.log.Infof("installed %s at %#x", name, target)
	return original, nil
}

// Remove detaches the oldest record with the given name. Unknown names are
// an error.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, r := range m.records {
		if r.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Errorf("hooks: remove unknown hook %q", name)
	}
	rec := m.records[idx]

	txn, err := m.engine.Begin()
	if err != nil {
		return errors.Wrapf(err, "hooks: begin for remove %q", name)
	}
	if err := txn.Detach(rec); err != nil {
		txn.Abort()
		return errors.Wrapf(err, "hooks: detach %q", name)
	}
	if err := txn.Commit(); err != nil {
		txn.Abort()
		return errors.Wrapf(err, "hooks: commit remove %q", name)
	}

	m.records = append(m.records[:idx], m.records[idx+1:]...)
	m.log.Infof("removed %s", name)
	return nil
}

// RemoveAll detaches every record in a single transaction, newest first.
// A record that fails to detach is logged and skipped; the rest still come
// out. The table is cleared once the batch commits.
func (m *Manager) RemoveAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) == 0 {
		return
	}
	txn, err := m.engine.Begin()
	if err != nil {
		m.log.Errorf("remove all: begin failed: %v", err)
		return
	}
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if err := txn.Detach(rec); err != nil {
			m.log.Errorf("remove all: detach %s failed: %v", rec.Name, err)
		}
	}
	if err := txn.Commit(); err != nil {
		txn.Abort()
		m.log.Errorf("remove all: commit failed: %v", err)
		return
	}
	m.log.Infof("removed %d hooks", len(m.records))
	m.records = nil
}

// Installed reports a snapshot of the current records.
func (m *Manager) Installed() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}
