package hooks

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTxn struct {
	eng        *fakeEngine
	attached   []Record
	detached   []Record
	committed  bool
	aborted    bool
	attachErr  error
	commitErr  error
	detachErrs map[uintptr]error
}

type fakeEngine struct {
	beginErr   error
	attachErr  error
	commitErr  error
	detachErrs map[uintptr]error
	txns       []*fakeTxn
	applied    map[uintptr]uintptr // target -> detour, tracks "real" state
	nextTramp  uintptr
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{applied: map[uintptr]uintptr{}, nextTramp: 0x9000}
}

func (e *fakeEngine) Begin() (Txn, error) {
	if e.beginErr != nil {
		return nil, e.beginErr
	}
	t := &fakeTxn{eng: e, attachErr: e.attachErr, commitErr: e.commitErr, detachErrs: e.detachErrs}
	e.txns = append(e.txns, t)
	return t, nil
}

func (t *fakeTxn) Attach(target, detour uintptr) (uintptr, error) {
	if t.attachErr != nil {
		return 0, t.attachErr
	}
	t.eng.nextTramp += 0x10
	t.attached = append(t.attached, Record{Target: target, Detour: detour, Original: t.eng.nextTramp})
	return t.eng.nextTramp, nil
}

func (t *fakeTxn) Detach(rec Record) error {
	if err := t.detachErrs[rec.Target]; err != nil {
		return err
	}
	t.detached = append(t.detached, rec)
	return nil
}

func (t *fakeTxn) Commit() error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	for _, r := range t.detached {
		delete(t.eng.applied, r.Target)
	}
	for _, r := range t.attached {
		t.eng.applied[r.Target] = r.Detour
	}
	return nil
}

func (t *fakeTxn) Abort() { t.aborted = true }

func TestInstallAndRemove(t *testing.T) {
	as := assert.New(t)
	eng := newFakeEngine()
	m := NewManager(eng)

	orig, err := m.Install("dsp_chat", 0x1000, 0x2000)
	as.NoError(err)
	as.NotZero(orig)
	as.Equal(uintptr(0x2000), eng.applied[0x1000])
	as.Len(m.Installed(), 1)

	as.NoError(m.Remove("dsp_chat"))
	as.Empty(eng.applied)
	as.Empty(m.Installed())
}

func TestInstallNilPointers(t *testing.T) {
	m := NewManager(newFakeEngine())
	_, err := m.Install("x", 0, 0x2000)
	assert.Error(t, err)
	_, err = m.Install("x", 0x1000, 0)
	assert.Error(t, err)
	assert.Empty(t, m.Installed())
}

func TestAttachFailureLeavesTableUntouched(t *testing.T) {
	as := assert.New(t)
	eng := newFakeEngine()
	m := NewManager(eng)

	_, err := m.Install("good", 0x1000, 0x2000)
	require.NoError(t, err)

	eng.attachErr = errors.New("prologue too weird")
	_, err = m.Install("bad", 0x3000, 0x4000)
	as.Error(err)

	// Failed transaction was aborted and the earlier hook is unaffected.
	as.True(eng.txns[len(eng.txns)-1].aborted)
	as.Len(m.Installed(), 1)
	as.Equal("good", m.Installed()[0].Name)
	as.Equal(uintptr(0x2000), eng.applied[0x1000])
	as.NotContains(eng.applied, uintptr(0x3000))
}

func TestCommitFailureLeavesTableUntouched(t *testing.T) {
	as := assert.New(t)
	eng := newFakeEngine()
	eng.commitErr = errors.New("page pinned")
	m := NewManager(eng)

	_, err := m.Install("x", 0x1000, 0x2000)
	as.Error(err)
	as.Empty(m.Installed())
	as.Empty(eng.applied)
}

func TestDuplicateNamesAreSeparateRecords(t *testing.T) {
	as := assert.New(t)
	eng := newFakeEngine()
	m := NewManager(eng)

	_, err := m.Install("pulse", 0x1000, 0x2000)
	require.NoError(t, err)
	_, err = m.Install("pulse", 0x3000, 0x4000)
	require.NoError(t, err)
	as.Len(m.Installed(), 2)

	// Remove takes the oldest match.
	as.NoError(m.Remove("pulse"))
	recs := m.Installed()
	require.Len(t, recs, 1)
	as.Equal(uintptr(0x3000), recs[0].Target)

	as.NoError(m.Remove("pulse"))
	as.Empty(m.Installed())
	as.Error(m.Remove("pulse"))
}

func TestRemoveUnknown(t *testing.T) {
	m := NewManager(newFakeEngine())
	assert.Error(t, m.Remove("never_installed"))
}

func TestRemoveAll(t *testing.T) {
	as := assert.New(t)
	eng := newFakeEngine()
	m := NewManager(eng)

	for i, name := range []string{"a", "b", "c"} {
		_, err := m.Install(name, uintptr(0x1000*(i+1)), 0x9000)
		require.NoError(t, err)
	}

	m.RemoveAll()
	as.Empty(m.Installed())
	as.Empty(eng.applied)

	// Single transaction, newest detached first.
	last := eng.txns[len(eng.txns)-1]
	require.Len(t, last.detached, 3)
	as.Equal("c", last.detached[0].Name)
	as.Equal("a", last.detached[2].Name)
}

func TestRemoveAllSkipsFailedDetach(t *testing.T) {
	as := assert.New(t)
	eng := newFakeEngine()
	m := NewManager(eng)

	_, err := m.Install("a", 0x1000, 0x9000)
	require.NoError(t, err)
	_, err = m.Install("b", 0x2000, 0x9000)
	require.NoError(t, err)

	eng.detachErrs = map[uintptr]error{0x2000: errors.New("stuck")}
	m.RemoveAll()

	// The failing record is skipped, the rest detach and the table clears.
	as.Empty(m.Installed())
	as.NotContains(eng.applied, uintptr(0x1000))
	as.Contains(eng.applied, uintptr(0x2000))
}

func TestRemoveAllEmpty(t *testing.T) {
	eng := newFakeEngine()
	m := NewManager(eng)
	m.RemoveAll()
	assert.Empty(t, eng.txns)
}
