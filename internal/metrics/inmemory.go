package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginsSucceeded    uint64
	LoginsFailed       uint64
	NotesCreated       uint64
	NotesUpdated       uint64
	NotesDeleted       uint64
	NoteQuotaRejected  uint64
	TenantsUpgraded    uint64
	UsersInvited       uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginsSucceeded   uint64
	loginsFailed      uint64
	notesCreated      uint64
	notesUpdated      uint64
	notesDeleted      uint64
	noteQuotaRejected uint64
	tenantsUpgraded   uint64
	usersInvited      uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginsSucceeded:   atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:      atomic.LoadUint64(&m.loginsFailed),
		NotesCreated:      atomic.LoadUint64(&m.notesCreated),
		NotesUpdated:      atomic.LoadUint64(&m.notesUpdated),
		NotesDeleted:      atomic.LoadUint64(&m.notesDeleted),
		NoteQuotaRejected: atomic.LoadUint64(&m.noteQuotaRejected),
		TenantsUpgraded:   atomic.LoadUint64(&m.tenantsUpgraded),
		UsersInvited:      atomic.LoadUint64(&m.usersInvited),
	}
}

// IncLoginSucceeded increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSucceeded() {
	atomic.AddUint64(&m.loginsSucceeded, 1)
}

// IncLoginFailed increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailed() {
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncNoteCreated increments the note created counter.
func (m *InMemoryRecorder) IncNoteCreated() {
	atomic.AddUint64(&m.notesCreated, 1)
}

// IncNoteUpdated increments the note updated counter.
func (m *InMemoryRecorder) IncNoteUpdated() {
	atomic.AddUint64(&m.notesUpdated, 1)
}

// IncNoteDeleted increments the note deleted counter.
func (m *InMemoryRecorder) IncNoteDeleted() {
	atomic.AddUint64(&m.notesDeleted, 1)
}

// IncNoteQuotaRejected increments the quota rejection counter.
func (m *InMemoryRecorder) IncNoteQuotaRejected() {
	atomic.AddUint64(&m.noteQuotaRejected, 1)
}

// IncTenantUpgraded increments the tenant upgrade counter.
func (m *InMemoryRecorder) IncTenantUpgraded() {
	atomic.AddUint64(&m.tenantsUpgraded, 1)
}

// IncUserInvited increments the invited user counter.
func (m *InMemoryRecorder) IncUserInvited() {
	atomic.AddUint64(&m.usersInvited, 1)
}
