package inmemdb

import (
	"context"
	"sync"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

type (
	tables struct {
		slots         map[string]slot.Slot // by slot_time
		assignments   map[string]assignment.Assignment
		attendance    []attendance.Record
		skipRequests  map[string]skiprequest.SkipRequest
		updates       []update.Update
		templates     map[string]campaign.Template // by template_name
		programs      map[string]campaign.Program
		registrations []campaign.Registration

		slotSeq       int
		attendanceSeq int64
		updateSeq     int64
		templateSeq   int
	}

	// DB is a process-local store with the same constraints as the SQL schema.
	DB struct {
		mu   sync.RWMutex // guards t
		txMu sync.Mutex   // one transaction at a time
		t    *tables
	}

	txKey struct{}
)

func newTables() *tables {
	return &tables{
		slots:        make(map[string]slot.Slot),
		assignments:  make(map[string]assignment.Assignment),
		skipRequests: make(map[string]skiprequest.SkipRequest),
		templates:    make(map[string]campaign.Template),
		programs:     make(map[string]campaign.Program),
	}
}

func Open() *DB {
	return &DB{t: newTables()}
}

func (t *tables) clone() *tables {
	c := &tables{
		slots:         make(map[string]slot.Slot, len(t.slots)),
		assignments:   make(map[string]assignment.Assignment, len(t.assignments)),
		attendance:    append([]attendance.Record(nil), t.attendance...),
		skipRequests:  make(map[string]skiprequest.SkipRequest, len(t.skipRequests)),
		updates:       append([]update.Update(nil), t.updates...),
		templates:     make(map[string]campaign.Template, len(t.templates)),
		programs:      make(map[string]campaign.Program, len(t.programs)),
		registrations: append([]campaign.Registration(nil), t.registrations...),
		slotSeq:       t.slotSeq,
		attendanceSeq: t.attendanceSeq,
		updateSeq:     t.updateSeq,
		templateSeq:   t.templateSeq,
	}
	for k, v := range t.slots {
		c.slots[k] = v
	}
	for k, v := range t.assignments {
		c.assignments[k] = v
	}
	for k, v := range t.skipRequests {
		c.skipRequests[k] = v
	}
	for k, v := range t.templates {
		c.templates[k] = v
	}
	for k, v := range t.programs {
		c.programs[k] = v
	}
	return c
}

func (db *DB) inTx(ctx context.Context) bool {
	tx, _ := ctx.Value(txKey{}).(*DB)
	return tx == db
}

// lock takes the write lock. Outside a transaction it first waits for the running one to end,
// so that a rollback only ever reverts the transaction's own writes.
func (db *DB) lock(ctx context.Context) (unlock func()) {
	if db.inTx(ctx) {
		db.mu.Lock()
		return db.mu.Unlock
	}
	db.txMu.Lock()
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		db.txMu.Unlock()
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.t = newTables()
}

type txManager struct {
	db *DB
}

var _ core.TxManager = (*txManager)(nil)

func NewTxManager(db *DB) core.TxManager {
	return &txManager{db: db}
}

// RunInTx runs fn while holding the transaction lock; on error the tables are restored as they were.
// Nested calls join the outer transaction.
func (m *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.db.inTx(ctx) {
		return fn(ctx)
	}

	m.db.txMu.Lock()
	defer m.db.txMu.Unlock()

	m.db.mu.RLock()
	snapshot := m.db.t.clone()
	m.db.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, m.db)); err != nil {
		m.db.mu.Lock()
		m.db.t = snapshot
		m.db.mu.Unlock()
		return err
	}
	return nil
}
