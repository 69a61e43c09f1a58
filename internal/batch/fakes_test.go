package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/roach88/rhdcoder/internal/store"
	"github.com/roach88/rhdcoder/internal/testutil"
)

// memStore is an in-memory RecordStore that records every call.
type memStore struct {
	records  map[int64]store.Record
	updates  []int64
	fetchErr error
	failIDs  map[int64]bool
}

func newMemStore(recs ...store.Record) *memStore {
	s := &memStore{records: map[int64]store.Record{}, failIDs: map[int64]bool{}}
	for _, r := range recs {
		s.records[r.ID] = r
	}
	return s
}

func (s *memStore) sorted(obfuscated bool) []store.Record {
	var out []store.Record
	for _, r := range s.records {
		if r.Obfuscated == obfuscated && r.Content != "" {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) Fetch(_ context.Context, obfuscated bool) ([]store.Record, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.sorted(obfuscated), nil
}

func (s *memStore) FetchOne(_ context.Context, obfuscated bool) (store.Record, bool, error) {
	if s.fetchErr != nil {
		return store.Record{}, false, s.fetchErr
	}
	recs := s.sorted(obfuscated)
	if len(recs) == 0 {
		return store.Record{}, false, nil
	}
	return recs[0], true, nil
}

func (s *memStore) Update(_ context.Context, id int64, content string, obfuscated bool) error {
	s.updates = append(s.updates, id)
	if s.failIDs[id] {
		return errors.New("connection reset")
	}
	r, ok := s.records[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	r.Content = content
	r.Obfuscated = obfuscated
	s.records[id] = r
	return nil
}

// fakeBackup counts calls and optionally fails.
type fakeBackup struct {
	calls int
	err   error
}

func (b *fakeBackup) CreateBackup(context.Context) (string, error) {
	b.calls++
	if b.err != nil {
		return "", b.err
	}
	return "backups/test_backup.sql", nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(st RecordStore, bk *fakeBackup) *Runner {
	r := New(st, bk, quietLogger())
	if bk == nil {
		r.Backup = nil
	}
	r.NewRunID = testutil.SequentialRunIDs().Next
	r.Now = testutil.NewStepClock(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), 1500*time.Millisecond).Now
	return r
}
