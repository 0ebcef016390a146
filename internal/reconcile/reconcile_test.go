package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	identitydomain "hrms-platform/backend/internal/identity/domain"
)

type memSessions struct {
	mu            sync.Mutex
	expired       []string
	activeCounts  map[string]int64
	pruned        int64
	pruneErr      error
	expiredErr    error
	prunedCutoffs []time.Time
}

func (m *memSessions) ExpiredSubjects(ctx context.Context, subjectType identitydomain.PrincipalType, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expiredErr != nil {
		return nil, m.expiredErr
	}
	return append([]string(nil), m.expired...), nil
}

func (m *memSessions) CountActiveBySubject(ctx context.Context, subjectID string, subjectType identitydomain.PrincipalType, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeCounts[subjectID], nil
}

func (m *memSessions) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pruneErr != nil {
		return 0, m.pruneErr
	}
	m.prunedCutoffs = append(m.prunedCutoffs, cutoff)
	return m.pruned, nil
}

type memPresence struct {
	mu      sync.Mutex
	offline [][]string
	n       int64
}

func (m *memPresence) SetOffline(ctx context.Context, employeeIDs []string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = append(m.offline, append([]string(nil), employeeIDs...))
	if m.n > 0 {
		return m.n, nil
	}
	return int64(len(employeeIDs)), nil
}

func TestRunMarksOrphanedEmployeesOffline(t *testing.T) {
	sessions := &memSessions{
		expired:      []string{"emp-1", "emp-2", "emp-3"},
		activeCounts: map[string]int64{"emp-2": 1}, // emp-2 still has a live session
		pruned:       4,
	}
	presence := &memPresence{}
	r := NewReconciler(sessions, presence, nil, 720*time.Hour)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ExpiredSubjects != 3 || stats.MarkedOffline != 2 || stats.PrunedSessions != 4 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(presence.offline) != 1 {
		t.Fatalf("expected one SetOffline call, got %d", len(presence.offline))
	}
	got := presence.offline[0]
	if len(got) != 2 || got[0] != "emp-1" || got[1] != "emp-3" {
		t.Errorf("employees with a live session must stay online, got %v", got)
	}
}

func TestRunNoExpiredSubjects(t *testing.T) {
	sessions := &memSessions{pruned: 1}
	presence := &memPresence{}
	r := NewReconciler(sessions, presence, nil, 720*time.Hour)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.MarkedOffline != 0 || len(presence.offline) != 0 {
		t.Errorf("no SetOffline call expected: %+v", stats)
	}
}

func TestRunPruneFailureIsNonFatal(t *testing.T) {
	sessions := &memSessions{
		expired:  []string{"emp-1"},
		pruneErr: errors.New("lock timeout"),
	}
	presence := &memPresence{}
	r := NewReconciler(sessions, presence, nil, 720*time.Hour)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("prune failure must not fail the run: %v", err)
	}
	if stats.MarkedOffline != 1 || stats.PrunedSessions != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRunRetentionCutoff(t *testing.T) {
	sessions := &memSessions{}
	r := NewReconciler(sessions, &memPresence{}, nil, 720*time.Hour)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := fixed.Add(-720 * time.Hour)
	if len(sessions.prunedCutoffs) != 1 || !sessions.prunedCutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", sessions.prunedCutoffs, want)
	}
}

func TestRunExpiredSubjectsError(t *testing.T) {
	sessions := &memSessions{expiredErr: errors.New("db down")}
	r := NewReconciler(sessions, &memPresence{}, nil, time.Hour)

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	sessions := &memSessions{expired: []string{"emp-1"}}
	presence := &memPresence{}
	r := NewReconciler(sessions, presence, nil, time.Hour)
	s := NewScheduler(r, 10*time.Millisecond)

	s.Start(context.Background())
	s.Start(context.Background()) // second Start is a no-op
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent

	presence.mu.Lock()
	runs := len(presence.offline)
	presence.mu.Unlock()
	if runs < 2 {
		t.Errorf("expected at least 2 passes (immediate + ticks), got %d", runs)
	}

	// No passes after Stop.
	time.Sleep(30 * time.Millisecond)
	presence.mu.Lock()
	after := len(presence.offline)
	presence.mu.Unlock()
	if after != runs {
		t.Errorf("passes continued after Stop: %d -> %d", runs, after)
	}
}
