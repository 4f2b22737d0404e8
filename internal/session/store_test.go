package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akmal-2004/easify-seller/internal/model"
	"github.com/akmal-2004/easify-seller/pkg/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func turns(roles ...model.Role) []model.Turn {
	out := make([]model.Turn, len(roles))
	for i, r := range roles {
		out[i] = model.Turn{Role: r, CreatedAt: time.Now()}
	}
	return out
}

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	s := NewStore(time.Hour, 64, testLogger())

	first := s.GetOrCreate(42)
	second := s.GetOrCreate(42)
	other := s.GetOrCreate(7)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, s.Len())
}

func TestCommitAndReset(t *testing.T) {
	s := NewStore(time.Hour, 64, testLogger())
	sess := s.GetOrCreate(1)

	s.Commit(sess, turns(model.RoleUser, model.RoleAssistant))
	assert.Equal(t, 2, sess.Len())
	assert.Equal(t, 1, sess.Exchanges())

	s.Commit(sess, append(sess.Snapshot(), turns(model.RoleUser, model.RoleAssistant)...))
	assert.Equal(t, 4, sess.Len())

	sess.Reset()
	assert.Equal(t, 0, sess.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(time.Hour, 64, testLogger())
	sess := s.GetOrCreate(1)
	s.Commit(sess, turns(model.RoleUser, model.RoleAssistant))

	snap := sess.Snapshot()
	snap[0].Content = "mutated"

	assert.Empty(t, sess.Snapshot()[0].Content)
}

func TestTrimNeverOrphansToolResults(t *testing.T) {
	s := NewStore(time.Hour, 4, testLogger())
	sess := s.GetOrCreate(1)

	// Two exchanges, the second one with a tool round.
	full := turns(
		model.RoleUser, model.RoleAssistant,
		model.RoleUser, model.RoleAssistant, model.RoleTool, model.RoleAssistant,
	)
	s.Commit(sess, full)

	got := sess.Snapshot()
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 4)
	// Trimming resumes at a user turn so a tool result is never left
	// without its preceding call.
	assert.Equal(t, model.RoleUser, got[0].Role)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	s := NewStore(time.Minute, 64, testLogger())

	idle := s.GetOrCreate(1)
	idle.lastActive = time.Now().Add(-time.Hour)
	fresh := s.GetOrCreate(2)
	fresh.Touch()

	s.sweep(time.Now())

	assert.Equal(t, 1, s.Len())
	assert.Same(t, fresh, s.GetOrCreate(2))
}

func TestSweepSkipsLockedSessions(t *testing.T) {
	s := NewStore(time.Minute, 64, testLogger())

	busy := s.GetOrCreate(1)
	busy.lastActive = time.Now().Add(-time.Hour)
	busy.Lock()
	defer busy.Unlock()

	s.sweep(time.Now())

	assert.Equal(t, 1, s.Len())
}
