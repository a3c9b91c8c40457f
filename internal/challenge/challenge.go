package challenge

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/park285/cheese-duel/internal/duel"
)

var (
	ErrInvalidArgs      = errors.New("invalid arguments")
	ErrSelfChallenge    = errors.New("cannot challenge yourself")
	ErrAlreadyPending   = errors.New("target already has a pending challenge")
	ErrNoPendingForUser = errors.New("no pending challenge for target user")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

// DefaultTTL bounds how long a pending challenge can be answered.
const DefaultTTL = 5 * time.Minute

type Challenge struct {
	ID             string
	OriginRoom     string
	ResolveRoom    string
	ChallengerID   string
	ChallengerName string
	TargetID       string
	TargetName     string
	Color          duel.ColorChoice
	CreatedAt      time.Time
	Status         Status
}

// Participants converts an accepted challenge into duel participants.
func (c *Challenge) Participants() duel.Participants {
	return duel.Participants{
		OriginRoom:     c.OriginRoom,
		ResolveRoom:    c.ResolveRoom,
		ChallengerID:   c.ChallengerID,
		ChallengerName: c.ChallengerName,
		TargetID:       c.TargetID,
		TargetName:     c.TargetName,
		Color:          c.Color,
	}
}

type Option func(*Manager)

// WithAutoAccept makes every new challenge accepted in its origin room.
func WithAutoAccept() Option { return func(m *Manager) { m.autoAccept = true } }

func WithTTL(d time.Duration) Option { return func(m *Manager) { m.ttl = d } }

// Manager tracks direct challenges in memory; they do not survive a restart.
type Manager struct {
	mu         sync.Mutex
	byTarget   map[string][]*Challenge
	seq        uint64
	autoAccept bool
	ttl        time.Duration
	now        func() time.Time
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{byTarget: make(map[string][]*Challenge), ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Create(originRoom, challengerID, challengerName, targetID, targetName string, color duel.ColorChoice) (*Challenge, error) {
	if originRoom == "" || challengerID == "" || targetID == "" {
		return nil, ErrInvalidArgs
	}
	if challengerID == targetID {
		return nil, ErrSelfChallenge
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(targetID)

	list := m.byTarget[targetID]
	if latestPendingIndex(list) >= 0 {
		return nil, ErrAlreadyPending
	}
	ch := &Challenge{
		ID:             m.nextID(),
		OriginRoom:     originRoom,
		ChallengerID:   challengerID,
		ChallengerName: challengerName,
		TargetID:       targetID,
		TargetName:     targetName,
		Color:          color,
		CreatedAt:      m.now(),
		Status:         StatusPending,
	}
	if m.autoAccept {
		ch.Status = StatusAccepted
		ch.ResolveRoom = originRoom
	}
	m.byTarget[targetID] = append(list, ch)
	return ch, nil
}

func (m *Manager) Accept(targetID, acceptRoom string) (*Challenge, error) {
	return m.resolve(targetID, acceptRoom, StatusAccepted)
}

func (m *Manager) Decline(targetID, declineRoom string) (*Challenge, error) {
	return m.resolve(targetID, declineRoom, StatusDeclined)
}

// Pending returns the challenge waiting for targetID, or nil.
func (m *Manager) Pending(targetID string) *Challenge {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(targetID)
	list := m.byTarget[targetID]
	if idx := latestPendingIndex(list); idx >= 0 {
		c := *list[idx]
		return &c
	}
	return nil
}

func (m *Manager) resolve(targetID, room string, status Status) (*Challenge, error) {
	if targetID == "" {
		return nil, ErrInvalidArgs
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(targetID)
	list := m.byTarget[targetID]
	idx := latestPendingIndex(list)
	if idx < 0 {
		return nil, ErrNoPendingForUser
	}
	ch := list[idx]
	ch.Status = status
	ch.ResolveRoom = room
	return ch, nil
}

// pruneLocked drops challenges older than the TTL.
func (m *Manager) pruneLocked(targetID string) {
	list := m.byTarget[targetID]
	cutoff := m.now().Add(-m.ttl)
	kept := list[:0]
	for _, c := range list {
		if c.CreatedAt.After(cutoff) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(m.byTarget, targetID)
		return
	}
	m.byTarget[targetID] = kept
}

func latestPendingIndex(list []*Challenge) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Status == StatusPending {
			return i
		}
	}
	return -1
}

func (m *Manager) nextID() string {
	n := atomic.AddUint64(&m.seq, 1)
	return fmt.Sprintf("ch-%d-%d", m.now().UnixNano(), n)
}
