package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then throwID ASC (deterministic). "less" means ranks
// earlier, so in-order traversal lists throws from best to worst. One treap
// holds every throw and one per session holds that session's throws.

// scoreScale controls fixed-point scaling from float64. Grade scores sit in
// 0..100 so nine decimal places cannot overflow.
const scoreScale = 1_000_000_000

const (
	defaultSnapshotInterval = time.Second
	defaultTopCacheSize     = 50
)

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x*scoreScale >= float64(math.MaxInt64):
		return scoreFP(math.MaxInt64)
	case x*scoreScale <= float64(math.MinInt64):
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// priority hashes the throw id so the tree shape does not depend on the
// order scores arrive in.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Rotate the higher priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes score strictly higher than score.
func countAbove(n *node, score scoreFP) int {
	if n == nil {
		return 0
	}
	if n.score > score {
		return nsize(n.left) + 1 + countAbove(n.right, score)
	}
	return countAbove(n.left, score)
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, records map[string]record, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, ok := records[n.id]; ok {
			*out = append(*out, rec.entry(n.id))
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// assignRanksWithTies gives equal scores the same rank; the next distinct
// score takes its position (1, 2, 2, 4).
func assignRanksWithTies(entries []types.Entry, offset int) {
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = offset + i + 1
	}
}

// record stores the fixed-point score plus metadata for a throw.
type record struct {
	score     scoreFP
	sessionID string
	playID    uint64
	target    string
	outcome   string
	grade     string
}

func (r record) entry(id string) types.Entry {
	return types.Entry{
		ThrowID:   id,
		SessionID: r.sessionID,
		PlayID:    r.playID,
		Target:    r.target,
		Outcome:   r.outcome,
		Grade:     r.grade,
		Score:     toFloat(r.score),
	}
}

// TreapStore implements Store.
type TreapStore struct {
	mu        sync.RWMutex
	root      *node
	bySession map[string]*node
	byID      map[string]record

	snapshotInterval time.Duration
	topCacheSize     int
	snapshot         atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store and starts publishing snapshots
// until ctx ends or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		bySession:        make(map[string]*node),
		byID:             make(map[string]record),
		snapshotInterval: defaultSnapshotInterval,
		topCacheSize:     defaultTopCacheSize,
		stopChan:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.publishSnapshot()
	s.startPeriodicSnapshots(ctx)

	return s
}

func (s *TreapStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.publishSnapshot()
			}
		}
	}()
}

// Close stops the snapshot goroutine.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Snapshot returns the last published snapshot.
func (s *TreapStore) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

// Record implements Store.Record in O(log n) expected time.
func (s *TreapStore) Record(ctx context.Context, e types.Entry) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if e.ThrowID == "" || e.SessionID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_entry")
		return false, ErrInvalidEntry
	}

	ns := toFixedPoint(e.Score)

	s.mu.Lock()
	if old, ok := s.byID[e.ThrowID]; ok {
		if old.score == ns && old.grade == e.Grade && old.sessionID == e.SessionID {
			s.mu.Unlock()
			return false, nil
		}
		s.remove(e.ThrowID, old)
	}
	s.byID[e.ThrowID] = record{
		score:     ns,
		sessionID: e.SessionID,
		playID:    e.PlayID,
		target:    e.Target,
		outcome:   e.Outcome,
		grade:     e.Grade,
	}
	s.root = insert(s.root, e.ThrowID, ns)
	s.bySession[e.SessionID] = insert(s.bySession[e.SessionID], e.ThrowID, ns)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoreRecords(count)
	return true, nil
}

// remove must be called with s.mu held.
func (s *TreapStore) remove(id string, rec record) {
	s.root = deleteNode(s.root, id, rec.score)
	if root := deleteNode(s.bySession[rec.sessionID], id, rec.score); root != nil {
		s.bySession[rec.sessionID] = root
	} else {
		delete(s.bySession, rec.sessionID)
	}
	delete(s.byID, id)
}

// Get returns a throw and its global rank in O(log n).
func (s *TreapStore) Get(ctx context.Context, throwID string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[throwID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}
	e := rec.entry(throwID)
	e.Rank = countAbove(s.root, rec.score) + 1
	return e, nil
}

// TopN returns the best n throws across sessions.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.top(n, func() *node { return s.root })
}

// SessionTopN returns the best n throws of one session. An unknown session
// has no throws.
func (s *TreapStore) SessionTopN(ctx context.Context, sessionID string, n int) ([]types.Entry, error) {
	return s.top(n, func() *node { return s.bySession[sessionID] })
}

// top ranks the tree picked under the read lock.
func (s *TreapStore) top(n int, pick func() *node) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	root := pick()
	out := make([]types.Entry, 0, min(n, nsize(root)))
	collectTopN(root, n, s.byID, &out)
	assignRanksWithTies(out, 0)
	return out, nil
}

// DropSession forgets a session's throws.
func (s *TreapStore) DropSession(ctx context.Context, sessionID string) int {
	s.mu.Lock()
	var ids []string
	collectIDs(s.bySession[sessionID], &ids)
	for _, id := range ids {
		s.remove(id, s.byID[id])
	}
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoreRecords(count)
	return len(ids)
}

func collectIDs(n *node, out *[]string) {
	if n == nil {
		return
	}
	collectIDs(n.left, out)
	*out = append(*out, n.id)
	collectIDs(n.right, out)
}

// Count returns the total number of throws.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *TreapStore) publishSnapshot() {
	s.mu.RLock()
	snap := &Snapshot{
		Total:    len(s.byID),
		Sessions: len(s.bySession),
		ByGrade:  make(map[string]int),
		TopCache: make([]types.Entry, 0, min(s.topCacheSize, len(s.byID))),
	}
	for _, rec := range s.byID {
		snap.ByGrade[rec.grade]++
		if rec.outcome == "complete" {
			snap.Completed++
		}
	}
	collectTopN(s.root, s.topCacheSize, s.byID, &snap.TopCache)
	s.mu.RUnlock()

	assignRanksWithTies(snap.TopCache, 0)
	s.snapshot.Store(snap)
}
