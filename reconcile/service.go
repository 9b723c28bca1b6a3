// Package reconcile merges the remote case store and the local pending queue into one view
// and routes writes back to whichever store holds a case.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/localstore"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// go generate: mockery --name RemoteStore --name LocalStore

// ErrCaseNotFound is returned when no store holds the requested case
var ErrCaseNotFound = errors.New("case not found")

// DefaultRemoteTimeout bounds each remote call made by the service
const DefaultRemoteTimeout = 8 * time.Second

// RemoteStore is the authoritative case store
type RemoteStore interface {
	FetchCases(ctx context.Context) ([]models.Case, error)
	SubmitCase(ctx context.Context, c models.Case) (string, error)
	UpdateCase(ctx context.Context, c models.Case) error
	DeleteCase(ctx context.Context, id string) error
}

// LocalStore is the durable queue of cases the remote store has not accepted yet
type LocalStore interface {
	Get(ctx context.Context, id string) (models.Case, error)
	Put(ctx context.Context, c models.Case) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Case, error)
}

// Snapshot is one published reconciled view. RemoteOK and LocalOK are false when that
// source failed and contributed nothing.
type Snapshot struct {
	Seq      uint64        `json:"seq"`
	Cases    []models.Case `json:"cases"`
	RemoteOK bool          `json:"remoteOk"`
	LocalOK  bool          `json:"localOk"`
	TakenAt  time.Time     `json:"takenAt"`
}

// Degraded reports whether either source was missing from the view
func (s Snapshot) Degraded() bool {
	return !s.RemoteOK || !s.LocalOK
}

func (s Snapshot) index(id string) int {
	for i := range s.Cases {
		if s.Cases[i].ID == id {
			return i
		}
	}
	return -1
}

// Options tunes a Service
type Options struct {
	RemoteTimeout time.Duration
	Now           func() time.Time
}

// Service is the reconciled case view shared by the API and the scheduler
type Service struct {
	remote        RemoteStore
	local         LocalStore
	remoteTimeout time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	lastSeq uint64
	snap    Snapshot

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Snapshot)

	// notifyMu orders deliveries, notified is the last sequence delivered
	notifyMu sync.Mutex
	notified uint64
}

// NewService wires a service to its stores
func NewService(remote RemoteStore, local LocalStore, opts Options) *Service {
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = DefaultRemoteTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		remote:        remote,
		local:         local,
		remoteTimeout: opts.RemoteTimeout,
		now:           opts.Now,
		subs:          map[int]func(Snapshot){},
	}
}

func (s *Service) issueSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq++
	return s.lastSeq
}

// Refresh fetches both sources in parallel and publishes the merged view. A failing source
// degrades to empty and never aborts the refresh. A result whose sequence is older than the
// published snapshot is dropped and the published snapshot is returned instead.
func (s *Service) Refresh(ctx context.Context) Snapshot {
	seq := s.issueSeq()

	var (
		remoteCases, localCases []models.Case
		remoteErr, localErr     error
		g                       errgroup.Group
	)
	g.Go(func() error {
		rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		defer cancel()
		remoteCases, remoteErr = s.remote.FetchCases(rctx)
		return nil
	})
	g.Go(func() error {
		localCases, localErr = s.local.List(ctx)
		return nil
	})
	_ = g.Wait()

	if remoteErr != nil {
		zap.S().Warnw("remote case store unavailable, serving degraded view", "error", remoteErr)
		remoteCases = nil
	}
	if localErr != nil {
		zap.S().Errorw("local pending queue unreadable, serving degraded view", "error", localErr)
		localCases = nil
	}

	snap := Snapshot{
		Seq:      seq,
		Cases:    Merge(remoteCases, localCases),
		RemoteOK: remoteErr == nil,
		LocalOK:  localErr == nil,
		TakenAt:  s.now().UTC(),
	}
	published, ok := s.publish(snap)
	if !ok {
		zap.S().Debugw("discarding stale refresh", "seq", seq, "published", published.Seq)
	}
	return published
}

// publish installs snap unless a newer one is already published
func (s *Service) publish(snap Snapshot) (Snapshot, bool) {
	s.mu.Lock()
	if snap.Seq <= s.snap.Seq {
		current := s.snap
		s.mu.Unlock()
		return current, false
	}
	s.snap = snap
	s.mu.Unlock()

	s.notify(snap)
	return snap, true
}

// patch applies fn to a copy of the published snapshot and publishes it under a new
// sequence, so refreshes that started earlier cannot overwrite the change
func (s *Service) patch(fn func(cases []models.Case) []models.Case) {
	s.mu.Lock()
	s.lastSeq++
	next := s.snap
	next.Seq = s.lastSeq
	next.Cases = fn(append([]models.Case(nil), s.snap.Cases...))
	next.TakenAt = s.now().UTC()
	s.snap = next
	s.mu.Unlock()

	s.notify(next)
}

func upsert(c models.Case) func([]models.Case) []models.Case {
	return func(cases []models.Case) []models.Case {
		for i := range cases {
			if cases[i].ID == c.ID {
				cases[i] = c
				return cases
			}
		}
		return append(cases, c)
	}
}

func without(id string) func([]models.Case) []models.Case {
	return func(cases []models.Case) []models.Case {
		out := cases[:0]
		for _, c := range cases {
			if c.ID != id {
				out = append(out, c)
			}
		}
		return out
	}
}

// Snapshot returns the last published view. The case slice is a copy.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Cases = append([]models.Case(nil), s.snap.Cases...)
	return snap
}

// Find looks a case up in the published view, refreshing once on a miss
func (s *Service) Find(ctx context.Context, id string) (models.Case, error) {
	if c, ok := s.lookup(id); ok {
		return c, nil
	}
	snap := s.Refresh(ctx)
	if i := snap.index(id); i >= 0 {
		return snap.Cases[i], nil
	}
	return models.Case{}, fmt.Errorf("%w: %s", ErrCaseNotFound, id)
}

func (s *Service) lookup(id string) (models.Case, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.snap.index(id); i >= 0 {
		return s.snap.Cases[i], true
	}
	return models.Case{}, false
}

// Submit hands a newly built case to the remote store, falling back to the local queue when
// the remote is unavailable. On remote success the case takes the backend id. A failed local
// write is returned as a *localstore.PersistenceError together with the in-memory case.
func (s *Service) Submit(ctx context.Context, c models.Case) (models.Case, error) {
	id, err := s.deliver(ctx, c)
	if err == nil {
		c.ID = id
		c.Source = models.OriginRemote
		s.patch(upsert(c))
		zap.S().Infow("case accepted by remote store", "caseId", c.ID)
		return c, nil
	}

	zap.S().Warnw("remote submission failed, queueing case locally", "caseId", c.ID, "error", err)
	c.Source = models.OriginLocalPending
	perr := s.local.Put(ctx, c)
	s.patch(upsert(c))
	if perr != nil {
		zap.S().Errorw("failed to persist pending case", "caseId", c.ID, "error", perr)
		return c, asPersistenceError("put", c.ID, perr)
	}
	return c, nil
}

func asPersistenceError(op, id string, err error) error {
	var pe *localstore.PersistenceError
	if errors.As(err, &pe) {
		return pe
	}
	return &localstore.PersistenceError{Op: op, ID: id, Err: err}
}

// Save writes a changed case back to the store that holds it and publishes the change. A
// local copy of a remote case is refreshed as well. Remote write failures are returned and
// leave the view untouched; local write failures are returned as *localstore.PersistenceError
// after the view is updated.
func (s *Service) Save(ctx context.Context, c models.Case) (models.Case, error) {
	if c.Source == "" {
		if existing, ok := s.lookup(c.ID); ok {
			c.Source = existing.Source
		} else {
			c.Source = models.OriginLocalPending
		}
	}
	c.Touch(s.now().UTC())

	if c.Source == models.OriginRemote {
		rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		err := s.remote.UpdateCase(rctx, c)
		cancel()
		if err != nil {
			return c, fmt.Errorf("saving case %s: %w", c.ID, err)
		}
		if _, err := s.local.Get(ctx, c.ID); err == nil {
			if err := s.local.Put(ctx, c); err != nil {
				zap.S().Warnw("failed to refresh local copy of remote case", "caseId", c.ID, "error", err)
			}
		}
		s.patch(upsert(c))
		return c, nil
	}

	if c.SyncedAs == "" {
		if queued, err := s.local.Get(ctx, c.ID); err == nil {
			c.SyncedAs = queued.SyncedAs
		}
	}
	perr := s.local.Put(ctx, c)
	s.patch(upsert(c))
	if perr != nil {
		return c, asPersistenceError("put", c.ID, perr)
	}
	return c, nil
}

// Delete removes a case. The remote delete is best effort; the local delete decides the
// outcome.
func (s *Service) Delete(ctx context.Context, id string) error {
	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	if err := s.remote.DeleteCase(rctx, id); err != nil {
		zap.S().Warnw("remote delete failed", "caseId", id, "error", err)
	}
	cancel()

	if err := s.local.Delete(ctx, id); err != nil {
		return asPersistenceError("delete", id, err)
	}
	s.patch(without(id))
	return nil
}

// SyncPending pushes queued cases to the remote store, oldest first, removing each one from
// the queue once accepted. Review outcomes recorded while a case was queued go up with it.
// A case the remote already accepted under SyncedAs is upserted instead of submitted again.
// It stops at the first remote failure and returns how many cases were synchronized.
func (s *Service) SyncPending(ctx context.Context) (int, error) {
	pending, err := s.local.List(ctx)
	if err != nil {
		return 0, asPersistenceError("list", "", err)
	}

	synced := 0
	for _, c := range pending {
		localID := c.ID
		remoteID := c.SyncedAs
		if remoteID == "" {
			rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
			id, err := s.remote.SubmitCase(rctx, c)
			cancel()
			if err != nil {
				return synced, fmt.Errorf("syncing case %s: %w", localID, err)
			}
			remoteID = localID
			if id != "" {
				remoteID = id
			}
			c.SyncedAs = remoteID
			if err := s.local.Put(ctx, c); err != nil {
				zap.S().Warnw("failed to record remote id of pending case", "caseId", localID, "remoteId", remoteID, "error", err)
			}
			if changedSinceIntake(c) {
				if err := s.update(ctx, withRemoteID(c, remoteID)); err != nil {
					return synced, fmt.Errorf("syncing review state of case %s: %w", localID, err)
				}
			}
		} else if err := s.update(ctx, withRemoteID(c, remoteID)); err != nil {
			return synced, fmt.Errorf("resyncing case %s: %w", localID, err)
		}

		if err := s.local.Delete(ctx, localID); err != nil {
			return synced, asPersistenceError("delete", localID, err)
		}

		c = withRemoteID(c, remoteID)
		s.patch(func(cases []models.Case) []models.Case {
			return upsert(c)(without(localID)(cases))
		})
		synced++
		zap.S().Infow("pending case synchronized", "caseId", c.ID, "localId", localID)
	}
	return synced, nil
}

// deliver submits c and, when it carries state the intake contract cannot express, replaces
// the accepted copy with the full record. It returns the id the remote store holds it under.
func (s *Service) deliver(ctx context.Context, c models.Case) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	id, err := s.remote.SubmitCase(rctx, c)
	cancel()
	if err != nil {
		return "", err
	}
	if id == "" {
		id = c.ID
	}
	if changedSinceIntake(c) {
		if err := s.update(ctx, withRemoteID(c, id)); err != nil {
			// the report itself is accepted, only the review state is missing
			zap.S().Errorw("remote store accepted case without its review state", "caseId", id, "error", err)
		}
	}
	return id, nil
}

func (s *Service) update(ctx context.Context, c models.Case) error {
	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()
	return s.remote.UpdateCase(rctx, c)
}

func withRemoteID(c models.Case, id string) models.Case {
	c.ID = id
	c.SyncedAs = ""
	c.Source = models.OriginRemote
	return c
}

// changedSinceIntake reports whether c holds anything beyond a fresh report: a status or
// verification outcome, an assignment, a review or a later edit
func changedSinceIntake(c models.Case) bool {
	return (c.Status != "" && c.Status != models.StatusNew) ||
		(c.Verification != "" && c.Verification != models.VerificationPending) ||
		c.AssignedTo != "" ||
		c.ReviewedBy != "" ||
		c.UpdatedAt.After(c.CreatedAt)
}

// Subscribe registers fn for every newly published snapshot. Deliveries are serialized and
// never go back to an older sequence. fn runs on the publishing goroutine and must not block
// or publish. The returned func removes the subscription.
func (s *Service) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) notify(snap Snapshot) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if snap.Seq <= s.notified {
		return
	}
	s.notified = snap.Seq

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
