package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PaoComPlanta/rota-da-festa/internal/cache"
	"github.com/PaoComPlanta/rota-da-festa/internal/metrics"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

const (
	OpAdd    = "add"
	OpRemove = "remove"

	DefaultPropagationTimeout = 10 * time.Second

	// maxFallbackSessions bounds the sets held in memory while the local
	// cache is refusing writes.
	maxFallbackSessions = 10000
)

// Identity is an authenticated user together with the token used to act on
// their behalf.
type Identity struct {
	UserID      uuid.UUID
	AccessToken string
}

// PropagationReporter receives the outcome of every remote favourite write.
type PropagationReporter interface {
	PropagationSucceeded(op string)
	PropagationFailed(f metrics.PropagationFailure)
}

// Reconcile returns the sorted union of two favourite sets.
func Reconcile(local, remote []int64) []int64 {
	seen := make(map[int64]struct{}, len(local)+len(remote))
	out := make([]int64, 0, len(local)+len(remote))
	for _, set := range [][]int64{local, remote} {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type propagationKey struct {
	userID  uuid.UUID
	eventID int64
}

// FavouriteService keeps each session's favourites in the local cache and
// mirrors changes to the remote store for signed-in users. Local state is
// always written first; remote writes run in the background and are never
// rolled back or retried here. Writes for the same user and event reach the
// remote store in toggle order.
type FavouriteService struct {
	local    cache.Store
	remote   models.FavouritesStore
	reporter PropagationReporter
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time

	mu sync.Mutex
	// fallback holds sets whose last cache write failed.
	fallback map[string][]int64
	// tails is the last pending remote write per user and event.
	tails map[propagationKey]chan struct{}
	wg    sync.WaitGroup
}

func NewFavouriteService(local cache.Store, remote models.FavouritesStore, reporter PropagationReporter, logger *slog.Logger, timeout time.Duration) *FavouriteService {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultPropagationTimeout
	}
	return &FavouriteService{
		local:    local,
		remote:   remote,
		reporter: reporter,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
		fallback: make(map[string][]int64),
		tails:    make(map[propagationKey]chan struct{}),
	}
}

func favouritesKey(session string) string {
	return "favs:" + session
}

// List returns the favourites of a session in ascending order.
func (fs *FavouriteService) List(session string) []int64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]int64(nil), fs.loadLocked(session)...)
}

func (fs *FavouriteService) IsFavourite(session string, eventID int64) bool {
	for _, id := range fs.List(session) {
		if id == eventID {
			return true
		}
	}
	return false
}

// loadLocked reads the session set from the local cache. A set held in
// fallback is newer than anything cached. An unreadable entry is treated as
// an empty set.
func (fs *FavouriteService) loadLocked(session string) []int64 {
	if ids, ok := fs.fallback[session]; ok {
		return ids
	}
	raw, err := fs.local.Get(favouritesKey(session))
	switch {
	case errors.Is(err, cache.ErrNotFound):
		return []int64{}
	case err != nil:
		fs.logger.Warn("Failed to read local favourites", "session", session, "error", err)
		return []int64{}
	}
	var stored []int64
	if err := json.Unmarshal(raw, &stored); err != nil {
		fs.logger.Warn("Discarding corrupt local favourites", "session", session, "error", err)
		return []int64{}
	}
	return Reconcile(stored, nil)
}

// storeLocked persists the session set. When the cache refuses the write
// the set is kept in memory instead, so the session still sees its change.
func (fs *FavouriteService) storeLocked(session string, ids []int64) {
	raw, err := json.Marshal(ids)
	if err == nil {
		err = fs.local.Put(favouritesKey(session), raw)
	}
	if err == nil {
		delete(fs.fallback, session)
		return
	}

	fs.logger.Warn("Failed to persist local favourites", "session", session, "error", err)
	if _, ok := fs.fallback[session]; !ok && len(fs.fallback) >= maxFallbackSessions {
		for k := range fs.fallback {
			delete(fs.fallback, k)
			break
		}
	}
	fs.fallback[session] = ids
}

// Toggle flips membership of eventID for the session and returns whether it
// is now a favourite along with the resulting set. With a non-nil identity
// the change is also sent to the remote store in the background.
func (fs *FavouriteService) Toggle(ctx context.Context, session string, eventID int64, identity *Identity) (bool, []int64, error) {
	if session == "" {
		return false, nil, fmt.Errorf("session is required")
	}
	if eventID <= 0 {
		return false, nil, fmt.Errorf("invalid event ID")
	}

	fs.mu.Lock()
	current := fs.loadLocked(session)
	next := make([]int64, 0, len(current)+1)
	added := true
	for _, id := range current {
		if id == eventID {
			added = false
			continue
		}
		next = append(next, id)
	}
	if added {
		next = Reconcile(next, []int64{eventID})
	}
	fs.storeLocked(session, next)
	result := append([]int64(nil), next...)
	if identity != nil && identity.UserID != uuid.Nil && fs.remote != nil {
		fs.propagateLocked(ctx, *identity, eventID, added)
	}
	fs.mu.Unlock()

	return added, result, nil
}

// propagateLocked queues the remote write behind any earlier write for the
// same user and event, then runs it in the background.
func (fs *FavouriteService) propagateLocked(ctx context.Context, identity Identity, eventID int64, added bool) {
	op := OpRemove
	if added {
		op = OpAdd
	}
	// detached from the request so the write outlives the response
	base := context.WithoutCancel(ctx)

	key := propagationKey{userID: identity.UserID, eventID: eventID}
	prev := fs.tails[key]
	done := make(chan struct{})
	fs.tails[key] = done

	fs.wg.Add(1)
	go func() {
		defer fs.wg.Done()
		defer func() {
			close(done)
			fs.mu.Lock()
			if fs.tails[key] == done {
				delete(fs.tails, key)
			}
			fs.mu.Unlock()
		}()
		if prev != nil {
			<-prev
		}

		ctx, cancel := context.WithTimeout(base, fs.timeout)
		defer cancel()

		var err error
		if added {
			err = fs.remote.AddFavourite(ctx, identity.UserID, identity.AccessToken, eventID)
		} else {
			err = fs.remote.RemoveFavourite(ctx, identity.UserID, identity.AccessToken, eventID)
		}
		if fs.reporter == nil {
			return
		}
		if err != nil {
			fs.reporter.PropagationFailed(metrics.PropagationFailure{
				UserID:  identity.UserID,
				EventID: eventID,
				Op:      op,
				Err:     err,
				At:      fs.now(),
			})
			return
		}
		fs.reporter.PropagationSucceeded(op)
	}()
}

// OnLogin merges the user's remote favourites into the session set. Running
// it again with the same data leaves the set unchanged.
func (fs *FavouriteService) OnLogin(ctx context.Context, session string, identity Identity) ([]int64, error) {
	if identity.UserID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	if fs.remote == nil {
		return fs.List(session), nil
	}

	remote, err := fs.remote.ListFavourites(ctx, identity.UserID, identity.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch remote favourites: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	merged := Reconcile(fs.loadLocked(session), remote)
	fs.storeLocked(session, merged)
	return append([]int64(nil), merged...), nil
}

// Wait blocks until in-flight remote writes have finished.
func (fs *FavouriteService) Wait() {
	fs.wg.Wait()
}
