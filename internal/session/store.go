package session

import (
	"context"
	"sync"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// transactionPageSize bounds each per-collection transaction fetch.
const transactionPageSize = 500

// Snapshot is one complete, immutable view of everything the current user
// can see. Readers always observe either the previous or the next complete
// snapshot, never a partial one.
type Snapshot struct {
	Session       *models.Session
	Profile       *models.Profile
	Accounts      []models.Account
	GroupAccounts []models.GroupAccount
	Categories    []models.Category
	Transactions  []models.Transaction
	Notifications []models.Notification
	Loading       bool
}

// Store is the process-wide state container. It refreshes wholesale from
// the platform, swaps the snapshot atomically and notifies subscribers.
// There is no background polling: consumers that mutate data call Refresh
// explicitly afterward.
type Store struct {
	platform store.Platform

	mu   sync.RWMutex
	snap Snapshot

	subMu      sync.Mutex
	nextSub    int
	subs       map[int]func(Snapshot)
	unsubAuth  func()
	closed     bool
}

func New(platform store.Platform) *Store {
	return &Store{
		platform: platform,
		snap:     Snapshot{Loading: true},
		subs:     make(map[int]func(Snapshot)),
	}
}

// Initialize resolves the current platform session, performs the first
// refresh when one exists, and wires auth-state transitions: a session
// appearing re-triggers Refresh, a session disappearing clears all
// collections.
func (s *Store) Initialize(ctx context.Context) error {
	s.subMu.Lock()
	if s.unsubAuth == nil && !s.closed {
		s.unsubAuth = s.platform.OnAuthStateChange(func(event store.AuthEvent, session *models.Session) {
			switch event {
			case store.AuthSignedIn:
				if err := s.Refresh(ctx); err != nil {
					zap.L().Error("Refresh after sign-in failed", zap.Error(err))
				}
			case store.AuthSignedOut:
				s.clear()
			}
		})
	}
	s.subMu.Unlock()

	return s.Refresh(ctx)
}

// Refresh re-fetches the whole visible state. The per-collection fetches
// run concurrently and are best-effort: a failure is logged and leaves
// that collection empty without aborting the rest.
func (s *Store) Refresh(ctx context.Context) error {
	session, err := s.platform.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		s.clear()
		return nil
	}

	// Profile first: its role decides the accounts fetch scope.
	profile, err := ResolveProfile(ctx, s.platform, session)
	if err != nil {
		zap.L().Error("Failed to resolve profile", zap.String("identity_id", session.UserId), zap.Error(err))
	}

	next := Snapshot{
		Session: session,
		Profile: profile,
	}

	accountsOwner := session.UserId
	if profile != nil && profile.Role == models.RoleAdmin {
		accountsOwner = "" // system-wide, joined with owner profiles
	}

	var personal, shared []models.Transaction
	var g errgroup.Group

	g.Go(func() error {
		accounts, err := s.platform.ListAccounts(ctx, accountsOwner)
		if err != nil {
			zap.L().Error("Failed to fetch accounts", zap.Error(err))
			return nil
		}
		next.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		// All groups are fetched; membership filtering is view logic.
		groups, err := s.platform.ListGroupAccounts(ctx)
		if err != nil {
			zap.L().Error("Failed to fetch group accounts", zap.Error(err))
			return nil
		}
		next.GroupAccounts = groups
		return nil
	})
	g.Go(func() error {
		categories, err := s.platform.ListCategories(ctx)
		if err != nil {
			zap.L().Error("Failed to fetch categories", zap.Error(err))
			return nil
		}
		next.Categories = categories
		return nil
	})
	g.Go(func() error {
		txs, err := s.platform.ListTransactions(ctx, false, transactionPageSize)
		if err != nil {
			zap.L().Error("Failed to fetch personal transactions", zap.Error(err))
			return nil
		}
		personal = txs
		return nil
	})
	g.Go(func() error {
		txs, err := s.platform.ListTransactions(ctx, true, transactionPageSize)
		if err != nil {
			zap.L().Error("Failed to fetch group transactions", zap.Error(err))
			return nil
		}
		shared = txs
		return nil
	})
	g.Go(func() error {
		notifications, err := s.platform.ListNotifications(ctx, session.UserId)
		if err != nil {
			zap.L().Error("Failed to fetch notifications", zap.Error(err))
			return nil
		}
		next.Notifications = notifications
		return nil
	})

	// Fetches never return errors; Wait is a barrier.
	_ = g.Wait()

	next.Transactions = MergeTransactions(personal, shared)

	s.publish(next)
	zap.L().Info("Refreshed session state",
		zap.String("identity_id", session.UserId),
		zap.Int("accounts", len(next.Accounts)),
		zap.Int("groups", len(next.GroupAccounts)),
		zap.Int("transactions", len(next.Transactions)),
		zap.Int("notifications", len(next.Notifications)))
	return nil
}

// Snapshot returns the current complete state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers a change observer and returns its unsubscribe
// function. Observers receive every published snapshot.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close detaches the store from auth events and drops all observers. Late
// publishes after Close are ignored, so in-flight refreshes cannot crash
// a torn-down consumer.
func (s *Store) Close() {
	s.subMu.Lock()
	s.closed = true
	if s.unsubAuth != nil {
		s.unsubAuth()
		s.unsubAuth = nil
	}
	s.subs = make(map[int]func(Snapshot))
	s.subMu.Unlock()
}

func (s *Store) clear() {
	s.publish(Snapshot{})
}

func (s *Store) publish(next Snapshot) {
	s.subMu.Lock()
	if s.closed {
		s.subMu.Unlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// MergeTransactions merges the two date-descending collections into one
// date-descending sequence. The merge is stable: order within each source
// is preserved, and personal entries win ties.
func MergeTransactions(personal, shared []models.Transaction) []models.Transaction {
	merged := make([]models.Transaction, 0, len(personal)+len(shared))
	i, j := 0, 0
	for i < len(personal) && j < len(shared) {
		if !personal[i].Date.Before(shared[j].Date) {
			merged = append(merged, personal[i])
			i++
		} else {
			merged = append(merged, shared[j])
			j++
		}
	}
	merged = append(merged, personal[i:]...)
	merged = append(merged, shared[j:]...)
	return merged
}
