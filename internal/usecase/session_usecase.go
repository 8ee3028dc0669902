package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-shift-coverage/internal/converter"
	"go-shift-coverage/internal/delivery/dto"
	"go-shift-coverage/internal/domain/entity"
	"go-shift-coverage/internal/domain/provider"
	"go-shift-coverage/internal/domain/repository"
	"go-shift-coverage/internal/service"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	ErrStoreWriteFailure = errors.New("profile store write failed")
	ErrAlreadyStarted    = errors.New("session manager already started")
	ErrClosed            = errors.New("session manager closed")
	// ErrSuperseded is returned by SignIn and SignUp when a later SignIn, SignUp or
	// SignOut took over the session before they finished.
	ErrSuperseded = errors.New("superseded by a later session change")
)

// SessionManager owns the signed-in profile of this process.
//
// State starts out resolving and stays so until the identity provider has reported the
// current identity once. SignIn and SignUp hold resolving for their duration and report
// every failure; SignOut and UpdateProfile apply their local effect even when the remote
// call fails.
type SessionManager interface {
	Start(ctx context.Context) error
	Close()

	State() entity.Session
	// Watch registers a listener that receives a snapshot after each state transition.
	// Listeners are called in transition order and must not call mutating methods.
	Watch(listener func(entity.Session)) (cancel func())

	SignIn(ctx context.Context, req *dto.SignInRequest) (*entity.Profile, error)
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*entity.Profile, error)
	SignOut(ctx context.Context) error
	// UpdateProfile returns nil, nil when nobody is signed in.
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*entity.Profile, error)
}

type sessionManager struct {
	db               *gorm.DB
	log              *logrus.Logger
	identityProvider provider.IdentityProvider
	profileRepo      repository.ProfileRepository
	auditService     service.AuditService

	resolveGroup singleflight.Group
	updateMu     sync.Mutex

	mu      sync.Mutex
	profile *entity.Profile
	// settled flips once the first provider notification has been handled.
	settled  bool
	inFlight int
	// updating is non-zero while an UpdateProfile write is outstanding.
	updating int
	// generation increases on every transition; explicitGeneration is the generation of
	// the latest SignIn, SignUp or SignOut.
	generation         uint64
	explicitGeneration uint64
	listeners          map[uint64]func(entity.Session)
	nextListenerID     uint64

	// notifyMu is taken before mu is released so snapshots reach listeners in order.
	notifyMu sync.Mutex

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	started     bool
	closed      bool
	closeOnce   sync.Once
}

func NewSessionManager(
	db *gorm.DB,
	log *logrus.Logger,
	identityProvider provider.IdentityProvider,
	profileRepo repository.ProfileRepository,
	auditService service.AuditService,
) SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &sessionManager{
		db:               db,
		log:              log,
		identityProvider: identityProvider,
		profileRepo:      profileRepo,
		auditService:     auditService,
		listeners:        make(map[uint64]func(entity.Session)),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Start subscribes to identity changes. The subscription is held until Close. A manager
// starts at most once and cannot be restarted after Close.
func (m *sessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case m.started:
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	unsubscribe, err := m.identityProvider.Subscribe(ctx, m.handleIdentityChange)
	if err != nil {
		m.log.Warnf("Failed to subscribe to identity changes: %+v", err)
		m.mu.Lock()
		m.started = false
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		unsubscribe()
		return ErrClosed
	}
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	m.log.Info("Session manager subscribed to identity changes")
	return nil
}

// Close cancels the identity subscription and any resolution it started. Safe to call
// more than once.
func (m *sessionManager) Close() {
	m.closeOnce.Do(func() {
		m.cancel()

		m.mu.Lock()
		m.closed = true
		unsubscribe := m.unsubscribe
		m.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		m.log.Info("Session manager stopped")
	})
}

func (m *sessionManager) State() entity.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *sessionManager) Watch(listener func(entity.Session)) func() {
	m.mu.Lock()
	m.nextListenerID++
	id := m.nextListenerID
	m.listeners[id] = listener
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *sessionManager) SignIn(ctx context.Context, req *dto.SignInRequest) (*entity.Profile, error) {
	gen := m.beginOperation()

	identity, err := m.identityProvider.SignInWithCredentials(ctx, req.Email, req.Password)
	if err != nil {
		m.log.Warnf("Failed to sign in: %+v", err)
		m.finishOperation(gen, nil)
		return nil, err
	}

	profile, err := m.resolveProfile(ctx, identity)
	if err != nil {
		m.log.Warnf("Failed to resolve profile after sign in: %+v", err)
		m.finishOperation(gen, nil)
		return nil, err
	}

	if !m.finishOperation(gen, profile) {
		m.log.Infof("Sign in for %s superseded by a later session change", identity.ID)
		return nil, ErrSuperseded
	}

	if err := m.auditService.LogEvent(ctx, identity.ID, entity.AuditActionUserLogin); err != nil {
		m.log.Warnf("Failed to audit sign in: %+v", err)
	}

	result := *profile
	return &result, nil
}

// SignUp creates the account and writes the profile exactly as given. Field validation
// belongs to the caller.
func (m *sessionManager) SignUp(ctx context.Context, req *dto.SignUpRequest) (*entity.Profile, error) {
	gen := m.beginOperation()

	identity, err := m.identityProvider.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		m.log.Warnf("Failed to create account: %+v", err)
		m.finishOperation(gen, nil)
		return nil, err
	}

	created := &entity.Profile{
		ID:         identity.ID,
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       entity.Role(req.Role),
		CPSONumber: req.CPSONumber,
	}

	if err := m.profileRepo.Save(ctx, m.db, created); err != nil {
		m.log.Warnf("Failed to save profile for new account: %+v", err)
		m.finishOperation(gen, nil)
		return nil, fmt.Errorf("%w: %w", ErrStoreWriteFailure, err)
	}

	// The account and its profile exist even if the session moved on.
	if err := m.auditService.LogCreate(ctx, identity.ID, entity.AuditActionUserRegister, "profile", converter.ProfileToResponse(created)); err != nil {
		m.log.Warnf("Failed to audit sign up: %+v", err)
	}

	if !m.finishOperation(gen, created) {
		m.log.Infof("Sign up for %s superseded by a later session change", identity.ID)
		return nil, ErrSuperseded
	}

	result := *created
	return &result, nil
}

// SignOut always clears the local profile, even when the provider call fails. The
// provider error is returned for logging only.
func (m *sessionManager) SignOut(ctx context.Context) error {
	var userID string
	var gen uint64
	m.commit(func() bool {
		if m.profile != nil {
			userID = m.profile.ID
		}
		m.generation++
		m.explicitGeneration = m.generation
		gen = m.generation
		return false
	})

	err := m.identityProvider.SignOut(ctx)
	if err != nil {
		m.log.Warnf("Failed to sign out from identity provider: %+v", err)
	}

	m.commit(func() bool {
		// A sign in started after this sign out owns the state.
		if m.explicitGeneration != gen {
			return false
		}
		m.profile = nil
		m.generation++
		return true
	})

	if userID != "" {
		if auditErr := m.auditService.LogEvent(ctx, userID, entity.AuditActionUserLogout); auditErr != nil {
			m.log.Warnf("Failed to audit sign out: %+v", auditErr)
		}
	}

	return err
}

// UpdateProfile merges req over the current profile, publishes the merge locally and then
// overwrites the stored record. On a store failure the local merge is kept and the error
// wraps ErrStoreWriteFailure. Calls are serialized, and identity notifications arriving
// before the write settles are ignored.
func (m *sessionManager) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*entity.Profile, error) {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	patch := converter.UpdateProfileRequestToPatch(req)

	var previous, merged entity.Profile
	applied := m.commit(func() bool {
		if m.profile == nil {
			return false
		}
		previous = *m.profile
		merged = previous.Apply(patch)
		next := merged
		m.profile = &next
		m.generation++
		m.updating++
		return true
	})
	if !applied {
		return nil, nil
	}

	err := m.profileRepo.Save(ctx, m.db, &merged)

	m.mu.Lock()
	m.updating--
	m.mu.Unlock()

	if err != nil {
		m.log.Warnf("Failed to persist profile update: %+v", err)
		return &merged, fmt.Errorf("%w: %w", ErrStoreWriteFailure, err)
	}

	if err := m.auditService.LogUpdate(ctx, merged.ID, entity.AuditActionProfileUpdate, "profile",
		converter.ProfileToResponse(&previous), converter.ProfileToResponse(&merged)); err != nil {
		m.log.Warnf("Failed to audit profile update: %+v", err)
	}

	return &merged, nil
}

// handleIdentityChange runs on the provider's notification goroutine.
func (m *sessionManager) handleIdentityChange(identity *entity.Identity) {
	var gen uint64
	skip := false
	m.commit(func() bool {
		if m.inFlight > 0 || m.updating > 0 {
			// The running operation decides the outcome.
			skip = true
			m.settled = true
			return false
		}
		m.generation++
		gen = m.generation
		return false
	})
	if skip {
		return
	}

	profile, err := m.resolveProfile(m.ctx, identity)
	if err != nil {
		m.log.Warnf("Failed to resolve profile for identity change: %+v", err)
		profile = nil
	}

	m.commit(func() bool {
		m.settled = true
		if m.generation == gen && m.inFlight == 0 && m.updating == 0 {
			m.profile = profile
			m.generation++
		} else {
			m.log.Debug("Discarded stale identity resolution")
		}
		return true
	})
}

// resolveProfile returns the stored profile for identity, a fallback when none is stored,
// or nil when identity is nil. The result is never shared with other callers.
func (m *sessionManager) resolveProfile(ctx context.Context, identity *entity.Identity) (*entity.Profile, error) {
	if identity == nil {
		return nil, nil
	}

	v, err, _ := m.resolveGroup.Do(identity.ID, func() (interface{}, error) {
		return m.profileRepo.FindByID(ctx, m.db, identity.ID)
	})
	if err != nil {
		return nil, err
	}

	stored, _ := v.(*entity.Profile)
	if stored == nil {
		m.log.Infof("No stored profile for identity %s, using fallback role %s", identity.ID, entity.DefaultRole)
		return entity.FallbackProfile(identity), nil
	}

	profile := *stored
	return &profile, nil
}

func (m *sessionManager) beginOperation() uint64 {
	var gen uint64
	m.commit(func() bool {
		m.inFlight++
		m.generation++
		m.explicitGeneration = m.generation
		gen = m.generation
		return true
	})
	return gen
}

// finishOperation always releases the in-flight slot and settles startup. The profile is
// applied only if no newer SignIn, SignUp or SignOut started in the meantime, and the
// result reports whether it was.
func (m *sessionManager) finishOperation(gen uint64, profile *entity.Profile) bool {
	applied := false
	m.commit(func() bool {
		m.inFlight--
		m.settled = true
		if m.explicitGeneration == gen {
			if profile != nil {
				p := *profile
				m.profile = &p
			} else {
				m.profile = nil
			}
			m.generation++
			applied = true
		}
		return true
	})
	return applied
}

// commit runs fn under the state lock. When fn reports a visible change the new snapshot
// is delivered to every listener before the next commit can deliver its own.
func (m *sessionManager) commit(fn func() bool) bool {
	m.mu.Lock()
	if !fn() {
		m.mu.Unlock()
		return false
	}

	snapshot := m.snapshotLocked()
	listeners := make([]func(entity.Session), 0, len(m.listeners))
	for _, listener := range m.listeners {
		listeners = append(listeners, listener)
	}

	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	for _, listener := range listeners {
		listener(snapshot.Clone())
	}
	return true
}

func (m *sessionManager) snapshotLocked() entity.Session {
	session := entity.Session{
		Profile:   m.profile,
		Resolving: !m.settled || m.inFlight > 0,
	}
	return session.Clone()
}
