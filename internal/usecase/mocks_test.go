package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go-shift-coverage/internal/domain/entity"
	"go-shift-coverage/internal/domain/provider"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// --- Identity provider ---

type fakeAccount struct {
	identity entity.Identity
	password string
}

type fakeIdentityProvider struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount
	nextID   int

	signInErr  error
	createErr  error
	signOutErr error

	// signInGate, when set, holds SignInWithCredentials until closed.
	signInGate    chan struct{}
	signInEntered chan struct{}

	initial      *entity.Identity
	skipInitial  bool
	subscribeErr error
	onChange     func(*entity.Identity)

	signOutCalls int
	subscribes   int
	unsubscribes int
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{accounts: make(map[string]fakeAccount)}
}

func (p *fakeIdentityProvider) addAccount(id, email, password, displayName string) entity.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	identity := entity.Identity{ID: id, Email: email, DisplayName: displayName}
	p.accounts[email] = fakeAccount{identity: identity, password: password}
	return identity
}

func (p *fakeIdentityProvider) SignInWithCredentials(ctx context.Context, email, password string) (*entity.Identity, error) {
	if p.signInEntered != nil {
		p.signInEntered <- struct{}{}
	}
	if p.signInGate != nil {
		select {
		case <-p.signInGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	account, ok := p.accounts[email]
	if !ok || account.password != password {
		return nil, provider.ErrInvalidCredentials
	}
	identity := account.identity
	return &identity, nil
}

func (p *fakeIdentityProvider) CreateAccount(ctx context.Context, email, password string) (*entity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	if _, exists := p.accounts[email]; exists {
		return nil, provider.ErrEmailInUse
	}
	p.nextID++
	identity := entity.Identity{ID: fmt.Sprintf("uid-new-%d", p.nextID), Email: email}
	p.accounts[email] = fakeAccount{identity: identity, password: password}
	return &identity, nil
}

func (p *fakeIdentityProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutCalls++
	return p.signOutErr
}

func (p *fakeIdentityProvider) Subscribe(ctx context.Context, onChange func(*entity.Identity)) (func(), error) {
	if p.subscribeErr != nil {
		return nil, p.subscribeErr
	}
	p.mu.Lock()
	p.subscribes++
	p.onChange = onChange
	initial := p.initial
	skip := p.skipInitial
	p.mu.Unlock()

	if !skip {
		onChange(initial)
	}

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.unsubscribes++
	}, nil
}

func (p *fakeIdentityProvider) emit(identity *entity.Identity) {
	p.mu.Lock()
	onChange := p.onChange
	p.mu.Unlock()
	onChange(identity)
}

// --- Profile store ---

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]entity.Profile
	saveErr  error
	findErr  error
	saves    int

	findGates   map[string]chan struct{}
	findEntered chan string

	// saveGate, when set, holds Save until closed.
	saveGate    chan struct{}
	saveEntered chan struct{}
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles:  make(map[string]entity.Profile),
		findGates: make(map[string]chan struct{}),
	}
}

func (s *fakeProfileStore) put(profile entity.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
}

func (s *fakeProfileStore) get(id string) (entity.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	return p, ok
}

func (s *fakeProfileStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *fakeProfileStore) FindByID(ctx context.Context, db *gorm.DB, id string) (*entity.Profile, error) {
	s.mu.Lock()
	gate := s.findGates[id]
	entered := s.findEntered
	s.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- id
		}
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *fakeProfileStore) Save(ctx context.Context, db *gorm.DB, profile *entity.Profile) error {
	s.mu.Lock()
	gate := s.saveGate
	entered := s.saveEntered
	s.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.profiles[profile.ID] = *profile
	return nil
}

// --- Audit ---

type mockAuditService struct {
	mock.Mock
}

func newQuietAudit() *mockAuditService {
	m := new(mockAuditService)
	m.On("LogEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

func (m *mockAuditService) LogEvent(ctx context.Context, userID string, action string) error {
	return m.Called(ctx, userID, action).Error(0)
}

func (m *mockAuditService) LogCreate(ctx context.Context, userID string, action string, entityName string, newValue interface{}) error {
	return m.Called(ctx, userID, action, entityName, newValue).Error(0)
}

func (m *mockAuditService) LogUpdate(ctx context.Context, userID string, action string, entityName string, oldValue, newValue interface{}) error {
	return m.Called(ctx, userID, action, entityName, oldValue, newValue).Error(0)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
