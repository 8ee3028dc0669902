package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go-shift-coverage/config"
	"go-shift-coverage/internal/domain/entity"
	"go-shift-coverage/internal/domain/provider"
	"go-shift-coverage/internal/domain/repository"
	"go-shift-coverage/pkg/jwt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// signedOutPayload is published when the session ends.
const signedOutPayload = "null"

var _ provider.IdentityProvider = (*CredentialProvider)(nil)

// CredentialProvider is an email and password identity provider. Accounts live in the
// database; the active session token lives in Redis under the client id so a restarted
// process resumes it, and every change is published on the client's channel.
type CredentialProvider struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	jwtService  *jwt.JWTService
	accountRepo repository.AccountRepository

	clientID          string
	minPasswordLength int
}

func NewCredentialProvider(
	db *gorm.DB,
	redisClient *redis.Client,
	log *logrus.Logger,
	jwtService *jwt.JWTService,
	accountRepo repository.AccountRepository,
	clientID string,
	cfg config.IdentityConfig,
) *CredentialProvider {
	return &CredentialProvider{
		db:                db,
		redisClient:       redisClient,
		log:               log,
		jwtService:        jwtService,
		accountRepo:       accountRepo,
		clientID:          clientID,
		minPasswordLength: cfg.MinPasswordLength,
	}
}

func (p *CredentialProvider) SignInWithCredentials(ctx context.Context, email, password string) (*entity.Identity, error) {
	account, err := p.accountRepo.FindByEmail(ctx, p.db, email)
	if err != nil {
		p.log.Warnf("Failed to find account by email: %+v", err)
		return nil, networkError(err)
	}
	if account == nil {
		return nil, provider.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, provider.ErrInvalidCredentials
	}

	if err := p.startSession(ctx, account); err != nil {
		return nil, err
	}

	return account.Identity(), nil
}

// CreateAccount registers the account and signs it in.
func (p *CredentialProvider) CreateAccount(ctx context.Context, email, password string) (*entity.Identity, error) {
	if utf8.RuneCountInString(password) < p.minPasswordLength {
		return nil, provider.ErrWeakPassword
	}

	existing, err := p.accountRepo.FindByEmail(ctx, p.db, email)
	if err != nil {
		p.log.Warnf("Failed to check existing account: %+v", err)
		return nil, networkError(err)
	}
	if existing != nil {
		return nil, provider.ErrEmailInUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		p.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	account := &entity.Account{
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hashedPassword),
	}
	if err := p.accountRepo.Create(ctx, p.db, account); err != nil {
		if isDuplicateKeyError(err) {
			return nil, provider.ErrEmailInUse
		}
		p.log.Warnf("Failed to create account: %+v", err)
		return nil, networkError(err)
	}

	if err := p.startSession(ctx, account); err != nil {
		return nil, err
	}

	p.log.WithField("account_id", account.ID).Info("Account created")
	return account.Identity(), nil
}

func (p *CredentialProvider) SignOut(ctx context.Context) error {
	if err := p.redisClient.Del(ctx, p.sessionKey()).Err(); err != nil {
		p.log.Warnf("Failed to delete session token from Redis: %+v", err)
		return networkError(err)
	}
	return p.publish(ctx, nil)
}

// Subscribe emits the resumed identity first and then every published change. Both run
// on one goroutine, so onChange is never called concurrently.
func (p *CredentialProvider) Subscribe(ctx context.Context, onChange func(*entity.Identity)) (func(), error) {
	pubsub := p.redisClient.Subscribe(ctx, p.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		p.log.Warnf("Failed to subscribe to identity channel: %+v", err)
		return nil, networkError(err)
	}

	current, err := p.currentIdentity(ctx)
	if err != nil {
		pubsub.Close()
		return nil, err
	}

	messages := pubsub.Channel()
	var wg conc.WaitGroup
	wg.Go(func() {
		onChange(current)
		for msg := range messages {
			identity, err := decodeIdentity(msg.Payload)
			if err != nil {
				p.log.Warnf("Failed to decode identity change: %+v", err)
				continue
			}
			onChange(identity)
		}
	})

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				p.log.Warnf("Failed to close identity subscription: %+v", err)
			}
			wg.Wait()
		})
	}
	return unsubscribe, nil
}

// currentIdentity returns the identity of the persisted session, or nil when there is
// none or its token no longer validates.
func (p *CredentialProvider) currentIdentity(ctx context.Context) (*entity.Identity, error) {
	token, err := p.redisClient.Get(ctx, p.sessionKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		p.log.Warnf("Failed to read session token from Redis: %+v", err)
		return nil, networkError(err)
	}

	claims, err := p.jwtService.ValidateToken(token)
	if err != nil {
		p.log.Infof("Discarding persisted session: %v", err)
		if err := p.redisClient.Del(ctx, p.sessionKey()).Err(); err != nil {
			p.log.Warnf("Failed to delete session token from Redis: %+v", err)
		}
		return nil, nil
	}

	account, err := p.accountRepo.FindByID(ctx, p.db, claims.AccountID)
	if err != nil {
		p.log.Warnf("Failed to find account for persisted session: %+v", err)
		return nil, networkError(err)
	}
	if account == nil {
		return nil, nil
	}
	return account.Identity(), nil
}

func (p *CredentialProvider) startSession(ctx context.Context, account *entity.Account) error {
	token, _, err := p.jwtService.GenerateSessionToken(account.ID, account.Email)
	if err != nil {
		p.log.Warnf("Failed to generate session token: %+v", err)
		return err
	}

	if err := p.redisClient.Set(ctx, p.sessionKey(), token, p.jwtService.GetSessionExpiry()).Err(); err != nil {
		p.log.Warnf("Failed to store session token in Redis: %+v", err)
		return networkError(err)
	}

	return p.publish(ctx, account.Identity())
}

func (p *CredentialProvider) publish(ctx context.Context, identity *entity.Identity) error {
	payload := signedOutPayload
	if identity != nil {
		data, err := json.Marshal(identity)
		if err != nil {
			return err
		}
		payload = string(data)
	}

	if err := p.redisClient.Publish(ctx, p.channel(), payload).Err(); err != nil {
		p.log.Warnf("Failed to publish identity change: %+v", err)
		return networkError(err)
	}
	return nil
}

func (p *CredentialProvider) sessionKey() string {
	return fmt.Sprintf("auth_session:%s", p.clientID)
}

func (p *CredentialProvider) channel() string {
	return fmt.Sprintf("auth_state:%s", p.clientID)
}

func decodeIdentity(payload string) (*entity.Identity, error) {
	if payload == signedOutPayload {
		return nil, nil
	}
	var identity entity.Identity
	if err := json.Unmarshal([]byte(payload), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func networkError(err error) error {
	return fmt.Errorf("%w: %w", provider.ErrNetwork, err)
}

// isDuplicateKeyError reports a unique violation, either translated by gorm or as the raw
// PostgreSQL error (code 23505).
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
