// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("too many failed sign-in attempts")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

// DefaultTTL is the session lifetime when the config leaves it unset.
const DefaultTTL = 12 * time.Hour

// Lockout policy for failed sign-ins.
const (
	maxSignInFails  = 5
	signInBlockTime = 15 * time.Minute
)

// Session change events delivered to OnChange watchers.
const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

// Event describes a session lifecycle change.
type Event struct {
	Type  string
	Email string
}

// Session is one live admin sign-in. The token the client holds is an HS256
// JWT whose ID points at this record; dropping the record revokes the token
// no matter how much lifetime it has left.
type Session struct {
	TokenID   string
	Email     string
	ExpiresAt time.Time
}

// Config carries the admin credentials and signing material.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// Secret signs session tokens. Changing it invalidates every
	// outstanding token.
	Secret string
	// TTL is the session lifetime; DefaultTTL when zero.
	TTL time.Duration
}

// Service authenticates the admin and tracks live sessions. Tokens are
// stateless JWTs for integrity and expiry, but a session registry backs
// them so sign-out actually revokes.
type Service struct {
	email    string
	password string
	secret   []byte
	ttl      time.Duration

	lim *limiter

	mu        sync.Mutex
	sessions  map[string]Session
	watchers  map[int]func(Event)
	watcherID int
}

func NewService(cfg Config) (*Service, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil, errors.New("admin credentials are required")
	}
	if len(cfg.Secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		email:    cfg.AdminEmail,
		password: cfg.AdminPassword,
		secret:   []byte(cfg.Secret),
		ttl:      ttl,
		lim:      newLimiter(maxSignInFails, signInBlockTime),
		sessions: make(map[string]Session),
		watchers: make(map[int]func(Event)),
	}, nil
}

// SignIn checks the credentials and issues a session token. Failures count
// against the (email, client IP) pair; once the lockout trips, every
// attempt from that pair is rejected until it lifts, right password or not.
func (s *Service) SignIn(email, password, clientIP string) (string, Session, error) {
	key := limiterKey(email, clientIP, s.secret)

	if allowed, _ := s.lim.allow(key); !allowed {
		return "", Session{}, ErrRateLimited
	}

	emailOK := secureCompare(email, s.email)
	passwordOK := secureCompare(password, s.password)
	if !emailOK || !passwordOK {
		if blocked := s.lim.failure(key); blocked {
			return "", Session{}, ErrRateLimited
		}
		return "", Session{}, ErrInvalidCredentials
	}
	s.lim.success(key)

	now := time.Now()
	sess := Session{
		TokenID:   uuid.NewString(),
		Email:     email,
		ExpiresAt: now.Add(s.ttl),
	}
	claims := jwt.RegisteredClaims{
		ID:        sess.TokenID,
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Session{}, err
	}

	s.mu.Lock()
	s.pruneLocked(now)
	s.sessions[sess.TokenID] = sess
	watchers := s.watchersLocked()
	s.mu.Unlock()

	notify(watchers, Event{Type: EventSignedIn, Email: email})
	return signed, sess, nil
}

// Get resolves a token to its live session. A well-formed token whose
// session has been revoked is as invalid as a forged one.
func (s *Service) Get(token string) (Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[claims.ID]
	s.mu.Unlock()
	if !ok {
		return Session{}, ErrInvalidToken
	}
	return sess, nil
}

// SignOut revokes the token's session. Signing out an already-revoked
// session is not an error.
func (s *Service) SignOut(token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	sess, ok := s.sessions[claims.ID]
	if ok {
		delete(s.sessions, claims.ID)
	}
	watchers := s.watchersLocked()
	s.mu.Unlock()

	if ok {
		notify(watchers, Event{Type: EventSignedOut, Email: sess.Email})
	}
	return nil
}

// OnChange registers fn to run after every sign-in and sign-out. The
// returned release stops delivery; calling it more than once is safe.
func (s *Service) OnChange(fn func(Event)) (release func()) {
	s.mu.Lock()
	id := s.watcherID
	s.watcherID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Service) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// pruneLocked sweeps sessions that expired on their own, so the registry
// does not grow with tokens nobody signed out.
func (s *Service) pruneLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

func (s *Service) watchersLocked() []func(Event) {
	out := make([]func(Event), 0, len(s.watchers))
	for _, fn := range s.watchers {
		out = append(out, fn)
	}
	return out
}

// notify runs outside the service lock so a watcher may call back in.
func notify(watchers []func(Event), e Event) {
	for _, fn := range watchers {
		fn(e)
	}
}

// secureCompare checks two strings in constant time. Hashing first keeps
// the comparison length-independent.
func secureCompare(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return hmac.Equal(ha[:], hb[:])
}

// limiterKey scopes the failure count to one (email, client IP) pair.
func limiterKey(email, ip string, salt []byte) string {
	return email + "|" + HashIP(ip, string(salt))
}

// HashIP creates a one-way hash of an IP address for privacy. The salt
// keeps the hashes from being precomputable.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) are plenty for scoping counters
	return hex.EncodeToString(sum[:8])
}
