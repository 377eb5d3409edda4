package gateway

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

const (
	verifierBytes = 32
	stateBytes    = 16

	// challengeTTL bounds how long an initiated authorization flow may sit
	// before the callback arrives.
	challengeTTL = 10 * time.Minute
)

// Challenge is an ephemeral PKCE challenge for one authorization-code flow.
// The verifier stays server-side across the redirect; the S256 challenge is
// sent to the authorization endpoint; the state nonce is matched on
// callback. A challenge is consumed exactly once.
type Challenge struct {
	Verifier  string
	Challenge string
	State     string
	TenantID  string
	CreatedAt time.Time
}

// NewChallenge generates a PKCE challenge with a cryptographically random
// verifier and state nonce. The challenge is the base64url-encoded SHA-256
// of the verifier (code_challenge_method=S256).
func NewChallenge(tenantID string) (*Challenge, error) {
	verifier, err := randomToken(verifierBytes)
	if err != nil {
		return nil, fmt.Errorf("generating code verifier: %w", err)
	}

	state, err := randomToken(stateBytes)
	if err != nil {
		return nil, fmt.Errorf("generating state nonce: %w", err)
	}

	sum := sha256.Sum256([]byte(verifier))

	return &Challenge{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
		State:     state,
		TenantID:  tenantID,
		CreatedAt: time.Now(),
	}, nil
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ChallengeStore holds pending PKCE challenges keyed by state nonce.
// Challenges are consumed exactly once and discarded after use or expiry.
type ChallengeStore struct {
	mu       sync.Mutex
	pending  map[string]*Challenge
	nowFunc  func() time.Time
	lifetime time.Duration
}

// NewChallengeStore creates an empty challenge store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		pending:  make(map[string]*Challenge),
		nowFunc:  time.Now,
		lifetime: challengeTTL,
	}
}

// Put registers a pending challenge under its state nonce.
func (s *ChallengeStore) Put(ch *Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()
	s.pending[ch.State] = ch
}

// Consume removes and returns the challenge for state. Returns false when
// the state is unknown, already consumed, or expired — the callback must be
// rejected in all three cases.
func (s *ChallengeStore) Consume(state string) (*Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.pending[state]
	if !ok {
		return nil, false
	}
	delete(s.pending, state)

	if s.nowFunc().Sub(ch.CreatedAt) > s.lifetime {
		return nil, false
	}
	return ch, true
}

func (s *ChallengeStore) evictExpiredLocked() {
	now := s.nowFunc()
	for state, ch := range s.pending {
		if now.Sub(ch.CreatedAt) > s.lifetime {
			delete(s.pending, state)
		}
	}
}
