// Package auth implements the dashboard login: a single configured user,
// opaque session tokens held in memory, and middleware guarding the
// chat UI and API.
package auth

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magroup/magnus/internal/config"
)

// CookieName carries the session token in the browser.
const CookieName = "magnus_session"

const defaultSessionTTL = 8 * time.Hour

// session is one authenticated browser session.
type session struct {
	token     string
	admin     bool
	expiresAt time.Time
}

// Service validates logins and tracks active sessions. Sessions live in
// memory only; a restart logs everyone out.
type Service struct {
	username      string
	loginPassword string
	adminPassword string
	ttl           time.Duration

	mu       sync.Mutex
	sessions map[string]session
}

// New creates an auth service from the login configuration.
func New(cfg config.AuthConfig) *Service {
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		username:      cfg.Username,
		loginPassword: cfg.LoginPassword,
		adminPassword: cfg.AdminPassword,
		ttl:           ttl,
		sessions:      make(map[string]session),
	}
}

// Login checks the credentials and issues a session token on success.
func (s *Service) Login(username, password string) (string, bool) {
	if s.loginPassword == "" {
		return "", false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.loginPassword)) == 1
	if !userOK || !passOK {
		return "", false
	}
	return s.issue(false), true
}

// LoginAdmin checks the admin password and issues an admin session.
func (s *Service) LoginAdmin(password string) (string, bool) {
	if s.adminPassword == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		return "", false
	}
	return s.issue(true), true
}

// Validate reports whether a token belongs to a live session and whether
// that session has admin rights. Expired sessions are pruned on sight.
func (s *Service) Validate(token string) (admin bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, found := s.sessions[token]
	if !found {
		return false, false
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return false, false
	}
	return sess.admin, true
}

// Logout invalidates a session token.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *Service) issue(admin bool) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{
		token:     token,
		admin:     admin,
		expiresAt: time.Now().Add(s.ttl),
	}
	return token
}
