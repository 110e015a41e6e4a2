// Package session tracks per-visitor signed-in state and one-shot messages on
// top of gorilla's cookie sessions. A Session is an explicit value passed
// through request handlers instead of ambient global state.
package session

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
	qe "wuyrush.io/quire/errors"
)

const (
	cookieName  = "quire-session"
	keyUsername = "username"
)

// Manager vends visitor sessions from request cookies.
type Manager struct {
	store sessions.Store
}

// NewManager builds a Manager signing session cookies with key. An empty key
// gets a random one, which invalidates outstanding sessions across restarts -
// fine for development, supply a stable key in production.
func NewManager(key []byte) *Manager {
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	return &Manager{store: sessions.NewCookieStore(key)}
}

// Current returns the visitor session carried by the request. A request with
// no cookie, or an undecodable one, yields a fresh anonymous session.
func (m *Manager) Current(r *http.Request) *Session {
	gs, err := m.store.Get(r, cookieName)
	if err != nil {
		log.WithError(err).Warn("error decoding session cookie; starting a fresh session")
	}
	return &Session{gs: gs}
}

// Session holds one visitor's state: at most one signed-in username and at
// most one pending one-shot message.
type Session struct {
	gs *sessions.Session
}

// Username returns the signed-in username, if any.
func (s *Session) Username() (string, bool) {
	v, ok := s.gs.Values[keyUsername].(string)
	return v, ok && v != ""
}

func (s *Session) SignedIn() bool {
	_, ok := s.Username()
	return ok
}

func (s *Session) SignIn(username string) {
	s.gs.Values[keyUsername] = username
}

func (s *Session) SignOut() {
	delete(s.gs.Values, keyUsername)
}

// SetMessage queues text to be surfaced on the next rendered page.
func (s *Session) SetMessage(text string) {
	s.gs.AddFlash(text)
}

// TakeMessage reads and clears the pending message in one step, guaranteeing
// each message is surfaced exactly once.
func (s *Session) TakeMessage() (string, bool) {
	flashes := s.gs.Flashes()
	if len(flashes) == 0 {
		return "", false
	}
	msg, ok := flashes[len(flashes)-1].(string)
	return msg, ok
}

// Save persists session mutations onto the response. It must run before the
// response status and body are written.
func (s *Session) Save(r *http.Request, w http.ResponseWriter) *qe.Err {
	if err := s.gs.Save(r, w); err != nil {
		return qe.NewServiceFailure("error saving session").WithCause(err)
	}
	return nil
}
