// Package session keeps the authenticated user in a signed cookie and
// carries one-shot flash messages between a redirect and the next page.
// Handlers read the decoded session with From; nothing is stored globally.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const contextKey = "board.session"

// Flash categories.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashDanger  = "danger"
)

// Session is the per-request view of who is logged in. The zero value is
// an anonymous session.
type Session struct {
	UserID   int64
	Username string
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s Session) Authenticated() bool {
	return s.UserID > 0
}

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Config controls cookie naming, signing and lifetime.
type Config struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type state struct {
	session  Session
	incoming []Flash
	pending  []Flash
}

// Manager issues, decodes and clears session and flash cookies.
type Manager struct {
	cfg    Config
	secret []byte
	now    func() time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "board_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Manager{
		cfg:    cfg,
		secret: []byte(cfg.Secret),
		now:    time.Now,
	}
}

func (m *Manager) flashCookie() string {
	return m.cfg.CookieName + "_flash"
}

// Middleware decodes the session and pending flashes of every request.
// A missing, tampered or expired cookie yields an anonymous session.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := &state{}
		if raw, err := c.Cookie(m.cfg.CookieName); err == nil && raw != "" {
			if sess, err := m.decode(raw); err == nil {
				st.session = sess
			} else {
				m.setCookie(c, m.cfg.CookieName, "", -1)
			}
		}
		if raw, err := c.Cookie(m.flashCookie()); err == nil && raw != "" {
			st.incoming = decodeFlashes(raw)
		}
		c.Set(contextKey, st)
		c.Next()
	}
}

// From returns the session decoded for this request.
func From(c *gin.Context) Session {
	if st := stateFrom(c); st != nil {
		return st.session
	}
	return Session{}
}

func stateFrom(c *gin.Context) *state {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	st, _ := v.(*state)
	return st
}

// Login authenticates the rest of the request and the client's following requests.
func (m *Manager) Login(c *gin.Context, userID int64, username string) error {
	if userID <= 0 {
		return errors.New("session: invalid user id")
	}
	token, err := m.encode(Session{UserID: userID, Username: username})
	if err != nil {
		return err
	}
	m.setCookie(c, m.cfg.CookieName, token, int(m.cfg.TTL/time.Second))
	if st := stateFrom(c); st != nil {
		st.session = Session{UserID: userID, Username: username}
	}
	return nil
}

// Clear drops the session unconditionally. Pending flashes survive.
func (m *Manager) Clear(c *gin.Context) {
	m.setCookie(c, m.cfg.CookieName, "", -1)
	if st := stateFrom(c); st != nil {
		st.session = Session{}
	}
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(c *gin.Context, category, message string) {
	st := stateFrom(c)
	if st == nil {
		return
	}
	st.pending = append(st.pending, Flash{Category: category, Message: message})
	all := append(append([]Flash{}, st.incoming...), st.pending...)
	m.setCookie(c, m.flashCookie(), encodeFlashes(all), 0)
}

// Flashes consumes every queued message, including ones added during this request.
func (m *Manager) Flashes(c *gin.Context) []Flash {
	out := []Flash{}
	st := stateFrom(c)
	if st == nil {
		return out
	}
	out = append(out, st.incoming...)
	out = append(out, st.pending...)
	if len(out) > 0 {
		m.setCookie(c, m.flashCookie(), "", -1)
	}
	st.incoming, st.pending = nil, nil
	return out
}

func (m *Manager) encode(s Session) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   s.UserID,
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (m *Manager) decode(raw string) (Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	var cl claims
	if _, err := parser.ParseWithClaims(raw, &cl, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}); err != nil {
		return Session{}, err
	}
	if cl.UserID <= 0 {
		return Session{}, errors.New("session: missing user id")
	}
	return Session{UserID: cl.UserID, Username: cl.Username}, nil
}

func (m *Manager) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", m.cfg.Secure, true)
}

func encodeFlashes(flashes []Flash) string {
	data, err := json.Marshal(flashes)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeFlashes(raw string) []Flash {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
