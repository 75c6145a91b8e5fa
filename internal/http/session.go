package http

import (
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionName = "nexusmart"

	sessionIDKey = "sid"
	adminKey     = "admin"
)

const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a one-shot user-visible message.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func init() {
	gob.Register(Flash{})
}

type ctxKey int

const (
	sessionCtxKey ctxKey = iota
	sessionIDCtxKey
)

// SessionManager owns the signed session cookie. Each client gets a stable
// random id that keys its cart in the cart store.
type SessionManager struct {
	store  sessions.Store
	logger *zap.Logger
}

func NewSessionManager(secret []byte, maxAge time.Duration, secure bool, logger *zap.Logger) *SessionManager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, logger: logger}
}

// Middleware loads the session and assigns a session id on first visit.
// A cookie that fails verification is replaced with a fresh session.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, sessionName)
		if err != nil {
			m.logger.Debug("discarding unreadable session cookie", zap.Error(err))
		}

		sid, _ := sess.Values[sessionIDKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			sess.Values[sessionIDKey] = sid
			if err := sess.Save(r, w); err != nil {
				m.logger.Error("failed to save session", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, sess)
		ctx = context.WithValue(ctx, sessionIDCtxKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	if sid, ok := r.Context().Value(sessionIDCtxKey).(string); ok {
		return sid
	}
	return ""
}

func currentSession(r *http.Request) *sessions.Session {
	if sess, ok := r.Context().Value(sessionCtxKey).(*sessions.Session); ok {
		return sess
	}
	return nil
}

func (m *SessionManager) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		m.logger.Error("failed to save session", zap.Error(err))
	}
}

func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	sess := currentSession(r)
	if sess == nil {
		return
	}
	sess.AddFlash(Flash{Level: level, Message: message})
	m.save(w, r, sess)
}

// Flashes returns and consumes pending messages.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess := currentSession(r)
	if sess == nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return []Flash{}
	}
	m.save(w, r, sess)

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

func (m *SessionManager) IsAdmin(r *http.Request) bool {
	sess := currentSession(r)
	if sess == nil {
		return false
	}
	admin, _ := sess.Values[adminKey].(bool)
	return admin
}

func (m *SessionManager) SetAdmin(w http.ResponseWriter, r *http.Request, admin bool) {
	sess := currentSession(r)
	if sess == nil {
		return
	}
	if admin {
		sess.Values[adminKey] = true
	} else {
		delete(sess.Values, adminKey)
	}
	m.save(w, r, sess)
}
