package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound       = errors.New("session not found")
	ErrNoPendingTutor = errors.New("no tutor registration in progress")
	ErrUnavailable    = errors.New("session store unavailable")
	errUnknownKind    = errors.New("unknown principal kind")
)

// Principal kinds
const (
	KindAnonymous = "anonymous"
	KindChild     = "child"
	KindAdmin     = "admin"
)

// Registration stages
const (
	StageAwaitingTutor    Stage = "awaiting_tutor"
	StageAwaitingChildren Stage = "awaiting_children"
	StageComplete         Stage = "complete"
)

type (
	Stage string

	// Principal is who is logged in: exactly one of Anonymous, Child or Admin.
	Principal interface {
		Kind() string
	}

	Anonymous struct{}

	Child struct {
		ChildID  int64  `json:"child_id"`
		TutorID  int64  `json:"tutor_id"`
		Names    string `json:"names"`
		Surnames string `json:"surnames"`
	}

	// Admin is a tutor looking at their own profile.
	Admin struct {
		TutorID  int64  `json:"tutor_id"`
		Names    string `json:"names"`
		Surnames string `json:"surnames"`
		Role     string `json:"role"`
		Email    string `json:"email"`
	}
)

func (Anonymous) Kind() string { return KindAnonymous }
func (Child) Kind() string     { return KindChild }
func (Admin) Kind() string     { return KindAdmin }

// Session is the per-visitor state, identified by the id carried in the session cookie.
type Session struct {
	id           string
	principal    Principal
	stage        Stage
	pendingTutor int64
	expiresAt    time.Time

	isNew  bool
	dirty  bool
	prevID string // set when the id was rotated and the old record must be dropped
}

// New returns an anonymous session with a fresh id.
func New(ttl time.Duration) *Session {
	return &Session{
		id:        NewID(),
		principal: Anonymous{},
		stage:     StageAwaitingTutor,
		expiresAt: time.Now().Add(ttl).UTC(),
		isNew:     true,
	}
}

func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the shape of a session id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Principal() Principal  { return s.principal }
func (s *Session) Stage() Stage          { return s.stage }
func (s *Session) ExpiresAt() time.Time  { return s.expiresAt }
func (s *Session) IsNew() bool           { return s.isNew }
func (s *Session) Dirty() bool           { return s.dirty || s.isNew }
func (s *Session) PreviousID() string    { return s.prevID }
func (s *Session) Expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && now.After(s.expiresAt)
}

// Touch extends the session lifetime.
func (s *Session) Touch(ttl time.Duration) {
	s.expiresAt = time.Now().Add(ttl).UTC()
	s.dirty = true
}

// Saved clears the bookkeeping flags once the session has been persisted.
func (s *Session) Saved() {
	s.isNew = false
	s.dirty = false
	s.prevID = ""
}

func (s *Session) setPrincipal(p Principal) {
	if p == s.principal {
		return
	}
	s.principal = p
	s.rotate()
	s.dirty = true
}

// rotate issues a new id, remembering the first one replaced since the last save.
func (s *Session) rotate() {
	if s.prevID == "" && !s.isNew {
		s.prevID = s.id
	}
	s.id = NewID()
}

// LoginChild makes c the session principal, dropping any admin.
func (s *Session) LoginChild(c Child) { s.setPrincipal(c) }

// LoginAdmin makes a the session principal, dropping any child.
func (s *Session) LoginAdmin(a Admin) { s.setPrincipal(a) }

// Logout returns to Anonymous and reports whether anybody was logged in.
func (s *Session) Logout() bool {
	if s.principal == nil || s.principal.Kind() == KindAnonymous {
		return false
	}
	s.principal = Anonymous{}
	s.dirty = true
	return true
}

func (s *Session) IsChildActive() bool {
	_, ok := s.principal.(Child)
	return ok
}

func (s *Session) Child() (Child, bool) {
	c, ok := s.principal.(Child)
	return c, ok
}

func (s *Session) Admin() (Admin, bool) {
	a, ok := s.principal.(Admin)
	return a, ok
}

// BeginRegistration records tutorID as the tutor whose children are registered next.
func (s *Session) BeginRegistration(tutorID int64) {
	s.stage = StageAwaitingChildren
	s.pendingTutor = tutorID
	s.dirty = true
}

// PendingTutor returns the tutor recorded by BeginRegistration.
func (s *Session) PendingTutor() (int64, error) {
	if s.stage != StageAwaitingChildren || s.pendingTutor <= 0 {
		return 0, ErrNoPendingTutor
	}
	return s.pendingTutor, nil
}

// CompleteRegistration ends the registration flow. A new tutor registration starts another one.
func (s *Session) CompleteRegistration() {
	s.stage = StageComplete
	s.pendingTutor = 0
	s.dirty = true
}

type record struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Child        *Child    `json:"child,omitempty"`
	Admin        *Admin    `json:"admin,omitempty"`
	Stage        Stage     `json:"stage"`
	PendingTutor int64     `json:"pending_tutor,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	rec := record{
		ID:           s.id,
		Kind:         KindAnonymous,
		Stage:        s.stage,
		PendingTutor: s.pendingTutor,
		ExpiresAt:    s.expiresAt,
	}
	switch p := s.principal.(type) {
	case Child:
		rec.Kind = KindChild
		rec.Child = &p
	case Admin:
		rec.Kind = KindAdmin
		rec.Admin = &p
	}
	return json.Marshal(rec)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	var p Principal
	switch rec.Kind {
	case KindAnonymous, "":
		p = Anonymous{}
	case KindChild:
		if rec.Child == nil {
			return errUnknownKind
		}
		p = *rec.Child
	case KindAdmin:
		if rec.Admin == nil {
			return errUnknownKind
		}
		p = *rec.Admin
	default:
		return errors.Wrap(errUnknownKind, rec.Kind)
	}

	stage := rec.Stage
	if stage == "" {
		stage = StageAwaitingTutor
	}
	*s = Session{
		id:           rec.ID,
		principal:    p,
		stage:        stage,
		pendingTutor: rec.PendingTutor,
		expiresAt:    rec.ExpiresAt,
	}
	return nil
}

// Encode serializes s for a Store.
func Encode(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	return data, errors.Wrap(err, "encoding session")
}

// Decode restores a session serialized by Encode.
func Decode(data []byte) (*Session, error) {
	s := new(Session)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "decoding session")
	}
	return s, nil
}
