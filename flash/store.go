// Package flash implements session-backed flash messages: values set during
// one request that become readable on the next request only, then expire.
package flash

import (
	"encoding/json"
	"math"

	"flashkit/session"
)

// DefaultSessionKey is the session slot holding messages queued for the
// next request.
const DefaultSessionKey = "flash-next"

// Messages is the capability set handlers use to read and queue flash
// messages. Implementations are created per request by a Factory.
type Messages interface {
	// Get returns the current message stored under name, or def.
	Get(name string, def any) any
	// All returns a copy of every current message.
	All() map[string]any
	// Flash queues a message for the next request.
	Flash(name string, value any)
	// FlashFor queues a message that stays readable for the given number
	// of subsequent requests.
	FlashFor(name string, value any, hops int) error
	// FlashNow makes a message readable in this request and queues it for
	// the next one.
	FlashNow(name string, value any)
	// Prolong queues every current message for one more request.
	Prolong()
	// Clear removes name from the queued messages.
	Clear(name string)
	// ClearAll removes every queued message.
	ClearAll()
	// ClearNow removes every current message.
	ClearNow()
}

// Message is the persisted form of a queued flash message.
type Message struct {
	Value any `json:"value"`
	Hops  int `json:"hops"`
}

// Store is the default Messages implementation. Every change to the queued
// set is written straight through to the session, so messages flashed
// before a handler fails are kept.
type Store struct {
	session    session.Session
	sessionKey string
	current    map[string]any
}

var _ Messages = (*Store)(nil)

// New promotes the messages queued in sess under sessionKey to current
// messages and expires them from the session.
func New(sess session.Session, sessionKey string) (*Store, error) {
	if sess == nil {
		return nil, ErrNilSession
	}
	if sessionKey == "" {
		sessionKey = DefaultSessionKey
	}

	s := &Store{
		session:    sess,
		sessionKey: sessionKey,
		current:    make(map[string]any),
	}
	s.promote()
	return s, nil
}

// promote moves queued messages into current and decrements their hops.
// Messages on their last hop leave the session.
func (s *Store) promote() {
	raw, ok := s.session.Get(s.sessionKey)
	if !ok {
		return
	}

	remaining := make(map[string]Message)
	for name, msg := range decodeSlot(raw) {
		s.current[name] = msg.Value
		if msg.Hops > 1 {
			msg.Hops--
			remaining[name] = msg
		}
	}
	s.write(remaining)
}

func (s *Store) Get(name string, def any) any {
	if v, ok := s.current[name]; ok {
		return v
	}
	return def
}

func (s *Store) All() map[string]any {
	out := make(map[string]any, len(s.current))
	for k, v := range s.current {
		out[k] = v
	}
	return out
}

func (s *Store) Flash(name string, value any) {
	_ = s.FlashFor(name, value, 1)
}

func (s *Store) FlashFor(name string, value any, hops int) error {
	if hops < 1 {
		return &InvalidHopsError{Name: name, Hops: hops}
	}
	next := s.queued()
	next[name] = Message{Value: value, Hops: hops}
	s.write(next)
	return nil
}

func (s *Store) FlashNow(name string, value any) {
	s.current[name] = value
	s.Flash(name, value)
}

func (s *Store) Prolong() {
	next := s.queued()
	for name, value := range s.current {
		if _, ok := next[name]; ok {
			continue
		}
		next[name] = Message{Value: value, Hops: 1}
	}
	s.write(next)
}

func (s *Store) Clear(name string) {
	next := s.queued()
	if _, ok := next[name]; !ok {
		return
	}
	delete(next, name)
	s.write(next)
}

func (s *Store) ClearAll() {
	s.session.Unset(s.sessionKey)
}

func (s *Store) ClearNow() {
	s.current = make(map[string]any)
}

// SessionKey returns the slot this store persists to.
func (s *Store) SessionKey() string {
	return s.sessionKey
}

func (s *Store) queued() map[string]Message {
	raw, ok := s.session.Get(s.sessionKey)
	if !ok {
		return make(map[string]Message)
	}
	return decodeSlot(raw)
}

func (s *Store) write(next map[string]Message) {
	if len(next) == 0 {
		s.session.Unset(s.sessionKey)
		return
	}
	s.session.Set(s.sessionKey, next)
}

// decodeSlot always returns a fresh map so the value held by the session is
// never mutated in place. Entries that went through a serializing session
// come back as {"value", "hops"} maps and are restored to Message. Bare
// values are treated as single-hop messages.
func decodeSlot(raw any) map[string]Message {
	out := make(map[string]Message)
	switch m := raw.(type) {
	case map[string]Message:
		for k, msg := range m {
			out[k] = normalize(msg)
		}
	case map[string]any:
		for k, v := range m {
			switch msg := v.(type) {
			case Message:
				out[k] = normalize(msg)
			case *Message:
				if msg != nil {
					out[k] = normalize(*msg)
				}
			case map[string]any:
				if decoded, ok := decodeEntry(msg); ok {
					out[k] = decoded
				} else {
					out[k] = Message{Value: v, Hops: 1}
				}
			default:
				out[k] = Message{Value: v, Hops: 1}
			}
		}
	case map[string]string:
		for k, v := range m {
			out[k] = Message{Value: v, Hops: 1}
		}
	}
	return out
}

// decodeEntry recognises the serialized form of a Message: exactly the
// keys "value" and "hops", with a whole-number hops.
func decodeEntry(m map[string]any) (Message, bool) {
	if len(m) != 2 {
		return Message{}, false
	}
	value, ok := m["value"]
	if !ok {
		return Message{}, false
	}
	rawHops, ok := m["hops"]
	if !ok {
		return Message{}, false
	}
	hops, ok := toHops(rawHops)
	if !ok {
		return Message{}, false
	}
	return normalize(Message{Value: value, Hops: hops}), true
}

func toHops(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func normalize(msg Message) Message {
	if msg.Hops < 1 {
		msg.Hops = 1
	}
	return msg
}
