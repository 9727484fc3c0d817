// Package admin handles the section edit form: issuing the form nonce and
// saving the stylesheet and script attachment references it submits.
package admin

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"time"
)

// SaveAction is the action the edit form's nonce is bound to.
const SaveAction = "ucf_section_nonce_save"

// DefaultNonceLifetime is how long an issued nonce stays usable at most.
const DefaultNonceLifetime = 24 * time.Hour

// Nonces issues and checks action-bound form tokens. Time is divided into
// ticks of half the lifetime; a token is accepted during the tick it was
// issued in and the one after.
type Nonces struct {
	secret []byte
	tick   time.Duration
	now    func() time.Time
}

// NonceOption configures Nonces.
type NonceOption func(*Nonces)

// WithClock replaces the time source.
func WithClock(now func() time.Time) NonceOption {
	return func(n *Nonces) {
		n.now = now
	}
}

// NewNonces creates a nonce issuer keyed by secret.
func NewNonces(secret string, lifetime time.Duration, opts ...NonceOption) *Nonces {
	if lifetime <= 0 {
		lifetime = DefaultNonceLifetime
	}
	tick := lifetime / 2
	if tick <= 0 {
		tick = lifetime
	}
	n := &Nonces{secret: []byte(secret), tick: tick, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Create returns a token for action on postID.
func (n *Nonces) Create(action string, postID int64) string {
	return n.token(n.currentTick(), action, postID)
}

// Verify reports whether nonce was issued for action on postID during the
// current or previous tick.
func (n *Nonces) Verify(nonce, action string, postID int64) bool {
	if nonce == "" {
		return false
	}
	tick := n.currentTick()
	for _, t := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(nonce), []byte(n.token(t, action, postID))) {
			return true
		}
	}
	return false
}

func (n *Nonces) currentTick() int64 {
	return n.now().UnixNano() / int64(n.tick)
}

func (n *Nonces) token(tick int64, action string, postID int64) string {
	mac := hmac.New(sha256.New, n.secret)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(tick))
	mac.Write(buf[:])
	mac.Write([]byte{0})
	mac.Write([]byte(action))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(postID, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:20]
}
