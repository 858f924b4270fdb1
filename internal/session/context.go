package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/pkg/core"
)

// Context holds the current hunt session state. The session collaborator
// is the single writer; everything else only reads.
type Context struct {
	mu      sync.RWMutex
	session *core.HuntSession
	active  bool

	coinsCollected int
}

// NewContext creates a Context with no active session.
func NewContext() *Context {
	return &Context{
		session: &core.HuntSession{PlayerTag: "no session"},
	}
}

// Begin starts a new hunt session and returns it.
func (c *Context) Begin(playerTag, appVersion, engineVersion, deviceModel string) core.HuntSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &core.HuntSession{
		ID:            uuid.New(),
		PlayerTag:     playerTag,
		StartTime:     time.Now(),
		AppVersion:    appVersion,
		EngineVersion: engineVersion,
		DeviceModel:   deviceModel,
	}
	c.active = true
	c.coinsCollected = 0
	return *c.session
}

// End closes the active session and returns the final record.
func (c *Context) End() core.HuntSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.EndTime = time.Now()
	c.active = false
	return *c.session
}

// Get returns the current session.
func (c *Context) Get() core.HuntSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.session
}

// Active reports whether a session is running.
func (c *Context) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// SetBaselineHeading records the compass baseline captured at session
// start by the positioner.
func (c *Context) SetBaselineHeading(degrees float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.BaselineHeadingDegrees = degrees
}

// CoinCollected increments and returns the session's collection counter.
func (c *Context) CoinCollected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coinsCollected++
	return c.coinsCollected
}

// CoinsCollected returns the session's collection counter.
func (c *Context) CoinsCollected() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coinsCollected
}
