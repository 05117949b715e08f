package enforcer

import (
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// State is the lock state of one package at one instant.
type State int

const (
	// StateUnlockedPermanent: not in the lock registry, or registered but
	// not toggled locked.
	StateUnlockedPermanent State = iota
	// StateLocked: toggled locked with no live temporary-unlock grant.
	StateLocked
	// StateTempUnlocked: toggled locked but covered by a purchased grant.
	StateTempUnlocked
)

func (s State) String() string {
	switch s {
	case StateUnlockedPermanent:
		return "UNLOCKED_PERMANENT"
	case StateLocked:
		return "LOCKED"
	case StateTempUnlocked:
		return "TEMP_UNLOCKED"
	}
	return "UNKNOWN"
}

// LockRegistry is the admin-written registry of lockable apps.
type LockRegistry interface {
	IsLocked(packageID string) (bool, error)
}

// GrantStore reads and purges temporary-unlock grants.
type GrantStore interface {
	HasActiveGrant(packageID string, nowSec int64) (bool, error)
	PurgeExpired(nowSec int64) error
}

// ForegroundQuerier queries the package owning the active window. It may be
// absent or unreliable on some devices; the enforcer then falls back to the
// packages reported through HandleForegroundChange.
type ForegroundQuerier interface {
	ForegroundPackage() (string, error)
}

// BlockPresenter shows the block screen for a package. Implementations must
// marshal onto the UI-capable thread themselves; the enforcer calls from
// background goroutines.
type BlockPresenter interface {
	PresentBlock(packageID string)
}

// Config wires an Enforcer.
type Config struct {
	// HostPackage is this app's own package; it is never evaluated.
	HostPackage string
	Locks       LockRegistry
	Grants      GrantStore
	// Foreground is optional; nil means poll ticks rely on the event
	// fallback chain only.
	Foreground ForegroundQuerier
	Presenter  BlockPresenter
	// InputMethods lists known keyboard packages, which are never the app
	// the user is really using.
	InputMethods []string
	// PollInterval defaults to 2s, Debounce to 800ms.
	PollInterval time.Duration
	Debounce     time.Duration
	// Now is replaceable for tests.
	Now func() time.Time
}

// Enforcer continuously decides whether the foreground app must be blocked.
// Two triggers drive it: foreground-change events delivered through
// HandleForegroundChange, and a fixed-interval poll. Neither alone is
// reliable on every device, so both run. Store failures never stop either
// trigger; the affected tick fails open and the next one re-evaluates.
type Enforcer struct {
	hostPackage  string
	locks        LockRegistry
	grants       GrantStore
	foreground   ForegroundQuerier
	presenter    BlockPresenter
	inputMethods map[string]bool
	pollInterval time.Duration
	debounce     time.Duration
	now          func() time.Time

	scheduler *gocron.Scheduler
	ready     chan struct{}

	mu          sync.Mutex
	lastSeen    string
	lastVisible string // last seen package that is not an input method
	lastBlockAt map[string]time.Time
}

// New creates an enforcer. Call Start to run it.
func New(cfg Config) *Enforcer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 800 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ime := make(map[string]bool, len(cfg.InputMethods))
	for _, pkg := range cfg.InputMethods {
		ime[pkg] = true
	}
	return &Enforcer{
		hostPackage:  cfg.HostPackage,
		locks:        cfg.Locks,
		grants:       cfg.Grants,
		foreground:   cfg.Foreground,
		presenter:    cfg.Presenter,
		inputMethods: ime,
		pollInterval: cfg.PollInterval,
		debounce:     cfg.Debounce,
		now:          cfg.Now,
		ready:        make(chan struct{}),
		lastBlockAt:  make(map[string]time.Time),
	}
}

// Start runs the startup grant cleanup and then the poll loop. The cleanup
// is asynchronous; Ready is closed once it finished and the poll loop is
// scheduled. Events are accepted immediately.
func (e *Enforcer) Start() {
	e.scheduler = gocron.NewScheduler(time.UTC)

	go func() {
		if err := e.grants.PurgeExpired(e.now().Unix()); err != nil {
			// Stale grants only mask a re-lock until the next poll purge.
			log.Printf("enforcer: startup grant cleanup failed: %v", err)
		}
		if _, err := e.scheduler.Every(e.pollInterval).Do(e.pollTick); err != nil {
			log.Printf("enforcer: failed to schedule poll: %v", err)
		}
		e.scheduler.StartAsync()
		close(e.ready)
	}()
}

// Ready is closed once startup cleanup completed and polling is running.
func (e *Enforcer) Ready() <-chan struct{} {
	return e.ready
}

// Stop cancels the poll loop. Pending events are still accepted but no
// timer survives.
func (e *Enforcer) Stop() {
	if e.scheduler != nil {
		e.scheduler.Stop()
	}
}

// HandleForegroundChange is the event trigger: the platform reports the
// newly foregrounded package and it is evaluated immediately.
func (e *Enforcer) HandleForegroundChange(packageID string) {
	if packageID == "" {
		return
	}
	e.mu.Lock()
	e.lastSeen = packageID
	if !e.inputMethods[packageID] {
		e.lastVisible = packageID
	}
	e.mu.Unlock()

	e.evaluate(packageID, e.now())
}

// pollTick is the poll trigger: purge expired grants, then re-derive the
// foreground package and evaluate it.
func (e *Enforcer) pollTick() {
	now := e.now()
	if err := e.grants.PurgeExpired(now.Unix()); err != nil {
		log.Printf("enforcer: grant purge failed: %v", err)
	}
	if pkg := e.currentForeground(); pkg != "" {
		e.evaluate(pkg, now)
	}
}

// currentForeground resolves the foreground package best-effort: live query
// first, then the last event-reported package, then the last one that was
// not a keyboard. Some devices report the active window unreliably, which
// is the whole reason this chain exists.
func (e *Enforcer) currentForeground() string {
	if e.foreground != nil {
		pkg, err := e.foreground.ForegroundPackage()
		if err == nil && pkg != "" {
			return pkg
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastSeen != "" && !e.inputMethods[e.lastSeen] {
		return e.lastSeen
	}
	return e.lastVisible
}

// StateFor derives the lock state of a package at now.
func (e *Enforcer) StateFor(packageID string, now time.Time) (State, error) {
	locked, err := e.locks.IsLocked(packageID)
	if err != nil {
		return StateUnlockedPermanent, err
	}
	if !locked {
		return StateUnlockedPermanent, nil
	}
	active, err := e.grants.HasActiveGrant(packageID, now.Unix())
	if err != nil {
		return StateUnlockedPermanent, err
	}
	if active {
		return StateTempUnlocked, nil
	}
	return StateLocked, nil
}

// evaluate applies the state machine to one package. Store errors fail open
// for this tick. The block side effect is debounced per package to absorb
// event storms from rapid foreground changes.
func (e *Enforcer) evaluate(packageID string, now time.Time) {
	if packageID == e.hostPackage {
		return
	}
	state, err := e.StateFor(packageID, now)
	if err != nil {
		log.Printf("enforcer: evaluation of %s failed, treating as not blocked: %v", packageID, err)
		return
	}
	if state != StateLocked {
		return
	}

	e.mu.Lock()
	if last, seen := e.lastBlockAt[packageID]; seen && now.Sub(last) < e.debounce {
		e.mu.Unlock()
		return
	}
	e.lastBlockAt[packageID] = now
	e.mu.Unlock()

	e.presenter.PresentBlock(packageID)
}
