package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/breathlab/breathcam/pkg/videoio"
)

// ConfigureStatus tags the outcome of device configuration.
type ConfigureStatus int

const (
	// ConfigureOK means a device was selected and bound to the session.
	ConfigureOK ConfigureStatus = iota
	// ConfigureNoDevice means no camera exists for any candidate facing.
	// The session stays deviceless; start/stop still work but are inert.
	ConfigureNoDevice
	// ConfigureInputRejected means a device opened but the session
	// refused it as an input. Same degraded outcome as no device.
	ConfigureInputRejected
)

// String returns the status name.
func (s ConfigureStatus) String() string {
	switch s {
	case ConfigureOK:
		return "ok"
	case ConfigureNoDevice:
		return "no_device"
	case ConfigureInputRejected:
		return "input_rejected"
	default:
		return "unknown"
	}
}

// ConfigureResult is the tagged outcome of Controller.Configure.
type ConfigureResult struct {
	Status ConfigureStatus
	// Facing is the selected camera facing when Status is ConfigureOK.
	Facing videoio.Facing
	// Err holds the underlying cause for non-OK statuses.
	Err error
}

// State is a snapshot of the controller's detecting flag, published to
// subscribers after each completed start or stop.
type State struct {
	Detecting bool      `json:"detecting"`
	At        time.Time `json:"at"`
}

type requestKind int

const (
	reqConfigure requestKind = iota
	reqStart
	reqStop
	reqClose
)

type request struct {
	kind requestKind
	// configured receives the result for reqConfigure requests.
	configured chan ConfigureResult
	// done, when non-nil, is closed once the request has been processed.
	done chan struct{}
}

// Controller owns the capture session and the selected input device.
//
// All state transitions run on a single worker goroutine: requests are
// queued and processed one at a time, so start immediately followed by
// stop completes in exactly that order and the detecting flag always
// settles at a deterministic value. The flag itself flips only after
// the underlying session operation has completed.
type Controller struct {
	cfg    videoio.Config
	logger *slog.Logger

	session *Session
	device  videoio.Device

	detecting atomic.Bool

	requests   chan request
	closed     atomic.Bool
	workerDone chan struct{}
	workerWg   sync.WaitGroup

	subMu  sync.Mutex
	subs   map[int]chan State
	nextID int
}

// NewController creates a controller with an empty session and starts
// its worker. Call Configure to bind a camera, then Start/Stop from UI
// actions. Close releases the device and stops the worker.
func NewController(cfg videoio.Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		cfg:      cfg,
		logger:   logger,
		session:    NewSession(logger),
		requests:   make(chan request, 16),
		workerDone: make(chan struct{}),
		subs:       make(map[int]chan State),
	}

	c.workerWg.Add(1)
	go c.worker()

	return c
}

// worker processes queued requests one at a time.
func (c *Controller) worker() {
	defer c.workerWg.Done()
	defer close(c.workerDone)

	ctx := context.Background()

	for req := range c.requests {
		switch req.kind {
		case reqConfigure:
			req.configured <- c.doConfigure()

		case reqStart:
			c.doStart(ctx)

		case reqStop:
			c.doStop()

		case reqClose:
			c.doStop()
			if c.device != nil {
				c.device.Close()
				c.device = nil
			}
			if req.done != nil {
				close(req.done)
			}
			return
		}

		if req.done != nil {
			close(req.done)
		}
	}
}

// doConfigure selects a camera by facing preference (front, then back)
// and binds it to the session. Failures degrade: the session is left
// deviceless and the outcome is tagged, never thrown.
func (c *Controller) doConfigure() ConfigureResult {
	dev, err := videoio.OpenPreferred(c.cfg, c.logger, videoio.FacingFront, videoio.FacingBack)
	if err != nil {
		c.logger.Warn("no camera available, session will be inert", "error", err)
		return ConfigureResult{Status: ConfigureNoDevice, Err: err}
	}

	if err := c.session.AddInput(dev); err != nil {
		c.logger.Warn("session rejected camera input", "error", err)
		dev.Close()
		return ConfigureResult{Status: ConfigureInputRejected, Err: err}
	}

	c.device = dev
	return ConfigureResult{Status: ConfigureOK, Facing: dev.Facing()}
}

func (c *Controller) doStart(ctx context.Context) {
	if c.session.Running() {
		c.logger.Debug("start ignored, session already running")
		return
	}

	if err := c.session.start(ctx); err != nil {
		c.logger.Error("session start failed", "error", err)
		return
	}

	c.detecting.Store(true)
	c.publish(State{Detecting: true, At: time.Now()})
	c.logger.Info("detecting started", "session", c.session.ID())
}

func (c *Controller) doStop() {
	if !c.session.Running() {
		c.logger.Debug("stop ignored, session not running")
		return
	}

	if err := c.session.stop(); err != nil {
		c.logger.Error("session stop failed", "error", err)
		return
	}

	c.detecting.Store(false)
	c.publish(State{Detecting: false, At: time.Now()})
	c.logger.Info("detecting stopped", "session", c.session.ID())
}

// Configure runs device selection on the worker and waits for the
// tagged result. A controller that is closing concurrently reports
// no-device instead of blocking on a worker that will never answer.
func (c *Controller) Configure() ConfigureResult {
	closedResult := ConfigureResult{Status: ConfigureNoDevice, Err: errors.New("controller closed")}
	if c.closed.Load() {
		return closedResult
	}

	res := make(chan ConfigureResult, 1)
	select {
	case c.requests <- request{kind: reqConfigure, configured: res}:
	case <-c.workerDone:
		return closedResult
	}

	select {
	case r := <-res:
		return r
	case <-c.workerDone:
		// The worker exited on a close request queued ahead of ours.
		return closedResult
	}
}

// Start queues a session start. It never blocks on the capture
// hardware; the detecting flag flips once the start completes. Starting
// an already-running session has no effect.
func (c *Controller) Start() {
	c.enqueue(reqStart)
}

// Stop queues a session stop, symmetric to Start.
func (c *Controller) Stop() {
	c.enqueue(reqStop)
}

func (c *Controller) enqueue(kind requestKind) {
	if c.closed.Load() {
		return
	}
	select {
	case c.requests <- request{kind: kind}:
	default:
		// Queue saturated by a button-mashing client; the session only
		// has two states, so dropping the request loses nothing.
		c.logger.Warn("request queue full, dropping request", "kind", kind)
	}
}

// Detecting reports whether the session is actively running.
func (c *Controller) Detecting() bool {
	return c.detecting.Load()
}

// Session returns the live session handle for binding a preview.
// Callers must not mutate session inputs directly.
func (c *Controller) Session() *Session {
	return c.session
}

// Subscribe registers a state listener. The returned channel receives a
// State after every completed start/stop transition; the cancel func
// unregisters it. Slow subscribers have updates dropped, not queued
// unboundedly.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan State, 8)
	c.subs[id] = ch

	cancel := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (c *Controller) publish(st State) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- st:
		default:
		}
	}
}

// Close stops the session, releases the device and shuts down the
// worker. It is safe to call once; later requests are ignored.
func (c *Controller) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	done := make(chan struct{})
	c.requests <- request{kind: reqClose, done: done}
	<-done
	c.workerWg.Wait()

	c.subMu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.subMu.Unlock()

	return nil
}
