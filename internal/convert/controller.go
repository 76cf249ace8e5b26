package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"adconvert/internal/engine"
	"adconvert/internal/logging"
	"adconvert/internal/metrics"
	"adconvert/internal/selection"
	"adconvert/internal/services"
)

// FailureLogLine is appended to the log when a conversion fails.
const FailureLogLine = "Error during conversion. Check logs for details."

// DefaultLogWindow is how many trailing log lines Snapshot exposes.
const DefaultLogWindow = 100

var (
	ErrEngineNotReady = errors.New("engine is not ready")
	ErrBusy           = errors.New("a conversion is already in progress")
	ErrInvalidBitrate = fmt.Errorf("%w: bitrate must be positive", services.ErrValidation)
)

// Request is one conversion: source bytes plus the target video bitrate.
type Request struct {
	Source      []byte
	SourceName  string
	BitrateKbps int
}

// Result is a successful conversion. The controller keeps no reference to Data.
type Result struct {
	ID           string
	OutputName   string
	DownloadName string
	ContentType  string
	Data         []byte
	Size         int64
	BitrateKbps  int
	CreatedAt    time.Time
}

// ResultInfo is the metadata of the last result, without the bytes.
type ResultInfo struct {
	ID           string    `json:"id"`
	OutputName   string    `json:"output_name"`
	DownloadName string    `json:"download_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	BitrateKbps  int       `json:"bitrate_kbps"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Status     Status      `json:"status"`
	Ready      bool        `json:"ready"`
	Progress   int         `json:"progress"`
	Log        []string    `json:"log"`
	LoadError  string      `json:"load_error,omitempty"`
	LastResult *ResultInfo `json:"last_result,omitempty"`
}

// Options wires the controller to its engine.
type Options struct {
	Engine    engine.Engine
	Resources engine.Resources
	// LoadTimeout and ConvertTimeout are unbounded when zero.
	LoadTimeout    time.Duration
	ConvertTimeout time.Duration
	LogWindow      int
	Logger         *slog.Logger
	Now            func() time.Time
}

// Controller drives the engine through load and conversion and owns the
// observable lifecycle state. At most one conversion runs at a time; a second
// request is rejected rather than queued.
type Controller struct {
	eng            engine.Engine
	res            engine.Resources
	loadTimeout    time.Duration
	convertTimeout time.Duration
	logWindow      int
	logger         *slog.Logger
	now            func() time.Time

	mu        sync.Mutex
	status    Status
	ready     bool
	loading   bool
	loadErr   error
	progress  int
	log       []string
	last      *ResultInfo
	lastNanos int64

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// New constructs an idle controller. The engine is not loaded until Initialize.
func New(opts Options) *Controller {
	if opts.LogWindow <= 0 {
		opts.LogWindow = DefaultLogWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		eng:            opts.Engine,
		res:            opts.Resources,
		loadTimeout:    opts.LoadTimeout,
		convertTimeout: opts.ConvertTimeout,
		logWindow:      opts.LogWindow,
		logger:         logging.NewComponentLogger(opts.Logger, "controller"),
		now:            opts.Now,
		status:         StatusIdle,
		subs:           make(map[int]chan Snapshot),
	}
}

// Initialize loads the engine once. It is a no-op when the engine is ready or
// a load is already running. Failures are recorded in Snapshot().LoadError and
// leave the engine not ready; calling Initialize again retries.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.ready || c.loading {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.loadErr = nil
	c.setStatusLocked(StatusLoadingEngine)
	c.mu.Unlock()
	c.publish()

	if c.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()
	}
	start := time.Now()
	err := c.eng.Load(ctx, c.res)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.loadErr = err
		c.log = append(c.log, "Failed to load engine: "+err.Error())
	} else {
		c.ready = true
		c.setStatusLocked(StatusIdle)
	}
	c.mu.Unlock()

	if err != nil {
		metrics.EngineLoadTotal.WithLabelValues(services.Category(err)).Inc()
		logging.ErrorWithContext(c.logger, "engine load failed", "engine_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the engine binaries or base_url, then retry"),
		)
	} else {
		metrics.EngineLoadTotal.WithLabelValues("ok").Inc()
		metrics.SetEngineReady(true)
		c.logger.Info("engine ready", logging.Duration("elapsed", time.Since(start)))
	}
	c.publish()
}

// InitializeAsync runs Initialize on its own goroutine.
func (c *Controller) InitializeAsync(ctx context.Context) {
	go c.Initialize(ctx)
}

// Ready reports whether the engine has loaded.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Convert runs one conversion and blocks until it resolves. Precondition
// failures (ErrEngineNotReady, ErrBusy, ErrInvalidBitrate) return immediately
// without touching progress or log.
func (c *Controller) Convert(ctx context.Context, req Request) (*Result, error) {
	c.mu.Lock()
	switch {
	case !c.ready:
		c.mu.Unlock()
		return nil, ErrEngineNotReady
	case c.status == StatusConverting:
		c.mu.Unlock()
		return nil, ErrBusy
	case req.BitrateKbps <= 0:
		c.mu.Unlock()
		return nil, ErrInvalidBitrate
	}
	c.progress = 0
	c.log = []string{}
	c.last = nil
	c.setStatusLocked(StatusConverting)
	output := c.nextOutputNameLocked()
	c.mu.Unlock()
	c.publish()

	id := uuid.NewString()
	ctx = services.WithConversionID(ctx, id)
	logger := logging.WithContext(ctx, c.logger)
	if c.convertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.convertTimeout)
		defer cancel()
	}

	metrics.ConversionsInFlight.Inc()
	defer metrics.ConversionsInFlight.Dec()
	start := time.Now()
	logger.Info("conversion started",
		logging.String("source", req.SourceName),
		logging.Int("bitrate_kbps", req.BitrateKbps),
		logging.Int64("source_bytes", int64(len(req.Source))),
		logging.String("output", output),
	)

	data, err := c.run(ctx, logger, req, output)
	metrics.ConversionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		wrapped := services.Wrap(services.ErrExternalTool, "convert", "", req.SourceName, err)
		c.mu.Lock()
		c.log = append(c.log, FailureLogLine, err.Error())
		c.setStatusLocked(StatusError)
		c.mu.Unlock()
		c.publish()
		metrics.ConversionsTotal.WithLabelValues(services.Category(err)).Inc()
		logging.ErrorWithContext(logger, "conversion failed", "conversion_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the engine log lines above"),
		)
		return nil, wrapped
	}

	result := &Result{
		ID:           id,
		OutputName:   output,
		DownloadName: selection.DownloadName(req.SourceName, req.BitrateKbps),
		ContentType:  OutputContentType,
		Data:         data,
		Size:         int64(len(data)),
		BitrateKbps:  req.BitrateKbps,
		CreatedAt:    c.now(),
	}
	c.mu.Lock()
	c.last = &ResultInfo{
		ID:           result.ID,
		OutputName:   result.OutputName,
		DownloadName: result.DownloadName,
		ContentType:  result.ContentType,
		Size:         result.Size,
		BitrateKbps:  result.BitrateKbps,
		CreatedAt:    result.CreatedAt,
	}
	c.setStatusLocked(StatusDone)
	c.mu.Unlock()
	c.publish()

	metrics.ConversionsTotal.WithLabelValues("ok").Inc()
	logger.Info("conversion finished",
		logging.String("download_name", result.DownloadName),
		logging.Int64("output_bytes", result.Size),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (c *Controller) run(ctx context.Context, logger *slog.Logger, req Request, output string) ([]byte, error) {
	if err := c.eng.WriteFile(ctx, InputName, req.Source); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	events := make(chan engine.Event)
	execErr := make(chan error, 1)
	go func() {
		execErr <- c.eng.Exec(ctx, BuildCommand(InputName, output, req.BitrateKbps), events)
		close(events)
	}()
	sampler := logging.NewProgressSampler(10)
	for ev := range events {
		c.apply(logger, sampler, ev)
	}
	if err := <-execErr; err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}

	data, err := c.eng.ReadFile(ctx, output)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if err := c.eng.DeleteFile(ctx, output); err != nil {
		logging.WarnWithContext(logger, "failed to remove consumed output", "scratch_cleanup_failed",
			logging.String("output", output),
			logging.Error(err),
			logging.String(logging.FieldImpact, "scratch space is reclaimed when the engine closes"),
		)
	}
	return data, nil
}

func (c *Controller) apply(logger *slog.Logger, sampler *logging.ProgressSampler, ev engine.Event) {
	switch ev.Kind {
	case engine.EventProgress:
		percent := clampPercent(ev.Progress)
		c.mu.Lock()
		changed := percent != c.progress
		c.progress = percent
		c.mu.Unlock()
		if sampler.ShouldLog(percent) {
			logger.Debug("conversion progress", logging.Int(logging.FieldProgressPercent, percent))
		}
		if changed {
			c.publish()
		}
	case engine.EventLog:
		c.mu.Lock()
		c.log = append(c.log, ev.Message)
		c.mu.Unlock()
		c.publish()
	}
}

// clampPercent converts a fraction to a whole percentage in [0,100].
func clampPercent(fraction float64) int {
	if math.IsNaN(fraction) {
		return 0
	}
	return int(math.Round(min(max(fraction, 0), 1) * 100))
}

// Reset returns a finished controller to Idle and forgets the last result.
// The engine stays loaded. Reset is refused while converting.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.status == StatusConverting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.last = nil
	if c.status.Terminal() {
		c.setStatusLocked(StatusIdle)
	}
	c.mu.Unlock()
	c.publish()
	return nil
}

// Snapshot returns a copy of the current state with the trailing log window.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:   c.status,
		Ready:    c.ready,
		Progress: c.progress,
		Log:      tail(c.log, c.logWindow),
	}
	if c.loadErr != nil {
		snap.LoadError = c.loadErr.Error()
	}
	if c.last != nil {
		info := *c.last
		snap.LastResult = &info
	}
	return snap
}

// Log returns a copy of the full log of the current or last conversion.
func (c *Controller) Log() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

// Tail returns up to n trailing log lines; n <= 0 uses the configured window.
func (c *Controller) Tail(n int) []string {
	if n <= 0 {
		n = c.logWindow
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return tail(c.log, n)
}

func tail(lines []string, n int) []string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return append([]string{}, lines...)
}

// Subscribe returns a channel that receives the latest snapshot after every
// state change, plus a function that ends the subscription. Slow readers see
// only the most recent snapshot.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
			close(ch)
		})
	}
}

func (c *Controller) publish() {
	snap := c.Snapshot()
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Close releases the engine.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.ready = false
	c.mu.Unlock()
	metrics.SetEngineReady(false)
	if c.eng == nil {
		return nil
	}
	return c.eng.Close()
}

func (c *Controller) setStatusLocked(to Status) {
	if c.status == to {
		return
	}
	if !validTransition(c.status, to) {
		c.logger.Warn("unexpected status transition",
			logging.String("from", c.status.String()),
			logging.String("to", to.String()),
			logging.String(logging.FieldEventType, "invalid_transition"),
		)
	}
	c.status = to
}

// nextOutputNameLocked returns a unique output name even when the clock has
// not advanced since the previous call.
func (c *Controller) nextOutputNameLocked() string {
	nanos := c.now().UnixNano()
	if nanos <= c.lastNanos {
		nanos = c.lastNanos + 1
	}
	c.lastNanos = nanos
	return outputName(nanos)
}
