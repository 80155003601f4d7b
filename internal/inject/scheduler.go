// Package inject mounts export buttons into page containers that may not exist yet.
//
// Each navigation arms the scheduler with a new generation. An attempt runs at once and
// again at every delay of the retry schedule; attempts belonging to an older generation
// do nothing. Mount state is tracked per generation and mount key, and is consulted
// before any change to the document, so a button is mounted at most once per logical
// container however many attempts run.
package inject

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"scexport/internal/core"
	"scexport/internal/dom"
	"scexport/pkg/selector"
)

const defaultStateCapacity = 4096

// State is the mount state of one key within one generation.
type State int

const (
	// Unmounted means no attempt has mounted the key yet.
	Unmounted State = iota
	// Mounted means the key's element is on the page.
	Mounted
)

func (s State) String() string {
	if s == Mounted {
		return "mounted"
	}
	return "unmounted"
}

// Generation identifies one arming of the scheduler.
type Generation uint64

// MountEvent describes a completed mount, for mirrors of the page.
type MountEvent struct {
	ID                string
	ContainerSelector string
	RowSelector       string // Empty for page-level mounts.
	RowIndex          int    // Position among RowSelector matches, -1 for page-level mounts.
	Node              *html.Node
}

// Sink receives mount events after the document lock is released.
type Sink interface {
	Mounted(ev MountEvent)
}

// Recorder counts mount outcomes.
type Recorder interface {
	MountSucceeded(key string)
	MountFailed(key string)
}

// Point is something the scheduler can mount.
type Point interface {
	Key() string
	attempt(a *attempt)
}

// MountPoint mounts one element into the first container its chain resolves.
type MountPoint struct {
	ID         string
	Containers selector.Chain
	Build      func() *html.Node
}

// Key returns the element id.
func (p MountPoint) Key() string { return p.ID }

// RowMountPoint mounts one element into every row of a list. Row i gets the id Prefix+i,
// so rows that appear on later attempts still get their element. Build must return an
// element carrying that id.
type RowMountPoint struct {
	Prefix     string
	Rows       selector.Chain
	Containers selector.Chain // Resolved within each row.
	Build      func(index int, row *goquery.Selection) *html.Node
}

// Key returns the id prefix.
func (p RowMountPoint) Key() string { return p.Prefix }

// RowID returns the element id of row index.
func (p RowMountPoint) RowID(index int) string {
	return p.Prefix + strconv.Itoa(index)
}

// Config holds the scheduler settings.
type Config struct {
	// Schedule holds the delays, measured from arming, of the attempts after the first.
	Schedule []time.Duration
	// StateCapacity bounds the mount state table.
	StateCapacity int
	// Diagnostics are counted and logged when a container is finally not found.
	Diagnostics selector.Chain
}

// Scheduler runs mount attempts against a page.
type Scheduler struct {
	page   *dom.Page
	clock  clock.Clock
	config Config
	logger *zap.Logger
	states *lru.Cache[string, State]

	mu       sync.Mutex
	gen      Generation
	points   []Point
	sink     Sink
	recorder Recorder
}

// New creates a Scheduler.
func New(page *dom.Page, clk clock.Clock, config Config, logger *zap.Logger) (*Scheduler, error) {
	capacity := config.StateCapacity
	if capacity <= 0 {
		capacity = defaultStateCapacity
	}
	states, err := lru.New[string, State](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create mount state table: %w", err)
	}

	config.Schedule = append([]time.Duration(nil), config.Schedule...)
	return &Scheduler{
		page:   page,
		clock:  clk,
		config: config,
		logger: logger.Named("inject"),
		states: states,
	}, nil
}

// SetSink installs the mount event sink. Nil removes it.
func (s *Scheduler) SetSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// SetRecorder installs the outcome recorder. Nil removes it.
func (s *Scheduler) SetRecorder(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// Arm starts a new generation for points: one attempt now, then one per schedule delay.
// Attempts of earlier generations become no-ops.
func (s *Scheduler) Arm(points ...Point) Generation {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.points = points
	s.mu.Unlock()

	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = p.Key()
	}
	s.logger.Debug("Armed mount points",
		zap.Uint64("generation", uint64(gen)),
		zap.Strings("keys", keys),
		zap.Int("retries", len(s.config.Schedule)))

	s.Attempt(gen, len(s.config.Schedule) == 0)
	for i, delay := range s.config.Schedule {
		final := i == len(s.config.Schedule)-1
		s.clock.AfterFunc(delay, func() { s.Attempt(gen, final) })
	}
	return gen
}

// Current returns the current generation.
func (s *Scheduler) Current() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// State returns the mount state of key in gen. Row keys are full row ids.
func (s *Scheduler) State(gen Generation, key string) State {
	state, ok := s.states.Get(stateKey(gen, key))
	if !ok {
		return Unmounted
	}
	return state
}

// Attempt runs one mount attempt for gen. final marks the last scheduled attempt, after
// which a missing container is a permanent failure for the generation.
func (s *Scheduler) Attempt(gen Generation, final bool) {
	var (
		a      *attempt
		points []Point
		sink   Sink
		rec    Recorder
	)

	s.page.Do(func(tx *dom.Tx) {
		s.mu.Lock()
		current := s.gen
		points = s.points
		sink = s.sink
		rec = s.recorder
		s.mu.Unlock()

		if gen != current {
			s.logger.Debug("Skipping stale attempt",
				zap.Uint64("generation", uint64(gen)),
				zap.Uint64("current", uint64(current)))
			return
		}

		a = &attempt{scheduler: s, tx: tx, gen: gen, final: final}
		for _, p := range points {
			p.attempt(a)
		}
	})

	if a == nil {
		return
	}
	for _, ev := range a.mounted {
		if sink != nil {
			sink.Mounted(ev)
		}
		if rec != nil {
			rec.MountSucceeded(ev.key)
		}
	}
	if rec != nil {
		for _, key := range a.failed {
			rec.MountFailed(key)
		}
	}
}

func stateKey(gen Generation, key string) string {
	return strconv.FormatUint(uint64(gen), 10) + ":" + key
}

type mounted struct {
	MountEvent
	key string
}

// attempt is the context of one run over the mount points, inside the document lock.
type attempt struct {
	scheduler *Scheduler
	tx        *dom.Tx
	gen       Generation
	final     bool
	mounted   []mounted
	failed    []string
}

// settled reports whether id needs no work, recording it as mounted when it is already
// on the page.
func (a *attempt) settled(id string) bool {
	if a.scheduler.State(a.gen, id) == Mounted {
		return true
	}
	if a.tx.Exists(id) {
		a.scheduler.states.Add(stateKey(a.gen, id), Mounted)
		return true
	}
	return false
}

func (a *attempt) mount(key, id string, container selector.Match, node *html.Node, rowSelector string, rowIndex int) {
	a.tx.Append(container.Selection, node)
	a.scheduler.states.Add(stateKey(a.gen, id), Mounted)
	a.mounted = append(a.mounted, mounted{
		MountEvent: MountEvent{
			ID:                id,
			ContainerSelector: container.Selector,
			RowSelector:       rowSelector,
			RowIndex:          rowIndex,
			Node:              node,
		},
		key: key,
	})
}

func (a *attempt) notFound(key string, chain selector.Chain) {
	logger := a.scheduler.logger
	if !a.final {
		logger.Debug("Container not found, will retry",
			zap.String("key", key),
			zap.Uint64("generation", uint64(a.gen)))
		return
	}

	root := a.tx.Doc().Selection
	logger.Warn("Container not found",
		zap.String("key", key),
		zap.Uint64("generation", uint64(a.gen)),
		zap.String("url", a.tx.URL()),
		zap.Error(fmt.Errorf("%s: %w", key, core.ErrContainerNotFound)),
		zap.Any("tried", selector.Count(chain, root)),
		zap.Any("available", selector.Count(a.scheduler.config.Diagnostics, root)))
	a.failed = append(a.failed, key)
}

func (p MountPoint) attempt(a *attempt) {
	if a.settled(p.ID) {
		return
	}

	container := selector.Resolve(p.Containers, a.tx.Doc().Selection)
	if !container.Found() {
		a.notFound(p.ID, p.Containers)
		return
	}

	node := p.Build()
	a.mount(p.ID, p.ID, container, node, "", -1)
	a.scheduler.logger.Info("Mounted button",
		zap.String("id", p.ID),
		zap.String("selector", container.Selector),
		zap.Uint64("generation", uint64(a.gen)))
}

func (p RowMountPoint) attempt(a *attempt) {
	rows := selector.ResolveAll(p.Rows, a.tx.Doc().Selection)
	if !rows.Found() {
		a.notFound(p.Prefix, p.Rows)
		return
	}

	added, missing := 0, 0
	rows.Selection.Each(func(i int, row *goquery.Selection) {
		id := p.RowID(i)
		if a.settled(id) {
			return
		}
		container := selector.Resolve(p.Containers, row)
		if !container.Found() {
			missing++
			return
		}
		a.mount(p.Prefix, id, container, p.Build(i, row), rows.Selector, i)
		added++
	})

	if added > 0 {
		a.scheduler.logger.Info("Mounted row buttons",
			zap.String("prefix", p.Prefix),
			zap.String("rowSelector", rows.Selector),
			zap.Int("added", added),
			zap.Int("rows", rows.Len()),
			zap.Uint64("generation", uint64(a.gen)))
	}
	if missing > 0 && a.final {
		a.scheduler.logger.Debug("Rows without a button container",
			zap.String("prefix", p.Prefix),
			zap.Int("rows", missing))
	}
}
