package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"research-summary/internal/search"
	"research-summary/internal/summary"
)

var (
	ErrBusy            = errors.New("a research request is already running")
	ErrNothingToSubmit = errors.New("a query or custom content is required")
	ErrInvalidTab      = errors.New("tab index out of range")
)

// GenericError is the only failure text shown to the user.
const GenericError = "An error occurred. Please try again."

// Phase is the coarse screen the view is on.
type Phase string

const (
	PhaseForm      Phase = "form"
	PhaseSearching Phase = "searching"
	PhaseResults   Phase = "results"
	PhaseSummary   Phase = "summary"
)

// Step is the 0..7 progress indicator.
type Step int

const (
	StepIdle Step = iota
	StepStarting
	StepSearching
	StepFindingSources
	StepExtracting
	StepProcessing
	StepAnalysis
	StepFinalizing
)

var stepLabels = [...]string{
	StepIdle:           "",
	StepStarting:       "Starting research process...",
	StepSearching:      "Searching for relevant sources...",
	StepFindingSources: "Finding credible sources...",
	StepExtracting:     "Extracting content from sources...",
	StepProcessing:     "Processing extracted data...",
	StepAnalysis:       "Performing AI analysis...",
	StepFinalizing:     "Finalizing research summary...",
}

// StepNames are the short names of steps 1..7 shown in the step strip.
var StepNames = []string{
	"Starting", "Searching", "Finding Sources", "Extracting Content",
	"Processing Data", "AI Analysis", "Finalizing",
}

func (s Step) Label() string {
	if s < StepIdle || s > StepFinalizing {
		return ""
	}
	return stepLabels[s]
}

// TabCount is the number of summary tabs, one per section.
const TabCount = 5

// Pacing controls the cosmetic delays around the provider calls.
type Pacing struct {
	StartDelay   time.Duration
	SourcesDelay time.Duration
	TickInterval time.Duration
	Ceiling      Step
	MaxTicks     int
}

func DefaultPacing() Pacing {
	return Pacing{
		StartDelay:   time.Second,
		SourcesDelay: 800 * time.Millisecond,
		TickInterval: 1500 * time.Millisecond,
		Ceiling:      StepAnalysis,
		MaxTicks:     5,
	}
}

// State is a snapshot of the view.
type State struct {
	Phase            Phase             `json:"phase"`
	Progress         Step              `json:"progress"`
	ProgressLabel    string            `json:"progressLabel"`
	IsSearching      bool              `json:"isSearching"`
	IsSummarizing    bool              `json:"isSummarizing"`
	Query            string            `json:"query"`
	CustomContent    string            `json:"customContent,omitempty"`
	UseCustomContent bool              `json:"useCustomContent"`
	Results          []search.Result   `json:"results"`
	Raw              string            `json:"raw"`
	Summary          summary.Formatted `json:"summary"`
	RecordID         string            `json:"recordId,omitempty"`
	Error            string            `json:"error,omitempty"`
	ActiveTab        int               `json:"activeTab"`
}

// Busy reports whether a submission is in flight.
func (s State) Busy() bool {
	return s.IsSearching || s.IsSummarizing
}

func initialState() State {
	return State{
		Phase:   PhaseForm,
		Results: []search.Result{},
		Summary: summary.Empty(),
	}
}

// Controller drives one research view: it sequences the search and summarize
// calls, advances progress and holds the parsed summary.
type Controller struct {
	backend Backend
	pacing  Pacing

	mu    sync.Mutex
	state State

	// emitMu keeps change notifications in state order.
	emitMu   sync.Mutex
	onChange func(State)
}

func NewController(backend Backend, pacing Pacing) *Controller {
	return &Controller{backend: backend, pacing: pacing, state: initialState()}
}

// OnChange registers fn to receive a snapshot after every state change.
func (c *Controller) OnChange(fn func(State)) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.onChange = fn
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Results = append([]search.Result(nil), c.state.Results...)
	if s.Results == nil {
		s.Results = []search.Result{}
	}
	s.ProgressLabel = s.Progress.Label()
	return s
}

// update applies fn under the state lock and then notifies the listener.
func (c *Controller) update(fn func(s *State)) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	fn(&c.state)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}

// CanSubmit reports whether Submit would accept the given input now.
func (c *Controller) CanSubmit(query, customContent string) bool {
	if strings.TrimSpace(query) == "" && strings.TrimSpace(customContent) == "" {
		return false
	}
	return !c.Snapshot().Busy()
}

// Submit runs a full research request and blocks until it completes. A
// non-blank customContent replaces the web search as source material.
func (c *Controller) Submit(ctx context.Context, query, customContent string) error {
	useCustom := strings.TrimSpace(customContent) != ""
	if strings.TrimSpace(query) == "" && !useCustom {
		return ErrNothingToSubmit
	}

	c.emitMu.Lock()
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		c.emitMu.Unlock()
		return ErrBusy
	}
	c.state.Error = ""
	c.state.Phase = PhaseSearching
	c.state.IsSearching = true
	c.state.Progress = StepStarting
	c.state.Query = query
	c.state.CustomContent = customContent
	c.state.UseCustomContent = useCustom
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(snap)
	}
	c.emitMu.Unlock()

	if err := c.run(ctx, query, customContent, useCustom); err != nil {
		c.update(func(s *State) {
			s.Error = GenericError
			s.IsSearching = false
			s.IsSummarizing = false
		})
		return err
	}
	return nil
}

func (c *Controller) run(ctx context.Context, query, customContent string, useCustom bool) error {
	if err := sleep(ctx, c.pacing.StartDelay); err != nil {
		return err
	}
	c.update(func(s *State) { s.Progress = StepSearching })

	results := []search.Result{}
	if !useCustom {
		found, err := c.backend.Search(ctx, query)
		if err != nil {
			return err
		}
		results = search.Top(found, search.MaxResults)
	}
	c.update(func(s *State) {
		s.Results = results
		s.Phase = PhaseResults
	})

	if err := sleep(ctx, c.pacing.SourcesDelay); err != nil {
		return err
	}
	c.update(func(s *State) {
		s.Progress = StepFindingSources
		s.IsSummarizing = true
	})

	stopPacing := c.startPacing()
	resp, err := c.backend.Summarize(ctx, SummarizeRequest{
		Query:            query,
		SearchResults:    results,
		UseCustomContent: useCustom,
		CustomContent:    customContent,
	})
	stopPacing()
	if err != nil {
		return err
	}

	formatted := summary.Parse(resp.Summary)
	c.update(func(s *State) {
		s.Raw = resp.Summary
		s.Summary = formatted
		s.RecordID = resp.ID
		s.Progress = StepFinalizing
		s.Phase = PhaseSummary
		s.ActiveTab = 0
		s.IsSearching = false
		s.IsSummarizing = false
	})
	return nil
}

// startPacing advances progress by one step per tick, never past the
// ceiling and at most MaxTicks times. The returned func stops the ticker and
// waits for its goroutine to exit.
func (c *Controller) startPacing() func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	if c.pacing.TickInterval <= 0 || c.pacing.MaxTicks <= 0 {
		close(done)
		return func() {}
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.pacing.TickInterval)
		defer ticker.Stop()
		for n := 0; n < c.pacing.MaxTicks; n++ {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.update(func(s *State) {
					if s.Progress < c.pacing.Ceiling {
						s.Progress++
					}
				})
			}
		}
	}()

	return func() {
		close(stop)
		<-done
	}
}

// SelectTab switches the visible summary section.
func (c *Controller) SelectTab(i int) error {
	if i < 0 || i >= TabCount {
		return ErrInvalidTab
	}
	c.update(func(s *State) { s.ActiveTab = i })
	return nil
}

// Reset returns to the empty form. It refuses while a request is running.
func (c *Controller) Reset() error {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = initialState()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
