// Package availability orchestrates the appointment-slot recommendation
// flow: estimate service duration, resolve the visit address, pick the
// right scheduling backend for the session, then normalize, round and trim
// the backend's answer into at most three candidate slots.
package availability

import (
	"context"
	"time"

	"github.com/harborvet/portal-api/internal/geocode"
	"github.com/harborvet/portal-api/internal/observability/metrics"
	"github.com/harborvet/portal-api/internal/providers"
	"github.com/harborvet/portal-api/internal/scheduling"
	"github.com/harborvet/portal-api/pkg/logging"
)

// maxCandidates caps the recommendation list shown to the client.
const maxCandidates = 3

const (
	baseServiceMinutes  = 40
	perExtraPetMinutes  = 20
	defaultQueryNumDays = 42
	queryStartDaysAhead = 1
)

// ServiceMinutes estimates the appointment duration from the number of pets
// being seen. One pet takes the base duration; each additional pet adds a
// fixed increment.
func ServiceMinutes(petCount int) int {
	extra := petCount - 1
	if extra < 0 {
		extra = 0
	}
	return baseServiceMinutes + perExtraPetMinutes*extra
}

// Geocoder validates a free-text address. A nil result with nil error means
// the address could not be validated and the query proceeds string-only.
type Geocoder interface {
	Validate(ctx context.Context, addressText string) (*geocode.Result, error)
}

// Request carries everything the matcher needs for one invocation.
type Request struct {
	Authenticated    bool
	Provider         providers.Provider
	SelectedPetCount int // pets selected by an authenticated client; 0 when unknown
	RawAddress       string
}

// Matcher resolves candidate appointment slots for the wizard.
type Matcher struct {
	geocoder   Geocoder
	routing    scheduling.SlotSource
	publicbook scheduling.SlotSource
	practiceID string
	windowDays int
	now        func() time.Time
	logger     *logging.Logger
	metrics    *metrics.PortalMetrics
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWindowDays overrides the default 42-day query window.
func WithWindowDays(days int) Option {
	return func(m *Matcher) {
		if days > 0 {
			m.windowDays = days
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Matcher) {
		m.now = now
	}
}

// WithMetrics attaches portal metrics.
func WithMetrics(pm *metrics.PortalMetrics) Option {
	return func(m *Matcher) {
		m.metrics = pm
	}
}

// NewMatcher constructs an availability matcher over the two backends.
func NewMatcher(geocoder Geocoder, routingSource, publicSource scheduling.SlotSource, practiceID string, logger *logging.Logger, opts ...Option) *Matcher {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Matcher{
		geocoder:   geocoder,
		routing:    routingSource,
		publicbook: publicSource,
		practiceID: practiceID,
		windowDays: defaultQueryNumDays,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match computes up to three candidate slots. It never returns an error:
// every failure mode (unresolvable address, backend outage, bad payloads)
// degrades to an empty list, which the wizard renders as "no
// recommendations" with a free-text fallback.
func (m *Matcher) Match(ctx context.Context, req Request) []scheduling.Slot {
	if req.Provider.ID == "" && req.Provider.PimsID == "" {
		return nil
	}

	start := m.now()
	defer func() {
		m.metrics.ObserveMatcherLatency(m.now().Sub(start).Seconds())
	}()

	petCount := 1
	if req.Authenticated && req.SelectedPetCount > 0 {
		petCount = req.SelectedPetCount
	}

	q := scheduling.Query{
		PracticeID:     m.practiceID,
		DoctorID:       doctorID(req.Provider),
		StartDate:      m.now().AddDate(0, 0, queryStartDaysAhead).Format("2006-01-02"),
		NumDays:        m.windowDays,
		ServiceMinutes: ServiceMinutes(petCount),
		Address:        req.RawAddress,
	}

	if m.geocoder != nil && req.RawAddress != "" {
		result, err := m.geocoder.Validate(ctx, req.RawAddress)
		if err != nil {
			// Non-fatal: proceed string-only.
			m.logger.Warn("address validation failed, using raw address", "error", err)
		} else if result != nil {
			q.Address = result.Address
			lat, lon := result.Lat, result.Lon
			q.Lat = &lat
			q.Lon = &lon
		}
	}

	source := m.publicbook
	if req.Authenticated {
		source = m.routing
	}
	if source == nil {
		return nil
	}

	resp, err := source.FindSlots(ctx, q)
	if err != nil {
		m.logger.Warn("availability query failed", "backend", source.Name(), "error", err)
		m.metrics.ObserveMatcherResult(source.Name(), "error")
		return nil
	}

	slots := Normalize(resp)
	if len(slots) > maxCandidates {
		slots = slots[:maxCandidates]
	}
	outcome := "slots_found"
	if len(slots) == 0 {
		outcome = "empty"
	}
	m.metrics.ObserveMatcherResult(source.Name(), outcome)
	return slots
}

// doctorID picks the identifier the backends route on. The PIMS id wins
// when the directory carries one.
func doctorID(p providers.Provider) string {
	if p.PimsID != "" {
		return p.PimsID
	}
	return p.ID
}

// Normalize folds either backend response shape into an ordered slot list,
// rounding each entry to a 5-minute boundary. Flat-list order is preserved;
// the winner/alternates shape yields winner first, then alternates in given
// order. When a response carries both shapes, the flat list wins.
func Normalize(resp *scheduling.Response) []scheduling.Slot {
	if resp == nil {
		return nil
	}

	var raw []scheduling.RawSlot
	if len(resp.Slots) > 0 {
		raw = resp.Slots
	} else {
		if resp.Winner != nil {
			raw = append(raw, *resp.Winner)
		}
		raw = append(raw, resp.Alternates...)
	}

	out := make([]scheduling.Slot, 0, len(raw))
	for _, r := range raw {
		if s, ok := normalizeSlot(r); ok {
			out = append(out, s)
		}
	}
	return out
}

func normalizeSlot(r scheduling.RawSlot) (scheduling.Slot, bool) {
	iso := r.Start()
	if iso == "" {
		// No instant to round; keep the backend's textual fields if any.
		if r.Date == "" && r.Time == "" {
			return scheduling.Slot{}, false
		}
		return scheduling.Slot{Date: r.Date, Time: r.Time, Display: r.Display}, true
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return scheduling.Slot{ISO: iso, Date: r.Date, Time: r.Time, Display: r.Display}, true
	}

	t = RoundTo5(t)
	return scheduling.Slot{
		ISO:     t.Format(time.RFC3339),
		Date:    t.Format("2006-01-02"),
		Time:    t.Format("3:04 PM"),
		Display: t.Format("Monday, January 2 at 3:04 PM"),
	}, true
}
