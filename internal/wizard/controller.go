package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborvet/portal-api/internal/availability"
	"github.com/harborvet/portal-api/internal/directory"
	"github.com/harborvet/portal-api/internal/observability/metrics"
	"github.com/harborvet/portal-api/internal/providers"
	"github.com/harborvet/portal-api/internal/scheduling"
	"github.com/harborvet/portal-api/pkg/logging"
)

// Navigation errors surfaced to the HTTP layer.
var (
	// ErrValidation means the current page's predicate failed; the field
	// errors ride on the returned snapshot.
	ErrValidation = errors.New("wizard: page validation failed")
	// ErrBlocked means the intro recognized the email as an existing
	// client; the UI shows a modal instead of advancing.
	ErrBlocked = errors.New("wizard: navigation blocked")
	// ErrNoTransition means the page has no transition in that direction.
	ErrNoTransition = errors.New("wizard: no transition from this page")
	// ErrNotSubmitPage means Submit was called off a submit page.
	ErrNotSubmitPage = errors.New("wizard: not on a submit page")
)

// Directory is the slice of the PIMS client the controller needs.
type Directory interface {
	GetProfile(ctx context.Context, clientID string) (*directory.ClientProfile, error)
	ListPets(ctx context.Context, clientID string) ([]directory.Pet, error)
	GetPetAlerts(ctx context.Context, petID string) (string, error)
	ListProviders(ctx context.Context) ([]providers.Provider, error)
	CheckEmail(ctx context.Context, email, practiceID string) (*directory.EmailCheck, error)
}

// PublicDirectory lists veterinarians for unauthenticated sessions.
type PublicDirectory interface {
	ListVeterinarians(ctx context.Context, address string) ([]providers.Provider, error)
}

// SlotMatcher computes candidate slots; empty means "no recommendations".
type SlotMatcher interface {
	Match(ctx context.Context, req availability.Request) []scheduling.Slot
}

// Finalizer assembles and sends the appointment request when the client
// submits from the final page. It returns the collaborator's error message
// verbatim on failure.
type Finalizer interface {
	Finalize(ctx context.Context, snap Snapshot) error
}

// AuthClaims identifies an authenticated portal client.
type AuthClaims struct {
	ClientID string
	Email    string
}

// session is the live, in-memory form of a wizard session. All fields are
// guarded by the controller mutex; async completions re-enter through
// apply-style methods that hold it.
type session struct {
	SessionState

	Slots        []scheduling.Slot
	SlotsLoading bool
	Errors       map[string]string
	ModalShown   bool
	SubmitError  string

	slotGen    uint64
	emailGen   uint64
	emailTimer *time.Timer
}

// Snapshot is the read-only view handed to the HTTP layer and the
// submission assembler.
type Snapshot struct {
	ID                  string                   `json:"id"`
	Page                Page                     `json:"page"`
	Authenticated       bool                     `json:"authenticated"`
	ClientID            string                   `json:"clientId,omitempty"`
	Form                FormData                 `json:"form"`
	Profile             *directory.ClientProfile `json:"profile,omitempty"`
	Pets                []directory.Pet          `json:"pets,omitempty"`
	Providers           []providers.Provider     `json:"providers,omitempty"`
	Slots               []scheduling.Slot        `json:"slots"`
	SlotsLoading        bool                     `json:"slotsLoading"`
	Errors              map[string]string        `json:"errors,omitempty"`
	ExistingClientModal bool                     `json:"existingClientModal,omitempty"`
	SubmitError         string                   `json:"submitError,omitempty"`
}

// Controller owns every wizard session and is their single mutation entry
// point: user updates and async completions alike serialize through its
// mutex, which preserves the single-writer invariant over FormData.
type Controller struct {
	mu       sync.Mutex
	sessions map[string]*session

	store      Store
	dir        Directory
	publicDir  PublicDirectory
	matcher    SlotMatcher
	finalizer  Finalizer
	practiceID string
	probeWait  time.Duration
	logger     *logging.Logger
	metrics    *metrics.PortalMetrics
}

// ControllerConfig wires the controller's collaborators.
type ControllerConfig struct {
	Store           Store
	Directory       Directory
	PublicDirectory PublicDirectory
	Matcher         SlotMatcher
	Finalizer       Finalizer
	PracticeID      string
	EmailProbeWait  time.Duration
	Logger          *logging.Logger
	Metrics         *metrics.PortalMetrics
}

// NewController creates a wizard controller.
func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	probeWait := cfg.EmailProbeWait
	if probeWait <= 0 {
		probeWait = 500 * time.Millisecond
	}
	return &Controller{
		sessions:   make(map[string]*session),
		store:      cfg.Store,
		dir:        cfg.Directory,
		publicDir:  cfg.PublicDirectory,
		matcher:    cfg.Matcher,
		finalizer:  cfg.Finalizer,
		practiceID: cfg.PracticeID,
		probeWait:  probeWait,
		logger:     logger,
		metrics:    cfg.Metrics,
	}
}

// Start opens a new wizard session. Authenticated sessions skip the intro,
// pre-fill contact data from the PIMS and load pets and providers; any of
// those loads failing degrades to empty data rather than failing the start.
func (c *Controller) Start(ctx context.Context, claims *AuthClaims) Snapshot {
	s := &session{
		SessionState: SessionState{
			ID:        uuid.NewString(),
			Page:      PageIntro,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		},
	}

	if claims != nil {
		s.Authenticated = true
		s.ClientID = claims.ClientID
		s.Page = PageExistingClient
		s.Form.Email = claims.Email
		s.Form.UsedServicesBefore = AnswerYes
		c.loadDirectoryData(ctx, s)
	}
	petIDs := make([]string, 0, len(s.Pets))
	for _, pet := range s.Pets {
		petIDs = append(petIDs, pet.ID)
	}

	c.mu.Lock()
	c.sessions[s.ID] = s
	snap := c.snapshotLocked(s)
	c.persist(ctx, s)
	c.mu.Unlock()

	// Alerts land asynchronously after the pet list is on screen.
	for _, petID := range petIDs {
		go c.fetchPetAlerts(s.ID, petID)
	}

	c.metrics.ObserveSessionStarted(snap.Authenticated)
	return snap
}

// loadDirectoryData pulls profile, pets and providers for an authenticated
// session. The session is not yet published, so no lock is needed.
func (c *Controller) loadDirectoryData(ctx context.Context, s *session) {
	if c.dir == nil {
		return
	}
	if profile, err := c.dir.GetProfile(ctx, s.ClientID); err != nil {
		c.logger.Warn("profile load failed", "client_id", s.ClientID, "error", err)
	} else {
		s.Profile = profile
	}
	if pets, err := c.dir.ListPets(ctx, s.ClientID); err != nil {
		c.logger.Warn("pet list load failed", "client_id", s.ClientID, "error", err)
	} else {
		s.Pets = pets
	}
	if provs, err := c.dir.ListProviders(ctx); err != nil {
		c.logger.Warn("provider list load failed", "error", err)
	} else {
		s.Providers = provs
	}
}

// fetchPetAlerts populates one pet's alert text after the list loads.
// Failure leaves the alerts empty: degraded data, not an error.
func (c *Controller) fetchPetAlerts(sessionID, petID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	alerts, err := c.dir.GetPetAlerts(ctx, petID)
	if err != nil {
		c.logger.Warn("pet alerts fetch failed", "pet_id", petID, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionID]
	if !ok {
		return
	}
	for i := range s.Pets {
		if s.Pets[i].ID == petID {
			s.Pets[i].Alerts = &alerts
			break
		}
	}
}

// Get returns the current session snapshot.
func (c *Controller) Get(ctx context.Context, id string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.sessionLocked(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return c.snapshotLocked(s), nil
}

// Update merges a field-keyed change set into the session's FormData and
// runs the side effects that hang off specific fields: the debounced
// email-existence probe, slot invalidation on urgency flips, and
// availability refresh when a slot page's inputs change.
func (c *Controller) Update(ctx context.Context, id string, changes map[string]any) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.sessionLocked(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if s.Page.Terminal() {
		return c.snapshotLocked(s), nil
	}

	prevEmail := s.Form.Email
	prevDoctor := s.Form.PreferredDoctor
	prevUrgency := s.Form.Urgency
	prevPets := len(s.Form.SelectedPetIDs)

	s.Form.Merge(changes)
	s.UpdatedAt = time.Now().UTC()
	s.Errors = nil
	s.ModalShown = false

	if !s.Authenticated && s.Form.Email != prevEmail {
		c.scheduleEmailProbeLocked(s)
	}

	if s.Form.Urgency == UrgencyUrgent && prevUrgency != UrgencyUrgent {
		c.clearSlotsLocked(s)
	}

	if s.Page.SlotPage() {
		inputsChanged := s.Form.PreferredDoctor != prevDoctor ||
			s.Form.Urgency != prevUrgency ||
			len(s.Form.SelectedPetIDs) != prevPets
		if inputsChanged {
			c.refreshSlotsLocked(s)
		}
	}

	snap := c.snapshotLocked(s)
	c.persist(ctx, s)
	return snap, nil
}

// Next validates the current page and advances per the transition table.
// Entering a slot page kicks off the availability matcher.
func (c *Controller) Next(ctx context.Context, id string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.sessionLocked(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	errs := ValidatePage(s.Page, &s.Form, c.pageContextLocked(s))
	if len(errs) > 0 {
		s.Errors = errs
		return c.snapshotLocked(s), ErrValidation
	}

	next, ok, blocked := NextPage(s.Page, &s.Form)
	if blocked {
		s.ModalShown = true
		return c.snapshotLocked(s), ErrBlocked
	}
	if !ok {
		return c.snapshotLocked(s), ErrNoTransition
	}

	c.transitionLocked(s, next, "forward")
	snap := c.snapshotLocked(s)
	c.persist(ctx, s)
	return snap, nil
}

// Back moves to the page the current answers imply, mirroring Next.
func (c *Controller) Back(ctx context.Context, id string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.sessionLocked(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	prev, ok := PrevPage(s.Page, &s.Form, s.Authenticated)
	if !ok {
		return c.snapshotLocked(s), ErrNoTransition
	}

	c.transitionLocked(s, prev, "back")
	snap := c.snapshotLocked(s)
	c.persist(ctx, s)
	return snap, nil
}

// transitionLocked moves the session to page, clearing slots when leaving a
// slot page and refreshing them when entering one.
func (c *Controller) transitionLocked(s *session, page Page, direction string) {
	from := s.Page
	if from.SlotPage() && page != from {
		c.clearSlotsLocked(s)
	}
	s.Page = page
	s.Errors = nil
	s.ModalShown = false
	s.UpdatedAt = time.Now().UTC()
	c.metrics.ObserveTransition(string(from), string(page), direction)
	if page.SlotPage() {
		c.refreshSlotsLocked(s)
	}
}

// Submit runs the final page's predicate, hands the snapshot to the
// finalizer and advances to success. A finalizer error leaves the wizard
// where it is with the message surfaced verbatim, so the client can retry
// without losing any answers.
func (c *Controller) Submit(ctx context.Context, id string) (Snapshot, error) {
	c.mu.Lock()
	s, err := c.sessionLocked(ctx, id)
	if err != nil {
		c.mu.Unlock()
		return Snapshot{}, err
	}
	if !s.Page.SubmitPage() {
		snap := c.snapshotLocked(s)
		c.mu.Unlock()
		return snap, ErrNotSubmitPage
	}

	errs := ValidatePage(s.Page, &s.Form, c.pageContextLocked(s))
	if len(errs) > 0 {
		s.Errors = errs
		snap := c.snapshotLocked(s)
		c.mu.Unlock()
		return snap, ErrValidation
	}

	s.SubmitError = ""
	snap := c.snapshotLocked(s)
	branch := "regular_visit"
	if s.Form.EuthanasiaBranch() {
		branch = "euthanasia"
	}
	c.mu.Unlock()

	// The collaborator call happens outside the lock; the session cannot
	// advance meanwhile because only Submit moves a submit page forward.
	if c.finalizer != nil {
		if err := c.finalizer.Finalize(ctx, snap); err != nil {
			c.metrics.ObserveSubmission(branch, "failed")
			c.mu.Lock()
			if s2, ok := c.sessions[id]; ok {
				s2.SubmitError = err.Error()
				snap = c.snapshotLocked(s2)
			}
			c.mu.Unlock()
			return snap, err
		}
	}

	c.metrics.ObserveSubmission(branch, "accepted")
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err = c.sessionLocked(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	c.transitionLocked(s, PageSuccess, "forward")
	snap = c.snapshotLocked(s)
	c.persist(ctx, s)
	return snap, nil
}

// scheduleEmailProbeLocked debounces the email-existence check: a fresh
// keystroke resets the timer, and a result from a superseded probe is
// discarded by the generation check when it lands.
func (c *Controller) scheduleEmailProbeLocked(s *session) {
	s.emailGen++
	gen := s.emailGen
	email := s.Form.Email
	if s.emailTimer != nil {
		s.emailTimer.Stop()
	}
	if email == "" || c.dir == nil {
		return
	}
	id := s.ID
	s.emailTimer = time.AfterFunc(c.probeWait, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		check, err := c.dir.CheckEmail(ctx, email, c.practiceID)
		if err != nil {
			c.logger.Warn("email existence probe failed", "error", err)
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		live, ok := c.sessions[id]
		if !ok || live.emailGen != gen {
			return
		}
		exists := check.Exists
		live.Form.EmailExists = &exists
	})
}

// refreshSlotsLocked starts an availability refresh when the page's
// trigger conditions hold, otherwise clears any stale candidates. The
// generation counter stands in for the liveness flag: completions tagged
// with an older generation are dropped.
func (c *Controller) refreshSlotsLocked(s *session) {
	if !c.shouldMatchLocked(s) {
		c.clearSlotsLocked(s)
		return
	}

	s.slotGen++
	gen := s.slotGen
	s.Slots = nil
	s.SlotsLoading = true

	req := availability.Request{
		Authenticated:    s.Authenticated,
		SelectedPetCount: len(s.Form.SelectedPetIDs),
		RawAddress:       s.Form.AssembleAddress(c.addressOnFileLocked(s)),
	}
	preferred := s.Form.PreferredDoctor
	dirProviders := s.Providers
	id := s.ID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		active := dirProviders
		if !req.Authenticated && c.publicDir != nil {
			vets, err := c.publicDir.ListVeterinarians(ctx, req.RawAddress)
			if err != nil {
				c.logger.Warn("public directory load failed", "error", err)
			} else {
				active = vets
			}
		}

		var slots []scheduling.Slot
		if provider, ok := providers.Resolve(preferred, active); ok {
			req.Provider = provider
			slots = c.matcher.Match(ctx, req)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		live, ok := c.sessions[id]
		if !ok || live.slotGen != gen {
			// Dependency changed while we were out; drop the stale result.
			return
		}
		live.Slots = slots
		live.SlotsLoading = false
	}()
}

// shouldMatchLocked is the availability trigger condition: a preferred
// doctor on a slot page, and for the visit branch an explicit "not urgent".
func (c *Controller) shouldMatchLocked(s *session) bool {
	if c.matcher == nil || !s.Page.SlotPage() {
		return false
	}
	if s.Form.PreferredDoctor == "" {
		return false
	}
	if s.Page == PageRequestVisitContinued && s.Form.Urgency != UrgencyNotUrgent {
		return false
	}
	return true
}

func (c *Controller) clearSlotsLocked(s *session) {
	s.slotGen++
	s.Slots = nil
	s.SlotsLoading = false
}

// addressOnFileLocked renders the authenticated client's physical address
// as a single line for the matcher's "has not moved" path.
func (c *Controller) addressOnFileLocked(s *session) string {
	if s.Profile == nil {
		return ""
	}
	return joinParts(s.Profile.PhysicalStreet, s.Profile.PhysicalCity, s.Profile.PhysicalState, s.Profile.PhysicalZip)
}

func (c *Controller) pageContextLocked(s *session) PageContext {
	return PageContext{
		Authenticated: s.Authenticated,
		SlotCount:     len(s.Slots),
		SlotsLoading:  s.SlotsLoading,
	}
}

// sessionLocked finds a live session, falling back to the store so a
// session survives instance restarts. Rehydrated sessions come back with
// no candidate slots; the next page entry recomputes them.
func (c *Controller) sessionLocked(ctx context.Context, id string) (*session, error) {
	if s, ok := c.sessions[id]; ok {
		return s, nil
	}
	if c.store == nil {
		return nil, ErrSessionNotFound
	}
	state, err := c.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s := &session{SessionState: *state}
	c.sessions[id] = s
	return s, nil
}

func (c *Controller) snapshotLocked(s *session) Snapshot {
	// Snapshots outlive the lock, so anything Merge mutates in place must
	// be copied rather than shared.
	form := s.Form
	form.SlotPreferences = s.Form.SlotPreferences.Clone()
	return Snapshot{
		ID:                  s.ID,
		Page:                s.Page,
		Authenticated:       s.Authenticated,
		ClientID:            s.ClientID,
		Form:                form,
		Profile:             s.Profile,
		Pets:                append([]directory.Pet(nil), s.Pets...),
		Providers:           append([]providers.Provider(nil), s.Providers...),
		Slots:               append([]scheduling.Slot(nil), s.Slots...),
		SlotsLoading:        s.SlotsLoading,
		Errors:              s.Errors,
		ExistingClientModal: s.ModalShown,
		SubmitError:         s.SubmitError,
	}
}

// persist snapshots the durable session state; failures are logged, not
// surfaced, since the in-memory session remains authoritative.
func (c *Controller) persist(ctx context.Context, s *session) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, &s.SessionState); err != nil {
		c.logger.Warn("session persist failed", "session_id", s.ID, "error", err)
	}
}
