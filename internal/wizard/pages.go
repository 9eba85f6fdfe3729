// Package wizard implements the appointment-request intake: a branching,
// validated multi-page flow over a single FormData aggregate, with
// availability matching on the slot-selection pages.
package wizard

// Page identifies a wizard screen. Sessions start at PageIntro (or
// PageExistingClient when authenticated) and end at PageSuccess.
type Page string

const (
	PageIntro                 Page = "intro"
	PageNewClient             Page = "new-client"
	PageExistingClient        Page = "existing-client"
	PageEuthanasiaIntro       Page = "euthanasia-intro"
	PageEuthanasiaServiceArea Page = "euthanasia-service-area"
	PageEuthanasiaPortland    Page = "euthanasia-portland"
	PageEuthanasiaHighPeaks   Page = "euthanasia-high-peaks"
	PageEuthanasiaContinued   Page = "euthanasia-continued"
	PageRequestVisitContinued Page = "request-visit-continued"
	PageSuccess               Page = "success"
)

// Terminal reports whether no further navigation is possible.
func (p Page) Terminal() bool { return p == PageSuccess }

// SubmitPage reports whether the wizard submits from this page rather than
// transitioning forward.
func (p Page) SubmitPage() bool {
	return p == PageEuthanasiaContinued || p == PageRequestVisitContinued
}

// SlotPage reports whether this page shows candidate appointment slots.
func (p Page) SlotPage() bool {
	return p == PageEuthanasiaContinued || p == PageRequestVisitContinued
}
