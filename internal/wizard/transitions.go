package wizard

// The navigation tables below re-derive every destination from the current
// answers, never from a history stack, so back-then-forward through a
// conditional branch always lands on the same page.

// forwardTable decides the next page from the current answers. The second
// return is false when forward navigation is blocked on this page (the
// intro's existing-client modal).
var forwardTable = map[Page]func(f *FormData) (Page, bool){
	PageIntro: func(f *FormData) (Page, bool) {
		if f.UsedServicesBefore == AnswerYes {
			return PageExistingClient, true
		}
		if f.EmailExists != nil && *f.EmailExists {
			// Known email: show the existing-client modal instead of moving on.
			return "", false
		}
		return PageNewClient, true
	},
	PageNewClient:      branchSelect,
	PageExistingClient: branchSelect,
	PageEuthanasiaIntro: func(f *FormData) (Page, bool) {
		return PageEuthanasiaServiceArea, true
	},
	PageEuthanasiaServiceArea: func(f *FormData) (Page, bool) {
		if f.ServiceArea == ServiceAreaHighPeaks {
			return PageEuthanasiaHighPeaks, true
		}
		return PageEuthanasiaPortland, true
	},
	PageEuthanasiaPortland: func(f *FormData) (Page, bool) {
		return PageEuthanasiaContinued, true
	},
	PageEuthanasiaHighPeaks: func(f *FormData) (Page, bool) {
		return PageEuthanasiaContinued, true
	},
}

func branchSelect(f *FormData) (Page, bool) {
	if f.EuthanasiaBranch() {
		return PageEuthanasiaIntro, true
	}
	return PageRequestVisitContinued, true
}

// NextPage computes the forward destination. ok is false when the page has
// no forward transition (submit and terminal pages) or navigation is
// blocked; blocked distinguishes the two.
func NextPage(p Page, f *FormData) (next Page, ok bool, blocked bool) {
	fn, found := forwardTable[p]
	if !found {
		return "", false, false
	}
	next, allowed := fn(f)
	if !allowed {
		return "", false, true
	}
	return next, true, false
}

// clientPage is the page that collected contact/pet details for the active
// branch, re-derived from the answers.
func clientPage(f *FormData, authenticated bool) Page {
	if authenticated || f.UsedServicesBefore == AnswerYes {
		return PageExistingClient
	}
	return PageNewClient
}

// backTable mirrors forwardTable, reconstructed from the answers.
var backTable = map[Page]func(f *FormData, authenticated bool) (Page, bool){
	PageNewClient: func(f *FormData, _ bool) (Page, bool) {
		return PageIntro, true
	},
	PageExistingClient: func(f *FormData, authenticated bool) (Page, bool) {
		if authenticated {
			// Authenticated sessions skip the intro entirely.
			return "", false
		}
		return PageIntro, true
	},
	PageEuthanasiaIntro: func(f *FormData, authenticated bool) (Page, bool) {
		return clientPage(f, authenticated), true
	},
	PageEuthanasiaServiceArea: func(f *FormData, _ bool) (Page, bool) {
		return PageEuthanasiaIntro, true
	},
	PageEuthanasiaPortland: func(f *FormData, _ bool) (Page, bool) {
		return PageEuthanasiaServiceArea, true
	},
	PageEuthanasiaHighPeaks: func(f *FormData, _ bool) (Page, bool) {
		return PageEuthanasiaServiceArea, true
	},
	PageEuthanasiaContinued: func(f *FormData, _ bool) (Page, bool) {
		if f.ServiceArea == ServiceAreaHighPeaks {
			return PageEuthanasiaHighPeaks, true
		}
		return PageEuthanasiaPortland, true
	},
	PageRequestVisitContinued: func(f *FormData, authenticated bool) (Page, bool) {
		return clientPage(f, authenticated), true
	},
}

// PrevPage computes the back destination; ok is false when the page has no
// back transition (intro, terminal, or the authenticated starting page).
func PrevPage(p Page, f *FormData, authenticated bool) (Page, bool) {
	fn, found := backTable[p]
	if !found {
		return "", false
	}
	return fn(f, authenticated)
}
