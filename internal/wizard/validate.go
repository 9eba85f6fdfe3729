package wizard

import (
	"fmt"
	"strings"
)

// PageContext carries the session facts a validation predicate needs beyond
// the form itself.
type PageContext struct {
	Authenticated bool
	SlotCount     int
	SlotsLoading  bool
}

const (
	msgRequired     = "This field is required"
	msgInvalidEmail = "Enter a valid email address"
)

// ValidatePage evaluates the page's predicate over the form. An empty map
// means the page is valid; otherwise the map carries field-level messages
// and forward navigation is refused.
func ValidatePage(p Page, f *FormData, ctx PageContext) map[string]string {
	errs := map[string]string{}
	switch p {
	case PageIntro:
		requireChoice(errs, "usedServicesBefore", f.UsedServicesBefore)
		if f.UsedServicesBefore == AnswerNo {
			requireEmail(errs, f.Email)
		}

	case PageNewClient:
		requireField(errs, "firstName", f.FirstName)
		requireField(errs, "lastName", f.LastName)
		requireEmail(errs, f.Email)
		requireField(errs, "phone", f.Phone)
		requireField(errs, "street", f.Street)
		requireField(errs, "city", f.City)
		requireField(errs, "state", f.State)
		requireField(errs, "zip", f.Zip)
		requireChoice(errs, "lookingForEuthanasia", f.LookingForEuthanasia)

	case PageExistingClient:
		if ctx.Authenticated {
			if len(f.SelectedPetIDs) == 0 {
				errs["selectedPetIds"] = "Select at least one pet"
			}
		} else {
			requireField(errs, "firstName", f.FirstName)
			requireField(errs, "lastName", f.LastName)
			requireEmail(errs, f.Email)
			requireField(errs, "phone", f.Phone)
			requireField(errs, "petDescription", f.PetDescription)
		}
		if f.HasMoved == AnswerYes {
			requireField(errs, "newStreet", f.NewStreet)
			requireField(errs, "newCity", f.NewCity)
			requireField(errs, "newState", f.NewState)
			requireField(errs, "newZip", f.NewZip)
		}
		requireChoice(errs, "lookingForEuthanasia", f.LookingForEuthanasia)

	case PageEuthanasiaIntro:
		// Informational page, nothing to validate.

	case PageEuthanasiaServiceArea:
		if f.ServiceArea != ServiceAreaPortland && f.ServiceArea != ServiceAreaHighPeaks {
			errs["serviceArea"] = "Select a service area"
		}

	case PageEuthanasiaPortland, PageEuthanasiaHighPeaks:
		requireField(errs, "euthanasiaTimeframe", f.EuthanasiaTimeframe)
		requireField(errs, "aftercarePreference", f.AftercarePreference)

	case PageEuthanasiaContinued:
		validateSlotChoice(errs, f, ctx)

	case PageRequestVisitContinued:
		if f.Urgency != UrgencyUrgent && f.Urgency != UrgencyNotUrgent {
			errs["urgency"] = "Let us know how urgent the visit is"
		}
		requireField(errs, "visitDetails", f.VisitDetails)
		if f.Urgency == UrgencyNotUrgent {
			validateSlotChoice(errs, f, ctx)
		}

	case PageSuccess:
		// Terminal.
	}
	return errs
}

// validateSlotChoice enforces the slot-selection rule: with candidates on
// screen the client must rank at least one or explicitly say none work;
// with none (and loading finished) a free-text fallback is required.
func validateSlotChoice(errs map[string]string, f *FormData, ctx PageContext) {
	if ctx.SlotsLoading {
		errs["slots"] = "Still checking availability, one moment"
		return
	}
	if ctx.SlotCount > 0 {
		if len(f.SlotPreferences) == 0 && !f.NoSlotsWork {
			errs["slotPreferences"] = "Pick a suggested time or tell us none work for you"
		}
		return
	}
	if strings.TrimSpace(f.FallbackDateTime) == "" {
		errs["fallbackDateTime"] = "Tell us what dates and times work for you"
	}
}

func requireField(errs map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = msgRequired
	}
}

func requireChoice(errs map[string]string, field, value string) {
	if value != AnswerYes && value != AnswerNo {
		errs[field] = fmt.Sprintf("Choose %s or %s", AnswerYes, AnswerNo)
	}
}

func requireEmail(errs map[string]string, value string) {
	v := strings.TrimSpace(value)
	if v == "" {
		errs["email"] = msgRequired
		return
	}
	at := strings.Index(v, "@")
	if at <= 0 || at == len(v)-1 || !strings.Contains(v[at+1:], ".") {
		errs["email"] = msgInvalidEmail
	}
}
