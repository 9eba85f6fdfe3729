package wizard

import "strings"

// Answer values used by yes/no questions.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// Urgency answers for the regular-visit branch.
const (
	UrgencyUrgent    = "urgent"
	UrgencyNotUrgent = "not urgent"
)

// Service areas offered for in-home euthanasia.
const (
	ServiceAreaPortland  = "Greater Portland Area"
	ServiceAreaHighPeaks = "Maine High Peaks Area"
)

// FormData is the single mutable aggregate holding every answer collected
// by the wizard. All mutation goes through Merge so no two callers race to
// write the same field.
type FormData struct {
	// Intro
	UsedServicesBefore string `json:"usedServicesBefore,omitempty"`

	// Contact
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`

	// New-client address
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`

	// Existing-client specifics
	SelectedPetIDs []string `json:"selectedPetIds,omitempty"`
	PetDescription string   `json:"petDescription,omitempty"`
	HasMoved       string   `json:"hasMoved,omitempty"`
	NewStreet      string   `json:"newStreet,omitempty"`
	NewCity        string   `json:"newCity,omitempty"`
	NewState       string   `json:"newState,omitempty"`
	NewZip         string   `json:"newZip,omitempty"`

	// Branch selector, answered on the client pages
	LookingForEuthanasia string `json:"lookingForEuthanasia,omitempty"`

	PreferredDoctor string `json:"preferredDoctor,omitempty"`

	// Euthanasia branch
	ServiceArea         string `json:"serviceArea,omitempty"`
	EuthanasiaTimeframe string `json:"euthanasiaTimeframe,omitempty"`
	AftercarePreference string `json:"aftercarePreference,omitempty"`
	EuthanasiaDetails   string `json:"euthanasiaDetails,omitempty"`

	// Regular-visit branch
	Urgency      string `json:"urgency,omitempty"`
	VisitDetails string `json:"visitDetails,omitempty"`

	// Slot selection
	SlotPreferences  PreferenceSet `json:"slotPreferences,omitempty"`
	NoSlotsWork      bool          `json:"noSlotsWork,omitempty"`
	FallbackDateTime string        `json:"fallbackDateTime,omitempty"`

	// Probe result; nil until the email-existence check lands.
	EmailExists *bool `json:"emailExists,omitempty"`
}

// EuthanasiaBranch reports whether the session is on the euthanasia branch.
func (f *FormData) EuthanasiaBranch() bool {
	return f.LookingForEuthanasia == AnswerYes
}

// Merge applies a field-keyed change set. Unknown keys are ignored so the
// UI shell can evolve independently; values of the wrong type are skipped.
// Changing the email resets any previous probe result.
func (f *FormData) Merge(changes map[string]any) {
	for key, raw := range changes {
		switch key {
		case "usedServicesBefore":
			setString(&f.UsedServicesBefore, raw)
		case "email":
			if v, ok := raw.(string); ok && v != f.Email {
				f.Email = v
				f.EmailExists = nil
			}
		case "firstName":
			setString(&f.FirstName, raw)
		case "lastName":
			setString(&f.LastName, raw)
		case "phone":
			setString(&f.Phone, raw)
		case "street":
			setString(&f.Street, raw)
		case "city":
			setString(&f.City, raw)
		case "state":
			setString(&f.State, raw)
		case "zip":
			setString(&f.Zip, raw)
		case "selectedPetIds":
			if ids, ok := stringSlice(raw); ok {
				f.SelectedPetIDs = ids
			}
		case "petDescription":
			setString(&f.PetDescription, raw)
		case "hasMoved":
			setString(&f.HasMoved, raw)
		case "newStreet":
			setString(&f.NewStreet, raw)
		case "newCity":
			setString(&f.NewCity, raw)
		case "newState":
			setString(&f.NewState, raw)
		case "newZip":
			setString(&f.NewZip, raw)
		case "lookingForEuthanasia":
			setString(&f.LookingForEuthanasia, raw)
		case "preferredDoctor":
			setString(&f.PreferredDoctor, raw)
		case "serviceArea":
			setString(&f.ServiceArea, raw)
		case "euthanasiaTimeframe":
			setString(&f.EuthanasiaTimeframe, raw)
		case "aftercarePreference":
			setString(&f.AftercarePreference, raw)
		case "euthanasiaDetails":
			setString(&f.EuthanasiaDetails, raw)
		case "urgency":
			setString(&f.Urgency, raw)
		case "visitDetails":
			setString(&f.VisitDetails, raw)
		case "addSlotPreference":
			if v, ok := raw.(string); ok {
				if f.SlotPreferences == nil {
					f.SlotPreferences = PreferenceSet{}
				}
				f.SlotPreferences.Add(v)
			}
		case "removeSlotPreference":
			if v, ok := raw.(string); ok {
				f.SlotPreferences.Remove(v)
			}
		case "noSlotsWork":
			if v, ok := raw.(bool); ok {
				f.NoSlotsWork = v
			}
		case "fallbackDateTime":
			setString(&f.FallbackDateTime, raw)
		}
	}
}

// AssembleAddress joins whichever address fields the branch populated into
// one free-text string for the address-validation collaborator. onFile is
// the pre-filled address line for authenticated clients who have not moved.
func (f *FormData) AssembleAddress(onFile string) string {
	if f.UsedServicesBefore == AnswerYes || onFile != "" {
		if f.HasMoved == AnswerYes {
			return joinParts(f.NewStreet, f.NewCity, f.NewState, f.NewZip)
		}
		if onFile != "" {
			return onFile
		}
		// Existing client with no address on file and no move declared.
		return ""
	}
	return joinParts(f.Street, f.City, f.State, f.Zip)
}

func joinParts(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

func setString(dst *string, raw any) {
	if v, ok := raw.(string); ok {
		*dst = v
	}
}

func stringSlice(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
