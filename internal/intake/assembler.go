// Package intake turns a completed wizard session into the practice's
// appointment request: one branch-aware outbound payload, an archive row
// and a confirmation email.
package intake

import (
	"strings"

	"github.com/harborvet/portal-api/internal/availability"
	"github.com/harborvet/portal-api/internal/scheduling"
	"github.com/harborvet/portal-api/internal/wizard"
)

const (
	appointmentTypeEuthanasia   = "euthanasia"
	appointmentTypeRegularVisit = "regular_visit"
)

// BuildPayload assembles the outbound request from a session snapshot.
// Only the active branch's fields appear: a regular visit carries no
// aftercare preference at all rather than a null one. The result has
// already been pruned of unset values.
func BuildPayload(practiceID string, snap wizard.Snapshot) map[string]any {
	form := snap.Form

	appointmentType := appointmentTypeRegularVisit
	if form.EuthanasiaBranch() {
		appointmentType = appointmentTypeEuthanasia
	}

	payload := map[string]any{
		"practiceId":      practiceID,
		"appointmentType": appointmentType,
		"client":          clientSection(snap),
		"address":         form.AssembleAddress(addressOnFile(snap)),
		"serviceMinutes":  availability.ServiceMinutes(petCount(snap)),
		"preferredDoctor": form.PreferredDoctor,
	}

	if snap.Authenticated {
		payload["clientId"] = snap.ClientID
		payload["pets"] = petSection(snap)
	} else {
		payload["petDescription"] = form.PetDescription
	}

	if form.EuthanasiaBranch() {
		payload["serviceArea"] = form.ServiceArea
		payload["euthanasiaTimeframe"] = form.EuthanasiaTimeframe
		payload["aftercarePreference"] = form.AftercarePreference
		payload["euthanasiaDetails"] = form.EuthanasiaDetails
	} else {
		payload["urgency"] = form.Urgency
		payload["visitDetails"] = form.VisitDetails
	}

	if prefs := preferenceSection(form, snap.Slots); len(prefs) > 0 {
		payload["slotPreferences"] = prefs
	}
	if form.NoSlotsWork {
		payload["noSlotsWork"] = true
	}
	payload["fallbackDateTime"] = form.FallbackDateTime

	return Prune(payload)
}

func clientSection(snap wizard.Snapshot) map[string]any {
	form := snap.Form
	section := map[string]any{
		"email":     form.Email,
		"firstName": form.FirstName,
		"lastName":  form.LastName,
		"phone":     form.Phone,
	}
	if p := snap.Profile; p != nil {
		if form.FirstName == "" {
			section["firstName"] = p.FirstName
		}
		if form.LastName == "" {
			section["lastName"] = p.LastName
		}
		if form.Phone == "" {
			section["phone"] = p.Phone
		}
	}
	return section
}

func petSection(snap wizard.Snapshot) []map[string]any {
	names := make(map[string]string, len(snap.Pets))
	for _, pet := range snap.Pets {
		names[pet.ID] = pet.Name
	}
	pets := make([]map[string]any, 0, len(snap.Form.SelectedPetIDs))
	for _, id := range snap.Form.SelectedPetIDs {
		pets = append(pets, map[string]any{
			"id":   id,
			"name": names[id],
		})
	}
	return pets
}

// preferenceSection resolves ranked preferences back to the candidate
// list's display strings, ascending by rank. A preference whose slot is no
// longer in the current list keeps its raw ISO string as the display
// rather than being dropped.
func preferenceSection(form wizard.FormData, slots []scheduling.Slot) []map[string]any {
	ranked := form.SlotPreferences.Ranked()
	if len(ranked) == 0 {
		return nil
	}
	displays := make(map[string]string, len(slots))
	for _, s := range slots {
		displays[s.ISO] = s.Display
	}
	out := make([]map[string]any, 0, len(ranked))
	for _, iso := range ranked {
		display := displays[iso]
		if display == "" {
			display = iso
		}
		out = append(out, map[string]any{
			"rank":    form.SlotPreferences[iso],
			"iso":     iso,
			"display": display,
		})
	}
	return out
}

func petCount(snap wizard.Snapshot) int {
	if snap.Authenticated && len(snap.Form.SelectedPetIDs) > 0 {
		return len(snap.Form.SelectedPetIDs)
	}
	return 1
}

func addressOnFile(snap wizard.Snapshot) string {
	p := snap.Profile
	if p == nil {
		return ""
	}
	parts := make([]string, 0, 4)
	for _, s := range []string{p.PhysicalStreet, p.PhysicalCity, p.PhysicalState, p.PhysicalZip} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Prune removes unset values so the wire payload carries no empty
// placeholders: nil entries, empty strings, and maps or slices left empty
// after pruning all disappear. Values the form genuinely holds, including
// false and zero, survive.
func Prune(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		if pruned, keep := pruneValue(value); keep {
			out[key] = pruned
		}
	}
	return out
}

func pruneValue(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case string:
		return v, v != ""
	case map[string]any:
		m := Prune(v)
		return m, len(m) > 0
	case []map[string]any:
		kept := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m := Prune(item); len(m) > 0 {
				kept = append(kept, m)
			}
		}
		return kept, len(kept) > 0
	case []any:
		kept := make([]any, 0, len(v))
		for _, item := range v {
			if pruned, keep := pruneValue(item); keep {
				kept = append(kept, pruned)
			}
		}
		return kept, len(kept) > 0
	default:
		return v, true
	}
}
