package intake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborvet/portal-api/internal/directory"
	"github.com/harborvet/portal-api/internal/scheduling"
	"github.com/harborvet/portal-api/internal/wizard"
)

func TestBuildPayload_AuthenticatedVisitWithTwoPets(t *testing.T) {
	snap := wizard.Snapshot{
		ID:            "sess-1",
		Authenticated: true,
		ClientID:      "c-1",
		Profile: &directory.ClientProfile{
			ID: "c-1", FirstName: "Jo", LastName: "March", Phone: "207-555-0101",
			PhysicalStreet: "12 Elm St", PhysicalCity: "Portland", PhysicalState: "ME", PhysicalZip: "04101",
		},
		Pets: []directory.Pet{
			{ID: "pet-1", Name: "Biscuit"},
			{ID: "pet-2", Name: "Maple"},
		},
		Form: wizard.FormData{
			UsedServicesBefore:   wizard.AnswerYes,
			Email:                "jo@example.com",
			SelectedPetIDs:       []string{"pet-1", "pet-2"},
			LookingForEuthanasia: wizard.AnswerNo,
			PreferredDoctor:      "Dr. Smith",
			Urgency:              wizard.UrgencyNotUrgent,
			VisitDetails:         "annual exam for both",
			SlotPreferences:      wizard.PreferenceSet{"2026-09-01T09:00:00Z": 1},
		},
		Slots: []scheduling.Slot{
			{ISO: "2026-09-01T09:00:00Z", Display: "Tuesday, September 1 at 9:00 AM"},
		},
	}

	payload := BuildPayload("practice-1", snap)

	require.Equal(t, "regular_visit", payload["appointmentType"])
	// Two pets: 40 base + 20 for the second.
	require.Equal(t, 60, payload["serviceMinutes"])
	require.Equal(t, "12 Elm St, Portland, ME, 04101", payload["address"])
	require.Equal(t, "c-1", payload["clientId"])

	client := payload["client"].(map[string]any)
	require.Equal(t, "jo@example.com", client["email"])
	require.Equal(t, "Jo", client["firstName"])
	require.Equal(t, "207-555-0101", client["phone"])

	pets := payload["pets"].([]map[string]any)
	require.Len(t, pets, 2)
	require.Equal(t, "Biscuit", pets[0]["name"])

	prefs := payload["slotPreferences"].([]map[string]any)
	require.Len(t, prefs, 1)
	require.Equal(t, "Tuesday, September 1 at 9:00 AM", prefs[0]["display"])
}

func TestBuildPayload_UnauthenticatedVisitHasNoEuthanasiaFields(t *testing.T) {
	snap := wizard.Snapshot{
		ID: "sess-2",
		Form: wizard.FormData{
			UsedServicesBefore:   wizard.AnswerNo,
			Email:                "new@example.com",
			FirstName:            "Sam",
			LastName:             "Carter",
			Phone:                "207-555-0199",
			Street:               "3 Pine Rd",
			City:                 "Kingfield",
			State:                "ME",
			Zip:                  "04947",
			PetDescription:       "one senior beagle",
			LookingForEuthanasia: wizard.AnswerNo,
			PreferredDoctor:      "Alvarez",
			Urgency:              wizard.UrgencyUrgent,
			VisitDetails:         "limping since Friday",
			FallbackDateTime:     "tomorrow morning",
		},
	}

	payload := BuildPayload("practice-1", snap)

	require.Equal(t, "regular_visit", payload["appointmentType"])
	require.Equal(t, 40, payload["serviceMinutes"])
	require.Equal(t, "3 Pine Rd, Kingfield, ME, 04947", payload["address"])
	require.Equal(t, "one senior beagle", payload["petDescription"])
	require.Equal(t, "tomorrow morning", payload["fallbackDateTime"])

	// Branch gating: absent, not null.
	for _, key := range []string{"aftercarePreference", "serviceArea", "euthanasiaTimeframe", "euthanasiaDetails", "clientId", "pets"} {
		_, present := payload[key]
		require.False(t, present, "unexpected key %q", key)
	}
}

func TestBuildPayload_EuthanasiaBranchOmitsVisitFields(t *testing.T) {
	snap := wizard.Snapshot{
		Authenticated: true,
		ClientID:      "c-9",
		Form: wizard.FormData{
			UsedServicesBefore:   wizard.AnswerYes,
			Email:                "m@example.com",
			SelectedPetIDs:       []string{"pet-7"},
			LookingForEuthanasia: wizard.AnswerYes,
			ServiceArea:          wizard.ServiceAreaHighPeaks,
			EuthanasiaTimeframe:  "within the week",
			AftercarePreference:  "cremation with ashes returned",
			EuthanasiaDetails:    "declining fast",
			Urgency:              wizard.UrgencyUrgent, // answered earlier, superseded by the branch
		},
		Pets: []directory.Pet{{ID: "pet-7", Name: "Willow"}},
	}

	payload := BuildPayload("practice-1", snap)

	require.Equal(t, "euthanasia", payload["appointmentType"])
	require.Equal(t, wizard.ServiceAreaHighPeaks, payload["serviceArea"])
	require.Equal(t, "cremation with ashes returned", payload["aftercarePreference"])
	_, present := payload["urgency"]
	require.False(t, present)
	_, present = payload["visitDetails"]
	require.False(t, present)
}

func TestBuildPayload_StalePreferenceFallsBackToISO(t *testing.T) {
	snap := wizard.Snapshot{
		Form: wizard.FormData{
			UsedServicesBefore:   wizard.AnswerNo,
			Email:                "x@example.com",
			FirstName:            "A",
			LastName:             "B",
			Phone:                "1",
			PetDescription:       "cat",
			LookingForEuthanasia: wizard.AnswerNo,
			Urgency:              wizard.UrgencyNotUrgent,
			VisitDetails:         "checkup",
			SlotPreferences: wizard.PreferenceSet{
				"2026-09-02T14:00:00Z": 2,
				"2026-09-01T09:00:00Z": 1,
			},
		},
		Slots: []scheduling.Slot{
			{ISO: "2026-09-01T09:00:00Z", Display: "Tuesday, September 1 at 9:00 AM"},
			// The 14:00 slot has since fallen out of the candidate list.
		},
	}

	prefs := BuildPayload("practice-1", snap)["slotPreferences"].([]map[string]any)
	require.Len(t, prefs, 2)
	require.Equal(t, 1, prefs[0]["rank"])
	require.Equal(t, "Tuesday, September 1 at 9:00 AM", prefs[0]["display"])
	require.Equal(t, 2, prefs[1]["rank"])
	require.Equal(t, "2026-09-02T14:00:00Z", prefs[1]["display"])
}

func TestPrune(t *testing.T) {
	in := map[string]any{
		"keep":      "value",
		"zero":      0,
		"off":       false,
		"empty":     "",
		"nothing":   nil,
		"hollow":    map[string]any{"inner": ""},
		"nested":    map[string]any{"inner": "x", "gone": nil},
		"emptyList": []any{"", nil},
		"list":      []any{"a", ""},
	}

	out := Prune(in)

	require.Equal(t, map[string]any{
		"keep":   "value",
		"zero":   0,
		"off":    false,
		"nested": map[string]any{"inner": "x"},
		"list":   []any{"a"},
	}, out)
}
