package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/harborvet/portal-api/internal/geocode"
	"github.com/harborvet/portal-api/internal/providers"
	"github.com/harborvet/portal-api/internal/scheduling"
	"github.com/harborvet/portal-api/pkg/logging"
)

type fakeSource struct {
	name    string
	resp    *scheduling.Response
	err     error
	queries []scheduling.Query
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FindSlots(_ context.Context, q scheduling.Query) (*scheduling.Response, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeGeocoder struct {
	result *geocode.Result
	err    error
	calls  int
}

func (f *fakeGeocoder) Validate(_ context.Context, _ string) (*geocode.Result, error) {
	f.calls++
	return f.result, f.err
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	}
}

func TestServiceMinutes(t *testing.T) {
	tests := []struct {
		pets int
		want int
	}{
		{1, 40},
		{2, 60},
		{3, 80},
		{5, 120},
		{0, 40},
		{-1, 40},
	}
	for _, tt := range tests {
		if got := ServiceMinutes(tt.pets); got != tt.want {
			t.Fatalf("ServiceMinutes(%d) = %d, want %d", tt.pets, got, tt.want)
		}
	}
}

func TestMatch_UnresolvedProviderShortCircuits(t *testing.T) {
	src := &fakeSource{name: "routing"}
	m := NewMatcher(nil, src, src, "practice-1", logging.Default(), WithClock(fixedClock()))

	slots := m.Match(context.Background(), Request{Authenticated: true})
	if slots != nil {
		t.Fatalf("slots = %v, want nil", slots)
	}
	if len(src.queries) != 0 {
		t.Fatal("no backend should be queried without a resolved provider")
	}
}

func TestMatch_AuthenticatedUsesRoutingEngine(t *testing.T) {
	routing := &fakeSource{
		name: "routing",
		resp: &scheduling.Response{
			Winner:     &scheduling.RawSlot{SuggestedStartISO: "2026-09-01T09:02:00Z"},
			Alternates: []scheduling.RawSlot{{SuggestedStartISO: "2026-09-01T13:33:00Z"}},
		},
	}
	public := &fakeSource{name: "publicbook"}
	geo := &fakeGeocoder{result: &geocode.Result{Lat: 43.66, Lon: -70.26, Address: "12 Elm St, Portland, ME 04101"}}
	m := NewMatcher(geo, routing, public, "practice-1", logging.Default(), WithClock(fixedClock()))

	slots := m.Match(context.Background(), Request{
		Authenticated:    true,
		Provider:         providers.Provider{ID: "p1", PimsID: "pims-1"},
		SelectedPetCount: 2,
		RawAddress:       "12 Elm St, Portland",
	})

	if len(public.queries) != 0 {
		t.Fatal("public backend must not be queried for authenticated sessions")
	}
	if len(routing.queries) != 1 {
		t.Fatalf("routing queries = %d, want 1", len(routing.queries))
	}
	q := routing.queries[0]
	if q.DoctorID != "pims-1" {
		t.Fatalf("doctorId = %s, want pims-1", q.DoctorID)
	}
	if q.StartDate != "2026-08-31" {
		t.Fatalf("startDate = %s, want tomorrow", q.StartDate)
	}
	if q.NumDays != 42 {
		t.Fatalf("numDays = %d, want 42", q.NumDays)
	}
	if q.ServiceMinutes != 60 {
		t.Fatalf("serviceMinutes = %d, want 60 for two pets", q.ServiceMinutes)
	}
	if q.Lat == nil || *q.Lat != 43.66 {
		t.Fatalf("lat = %v, want validated coordinate", q.Lat)
	}
	if q.Address != "12 Elm St, Portland, ME 04101" {
		t.Fatalf("address = %q, want canonical", q.Address)
	}

	want := []scheduling.Slot{
		{ISO: "2026-09-01T09:00:00Z", Date: "2026-09-01", Time: "9:00 AM", Display: "Tuesday, September 1 at 9:00 AM"},
		{ISO: "2026-09-01T13:35:00Z", Date: "2026-09-01", Time: "1:35 PM", Display: "Tuesday, September 1 at 1:35 PM"},
	}
	if diff := cmp.Diff(want, slots); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch_UnauthenticatedUsesPublicBackend(t *testing.T) {
	routing := &fakeSource{name: "routing"}
	public := &fakeSource{
		name: "publicbook",
		resp: &scheduling.Response{Slots: []scheduling.RawSlot{{ISO: "2026-09-02T10:03:00Z"}}},
	}
	m := NewMatcher(nil, routing, public, "practice-1", logging.Default(), WithClock(fixedClock()))

	slots := m.Match(context.Background(), Request{
		Authenticated:    false,
		Provider:         providers.Provider{ID: "v1"},
		SelectedPetCount: 4, // ignored when unauthenticated
		RawAddress:       "Kingfield, ME",
	})

	if len(routing.queries) != 0 {
		t.Fatal("routing engine must not be queried for unauthenticated sessions")
	}
	q := public.queries[0]
	if q.PracticeID != "practice-1" {
		t.Fatalf("practiceId = %s", q.PracticeID)
	}
	if q.ServiceMinutes != 40 {
		t.Fatalf("serviceMinutes = %d, want 40 (pet count defaults to 1)", q.ServiceMinutes)
	}
	if q.AllowOtherDoctors {
		t.Fatal("allowOtherDoctors must be false")
	}
	if len(slots) != 1 || slots[0].Time != "10:05 AM" {
		t.Fatalf("slots = %+v", slots)
	}
}

func TestMatch_GeocodeFailureDegradesToRawAddress(t *testing.T) {
	public := &fakeSource{
		name: "publicbook",
		resp: &scheduling.Response{},
	}
	geo := &fakeGeocoder{err: errors.New("collaborator down")}
	m := NewMatcher(geo, nil, public, "practice-1", logging.Default(), WithClock(fixedClock()))

	m.Match(context.Background(), Request{
		Provider:   providers.Provider{ID: "v1"},
		RawAddress: "12 Elm St",
	})

	if geo.calls != 1 {
		t.Fatalf("geocoder calls = %d, want 1", geo.calls)
	}
	q := public.queries[0]
	if q.Address != "12 Elm St" {
		t.Fatalf("address = %q, want raw string", q.Address)
	}
	if q.Lat != nil || q.Lon != nil {
		t.Fatal("coordinates must be absent in degraded mode")
	}
}

func TestMatch_BackendErrorYieldsEmptyList(t *testing.T) {
	public := &fakeSource{name: "publicbook", err: errors.New("boom")}
	m := NewMatcher(nil, nil, public, "practice-1", logging.Default(), WithClock(fixedClock()))

	slots := m.Match(context.Background(), Request{Provider: providers.Provider{ID: "v1"}})
	if len(slots) != 0 {
		t.Fatalf("slots = %v, want empty", slots)
	}
}

func TestMatch_CapsAtThree(t *testing.T) {
	public := &fakeSource{
		name: "publicbook",
		resp: &scheduling.Response{Slots: []scheduling.RawSlot{
			{ISO: "2026-09-02T10:00:00Z"},
			{ISO: "2026-09-02T11:00:00Z"},
			{ISO: "2026-09-02T12:00:00Z"},
			{ISO: "2026-09-02T13:00:00Z"},
			{ISO: "2026-09-02T14:00:00Z"},
		}},
	}
	m := NewMatcher(nil, nil, public, "practice-1", logging.Default(), WithClock(fixedClock()))

	slots := m.Match(context.Background(), Request{Provider: providers.Provider{ID: "v1"}})
	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3", len(slots))
	}
	if slots[0].ISO != "2026-09-02T10:00:00Z" || slots[2].ISO != "2026-09-02T12:00:00Z" {
		t.Fatalf("order not preserved: %+v", slots)
	}
}

func TestNormalize_MixedShapePrefersFlatList(t *testing.T) {
	resp := &scheduling.Response{
		Slots:      []scheduling.RawSlot{{ISO: "2026-09-02T10:00:00Z"}},
		Winner:     &scheduling.RawSlot{ISO: "2026-09-03T09:00:00Z"},
		Alternates: []scheduling.RawSlot{{ISO: "2026-09-03T10:00:00Z"}},
	}
	slots := Normalize(resp)
	if len(slots) != 1 {
		t.Fatalf("len(slots) = %d, want 1 (flat list preferred)", len(slots))
	}
	if slots[0].Date != "2026-09-02" {
		t.Fatalf("slot = %+v", slots[0])
	}
}

func TestNormalize_WinnerFirstOrder(t *testing.T) {
	resp := &scheduling.Response{
		Winner: &scheduling.RawSlot{SuggestedStartISO: "2026-09-03T09:00:00Z"},
		Alternates: []scheduling.RawSlot{
			{SuggestedStartISO: "2026-09-03T10:00:00Z"},
			{SuggestedStartISO: "2026-09-03T11:00:00Z"},
		},
	}
	slots := Normalize(resp)
	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3", len(slots))
	}
	if slots[0].Time != "9:00 AM" {
		t.Fatalf("winner must come first, got %+v", slots[0])
	}
}

func TestNormalize_UnparseableAndEmptyEntries(t *testing.T) {
	resp := &scheduling.Response{Slots: []scheduling.RawSlot{
		{ISO: "not-a-timestamp", Display: "sometime Tuesday"},
		{},
		{Date: "2026-09-04", Time: "2:00 PM"},
	}}
	slots := Normalize(resp)
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if slots[0].ISO != "not-a-timestamp" || slots[0].Display != "sometime Tuesday" {
		t.Fatalf("unparseable entry mangled: %+v", slots[0])
	}
	if slots[1].Date != "2026-09-04" {
		t.Fatalf("textual entry mangled: %+v", slots[1])
	}
}
