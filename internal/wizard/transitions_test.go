package wizard

import "testing"

func boolp(v bool) *bool { return &v }

func TestNextPage_IntroRouting(t *testing.T) {
	tests := []struct {
		name    string
		form    FormData
		want    Page
		blocked bool
	}{
		{
			name: "used services before goes to existing client",
			form: FormData{UsedServicesBefore: AnswerYes},
			want: PageExistingClient,
		},
		{
			name: "unknown email goes to new client",
			form: FormData{UsedServicesBefore: AnswerNo, Email: "new@example.com"},
			want: PageNewClient,
		},
		{
			name: "probe not yet landed still goes to new client",
			form: FormData{UsedServicesBefore: AnswerNo, Email: "new@example.com", EmailExists: nil},
			want: PageNewClient,
		},
		{
			name:    "known email blocks with modal",
			form:    FormData{UsedServicesBefore: AnswerNo, Email: "known@example.com", EmailExists: boolp(true)},
			blocked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok, blocked := NextPage(PageIntro, &tt.form)
			if blocked != tt.blocked {
				t.Fatalf("blocked = %v, want %v", blocked, tt.blocked)
			}
			if tt.blocked {
				return
			}
			if !ok || next != tt.want {
				t.Fatalf("next = %v ok = %v, want %v", next, ok, tt.want)
			}
		})
	}
}

func TestNextPage_BranchSelection(t *testing.T) {
	euth := FormData{LookingForEuthanasia: AnswerYes}
	visit := FormData{LookingForEuthanasia: AnswerNo}

	for _, page := range []Page{PageNewClient, PageExistingClient} {
		if next, _, _ := NextPage(page, &euth); next != PageEuthanasiaIntro {
			t.Fatalf("from %s with euthanasia: next = %v", page, next)
		}
		if next, _, _ := NextPage(page, &visit); next != PageRequestVisitContinued {
			t.Fatalf("from %s without euthanasia: next = %v", page, next)
		}
	}
}

func TestNextPage_ServiceAreaFork(t *testing.T) {
	portland := FormData{ServiceArea: ServiceAreaPortland}
	highPeaks := FormData{ServiceArea: ServiceAreaHighPeaks}

	if next, _, _ := NextPage(PageEuthanasiaServiceArea, &portland); next != PageEuthanasiaPortland {
		t.Fatalf("portland fork: next = %v", next)
	}
	if next, _, _ := NextPage(PageEuthanasiaServiceArea, &highPeaks); next != PageEuthanasiaHighPeaks {
		t.Fatalf("high peaks fork: next = %v", next)
	}
}

func TestNextPage_RegionPagesConverge(t *testing.T) {
	f := FormData{}
	for _, page := range []Page{PageEuthanasiaPortland, PageEuthanasiaHighPeaks} {
		if next, _, _ := NextPage(page, &f); next != PageEuthanasiaContinued {
			t.Fatalf("from %s: next = %v", page, next)
		}
	}
}

func TestNextPage_SubmitPagesHaveNoForwardTransition(t *testing.T) {
	f := FormData{}
	for _, page := range []Page{PageEuthanasiaContinued, PageRequestVisitContinued, PageSuccess} {
		if _, ok, _ := NextPage(page, &f); ok {
			t.Fatalf("page %s should not transition forward via next", page)
		}
	}
}

func TestPrevPage_DerivedFromAnswers(t *testing.T) {
	tests := []struct {
		name string
		page Page
		form FormData
		auth bool
		want Page
		ok   bool
	}{
		{
			name: "high peaks answer returns to high peaks page",
			page: PageEuthanasiaContinued,
			form: FormData{ServiceArea: ServiceAreaHighPeaks},
			want: PageEuthanasiaHighPeaks,
			ok:   true,
		},
		{
			name: "portland answer returns to portland page",
			page: PageEuthanasiaContinued,
			form: FormData{ServiceArea: ServiceAreaPortland},
			want: PageEuthanasiaPortland,
			ok:   true,
		},
		{
			name: "visit page returns to existing client for returning clients",
			page: PageRequestVisitContinued,
			form: FormData{UsedServicesBefore: AnswerYes},
			want: PageExistingClient,
			ok:   true,
		},
		{
			name: "visit page returns to new client otherwise",
			page: PageRequestVisitContinued,
			form: FormData{UsedServicesBefore: AnswerNo},
			want: PageNewClient,
			ok:   true,
		},
		{
			name: "euthanasia intro returns to the branch's client page",
			page: PageEuthanasiaIntro,
			form: FormData{},
			auth: true,
			want: PageExistingClient,
			ok:   true,
		},
		{
			name: "authenticated start page has no back",
			page: PageExistingClient,
			auth: true,
			ok:   false,
		},
		{
			name: "unauthenticated existing client backs to intro",
			page: PageExistingClient,
			form: FormData{UsedServicesBefore: AnswerYes},
			want: PageIntro,
			ok:   true,
		},
		{
			name: "intro has no back",
			page: PageIntro,
			ok:   false,
		},
		{
			name: "success is terminal",
			page: PageSuccess,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PrevPage(tt.page, &tt.form, tt.auth)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("prev = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackThenForwardIsDeterministic(t *testing.T) {
	// Walking back through the conditional fork and forward again must
	// re-derive the same destination from the answers alone.
	f := FormData{
		UsedServicesBefore:   AnswerYes,
		LookingForEuthanasia: AnswerYes,
		ServiceArea:          ServiceAreaHighPeaks,
	}

	prev, ok := PrevPage(PageEuthanasiaContinued, &f, false)
	if !ok || prev != PageEuthanasiaHighPeaks {
		t.Fatalf("back: %v", prev)
	}
	next, ok, _ := NextPage(prev, &f)
	if !ok || next != PageEuthanasiaContinued {
		t.Fatalf("forward again: %v", next)
	}
}
