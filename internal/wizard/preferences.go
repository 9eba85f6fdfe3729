package wizard

import "sort"

// PreferenceSet maps a candidate slot's ISO string to a preference rank.
// Ranks are always a contiguous sequence starting at 1: adding appends the
// next rank, removing renumbers every higher rank down by one.
type PreferenceSet map[string]int

// Add assigns the next rank to iso. Adding an already-ranked iso is a no-op.
func (p PreferenceSet) Add(iso string) {
	if iso == "" {
		return
	}
	if _, ok := p[iso]; ok {
		return
	}
	p[iso] = len(p) + 1
}

// Remove drops iso and closes the gap it leaves in the rank sequence.
func (p PreferenceSet) Remove(iso string) {
	rank, ok := p[iso]
	if !ok {
		return
	}
	delete(p, iso)
	for k, r := range p {
		if r > rank {
			p[k] = r - 1
		}
	}
}

// Ranked returns the ISO strings in ascending rank order.
func (p PreferenceSet) Ranked() []string {
	out := make([]string, 0, len(p))
	for iso := range p {
		out = append(out, iso)
	}
	sort.Slice(out, func(i, j int) bool { return p[out[i]] < p[out[j]] })
	return out
}

// Clone returns an independent copy.
func (p PreferenceSet) Clone() PreferenceSet {
	out := make(PreferenceSet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
