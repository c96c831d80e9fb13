package estimate

// SelectedTotals sums price*qty over the materials with Selected set. It is
// the only valid totals computation; callers recompute it after every
// selection, quantity, or membership change rather than caching.
func SelectedTotals(materials []Material) Totals {
	var t Totals
	for _, m := range materials {
		if !m.Selected {
			continue
		}
		low, high := m.LineTotals()
		t.Low += low
		t.High += high
	}
	return t
}
