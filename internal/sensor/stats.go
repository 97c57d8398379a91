package sensor

// Stats are the session statistics over one metric's retained history.
// Ok is false when the history is empty; consumers render "---".
type Stats struct {
	Min   float64
	Max   float64
	Avg   float64
	Count int
	Ok    bool
}

// Stats computes min/max/avg over the full retained history. Avg is the
// plain arithmetic mean; samples arrive near-uniformly spaced so no time
// weighting is applied.
func (h *History) Stats() Stats {
	if h == nil || len(h.entries) == 0 {
		return Stats{}
	}

	st := Stats{
		Min:   h.entries[0].Value,
		Max:   h.entries[0].Value,
		Count: len(h.entries),
		Ok:    true,
	}
	sum := 0.0
	for _, e := range h.entries {
		if e.Value < st.Min {
			st.Min = e.Value
		}
		if e.Value > st.Max {
			st.Max = e.Value
		}
		sum += e.Value
	}
	st.Avg = sum / float64(len(h.entries))
	return st
}

// Stat picks one statistic by its virtual-key name ("min", "max", "avg").
func (s Stats) Stat(name string) (float64, bool) {
	if !s.Ok {
		return 0, false
	}
	switch name {
	case "min":
		return s.Min, true
	case "max":
		return s.Max, true
	case "avg":
		return s.Avg, true
	}
	return 0, false
}
