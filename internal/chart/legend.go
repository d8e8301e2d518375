package chart

// LegendEntry is one metric in the legend.
type LegendEntry struct {
	Metric      Metric
	Disabled    bool
	Highlighted bool
}

// BuildLegend lists metrics in the reverse of stacking order. Stacking runs
// from the last metric to the first, so the legend reads first to last.
func BuildLegend(metrics []Metric, disabled map[MetricKey]bool, highlighted MetricKey) []LegendEntry {
	entries := make([]LegendEntry, 0, len(metrics))
	for _, m := range metrics {
		entries = append(entries, LegendEntry{
			Metric:      m,
			Disabled:    disabled[m.Key],
			Highlighted: highlighted != "" && highlighted == m.Key,
		})
	}

	return entries
}

// toggled returns a copy of disabled with key's membership flipped.
func toggled(disabled map[MetricKey]bool, key MetricKey) map[MetricKey]bool {
	next := make(map[MetricKey]bool, len(disabled)+1)
	for k, v := range disabled {
		if v {
			next[k] = true
		}
	}

	if next[key] {
		delete(next, key)
	} else {
		next[key] = true
	}

	return next
}

func hasMetric(metrics []Metric, key MetricKey) bool {
	for _, m := range metrics {
		if m.Key == key {
			return true
		}
	}

	return false
}
