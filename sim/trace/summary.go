package trace

// TraceSummary aggregates statistics from a list of records.
type TraceSummary struct {
	Arrivals     int
	Balked       int
	Entered      int
	Exited       int
	BlockedWaits map[string]int // station → number of backpressure waits
	PeakQueueLen map[string]int // station → longest wait line seen in a record
}

// Summarize computes aggregate statistics from records.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(records []Record) *TraceSummary {
	summary := &TraceSummary{
		BlockedWaits: make(map[string]int),
		PeakQueueLen: make(map[string]int),
	}

	for _, r := range records {
		switch r.Kind {
		case KindBalk:
			summary.Arrivals++
			summary.Balked++
		case KindEnter:
			summary.Arrivals++
			summary.Entered++
		case KindExit:
			summary.Exited++
		case KindPayBlocked, KindPickupBlocked:
			summary.BlockedWaits[r.Station]++
		}
		if r.Station != "" && r.QueueLen > summary.PeakQueueLen[r.Station] {
			summary.PeakQueueLen[r.Station] = r.QueueLen
		}
	}

	return summary
}
