package restaurant

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/drivethru-sim/drivethru-sim/sim"
)

// ErrNoData is returned when averages are requested but no customer entered the line.
var ErrNoData = errors.New("no customers entered the line")

// StageAverages holds mean times in minutes.
type StageAverages struct {
	TimeInSystem float64
	Order        float64
	Prep         float64
	Pay          float64
	Pickup       float64
}

// Summarize averages the time in system and each stage duration over customers.
// Every sum is divided by stayed, the number of customers that entered the
// line, whether or not each of them reached that stage.
func Summarize(customers []*Customer, stayed int) (StageAverages, error) {
	if stayed <= 0 {
		return StageAverages{}, ErrNoData
	}
	var sum StageAverages
	for _, c := range customers {
		if t := c.TimeInSystem(); t != Unset {
			sum.TimeInSystem += t
		}
		if d := c.Durations[StageOrder]; d != Unset {
			sum.Order += d
		}
		if d := c.Durations[StagePrep]; d != Unset {
			sum.Prep += d
		}
		if d := c.Durations[StagePay]; d != Unset {
			sum.Pay += d
		}
		if d := c.Durations[StagePickup]; d != Unset {
			sum.Pickup += d
		}
	}
	n := float64(stayed)
	return StageAverages{
		TimeInSystem: sum.TimeInSystem / n,
		Order:        sum.Order / n,
		Prep:         sum.Prep / n,
		Pay:          sum.Pay / n,
		Pickup:       sum.Pickup / n,
	}, nil
}

// MeanAverages averages per-run averages across runs. Runs without data are skipped.
func MeanAverages(runs []*StageAverages) (StageAverages, error) {
	var out StageAverages
	n := 0
	for _, a := range runs {
		if a == nil {
			continue
		}
		out.TimeInSystem += a.TimeInSystem
		out.Order += a.Order
		out.Prep += a.Prep
		out.Pay += a.Pay
		out.Pickup += a.Pickup
		n++
	}
	if n == 0 {
		return StageAverages{}, ErrNoData
	}
	k := float64(n)
	out.TimeInSystem /= k
	out.Order /= k
	out.Prep /= k
	out.Pay /= k
	out.Pickup /= k
	return out, nil
}

// StationStats describes one station after a run.
type StationStats struct {
	Name         string
	Capacity     int
	Admissions   int
	PeakQueueLen int
	Utilization  float64
}

func stationStats(res *sim.Resource, now float64) StationStats {
	return StationStats{
		Name:         res.Name(),
		Capacity:     res.Capacity(),
		Admissions:   res.Admissions(),
		PeakQueueLen: res.PeakQueueLen(),
		Utilization:  res.Utilization(now),
	}
}

// Summary is the result of one run.
type Summary struct {
	RunID     string
	Number    int
	Seed      int64
	EndTime   float64
	Total     int // potential customers
	Balked    int
	Stayed    int
	Completed int
	Averages  *StageAverages // nil when no customer entered the line
	Stations  []StationStats
}

// Summary aggregates the run's counters, averages and station stats.
func (r *Restaurant) Summary() *Summary {
	s := &Summary{
		RunID:     r.runID,
		Number:    r.number,
		Seed:      r.cfg.Seed,
		EndTime:   r.Now(),
		Total:     r.arrived(),
		Balked:    r.balked,
		Stayed:    r.stayed,
		Completed: r.completed,
		Stations: []StationStats{
			stationStats(r.order, r.Now()),
			stationStats(r.pay, r.Now()),
			stationStats(r.pickup, r.Now()),
		},
	}
	if avg, err := Summarize(r.customers, r.stayed); err == nil {
		s.Averages = &avg
	}
	return s
}

const rule = "------------------------------------------------------------------------------------------------"

// Print writes the summary in the console report format.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "--------------------------------------- Restaurant %d Stats ---------------------------------------\n", s.Number)
	fmt.Fprintf(w, "%d potential customers..\n", s.Total)
	fmt.Fprintf(w, "%d customers left..\n", s.Balked)
	fmt.Fprintf(w, "%d customers entered the line..\n\n", s.Stayed)
	if s.Averages == nil {
		fmt.Fprintln(w, "Averages: no data (no customers entered the line)")
	} else {
		s.Averages.print(w)
	}
	if len(s.Stations) > 0 {
		fmt.Fprintln(w)
		for _, st := range s.Stations {
			fmt.Fprintf(w, "%-7s x%d: %d served, peak line %d, utilization %.1f%%\n",
				st.Name, st.Capacity, st.Admissions, st.PeakQueueLen, 100*st.Utilization)
		}
	}
	fmt.Fprintln(w, rule)
}

func (a StageAverages) print(w io.Writer) {
	fmt.Fprintf(w, "Average time spent in drive thru: %v minutes..\n", a.TimeInSystem)
	fmt.Fprintf(w, "Average time spent ordering: %v minutes..\n", a.Order)
	fmt.Fprintf(w, "Average time spent preparing food: %v minutes..\n", a.Prep)
	fmt.Fprintf(w, "Average time spent paying: %v minutes..\n", a.Pay)
	fmt.Fprintf(w, "Average time spent picking up food: %v minutes..\n", a.Pickup)
}

// PrintMeans writes cross-run averages under a header naming the run count.
func PrintMeans(w io.Writer, runs int, a StageAverages) {
	title := fmt.Sprintf(" Mean of %d runs ", runs)
	pad := (len(rule) - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat("-", pad), title, strings.Repeat("-", pad))
	a.print(w)
	fmt.Fprintln(w, rule)
}
