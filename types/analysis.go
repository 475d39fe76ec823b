package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// episode index, trace of the episode
	Analyze(int, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(_ int, _ []string, _ []DataSet) {}
}

// OutcomeDataSet holds the learner's outcome rates over consecutive windows of episodes
type OutcomeDataSet struct {
	Window      int            `json:"window"`
	Episodes    int            `json:"episodes"`
	Counts      map[string]int `json:"counts"`
	WinRate     []float64      `json:"win_rate"`
	DrawRate    []float64      `json:"draw_rate"`
	LossRate    []float64      `json:"loss_rate"`
	InvalidRate []float64      `json:"invalid_rate"`
}

// FinalWinRate is the win rate of the last window, 0 without episodes
func (o *OutcomeDataSet) FinalWinRate() float64 {
	if len(o.WinRate) == 0 {
		return 0
	}
	return o.WinRate[len(o.WinRate)-1]
}

type OutcomeAnalyzer struct {
	window   int
	outcomes []Outcome
}

var _ Analyzer = &OutcomeAnalyzer{}

func NewOutcomeAnalyzer(window int) *OutcomeAnalyzer {
	if window < 1 {
		window = 1
	}
	return &OutcomeAnalyzer{
		window:   window,
		outcomes: make([]Outcome, 0),
	}
}

func (o *OutcomeAnalyzer) Analyze(_ int, trace *Trace) {
	o.outcomes = append(o.outcomes, trace.Outcome())
}

func (o *OutcomeAnalyzer) Reset() {
	o.outcomes = make([]Outcome, 0)
}

func (o *OutcomeAnalyzer) DataSet() DataSet {
	return Outcomes(o.outcomes, o.window)
}

// Outcomes summarises a sequence of episode outcomes in windows of the given size.
// The last window may be shorter.
func Outcomes(outcomes []Outcome, window int) *OutcomeDataSet {
	if window < 1 {
		window = 1
	}
	ds := &OutcomeDataSet{
		Window:      window,
		Episodes:    len(outcomes),
		Counts:      make(map[string]int),
		WinRate:     make([]float64, 0),
		DrawRate:    make([]float64, 0),
		LossRate:    make([]float64, 0),
		InvalidRate: make([]float64, 0),
	}
	for _, out := range outcomes {
		ds.Counts[out.String()] += 1
	}
	for start := 0; start < len(outcomes); start += window {
		end := start + window
		if end > len(outcomes) {
			end = len(outcomes)
		}
		ds.WinRate = append(ds.WinRate, rate(outcomes[start:end], OutcomeWin))
		ds.DrawRate = append(ds.DrawRate, rate(outcomes[start:end], OutcomeDraw))
		ds.LossRate = append(ds.LossRate, rate(outcomes[start:end], OutcomeLoss))
		ds.InvalidRate = append(ds.InvalidRate, rate(outcomes[start:end], OutcomeInvalid))
	}
	return ds
}

func rate(outcomes []Outcome, target Outcome) float64 {
	indicator := make([]float64, len(outcomes))
	for i, o := range outcomes {
		if o == target {
			indicator[i] = 1
		}
	}
	return stat.Mean(indicator, nil)
}

// CoverageAnalyzer counts the distinct states the learner had to move from
type CoverageAnalyzer struct {
	uniqueStates    map[string]bool
	numUniqueStates []int
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{
		uniqueStates:    make(map[string]bool),
		numUniqueStates: make([]int, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ int, trace *Trace) {
	for _, s := range trace.States(0) {
		c.uniqueStates[s] = true
	}
	c.numUniqueStates = append(c.numUniqueStates, len(c.uniqueStates))
}

func (c *CoverageAnalyzer) Reset() {
	c.uniqueStates = make(map[string]bool)
	c.numUniqueStates = make([]int, 0)
}

func (c *CoverageAnalyzer) DataSet() DataSet {
	out := make([]int, len(c.numUniqueStates))
	copy(out, c.numUniqueStates)
	return out
}

// OutcomeComparator plots the win rate curve of each experiment and stores the datasets as json
func OutcomeComparator(plotPath string) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run int, names []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Window"
		p.Y.Label.Text = "Win rate"
		for i := 0; i < len(names); i++ {
			outcomes := ds[i].(*OutcomeDataSet)
			if bs, err := json.Marshal(outcomes); err == nil {
				os.WriteFile(path.Join(plotPath, strconv.Itoa(run)+"_"+names[i]+"_outcomes.json"), bs, 0644)
			}
			points := make(plotter.XYs, len(outcomes.WinRate))
			for j, v := range outcomes.WinRate {
				points[j] = plotter.XY{
					X: float64(j),
					Y: v,
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
			fmt.Printf("Final win rate: %.3f for experiment: %s\n", outcomes.FinalWinRate(), names[i])
		}
		if err := p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_win_rate.png")); err != nil {
			fmt.Printf("failed to save plot: %s\n", err)
		}
	}
}

// CoverageComparator plots the number of distinct learner states over episodes
func CoverageComparator(plotPath string) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run int, names []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "States covered"
		for i := 0; i < len(names); i++ {
			uniqueStates := ds[i].([]int)
			if len(uniqueStates) == 0 {
				continue
			}
			points := make(plotter.XYs, len(uniqueStates))
			for j, v := range uniqueStates {
				points[j] = plotter.XY{
					X: float64(j),
					Y: float64(v),
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
			fmt.Printf("Number of unique states: %d for experiment: %s\n", uniqueStates[len(uniqueStates)-1], names[i])
		}
		if err := p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_coverage.png")); err != nil {
			fmt.Printf("failed to save plot: %s\n", err)
		}
	}
}
