// Command filterbench summarizes the timing records filterforge appends
// with -results: it averages repeated runs, computes the speedup of each
// scheduling mode over the sequential baseline, prints a table and
// renders a speedup chart.
//
// Usage:
//
//	filterbench [-results results.jsonl] [-out speedup.png]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// record mirrors the JSON lines written by the scheduler package.
type record struct {
	Mode         string  `json:"mode"`
	Workers      int     `json:"workers"`
	TimeElapsed  float64 `json:"timeElapsed"`
	TimeParallel float64 `json:"timeParallel"`
	Dir          string  `json:"dir"`
}

func parseRecords(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []record
	decoder := json.NewDecoder(f)
	for {
		var rec record
		if err := decoder.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// averageTimes averages the elapsed time of repeated runs, keyed by mode
// and worker count.
func averageTimes(records []record) map[string]map[int]float64 {
	sums := make(map[string]map[int]float64)
	counts := make(map[string]map[int]int)
	for _, rec := range records {
		if sums[rec.Mode] == nil {
			sums[rec.Mode] = make(map[int]float64)
			counts[rec.Mode] = make(map[int]int)
		}
		sums[rec.Mode][rec.Workers] += rec.TimeElapsed
		counts[rec.Mode][rec.Workers]++
	}
	for mode, byWorkers := range sums {
		for workers := range byWorkers {
			byWorkers[workers] /= float64(counts[mode][workers])
		}
	}
	return sums
}

// sequentialBaseline returns the average sequential time, preferring the
// single-worker record when several are present.
func sequentialBaseline(times map[string]map[int]float64) (float64, bool) {
	byWorkers, ok := times["sequential"]
	if !ok || len(byWorkers) == 0 {
		return 0, false
	}
	if t, ok := byWorkers[1]; ok {
		return t, true
	}
	var total float64
	for _, t := range byWorkers {
		total += t
	}
	return total / float64(len(byWorkers)), true
}

// speedups computes baseline/time for every parallel mode.
func speedups(times map[string]map[int]float64, baseline float64) map[string]map[int]float64 {
	out := make(map[string]map[int]float64)
	for mode, byWorkers := range times {
		if mode == "sequential" {
			continue
		}
		out[mode] = make(map[int]float64)
		for workers, t := range byWorkers {
			out[mode][workers] = baseline / t
		}
	}
	return out
}

// workerTicks forces a tick for every worker count that has a sample.
type workerTicks struct {
	counts []int
}

func (t workerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for _, n := range t.counts {
		if float64(n) >= min && float64(n) <= max {
			ticks = append(ticks, plot.Tick{Value: float64(n), Label: fmt.Sprintf("%d", n)})
		}
	}
	return ticks
}

var modeColors = []color.RGBA{
	{R: 0, G: 128, B: 0, A: 255},
	{R: 0, G: 0, B: 255, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
	{R: 128, G: 0, B: 128, A: 255},
}

func renderPlot(data map[string]map[int]float64, outPath string) error {
	p := plot.New()
	p.Title.Text = "filterforge speedup over sequential"
	p.Title.Padding = vg.Points(10)
	p.X.Label.Text = "workers"
	p.Y.Label.Text = "speedup"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	modes := make([]string, 0, len(data))
	for mode := range data {
		modes = append(modes, mode)
	}
	sort.Strings(modes)

	allWorkers := make(map[int]bool)
	for i, mode := range modes {
		byWorkers := data[mode]
		counts := make([]int, 0, len(byWorkers))
		for n := range byWorkers {
			counts = append(counts, n)
			allWorkers[n] = true
		}
		sort.Ints(counts)

		pts := make(plotter.XYs, len(counts))
		for j, n := range counts {
			pts[j].X = float64(n)
			pts[j].Y = byWorkers[n]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = modeColors[i%len(modeColors)]

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = modeColors[i%len(modeColors)]
		scatter.GlyphStyle.Radius = vg.Points(2)

		p.Add(line, scatter)
		p.Legend.Add(mode, line)
	}

	ticks := make([]int, 0, len(allWorkers))
	for n := range allWorkers {
		ticks = append(ticks, n)
	}
	sort.Ints(ticks)
	p.X.Tick.Marker = workerTicks{counts: ticks}

	return p.Save(6*vg.Inch, 6*vg.Inch, outPath)
}

func main() {
	resultsPath := flag.String("results", "results.jsonl", "timing records written by filterforge -results")
	outPath := flag.String("out", "speedup.png", "output chart path")
	flag.Parse()

	records, err := parseRecords(*resultsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "filterbench: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "filterbench: no records found")
		os.Exit(1)
	}

	times := averageTimes(records)
	baseline, ok := sequentialBaseline(times)
	if !ok {
		fmt.Fprintln(os.Stderr, "filterbench: no sequential baseline in results; run filterforge -mode sequential first")
		os.Exit(1)
	}

	data := speedups(times, baseline)
	fmt.Printf("sequential baseline: %.3fs\n", baseline)
	modes := make([]string, 0, len(data))
	for mode := range data {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	for _, mode := range modes {
		counts := make([]int, 0, len(data[mode]))
		for n := range data[mode] {
			counts = append(counts, n)
		}
		sort.Ints(counts)
		for _, n := range counts {
			fmt.Printf("%-12s workers=%-3d avg=%.3fs speedup=%.2fx\n",
				mode, n, times[mode][n], data[mode][n])
		}
	}

	if err := renderPlot(data, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "filterbench: rendering plot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *outPath)
}
