package main

import (
	"fmt"
	"image"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/render"
	"github.com/spf13/cobra"
)

// BenchResult holds benchmark statistics. Durations are per frame.
type BenchResult struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Iterations    int     `json:"iterations"`
	Warmup        int     `json:"warmup"`
	TotalNs       int64   `json:"total_ns"`
	TotalDuration string  `json:"total_duration"`
	FramesPerSec  float64 `json:"frames_per_sec"`
	NsPerPixel    float64 `json:"ns_per_pixel"`
	MinNs         int64   `json:"min_ns"`
	MaxNs         int64   `json:"max_ns"`
	AvgNs         int64   `json:"avg_ns"`
	MedianNs      int64   `json:"median_ns"`
	P95Ns         int64   `json:"p95_ns"`
	P99Ns         int64   `json:"p99_ns"`
}

var benchCmd = &cobra.Command{
	Use:   "bench [file]",
	Short: "Benchmark rendering frames of a script",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		iterations, _ := flags.GetInt("iterations")
		if iterations <= 0 {
			iterations = 1000
		}
		warmup, _ := flags.GetInt("warmup")
		if warmup < 0 {
			warmup = 100
		}
		width, _ := flags.GetInt("width")
		height, _ := flags.GetInt("height")
		format, _ := flags.GetString("output")

		p, err := getProgram(cmd, args)
		if err != nil {
			return err
		}
		opts, err := vmOptions(cmd)
		if err != nil {
			return err
		}
		r, err := render.NewRenderer(p, width, height, render.WithVMOptions(opts...))
		if err != nil {
			return err
		}
		img := image.NewRGBA(r.Bounds())

		// First, verify the program renders without error
		if err := r.Draw(img, 0); err != nil {
			return fmt.Errorf("code error: %w", err)
		}
		for i := 0; i < warmup; i++ {
			r.Draw(img, frameTime(i))
		}
		runtime.GC()

		durations := make([]time.Duration, iterations)
		for i := range durations {
			t := frameTime(i)
			start := time.Now()
			r.Draw(img, t)
			durations[i] = time.Since(start)
		}

		result := summarize(durations, width, height)
		result.Warmup = warmup
		if format == "json" {
			return printJSON(result)
		}
		printBench(result)
		return nil
	},
}

// frameTime advances at 60 frames per second.
func frameTime(i int) fixed.Fixed {
	return fixed.FromFloat(float64(i) / 60)
}

func summarize(durations []time.Duration, width, height int) BenchResult {
	n := len(durations)
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	avg := total / time.Duration(n)
	return BenchResult{
		Width:         width,
		Height:        height,
		Iterations:    n,
		TotalNs:       total.Nanoseconds(),
		TotalDuration: total.Round(time.Microsecond).String(),
		FramesPerSec:  float64(n) / total.Seconds(),
		NsPerPixel:    float64(avg.Nanoseconds()) / float64(width*height),
		MinNs:         sorted[0].Nanoseconds(),
		MaxNs:         sorted[n-1].Nanoseconds(),
		AvgNs:         avg.Nanoseconds(),
		MedianNs:      sorted[n/2].Nanoseconds(),
		P95Ns:         sorted[int(float64(n)*0.95)].Nanoseconds(),
		P99Ns:         sorted[int(float64(n)*0.99)].Nanoseconds(),
	}
}

func printBench(r BenchResult) {
	title := color.New(color.FgYellow, color.Bold).SprintFunc()
	label := color.New(color.FgMagenta).SprintFunc()
	value := color.New(color.FgGreen).SprintFunc()
	ns := func(v int64) string {
		return time.Duration(v).Round(time.Microsecond).String()
	}

	fmt.Println(title("RESULTS"))
	fmt.Println(strings.Repeat("-", 40))
	rows := []struct{ name, value string }{
		{"Canvas:", fmt.Sprintf("%dx%d", r.Width, r.Height)},
		{"Iterations:", fmt.Sprint(r.Iterations)},
		{"Total time:", r.TotalDuration},
		{"Frames/sec:", fmt.Sprintf("%.2f", r.FramesPerSec)},
		{"ns/pixel:", fmt.Sprintf("%.1f", r.NsPerPixel)},
		{"Min:", ns(r.MinNs)},
		{"Max:", ns(r.MaxNs)},
		{"Avg:", ns(r.AvgNs)},
		{"Median:", ns(r.MedianNs)},
		{"p95:", ns(r.P95Ns)},
		{"p99:", ns(r.P99Ns)},
	}
	for _, row := range rows {
		fmt.Printf("%s %s\n", label(fmt.Sprintf("%-12s", row.name)), value(row.value))
	}
}

func init() {
	flags := benchCmd.Flags()
	flags.IntP("iterations", "n", 1000, "Number of frames to time")
	flags.IntP("warmup", "w", 100, "Warmup frames")
	flags.Int("width", render.DefaultSize, "Canvas width")
	flags.Int("height", render.DefaultSize, "Canvas height")
	flags.StringP("output", "o", "", "Output format (json, text)")
	addVMFlags(benchCmd)
}
