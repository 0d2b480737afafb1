// File: client/report.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Text and JSON rendering of client results.

package client

import (
	"fmt"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Overall computes statistics over the samples of every connection.
func Overall(results []Result) (Stats, error) {
	var all []time.Duration
	for _, r := range results {
		all = append(all, r.Samples...)
	}
	return Compute(all)
}

// WriteText prints one block per connection, then the combined statistics and
// a latency histogram.
func WriteText(w io.Writer, results []Result) error {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "Client %d latency statistics:\n", r.ID)
		if r.Stats.Count == 0 {
			b.WriteString("  no samples\n")
		} else {
			writeStats(&b, r.Stats)
		}
		if r.Err != nil {
			fmt.Fprintf(&b, "  Ended early: %v\n", r.Err)
		}
	}

	if st, err := Overall(results); err == nil {
		b.WriteString("All clients:\n")
		writeStats(&b, st)
		b.WriteString("Histogram:\n")
		var all []time.Duration
		for _, r := range results {
			all = append(all, r.Samples...)
		}
		writeHistogram(&b, Histogram(all))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeStats(b *strings.Builder, st Stats) {
	fmt.Fprintf(b, "  Samples: %d\n", st.Count)
	fmt.Fprintf(b, "  Min: %v\n", st.Min)
	fmt.Fprintf(b, "  Max: %v\n", st.Max)
	fmt.Fprintf(b, "  Average: %v\n", st.Mean)
	fmt.Fprintf(b, "  Median: %v\n", st.Median)
	fmt.Fprintf(b, "  Standard Deviation: %v\n", st.Stdev)
	fmt.Fprintf(b, "  99.9th Percentile: %v\n", st.P999)
	fmt.Fprintf(b, "  99.99th Percentile: %v\n", st.P9999)
}

func writeHistogram(b *strings.Builder, buckets []Bucket) {
	peak := 0
	for _, bk := range buckets {
		peak = max(peak, bk.Count)
	}
	for _, bk := range buckets {
		bar := 0
		if peak > 0 {
			bar = (bk.Count*40 + peak - 1) / peak
		}
		fmt.Fprintf(b, "  [%8v, %8v) %8d %s\n", bk.Lo, bk.Hi, bk.Count, strings.Repeat("#", bar))
	}
}

// jsonStats is the wire form of Stats, in microseconds.
type jsonStats struct {
	Count    int     `json:"count"`
	MinUS    float64 `json:"min_us"`
	MaxUS    float64 `json:"max_us"`
	MeanUS   float64 `json:"mean_us"`
	MedianUS float64 `json:"median_us"`
	StdevUS  float64 `json:"stdev_us"`
	P999US   float64 `json:"p999_us"`
	P9999US  float64 `json:"p9999_us"`
}

type jsonClient struct {
	ID    int        `json:"id"`
	Stats *jsonStats `json:"stats,omitempty"`
	Error string     `json:"error,omitempty"`
}

type jsonReport struct {
	Clients []jsonClient `json:"clients"`
	Overall *jsonStats   `json:"overall,omitempty"`
}

func us(d time.Duration) float64 { return float64(d) / float64(time.Microsecond) }

func toJSONStats(st Stats) *jsonStats {
	if st.Count == 0 {
		return nil
	}
	return &jsonStats{
		Count:    st.Count,
		MinUS:    us(st.Min),
		MaxUS:    us(st.Max),
		MeanUS:   us(st.Mean),
		MedianUS: us(st.Median),
		StdevUS:  us(st.Stdev),
		P999US:   us(st.P999),
		P9999US:  us(st.P9999),
	}
}

// WriteJSON renders results as a single JSON document.
func WriteJSON(w io.Writer, results []Result) error {
	rep := jsonReport{Clients: make([]jsonClient, 0, len(results))}
	for _, r := range results {
		jc := jsonClient{ID: r.ID, Stats: toJSONStats(r.Stats)}
		if r.Err != nil {
			jc.Error = r.Err.Error()
		}
		rep.Clients = append(rep.Clients, jc)
	}
	if st, err := Overall(results); err == nil {
		rep.Overall = toJSONStats(st)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
