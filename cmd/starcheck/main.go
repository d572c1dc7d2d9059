// Command starcheck loads an offline star directory and prints a
// per-star sample count and range, for validating input before a
// lenswatch run.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/obswatch/lenswatch/internal/report"
	"github.com/obswatch/lenswatch/internal/source"
	"github.com/obswatch/lenswatch/internal/star"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var logger = report.NewLogger(os.Stderr)

	if len(args) != 1 {
		fmt.Println("Usage: starcheck <star-dir>")

		return -1
	}

	var samples, err = source.LoadDir(args[0])
	if err != nil {
		logger.Errorf("%v", err)

		return -1
	}

	var ids = make([]star.StarID, 0, len(samples))
	for id := range samples {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		var vals = samples[id]

		if len(vals) == 0 {
			fmt.Printf("star=%s samples=0\n", id)

			continue
		}

		var min, max = vals[0], vals[0]
		for _, v := range vals[1:] {
			if v < min {
				min = v
			}

			if v > max {
				max = v
			}
		}

		fmt.Printf("star=%s samples=%d min=%.6f max=%.6f\n", id, len(vals), min, max)
	}

	return 0
}
