package pdf

import (
	"fmt"
	"time"
)

// DefaultMeasureRuns is how many times PDFMeasureOpening extracts the page by default
const DefaultMeasureRuns = 5

// MaxMeasureRuns bounds the runs of a single measurement
const MaxMeasureRuns = 100

// measureOpening extracts the page runs times and records each duration.
func (e *Extractor) measureOpening(path string, index, runs int) (*PDFMeasureOpeningResult, error) {
	if runs <= 0 {
		runs = DefaultMeasureRuns
	}
	if runs > MaxMeasureRuns {
		return nil, fmt.Errorf("runs must not exceed %d", MaxMeasureRuns)
	}

	result := &PDFMeasureOpeningResult{
		Path:   path,
		Page:   index,
		Runs:   runs,
		RunsMS: make([]float64, 0, runs),
	}

	var total time.Duration
	for i := 0; i < runs; i++ {
		start := time.Now()
		elements, err := e.PageElements(path, index)
		elapsed := time.Since(start)
		if err != nil {
			return nil, err
		}

		total += elapsed
		result.RunsMS = append(result.RunsMS, milliseconds(elapsed))
		result.Elements = len(elements)
	}

	result.AverageMS = milliseconds(total / time.Duration(runs))
	return result, nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
