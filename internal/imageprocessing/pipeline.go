package imageprocessing

import "fmt"

// ThresholdResult carries one binarization channel of a pipeline run.
type ThresholdResult struct {
	Cutoff     int
	Binary     *Raster
	WhiteCount int
}

// Result is the terminal artifact tuple of a pipeline run. Every raster in
// it is freshly allocated by its producing stage; nothing references the
// caller's input after Run returns.
type Result struct {
	Filtered      *Raster
	Adjusted      *Raster
	RawHistogram  Histogram
	Histogram     Histogram
	Analysis      RangeAnalysis
	LevelAdjusted bool
	T1            ThresholdResult
	T2            ThresholdResult
	DiffMask      *Raster
	DiffCount     int
}

// Run executes the fixed stage order on an already-cropped luminance
// raster:
//
//	Cropped -> Filtered -> HistogramComputed -> (Adjusted | PassThrough)
//	        -> HistogramRecomputed -> ThresholdsApplied -> Counted
//
// Level adjustment only runs when the post-filter histogram is skewed;
// otherwise the filtered raster is forwarded unchanged. The run is single
// pass: a failed stage returns an error and publishes no partial result.
func Run(cropped *Raster, kernelSize, t1, t2 int) (*Result, error) {
	filtered, err := MedianFilter(cropped, kernelSize)
	if err != nil {
		return nil, fmt.Errorf("median filter: %w", err)
	}

	rawHist := ComputeHistogram(filtered)
	analysis, err := rawHist.Analyse()
	if err != nil {
		return nil, fmt.Errorf("histogram analysis: %w", err)
	}

	adjusted := filtered
	if analysis.Skewed {
		adjusted = AdjustLevels(filtered, analysis.MinVal, analysis.MaxVal)
	}
	hist := ComputeHistogram(adjusted)

	binT1, err := Threshold(adjusted, t1)
	if err != nil {
		return nil, fmt.Errorf("threshold t1: %w", err)
	}
	binT2, err := Threshold(adjusted, t2)
	if err != nil {
		return nil, fmt.Errorf("threshold t2: %w", err)
	}
	diff, err := Diff(binT1, binT2)
	if err != nil {
		return nil, fmt.Errorf("threshold diff: %w", err)
	}

	return &Result{
		Filtered:      filtered,
		Adjusted:      adjusted,
		RawHistogram:  rawHist,
		Histogram:     hist,
		Analysis:      analysis,
		LevelAdjusted: analysis.Skewed,
		T1:            ThresholdResult{Cutoff: t1, Binary: binT1, WhiteCount: CountEqual(binT1, 255)},
		T2:            ThresholdResult{Cutoff: t2, Binary: binT2, WhiteCount: CountEqual(binT2, 255)},
		DiffMask:      diff,
		DiffCount:     CountEqual(diff, 255),
	}, nil
}
