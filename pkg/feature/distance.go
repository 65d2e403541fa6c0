package feature

// Distance returns the per-feature distance between a and b under f's
// configuration: normalized absolute difference for numeric features,
// FVDistance (matrix lookup or Overlap fallback) for everything else.
// Cosine and DotProduct are whole-instance similarity metrics handled by
// pkg/tester, not per-feature distances, so f.MetricType is never one of
// those here.
func (f *Feature) Distance(a, b *Value) (float64, error) {
	if a == nil || b == nil {
		return 1, nil
	}
	if f.numeric {
		return f.numericDistance(a, b), nil
	}
	return f.FVDistance(a, b, f.VDThreshold)
}

func (f *Feature) numericDistance(a, b *Value) float64 {
	rng := f.NMax - f.NMin
	if rng <= 0 {
		if a.Numeric == b.Numeric {
			return 0
		}
		return 1
	}
	d := a.Numeric - b.Numeric
	if d < 0 {
		d = -d
	}
	return d / rng
}
