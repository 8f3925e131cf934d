package domain

// Synthetic scores are drawn uniformly from [SyntheticMin, SyntheticMax).
const (
	SyntheticMin         = 30.0
	SyntheticMax         = 90.0
	DefaultSyntheticDays = 7
)

// ScoreSource yields uniform floats in [0, 1). *rand.Rand satisfies it.
type ScoreSource interface {
	Float64() float64
}

// GenerateSeries builds one reading per day for the last `days` days, oldest
// first, ending today in UTC.
func GenerateSeries(src ScoreSource, days int) []RecoveryReading {
	if days <= 0 {
		return nil
	}
	end := today()
	series := make([]RecoveryReading, days)
	for i := range series {
		series[i] = RecoveryReading{
			Date:  end.AddDate(0, 0, i-(days-1)),
			Value: SyntheticMin + src.Float64()*(SyntheticMax-SyntheticMin),
		}
	}
	return series
}
