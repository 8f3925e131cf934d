package domain

// LoadRecommendation is the training-load tier derived from a recovery reading.
type LoadRecommendation string

const (
	LoadReduce   LoadRecommendation = "REDUCE"
	LoadMaintain LoadRecommendation = "MAINTAIN"
	LoadIncrease LoadRecommendation = "INCREASE"
)

// Score thresholds for the synthetic 0–100 recovery score. Both are inclusive
// lower bounds of their tier.
const (
	IncreaseThreshold = 60.0
	MaintainThreshold = 40.0
)

// BannerLevel is the severity of the status banner shown with a recommendation.
type BannerLevel string

const (
	BannerSuccess BannerLevel = "success"
	BannerWarning BannerLevel = "warning"
	BannerError   BannerLevel = "error"
)

// ClassifyScore maps a continuous recovery score to a load tier.
// The score range is not enforced; NaN falls through to REDUCE.
func ClassifyScore(s float64) LoadRecommendation {
	switch {
	case s >= IncreaseThreshold:
		return LoadIncrease
	case s >= MaintainThreshold:
		return LoadMaintain
	default:
		return LoadReduce
	}
}

// ClassifyStatus maps an ans_charge_status code to a load tier. Codes outside
// 1–5 are compared numerically like any other.
func ClassifyStatus(code int) LoadRecommendation {
	switch {
	case code <= 2:
		return LoadReduce
	case code == 3:
		return LoadMaintain
	default:
		return LoadIncrease
	}
}

// Guidance is the short instruction shown to staff for the tier.
func (r LoadRecommendation) Guidance() string {
	switch r {
	case LoadIncrease:
		return "safe to load"
	case LoadMaintain:
		return "moderate load"
	case LoadReduce:
		return "light load or rest"
	default:
		return ""
	}
}

// Banner returns the banner severity used to render the tier.
func (r LoadRecommendation) Banner() BannerLevel {
	switch r {
	case LoadIncrease:
		return BannerSuccess
	case LoadMaintain:
		return BannerWarning
	default:
		return BannerError
	}
}
