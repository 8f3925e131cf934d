package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Variant names where an assessment's readings came from.
type Variant string

const (
	VariantSynthetic Variant = "synthetic"
	VariantLive      Variant = "live"
)

// Assessment is the outcome of one render cycle: the latest reading and the
// recommendation derived from it.
type Assessment struct {
	ID             string             `json:"id"`
	Variant        Variant            `json:"variant"`
	Subject        string             `json:"subject,omitempty"`
	Latest         RecoveryReading    `json:"latest"`
	Delta          *float64           `json:"delta,omitempty"`
	DeltaText      string             `json:"delta_text,omitempty"`
	Status         *StatusDescriptor  `json:"status,omitempty"`
	Recommendation LoadRecommendation `json:"recommendation"`
	Guidance       string             `json:"guidance"`
	Banner         BannerLevel        `json:"banner"`
	AssessedAt     time.Time          `json:"assessed_at"`
}

// Report bundles an assessment with the series it was computed from and the
// free-text notes addressed to staff.
type Report struct {
	Assessment Assessment        `json:"assessment"`
	Series     []RecoveryReading `json:"series"`
	Notes      []string          `json:"notes"`
}

// AssessScores classifies the latest synthetic score for subject.
func AssessScores(subject string, series []RecoveryReading) (Assessment, error) {
	latest, err := Latest(series)
	if err != nil {
		return Assessment{}, err
	}
	a := newAssessment(VariantSynthetic, latest, ClassifyScore(latest.Value))
	a.Subject = subject
	if err := a.applyDelta(series); err != nil {
		return Assessment{}, err
	}
	return a, nil
}

// AssessRecharge classifies the latest recharge reading by its status code.
// Every reading must carry a status code.
func AssessRecharge(readings []RecoveryReading) (Assessment, error) {
	latest, err := Latest(readings)
	if err != nil {
		return Assessment{}, err
	}
	if latest.StatusCode == nil {
		return Assessment{}, fmt.Errorf("latest reading has no status code: %w", ErrMalformedResponse)
	}
	code := *latest.StatusCode
	a := newAssessment(VariantLive, latest, ClassifyStatus(code))
	status := DescribeStatus(code)
	a.Status = &status
	if err := a.applyDelta(readings); err != nil {
		return Assessment{}, err
	}
	return a, nil
}

func newAssessment(v Variant, latest RecoveryReading, rec LoadRecommendation) Assessment {
	return Assessment{
		ID:             uuid.NewString(),
		Variant:        v,
		Latest:         latest,
		Recommendation: rec,
		Guidance:       rec.Guidance(),
		Banner:         rec.Banner(),
		AssessedAt:     clock.Now().UTC(),
	}
}

// applyDelta sets the day-over-day delta when there is a previous reading.
func (a *Assessment) applyDelta(readings []RecoveryReading) error {
	d, err := Delta(readings)
	if errors.Is(err, ErrInsufficientData) {
		return nil
	}
	if err != nil {
		return err
	}
	rounded := RoundDelta(d)
	a.Delta = &rounded
	a.DeltaText = FormatDelta(d)
	return nil
}
