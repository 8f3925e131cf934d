package domain

import "context"

// RechargeSource fetches nightly recharge readings for the holder of token.
type RechargeSource interface {
	FetchRecharges(ctx context.Context, token Token) ([]RecoveryReading, error)
}

// AssessmentPublisher forwards finished assessments to downstream consumers.
type AssessmentPublisher interface {
	Publish(ctx context.Context, a Assessment) error
}
