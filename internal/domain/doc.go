// Package domain models ANS (autonomic nervous system) recovery readings and
// the training-load recommendation derived from them.
//
// # Data Sources
//
// Live readings come from the Polar AccessLink "nightly recharge" endpoint,
// which reports one record per night:
//
//	{"recharges": [{"date": "2024-01-01", "ans_charge": -5.0, "ans_charge_status": 2}]}
//
// ans_charge is a signed score relative to the user's own baseline.
// ans_charge_status is a 1–5 code describing it (see [DescribeStatus]).
// The API does not document the order of the list, so the latest reading is
// always chosen by date (see [Latest]), never by position.
//
// Synthetic readings are drawn uniformly from [30, 90) for the last N days and
// stand in for a 0–100 recovery score when no device data is available.
//
// # Load Tiers
//
// Both variants end in one of three recommendations:
//
//	Synthetic score:  >= 60 INCREASE | 40–60 MAINTAIN | < 40 REDUCE
//	Status code:      >= 4  INCREASE | 3     MAINTAIN | <= 2 REDUCE
//
// Status codes outside 1–5 still classify numerically (0 → REDUCE,
// 6 → INCREASE) while describing themselves as "unknown".
//
// # Secrets
//
// Bearer tokens travel as [Token], which redacts itself when printed, logged
// or marshalled. Use [Token.Reveal] only when building the outbound request.
package domain
