package domain

import "fmt"

// StaffNotes returns the guidance memo shown under a recommendation.
func StaffNotes(subject string) []string {
	if subject == "" {
		subject = "this patient"
	}
	return []string{
		fmt.Sprintf("Notes for staff (%s):", subject),
		"A higher ANS status means better physical and mental recovery, so a heavier rehabilitation load is possible.",
		"A sharp drop signals accumulated physiological fatigue, even when the patient says they feel fine.",
		"Avoiding forced overload on low days helps prevent falls and supports an earlier recovery.",
	}
}
