package types

type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
)

func (p Period) Valid() bool {
	return p == PeriodMorning || p == PeriodAfternoon
}

// SlotIndex maps a period onto its half-day slot within a calendar day.
func (p Period) SlotIndex() int {
	if p == PeriodAfternoon {
		return 1
	}
	return 0
}
