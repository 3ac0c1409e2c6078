// Package eligibility decides whether a student may sit the exam from their
// subject marks and attendance percentage.
package eligibility

const (
	// MinAverageMarks and MinAttendancePercent are inclusive lower bounds.
	MinAverageMarks      = 40.0
	MinAttendancePercent = 75.0

	ReasonLowMarks      = "Marks below 40%"
	ReasonLowAttendance = "Attendance below 75%"
)

type Status string

const (
	StatusEligible   Status = "Eligible"
	StatusIneligible Status = "Ineligible"
)

func (s Status) String() string {
	return string(s)
}

type SubjectMark struct {
	Subject string `json:"subject"`
	Marks   int    `json:"marks"`
}

type Result struct {
	Status  Status   `json:"status"`
	Reasons []string `json:"reasons"`
	Average float64  `json:"average"`
}

func (r Result) Eligible() bool {
	return r.Status == StatusEligible
}

// Average is zero for an empty list.
func Average(marks []SubjectMark) float64 {
	if len(marks) == 0 {
		return 0
	}
	total := 0
	for _, m := range marks {
		total += m.Marks
	}
	return float64(total) / float64(len(marks))
}

// Evaluate reports the reasons in a fixed order: marks first, then attendance.
func Evaluate(marks []SubjectMark, attendancePercent float64) Result {
	result := Result{
		Status:  StatusEligible,
		Reasons: []string{},
		Average: Average(marks),
	}

	if result.Average < MinAverageMarks {
		result.Status = StatusIneligible
		result.Reasons = append(result.Reasons, ReasonLowMarks)
	}
	if attendancePercent < MinAttendancePercent {
		result.Status = StatusIneligible
		result.Reasons = append(result.Reasons, ReasonLowAttendance)
	}

	return result
}
