package models

const (
	RoutingKeyStudentCreated = "student.created"
	RoutingKeyRecordUpdated  = "record.updated"
)

type StudentCreatedEvent struct {
	StudentID int64  `json:"student_id"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

type RecordUpdatedEvent struct {
	StudentID         int64    `json:"student_id"`
	Subject           string   `json:"subject"`
	Marks             int      `json:"marks"`
	AttendancePercent float64  `json:"attendance_percent"`
	Status            string   `json:"status"`
	Reasons           []string `json:"reasons"`
	Timestamp         int64    `json:"timestamp"`
}
