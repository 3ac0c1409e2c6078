package models

// Form payloads. Numeric fields are parsed by the HTTP layer; range checks
// live in the validate tags.

type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type AddStudentRequest struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required,max=72"`
}

type SubmitRecordRequest struct {
	StudentID         int64   `validate:"required,gt=0"`
	Subject           string  `validate:"required,max=100"`
	Marks             int     `validate:"gte=0,lte=100"`
	AttendancePercent float64 `validate:"gte=0,lte=100"`
}
