package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/RubachokBoss/exam-eligibility/internal/eligibility"
	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/rs/zerolog"
)

func newRecordFixture(t *testing.T) (*recordService, *fakeRecordRepo, *recordingPublisher, *models.User) {
	t.Helper()
	users := &fakeUserRepo{}
	records := newFakeRecordRepo()
	pub := &recordingPublisher{}
	seedUser(t, users, "teach", "pw", models.RoleTeacher)
	student := seedUser(t, users, "amy", "pw", models.RoleStudent)
	svc := NewRecordService(users, records, pub, zerolog.Nop()).(*recordService)
	return svc, records, pub, student
}

func TestSubmitRecordIdempotent(t *testing.T) {
	svc, records, pub, student := newRecordFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		req := &models.SubmitRecordRequest{StudentID: student.ID, Subject: "Math", Marks: 70, AttendancePercent: 80}
		if err := svc.SubmitRecord(ctx, req); err != nil {
			t.Fatalf("SubmitRecord() #%d error = %v", i+1, err)
		}
	}

	if n := records.markRows(student.ID, "Math"); n != 1 {
		t.Fatalf("mark rows for (amy, Math) = %d, want 1", n)
	}
	if len(pub.updated) != 2 || pub.updated[1].Status != eligibility.StatusEligible.String() {
		t.Fatalf("record events = %+v", pub.updated)
	}
}

func TestSubmitRecordUpdatesExistingRow(t *testing.T) {
	svc, _, _, student := newRecordFixture(t)
	ctx := context.Background()

	_ = svc.SubmitRecord(ctx, &models.SubmitRecordRequest{StudentID: student.ID, Subject: "Math", Marks: 20, AttendancePercent: 50})
	_ = svc.SubmitRecord(ctx, &models.SubmitRecordRequest{StudentID: student.ID, Subject: "Math", Marks: 90, AttendancePercent: 95})

	report, err := svc.StudentReport(ctx, student.ID)
	if err != nil {
		t.Fatalf("StudentReport() error = %v", err)
	}
	if len(report.Marks) != 1 || report.Marks[0].Marks != 90 || report.AttendancePercent != 95 {
		t.Fatalf("report = %+v", report)
	}
}

func TestSubmitRecordValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.SubmitRecordRequest
		want error
	}{
		{"missing subject", models.SubmitRecordRequest{StudentID: 2, Subject: " ", Marks: 50, AttendancePercent: 80}, ErrRecordFieldsRequired},
		{"missing student", models.SubmitRecordRequest{Subject: "Math", Marks: 50, AttendancePercent: 80}, ErrRecordFieldsRequired},
		{"marks above range", models.SubmitRecordRequest{StudentID: 2, Subject: "Math", Marks: 101, AttendancePercent: 80}, ErrInvalidRecord},
		{"marks below range", models.SubmitRecordRequest{StudentID: 2, Subject: "Math", Marks: -1, AttendancePercent: 80}, ErrInvalidRecord},
		{"attendance above range", models.SubmitRecordRequest{StudentID: 2, Subject: "Math", Marks: 50, AttendancePercent: 100.5}, ErrInvalidRecord},
		{"attendance NaN", models.SubmitRecordRequest{StudentID: 2, Subject: "Math", Marks: 50, AttendancePercent: math.NaN()}, ErrInvalidRecord},
		{"unknown student", models.SubmitRecordRequest{StudentID: 99, Subject: "Math", Marks: 50, AttendancePercent: 80}, ErrUnknownStudent},
		{"teacher id", models.SubmitRecordRequest{StudentID: 1, Subject: "Math", Marks: 50, AttendancePercent: 80}, ErrUnknownStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, records, _, _ := newRecordFixture(t)
			req := tt.req
			if err := svc.SubmitRecord(context.Background(), &req); !errors.Is(err, tt.want) {
				t.Fatalf("SubmitRecord() error = %v, want %v", err, tt.want)
			}
			if len(records.marks) != 0 || len(records.attendance) != 0 {
				t.Fatal("rejected submission was written")
			}
		})
	}
}

func TestSubmitRecordBoundaryValues(t *testing.T) {
	svc, _, _, student := newRecordFixture(t)
	for _, req := range []models.SubmitRecordRequest{
		{StudentID: student.ID, Subject: "Zero", Marks: 0, AttendancePercent: 0},
		{StudentID: student.ID, Subject: "Full", Marks: 100, AttendancePercent: 100},
	} {
		req := req
		if err := svc.SubmitRecord(context.Background(), &req); err != nil {
			t.Fatalf("SubmitRecord(%+v) error = %v", req, err)
		}
	}
}

func TestSubmitRecordStorageError(t *testing.T) {
	svc, records, pub, student := newRecordFixture(t)
	boom := errors.New("deadlock")
	records.saveErr = boom

	err := svc.SubmitRecord(context.Background(), &models.SubmitRecordRequest{StudentID: student.ID, Subject: "Math", Marks: 5, AttendancePercent: 5})
	if !errors.Is(err, boom) {
		t.Fatalf("SubmitRecord() error = %v, want %v", err, boom)
	}
	if len(pub.updated) != 0 {
		t.Fatal("event published for a failed submission")
	}
}

func TestUpsertMarksAndAttendance(t *testing.T) {
	svc, records, _, student := newRecordFixture(t)
	ctx := context.Background()

	if err := svc.UpsertMarks(ctx, student.ID, "Art", 101); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("UpsertMarks(101) error = %v", err)
	}
	if err := svc.UpsertAttendance(ctx, student.ID, -0.1); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("UpsertAttendance(-0.1) error = %v", err)
	}
	if err := svc.UpsertMarks(ctx, student.ID, "Art", 40); err != nil {
		t.Fatalf("UpsertMarks() error = %v", err)
	}
	if err := svc.UpsertMarks(ctx, student.ID, "Art", 40); err != nil {
		t.Fatalf("repeat UpsertMarks() error = %v", err)
	}
	if err := svc.UpsertAttendance(ctx, student.ID, 75); err != nil {
		t.Fatalf("UpsertAttendance() error = %v", err)
	}
	if n := records.markRows(student.ID, "Art"); n != 1 {
		t.Fatalf("mark rows = %d, want 1", n)
	}

	report, err := svc.StudentReport(ctx, student.ID)
	if err != nil {
		t.Fatalf("StudentReport() error = %v", err)
	}
	if report.Eligibility.Status != eligibility.StatusEligible {
		t.Fatalf("boundary 40/75 evaluated as %v", report.Eligibility.Status)
	}
}

func TestStudentReportScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed marks", func(t *testing.T) {
		svc, records, _, student := newRecordFixture(t)
		_ = records.UpsertMarks(ctx, student.ID, "Math", 35)
		_ = records.UpsertMarks(ctx, student.ID, "Science", 50)
		_ = records.UpsertAttendance(ctx, student.ID, 80)

		report, err := svc.StudentReport(ctx, student.ID)
		if err != nil {
			t.Fatalf("StudentReport() error = %v", err)
		}
		if report.Eligibility.Average != 42.5 || report.Eligibility.Status != eligibility.StatusEligible {
			t.Fatalf("eligibility = %+v", report.Eligibility)
		}
		if len(report.Eligibility.Reasons) != 0 {
			t.Fatalf("reasons = %v, want none", report.Eligibility.Reasons)
		}
	})

	t.Run("no marks", func(t *testing.T) {
		svc, records, _, student := newRecordFixture(t)
		_ = records.UpsertAttendance(ctx, student.ID, 90)

		report, err := svc.StudentReport(ctx, student.ID)
		if err != nil {
			t.Fatalf("StudentReport() error = %v", err)
		}
		if report.Eligibility.Average != 0 || report.Eligibility.Status != eligibility.StatusIneligible {
			t.Fatalf("eligibility = %+v", report.Eligibility)
		}
		if !reflect.DeepEqual(report.Eligibility.Reasons, []string{eligibility.ReasonLowMarks}) {
			t.Fatalf("reasons = %v", report.Eligibility.Reasons)
		}
		if report.Marks == nil {
			t.Fatal("Marks is nil, want empty slice")
		}
	})

	t.Run("unknown student", func(t *testing.T) {
		svc, _, _, _ := newRecordFixture(t)
		if _, err := svc.StudentReport(ctx, 404); !errors.Is(err, ErrUnknownStudent) {
			t.Fatalf("StudentReport(404) error = %v", err)
		}
	})
}
