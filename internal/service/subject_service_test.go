package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/model"
)

func TestEnrollStudentByEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	student := e.addUser(t, "student", model.RoleStudent)
	subject := e.addSubject(t, teacher)

	entry, err := e.subjectSvc.EnrollStudent(ctx, teacher, subject, "student@example.com")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if entry.StudentID != student {
		t.Fatalf("enrolled %s, want %s", entry.StudentID, student)
	}

	if err := e.subjectSvc.RequireEnrollment(ctx, subject, student); err != nil {
		t.Fatalf("require enrollment: %v", err)
	}

	// Enrolling the same student again is a no-op.
	if _, err := e.subjectSvc.EnrollStudent(ctx, teacher, subject, "student@example.com"); err != nil {
		t.Fatalf("re-enroll: %v", err)
	}
	roster, err := e.subjectSvc.Roster(ctx, teacher, subject)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("expected 1 roster entry, got %d", len(roster))
	}
}

func TestEnrollRejectsTeacherAccounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	other := e.addUser(t, "colleague", model.RoleTeacher)
	subject := e.addSubject(t, teacher)
	_ = other

	_, err := e.subjectSvc.EnrollStudent(ctx, teacher, subject, "colleague@example.com")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestEnrollUnknownEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	subject := e.addSubject(t, teacher)

	_, err := e.subjectSvc.EnrollStudent(ctx, teacher, subject, "nobody@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnrollRequiresOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.addUser(t, "owner", model.RoleTeacher)
	intruder := e.addUser(t, "intruder", model.RoleTeacher)
	e.addUser(t, "student", model.RoleStudent)
	subject := e.addSubject(t, owner)

	_, err := e.subjectSvc.EnrollStudent(ctx, intruder, subject, "student@example.com")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRosterIsNameOrdered(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	zoe := e.addUser(t, "zoe", model.RoleStudent)
	ana := e.addUser(t, "ana", model.RoleStudent)
	mia := e.addUser(t, "mia", model.RoleStudent)
	subject := e.addSubject(t, teacher, zoe, ana, mia)

	roster, err := e.subjectSvc.Roster(ctx, teacher, subject)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(roster))
	}
	want := []string{"ana", "mia", "zoe"}
	for i, entry := range roster {
		if entry.Name != want[i] {
			t.Fatalf("roster[%d] = %s, want %s", i, entry.Name, want[i])
		}
	}
}

func TestRequireEnrollmentRejectsOutsiders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.addUser(t, "teacher", model.RoleTeacher)
	outsider := e.addUser(t, "outsider", model.RoleStudent)
	subject := e.addSubject(t, teacher)

	if err := e.subjectSvc.RequireEnrollment(ctx, subject, outsider); !errors.Is(err, domain.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}
