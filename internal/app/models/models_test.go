package models

import (
	"testing"
	"time"
)

func TestNewStudentFieldsDefaults(t *testing.T) {
	today := time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC)
	f := NewStudentFields(today)

	if f.EnrollmentDate != "2024-03-09" {
		t.Fatalf("enrollment date = %q", f.EnrollmentDate)
	}
	if !f.Active {
		t.Fatal("new records are active")
	}
	if f.FullName != "" || f.Email != "" || f.NationalID != "" || !f.BirthDate.IsZero() {
		t.Fatalf("required fields must start empty: %+v", f)
	}
}

func TestNormalizedTrims(t *testing.T) {
	f := StudentFields{FullName: "  Ana Silva ", BirthDate: " 2000-01-01", City: "\tLisboa\n"}.Normalized()
	if f.FullName != "Ana Silva" || f.BirthDate != "2000-01-01" || f.City != "Lisboa" {
		t.Fatalf("unexpected %+v", f)
	}
}

func TestDateTime(t *testing.T) {
	got, err := Date("2000-02-29").Time()
	if err != nil {
		t.Fatal(err)
	}
	if got.Year() != 2000 || got.Month() != time.February || got.Day() != 29 {
		t.Fatalf("got %v", got)
	}
	if _, err := Date("2001-02-29").Time(); err == nil {
		t.Fatal("expected error for non-existent date")
	}
}

func TestStatusLabel(t *testing.T) {
	s := &Student{StudentFields: StudentFields{Active: true}}
	if s.StatusLabel() != StatusActive {
		t.Fatal("active label")
	}
	s.Active = false
	if s.StatusLabel() != StatusInactive {
		t.Fatal("inactive label")
	}
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if !s.Active(now) {
		t.Fatal("fresh session should be active")
	}
	s.Revoked = true
	if s.Active(now) {
		t.Fatal("revoked session is not active")
	}
	var none *Session
	if none.Active(now) {
		t.Fatal("nil session is not active")
	}
}
