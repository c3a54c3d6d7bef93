// Package mockdata builds the static dashboard collections. Nothing here is
// persisted; every call returns fresh slices anchored at the given time.
package mockdata

import (
	"fmt"
	"time"

	"github.com/stjohnsmed/patientportal/internal/models"
)

// Location is the facility name used for appointments.
const Location = "St. John's Medical Center"

func day(now time.Time, offset int, hour, minute int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+offset, hour, minute, 0, 0, now.Location())
}

// Generate returns the dashboard collections for p as of now.
func Generate(now time.Time, p models.Profile) models.PortalData {
	greeting := p.FirstName
	if greeting == "" {
		greeting = "there"
	}

	return models.PortalData{
		Appointments: []models.Appointment{
			{ID: "APT-1001", Doctor: "Dr. Sarah Chen", Specialty: "Cardiology", ScheduleAt: day(now, 3, 9, 30), Location: Location + ", Building A", Status: "confirmed"},
			{ID: "APT-1002", Doctor: "Dr. Michael Rivera", Specialty: "Primary Care", ScheduleAt: day(now, 10, 14, 0), Location: Location + ", Building C", Status: "scheduled"},
			{ID: "APT-1003", Doctor: "Dr. Emily Watson", Specialty: "Dermatology", ScheduleAt: day(now, 24, 11, 15), Location: Location + ", Building B", Status: "pending"},
		},
		LabResults: []models.LabResult{
			{ID: "LAB-2001", Test: "Complete Blood Count", CollectedAt: day(now, -5, 8, 0), Value: "Within range", ReferenceRange: "See report", Status: "normal"},
			{ID: "LAB-2002", Test: "LDL Cholesterol", CollectedAt: day(now, -5, 8, 0), Value: "142 mg/dL", ReferenceRange: "< 100 mg/dL", Status: "high"},
			{ID: "LAB-2003", Test: "Hemoglobin A1c", CollectedAt: day(now, -32, 8, 15), Value: "5.4 %", ReferenceRange: "< 5.7 %", Status: "normal"},
		},
		Prescriptions: []models.Prescription{
			{ID: "RX-3001", Medication: "Atorvastatin", Dosage: "20 mg", Frequency: "Once daily", Prescriber: "Dr. Sarah Chen", Refills: 3, Status: "active"},
			{ID: "RX-3002", Medication: "Lisinopril", Dosage: "10 mg", Frequency: "Once daily", Prescriber: "Dr. Michael Rivera", Refills: 1, Status: "active"},
			{ID: "RX-3003", Medication: "Amoxicillin", Dosage: "500 mg", Frequency: "Three times daily", Prescriber: "Dr. Michael Rivera", Refills: 0, Status: "completed"},
		},
		Messages: []models.Message{
			{ID: "MSG-4001", From: "Dr. Sarah Chen", Subject: "Your recent lab results", Preview: fmt.Sprintf("Hi %s, I reviewed your cholesterol panel and", greeting), SentAt: day(now, -1, 16, 42), Read: false},
			{ID: "MSG-4002", From: "Billing Department", Subject: "Statement available", Preview: "Your latest statement is ready to view in Documents.", SentAt: day(now, -4, 10, 5), Read: false},
			{ID: "MSG-4003", From: "Dr. Michael Rivera", Subject: "Annual physical reminder", Preview: "It is time to schedule your annual physical.", SentAt: day(now, -12, 9, 0), Read: true},
		},
		Documents: []models.Document{
			{ID: "DOC-5001", Title: "Lab Report", Kind: "pdf", IssuedAt: day(now, -5, 12, 0), SizeBytes: 245760},
			{ID: "DOC-5002", Title: "Visit Summary", Kind: "pdf", IssuedAt: day(now, -30, 15, 30), SizeBytes: 131072},
			{ID: "DOC-5003", Title: "Immunization Record", Kind: "pdf", IssuedAt: day(now, -180, 9, 0), SizeBytes: 98304},
		},
		Notifications: []models.Notification{
			{ID: "NTF-6001", Title: "New lab results", Body: "Results from your blood work are available.", CreatedAt: day(now, -5, 12, 5), Read: false},
			{ID: "NTF-6002", Title: "Appointment reminder", Body: "Cardiology with Dr. Sarah Chen in 3 days.", CreatedAt: day(now, 0, 7, 0), Read: false},
			{ID: "NTF-6003", Title: "Prescription refill", Body: "Atorvastatin is ready for pickup.", CreatedAt: day(now, -2, 13, 20), Read: false},
			{ID: "NTF-6004", Title: "Profile updated", Body: "Your insurance details were saved.", CreatedAt: day(now, -14, 11, 0), Read: true},
		},
	}
}

// UnreadMessages counts unread messages.
func UnreadMessages(d models.PortalData) int {
	n := 0
	for _, m := range d.Messages {
		if !m.Read {
			n++
		}
	}
	return n
}

// UnreadNotifications counts unread notifications.
func UnreadNotifications(d models.PortalData) int {
	n := 0
	for _, m := range d.Notifications {
		if !m.Read {
			n++
		}
	}
	return n
}
