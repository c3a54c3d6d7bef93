package models

import "time"

// Appointment is a scheduled visit.
type Appointment struct {
	ID         string    `json:"id"`
	Doctor     string    `json:"doctor"`
	Specialty  string    `json:"specialty"`
	ScheduleAt time.Time `json:"scheduledAt"`
	Location   string    `json:"location"`
	Status     string    `json:"status"`
}

// LabResult is a single test result.
type LabResult struct {
	ID             string    `json:"id"`
	Test           string    `json:"test"`
	CollectedAt    time.Time `json:"collectedAt"`
	Value          string    `json:"value"`
	ReferenceRange string    `json:"referenceRange"`
	Status         string    `json:"status"`
}

// Prescription is an active or past medication order.
type Prescription struct {
	ID         string `json:"id"`
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Prescriber string `json:"prescriber"`
	Refills    int    `json:"refills"`
	Status     string `json:"status"`
}

// Message is a secure inbox message.
type Message struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Preview string    `json:"preview"`
	SentAt  time.Time `json:"sentAt"`
	Read    bool      `json:"read"`
}

// Document is a downloadable record.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	IssuedAt  time.Time `json:"issuedAt"`
	SizeBytes int64     `json:"sizeBytes"`
}

// Notification is a dashboard alert.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

// PortalData groups the read-only collections shown on the dashboard.
type PortalData struct {
	Appointments  []Appointment  `json:"appointments"`
	LabResults    []LabResult    `json:"labResults"`
	Prescriptions []Prescription `json:"prescriptions"`
	Messages      []Message      `json:"messages"`
	Documents     []Document     `json:"documents"`
	Notifications []Notification `json:"notifications"`
}

// Dashboard is everything the dashboard page renders.
type Dashboard struct {
	Profile        Profile    `json:"profile"`
	SessionExpiry  time.Time  `json:"sessionExpiry"`
	UnreadMessages int        `json:"unreadMessages"`
	UnreadAlerts   int        `json:"unreadAlerts"`
	Data           PortalData `json:"data"`
}
