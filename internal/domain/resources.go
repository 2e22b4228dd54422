package domain

import "time"

type AppointmentStatus string

const (
	AppointmentPending     AppointmentStatus = "pending"
	AppointmentConfirmed   AppointmentStatus = "confirmed"
	AppointmentCheckedIn   AppointmentStatus = "checked_in"
	AppointmentCompleted   AppointmentStatus = "completed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
	AppointmentNoShow      AppointmentStatus = "no_show"
)

func IsValidAppointmentStatus(s string) bool {
	switch AppointmentStatus(s) {
	case AppointmentPending, AppointmentConfirmed, AppointmentCheckedIn, AppointmentCompleted,
		AppointmentCancelled, AppointmentRescheduled, AppointmentNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patientId"`
	PatientName string            `json:"patientName,omitempty"`
	DoctorID    string            `json:"doctorId"`
	DoctorName  string            `json:"doctorName,omitempty"`
	ClinicID    string            `json:"clinicId,omitempty"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Status      AppointmentStatus `json:"status"`
	Reason      string            `json:"reason,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

// TimeSlot is a bookable interval offered by a doctor.
type TimeSlot struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Available bool      `json:"available"`
}

type MedicalRecord struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	DoctorID    string    `json:"doctorId,omitempty"`
	DoctorName  string    `json:"doctorName,omitempty"`
	Diagnosis   string    `json:"diagnosis"`
	Description string    `json:"description,omitempty"`
	RecordDate  time.Time `json:"recordDate"`
	Attachments []string  `json:"attachments,omitempty"`
}

type LabResult struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	TestName   string    `json:"testName"`
	Result     string    `json:"result"`
	Unit       string    `json:"unit,omitempty"`
	RefRange   string    `json:"referenceRange,omitempty"`
	Status     string    `json:"status"`
	TestedAt   time.Time `json:"testedAt"`
	ReportFile string    `json:"reportFile,omitempty"`
}

type Prescription struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	DoctorName string    `json:"doctorName,omitempty"`
	Medication string    `json:"medication"`
	Dosage     string    `json:"dosage"`
	Frequency  string    `json:"frequency"`
	Duration   string    `json:"duration,omitempty"`
	Status     string    `json:"status"`
	IssuedAt   time.Time `json:"issuedAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName,omitempty"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	SentAt         time.Time `json:"sentAt"`
}

type Conversation struct {
	ID            string    `json:"id"`
	Participants  []User    `json:"participants,omitempty"`
	LastMessage   string    `json:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount   int       `json:"unreadCount"`
}

type Clinic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// DashboardStats is a loose bag of counters; each role's dashboard fills different keys.
type DashboardStats map[string]int

type PaginatedResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
