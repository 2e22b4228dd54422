package domain

import "time"

// Request bodies accepted by the JSON API and the page forms. Tags are checked by
// validation.Struct before anything reaches the backend.

type BookingRequest struct {
	DoctorID  string    `json:"doctorId" validate:"required"`
	ClinicID  string    `json:"clinicId,omitempty"`
	StartTime time.Time `json:"startTime"`
	Reason    string    `json:"reason,omitempty" validate:"max=500"`
}

type RescheduleRequest struct {
	StartTime time.Time `json:"startTime"`
	Reason    string    `json:"reason,omitempty" validate:"max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type StatusUpdate struct {
	Status AppointmentStatus `json:"status" validate:"required,oneof=pending confirmed checked_in completed cancelled rescheduled no_show"`
	Notes  string            `json:"notes,omitempty" validate:"max=2000"`
}

type UserInput struct {
	FullName    string `json:"fullName" validate:"required,person_name"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Role        Role   `json:"role" validate:"required,oneof=patient doctor assistant admin"`
	Password    string `json:"password,omitempty" validate:"omitempty,password_strength"`
}

type ClinicInput struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phone"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Status  string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type SendMessage struct {
	ConversationID string `json:"conversationId,omitempty"`
	RecipientID    string `json:"recipientId,omitempty"`
	Content        string `json:"content" validate:"required,max=2000"`
}

// LoginResult is what the backend returns for a successful login or OTP verification.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// PatientChart is the doctor's view of one patient.
type PatientChart struct {
	Patient      User            `json:"patient"`
	Records      []MedicalRecord `json:"records,omitempty"`
	Appointments []Appointment   `json:"appointments,omitempty"`
}

type UploadResult struct {
	URL string `json:"url"`
}
