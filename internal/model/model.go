package model

import (
	"encoding/json"
	"time"
)

// Role is the authorization scope of an account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleParent Role = "parent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleParent
}

// EventStatus is the semantic type of an attendance event.
type EventStatus string

const (
	StatusCheckIn  EventStatus = "check_in"
	StatusCheckOut EventStatus = "check_out"
)

// Presence is the day-scoped answer to "is the child here".
type Presence string

const (
	Present Presence = "present"
	Absent  Presence = "absent"
)

// User is a guardian, staff member, or admin account.
type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone,omitempty"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	IsActive          bool       `json:"is_active"`
	IsVerified        bool       `json:"is_verified"`
	VerificationToken string     `json:"-"`
	ResetToken        string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Child is an enrolled child owned by exactly one parent account.
// A child is scannable only while both IsApproved and IsActive hold.
type Child struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Birthdate  *time.Time `json:"birthdate,omitempty"`
	ParentID   int64      `json:"parent_id"`
	QRCode     string     `json:"qr_code,omitempty"`
	PhotoURL   string     `json:"photo_url,omitempty"`
	IsApproved bool       `json:"is_approved"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AttendanceEvent is an append-only entry/exit record. Events are never
// mutated or deleted; ordering is timestamp, ties broken by id.
type AttendanceEvent struct {
	ID        int64       `json:"id"`
	ChildID   int64       `json:"child_id"`
	StaffID   int64       `json:"staff_id"`
	Status    EventStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Notes     string      `json:"notes,omitempty"`
}

// DailyUpdate is a free-text/media activity record authored by staff.
type DailyUpdate struct {
	ID           int64     `json:"id"`
	ChildID      int64     `json:"child_id"`
	StaffID      int64     `json:"staff_id"`
	Note         string    `json:"note,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	VideoURL     string    `json:"video_url,omitempty"`
	ActivityType string    `json:"activity_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration statuses for the enrollment intake flow.
const (
	RegistrationPending  = "pending_review"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// RegistrationFile describes one uploaded attachment.
type RegistrationFile struct {
	OriginalName string `json:"original_name"`
	SavedName    string `json:"saved_name"`
	FilePath     string `json:"file_path"`
	FileType     string `json:"file_type"`
}

// ReviewNote is an admin note appended while reviewing a registration.
type ReviewNote struct {
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// Registration is a new-enrollment intake form submission.
type Registration struct {
	ID                 int64              `json:"id"`
	RegistrationNumber string             `json:"registration_number"`
	Status             string             `json:"status"`
	ChildName          string             `json:"child_name"`
	BirthDate          string             `json:"birth_date,omitempty"`
	Gender             string             `json:"gender,omitempty"`
	Nationality        string             `json:"nationality,omitempty"`
	BirthPlace         string             `json:"birth_place,omitempty"`
	ParentName         string             `json:"parent_name"`
	Relationship       string             `json:"relationship,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	EmergencyPhone     string             `json:"emergency_phone,omitempty"`
	Email              string             `json:"email,omitempty"`
	Address            string             `json:"address,omitempty"`
	Files              []RegistrationFile `json:"uploaded_files"`
	ReviewNotes        []ReviewNote       `json:"review_notes,omitempty"`
	SubmittedAt        time.Time          `json:"submission_date"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// FilesJSON marshals the attachment list for jsonb storage.
func (r *Registration) FilesJSON() ([]byte, error) {
	if r.Files == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Files)
}

// NotesJSON marshals the review notes for jsonb storage.
func (r *Registration) NotesJSON() ([]byte, error) {
	if r.ReviewNotes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.ReviewNotes)
}
