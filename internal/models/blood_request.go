package models

import "time"

// BloodGroup is one of the eight ABO/Rh groups
type BloodGroup string

const (
	APositive  BloodGroup = "A+"
	ANegative  BloodGroup = "A-"
	BPositive  BloodGroup = "B+"
	BNegative  BloodGroup = "B-"
	ABPositive BloodGroup = "AB+"
	ABNegative BloodGroup = "AB-"
	OPositive  BloodGroup = "O+"
	ONegative  BloodGroup = "O-"
)

// BloodGroups lists every accepted blood group in display order
var BloodGroups = []BloodGroup{
	APositive, ANegative, BPositive, BNegative,
	ABPositive, ABNegative, OPositive, ONegative,
}

// Valid reports whether g is a known blood group
func (g BloodGroup) Valid() bool {
	for _, known := range BloodGroups {
		if g == known {
			return true
		}
	}
	return false
}

// Urgency ranks how soon the units are needed
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyNormal   Urgency = "normal"
)

// Urgencies lists every urgency level, most urgent first
var Urgencies = []Urgency{UrgencyCritical, UrgencyHigh, UrgencyNormal}

// Valid reports whether u is a known urgency level
func (u Urgency) Valid() bool {
	return u == UrgencyCritical || u == UrgencyHigh || u == UrgencyNormal
}

// RequestStatus only ever moves from open to closed
type RequestStatus string

const (
	RequestOpen   RequestStatus = "open"
	RequestClosed RequestStatus = "closed"
)

// BloodRequest represents the blood_requests table.
// The Hospital* fields are copied from the hospital when the request is
// created and are never refreshed afterwards.
type BloodRequest struct {
	ID         string `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	HospitalID string `gorm:"size:36;not null;index:idx_requests_hospital_created,priority:1" json:"hospitalId" bson:"hospitalId"`

	HospitalName     string `gorm:"size:255;not null" json:"hospitalName" bson:"hospitalName"`
	HospitalLocality string `gorm:"size:255" json:"hospitalLocality" bson:"hospitalLocality"`
	HospitalPhone    string `gorm:"size:12" json:"hospitalPhone" bson:"hospitalPhone"`
	HospitalMapLink  string `gorm:"size:2048" json:"hospitalMapLink" bson:"hospitalMapLink"`

	BloodGroup   BloodGroup    `gorm:"size:3;not null;index" json:"bloodGroup" bson:"bloodGroup"`
	Units        int           `gorm:"not null" json:"units" bson:"units"`
	Urgency      Urgency       `gorm:"size:16;not null" json:"urgency" bson:"urgency"`
	PatientName  string        `gorm:"size:255;not null" json:"patientName" bson:"patientName"`
	PatientStory string        `gorm:"type:text" json:"patientStory,omitempty" bson:"patientStory,omitempty"`
	Status       RequestStatus `gorm:"size:16;not null;default:'open';index" json:"status" bson:"status"`

	// Nil only for legacy rows written before the store stamped it
	CreatedAt *time.Time `gorm:"index:idx_requests_hospital_created,priority:2" json:"createdAt" bson:"createdAt,omitempty"`
}

// TableName specifies the table name for BloodRequest model
func (BloodRequest) TableName() string {
	return "blood_requests"
}

// BloodRequestPatch holds the fields an existing request may change
type BloodRequestPatch struct {
	Units        int
	Urgency      Urgency
	PatientName  string
	PatientStory string
}
