package models

// HospitalStatus is the admin-controlled visibility state of a hospital
type HospitalStatus string

const (
	HospitalActive   HospitalStatus = "active"
	HospitalInactive HospitalStatus = "inactive"
)

// Valid reports whether s is one of the known hospital states
func (s HospitalStatus) Valid() bool {
	return s == HospitalActive || s == HospitalInactive
}

// Hospital represents an institution allowed to post blood requests once activated
type Hospital struct {
	ID       string         `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name     string         `gorm:"size:255;not null;index" json:"name" bson:"name"`
	Locality string         `gorm:"size:255;not null" json:"locality" bson:"locality"`
	Phone    string         `gorm:"size:12;not null" json:"phone" bson:"phone"`
	MapLink  string         `gorm:"size:2048" json:"mapLink,omitempty" bson:"mapLink,omitempty"`
	Status   HospitalStatus `gorm:"size:16;not null;default:'inactive';index" json:"status" bson:"status"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}
