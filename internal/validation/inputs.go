package validation

import (
	"fmt"
	"strings"

	"blood-request-coordinator/internal/models"
)

// HospitalInput is a validated hospital creation payload
type HospitalInput struct {
	Name     string `json:"name" validate:"min=3"`
	Locality string `json:"locality" validate:"min=3"`
	Phone    string `json:"phone" validate:"phone"`
	MapLink  string `json:"mapLink" validate:"omitempty,url"`
}

// RequestInput is a validated blood request creation payload
type RequestInput struct {
	HospitalID   string            `json:"hospitalId" validate:"required"`
	BloodGroup   models.BloodGroup `json:"bloodGroup" validate:"bloodgroup"`
	Units        int               `json:"units" validate:"gte=1"`
	Urgency      models.Urgency    `json:"urgency" validate:"urgency"`
	PatientName  string            `json:"patientName" validate:"required"`
	PatientStory string            `json:"patientStory"`
}

// RequestUpdateInput is a validated blood request edit payload. Blood group
// and hospital cannot change after creation so they are absent here.
type RequestUpdateInput struct {
	Units        int            `json:"units" validate:"gte=1"`
	Urgency      models.Urgency `json:"urgency" validate:"urgency"`
	PatientName  string         `json:"patientName" validate:"required"`
	PatientStory string         `json:"patientStory"`
}

// Patch converts the update into the store patch shape
func (in RequestUpdateInput) Patch() models.BloodRequestPatch {
	return models.BloodRequestPatch{
		Units:        in.Units,
		Urgency:      in.Urgency,
		PatientName:  in.PatientName,
		PatientStory: in.PatientStory,
	}
}

type rawHospital struct {
	Name     string `mapstructure:"name"`
	Locality string `mapstructure:"locality"`
	Phone    string `mapstructure:"phone"`
	MapLink  string `mapstructure:"mapLink"`
}

type rawRequest struct {
	HospitalID   string `mapstructure:"hospitalId"`
	BloodGroup   string `mapstructure:"bloodGroup"`
	Units        string `mapstructure:"units"`
	Urgency      string `mapstructure:"urgency"`
	PatientName  string `mapstructure:"patientName"`
	PatientStory string `mapstructure:"patientStory"`
}

// DecodeHospital validates a hospital creation payload
func DecodeHospital(payload map[string]interface{}) (HospitalInput, error) {
	verr := &Error{}
	var raw rawHospital
	decode(copyPayload(payload), &raw, verr)

	input := HospitalInput{
		Name:     raw.Name,
		Locality: raw.Locality,
		Phone:    raw.Phone,
		MapLink:  raw.MapLink,
	}
	check(input, verr)
	return input, verr.orNil()
}

// DecodeRequest validates a blood request creation payload
func DecodeRequest(payload map[string]interface{}) (RequestInput, error) {
	verr := &Error{}
	var raw rawRequest
	decode(copyPayload(payload), &raw, verr)

	units, unitsOK := CoerceUnits(raw.Units)
	input := RequestInput{
		HospitalID:   raw.HospitalID,
		BloodGroup:   models.BloodGroup(raw.BloodGroup),
		Units:        units,
		Urgency:      models.Urgency(raw.Urgency),
		PatientName:  raw.PatientName,
		PatientStory: raw.PatientStory,
	}
	markUnits(raw.Units, unitsOK, verr)
	check(input, verr)
	return input, verr.orNil()
}

// DecodeRequestUpdate validates the editable subset of a blood request
func DecodeRequestUpdate(payload map[string]interface{}) (RequestUpdateInput, error) {
	verr := &Error{}
	var raw rawRequest
	decode(copyPayload(payload), &raw, verr)

	units, unitsOK := CoerceUnits(raw.Units)
	input := RequestUpdateInput{
		Units:        units,
		Urgency:      models.Urgency(raw.Urgency),
		PatientName:  raw.PatientName,
		PatientStory: raw.PatientStory,
	}
	markUnits(raw.Units, unitsOK, verr)
	check(input, verr)
	return input, verr.orNil()
}

func markUnits(raw string, ok bool, verr *Error) {
	if ok || strings.TrimSpace(raw) == "" {
		return
	}
	verr.add("units", "Units must be a whole number.")
}

// ParseHospitalStatus validates a requested hospital status
func ParseHospitalStatus(raw interface{}) (models.HospitalStatus, error) {
	status := models.HospitalStatus(strings.TrimSpace(fmt.Sprint(raw)))
	if raw == nil || !status.Valid() {
		return "", &Error{Fields: map[string]string{"status": messages["status"]}}
	}
	return status, nil
}
