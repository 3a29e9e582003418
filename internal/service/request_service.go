package service

import (
	"context"
	"errors"

	"blood-request-coordinator/internal/metrics"
	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/realtime"
	"blood-request-coordinator/internal/store"
	"blood-request-coordinator/internal/validation"
)

const msgRequestNotFound = "Blood request not found."

type RequestService struct {
	store store.Store
	// allowClosedEdits lets UpdateBloodRequest modify closed requests
	allowClosedEdits bool
	notifier
}

// NewRequestService rejects edits to closed requests unless allowClosedEdits
// is set.
func NewRequestService(st store.Store, feed realtime.Feed, allowClosedEdits bool) *RequestService {
	return &RequestService{
		store:            st,
		allowClosedEdits: allowClosedEdits,
		notifier:         notifier{feed: feed},
	}
}

// CreateBloodRequest validates payload, copies the hospital's current details
// into the new request and stores it as open.
func (s *RequestService) CreateBloodRequest(ctx context.Context, payload map[string]interface{}) (*models.BloodRequest, error) {
	input, err := validation.DecodeRequest(payload)
	if err != nil {
		return nil, invalid("Invalid data provided.", err)
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	var request *models.BloodRequest
	err = s.store.RunBatch(ctx, func(ctx context.Context, b store.Batch) error {
		hospital, err := b.GetHospital(ctx, input.HospitalID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Selected hospital does not exist.")
		}
		if err != nil {
			return err
		}

		request = &models.BloodRequest{
			HospitalID:       hospital.ID,
			HospitalName:     hospital.Name,
			HospitalLocality: hospital.Locality,
			HospitalPhone:    hospital.Phone,
			HospitalMapLink:  hospital.MapLink,
			BloodGroup:       input.BloodGroup,
			Units:            input.Units,
			Urgency:          input.Urgency,
			PatientName:      input.PatientName,
			PatientStory:     input.PatientStory,
			Status:           models.RequestOpen,
		}
		return b.CreateBloodRequest(ctx, request)
	})
	metrics.ObserveMutation("createBloodRequest", err)
	if err != nil {
		return nil, translate("createBloodRequest", err, "Failed to create blood request.")
	}

	s.publish(ctx, realtime.TopicBloodRequests)
	return request, nil
}

// UpdateBloodRequest overwrites units, urgency, patientName and patientStory.
// Closed requests are rejected unless closed edits are allowed.
func (s *RequestService) UpdateBloodRequest(ctx context.Context, id string, payload map[string]interface{}) error {
	input, err := validation.DecodeRequestUpdate(payload)
	if err != nil {
		return invalid("Invalid data provided.", err)
	}
	if s.store == nil {
		return ErrStoreUnavailable
	}

	err = s.store.RunBatch(ctx, func(ctx context.Context, b store.Batch) error {
		if !s.allowClosedEdits {
			current, err := b.GetBloodRequest(ctx, id)
			if err != nil {
				return err
			}
			if current.Status == models.RequestClosed {
				return conflict("Closed requests cannot be edited.")
			}
		}
		return b.UpdateBloodRequest(ctx, id, input.Patch())
	})
	metrics.ObserveMutation("updateBloodRequest", err)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(msgRequestNotFound)
	}
	if err != nil {
		return translate("updateBloodRequest", err, "Failed to update blood request.")
	}

	s.publish(ctx, realtime.TopicBloodRequests)
	return nil
}

// CloseBloodRequest marks the request closed. Closing a closed request
// succeeds and changes nothing.
func (s *RequestService) CloseBloodRequest(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}

	err := s.store.RunBatch(ctx, func(ctx context.Context, b store.Batch) error {
		return b.SetBloodRequestStatus(ctx, id, models.RequestClosed)
	})
	metrics.ObserveMutation("closeBloodRequest", err)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(msgRequestNotFound)
	}
	if err != nil {
		return translate("closeBloodRequest", err, "Failed to close blood request.")
	}

	s.publish(ctx, realtime.TopicBloodRequests)
	return nil
}

func (s *RequestService) DeleteBloodRequest(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}

	err := s.store.RunBatch(ctx, func(ctx context.Context, b store.Batch) error {
		return b.DeleteBloodRequest(ctx, id)
	})
	metrics.ObserveMutation("deleteBloodRequest", err)
	if err != nil {
		return translate("deleteBloodRequest", err, "Failed to delete blood request.")
	}

	s.publish(ctx, realtime.TopicBloodRequests)
	return nil
}
