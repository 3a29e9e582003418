package service

import (
	"context"
	"errors"

	"blood-request-coordinator/internal/logging"
	"blood-request-coordinator/internal/metrics"
	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/realtime"
	"blood-request-coordinator/internal/store"
	"blood-request-coordinator/internal/validation"
)

type HospitalService struct {
	store store.Store
	names NameLock
	notifier
}

// NewHospitalService builds the admin-side hospital operations. st may be
// nil, in which case every call fails with ErrStoreUnavailable.
func NewHospitalService(st store.Store, feed realtime.Feed, names NameLock) *HospitalService {
	if names == nil {
		names = NewLocalNameLock()
	}
	return &HospitalService{
		store:    st,
		names:    names,
		notifier: notifier{feed: feed},
	}
}

// CreateHospital validates payload and inserts an inactive hospital. Names
// are unique by exact, case-sensitive comparison.
func (s *HospitalService) CreateHospital(ctx context.Context, payload map[string]interface{}) (*models.Hospital, error) {
	input, err := validation.DecodeHospital(payload)
	if err != nil {
		return nil, invalid("Invalid hospital details provided.", err)
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	unlock, err := s.names.Lock(ctx, input.Name)
	if err != nil {
		return nil, translate("createHospital", err, "Failed to add hospital.")
	}
	defer unlock()

	hospital := &models.Hospital{
		Name:     input.Name,
		Locality: input.Locality,
		Phone:    input.Phone,
		MapLink:  input.MapLink,
		Status:   models.HospitalInactive,
	}
	err = s.store.RunBatch(ctx, func(ctx context.Context, b store.Batch) error {
		existing, err := b.ListHospitals(ctx, store.HospitalFilter{Name: input.Name})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return conflict("Hospital with this name already exists.")
		}
		return b.CreateHospital(ctx, hospital)
	})
	metrics.ObserveMutation("createHospital", err)
	if err != nil {
		return nil, translate("createHospital", err, "Failed to add hospital.")
	}

	s.publish(ctx, realtime.TopicHospitals)
	return hospital, nil
}

// UpdateHospitalStatus changes only the status field
func (s *HospitalService) UpdateHospitalStatus(ctx context.Context, id string, status interface{}) error {
	parsed, err := validation.ParseHospitalStatus(status)
	if err != nil {
		return invalid("No valid status provided.", err)
	}
	if s.store == nil {
		return ErrStoreUnavailable
	}

	err = s.store.RunBatch(ctx, func(ctx context.Context, b store.Batch) error {
		return b.SetHospitalStatus(ctx, id, parsed)
	})
	metrics.ObserveMutation("updateHospitalStatus", err)
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Hospital not found.")
	}
	if err != nil {
		return translate("updateHospitalStatus", err, "Failed to update hospital.")
	}

	s.publish(ctx, realtime.TopicHospitals)
	return nil
}

// DeleteHospital removes the hospital and every request that references it
// in one batch. Either both disappear or neither does.
func (s *HospitalService) DeleteHospital(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}

	var removed int64
	err := s.store.RunBatch(ctx, func(ctx context.Context, b store.Batch) (err error) {
		if err = b.DeleteHospital(ctx, id); err != nil {
			return err
		}
		removed, err = b.DeleteBloodRequestsByHospital(ctx, id)
		return err
	})
	metrics.ObserveMutation("deleteHospital", err)
	if err != nil {
		return translate("deleteHospital", err, "Failed to delete hospital.")
	}

	logging.API.WithField("hospital_id", id).
		WithField("requests_removed", removed).
		Info("Deleted hospital and its requests")
	s.publish(ctx, realtime.TopicHospitals, realtime.TopicBloodRequests)
	return nil
}

// ResetDatabase deletes every hospital and blood request in one batch
func (s *HospitalService) ResetDatabase(ctx context.Context) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}

	var removed int64
	err := s.store.RunBatch(ctx, func(ctx context.Context, b store.Batch) (err error) {
		removed, err = b.DeleteAll(ctx)
		return err
	})
	metrics.ObserveMutation("resetDatabase", err)
	if err != nil {
		return translate("resetDatabase", err, "Failed to reset database.")
	}

	logging.API.WithField("documents_removed", removed).Warn("Database reset")
	s.publish(ctx, realtime.TopicHospitals, realtime.TopicBloodRequests)
	return nil
}
