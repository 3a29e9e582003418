// Package store defines the document store the service persists through:
// equality-filtered reads ordered by a single field, and atomic multi-document
// batches. Backends live in the gormstore, mongostore and memory packages.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"blood-request-coordinator/internal/models"
)

var (
	// ErrNotFound is returned by point reads and updates of missing documents
	ErrNotFound = errors.New("document not found")
	// ErrIndexRequired means the backend cannot serve the query shape
	ErrIndexRequired = errors.New("query requires an index")
	// ErrPermissionDenied means the backend refused the operation
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnavailable means the backend could not be reached
	ErrUnavailable = errors.New("store unavailable")
)

// HospitalFilter selects hospitals; zero fields are ignored. Results are
// ordered by name ascending.
type HospitalFilter struct {
	Name   string
	Status models.HospitalStatus
}

// RequestFilter selects blood requests; zero fields are ignored. Results are
// ordered by createdAt descending.
type RequestFilter struct {
	HospitalID string
	BloodGroup models.BloodGroup
	Status     models.RequestStatus
}

// Matches reports whether r satisfies every set field of f
func (f RequestFilter) Matches(r *models.BloodRequest) bool {
	if f.HospitalID != "" && r.HospitalID != f.HospitalID {
		return false
	}
	if f.BloodGroup != "" && r.BloodGroup != f.BloodGroup {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Matches reports whether h satisfies every set field of f
func (f HospitalFilter) Matches(h *models.Hospital) bool {
	if f.Name != "" && h.Name != f.Name {
		return false
	}
	if f.Status != "" && h.Status != f.Status {
		return false
	}
	return true
}

// Reader is the read side shared by Store and Batch
type Reader interface {
	GetHospital(ctx context.Context, id string) (*models.Hospital, error)
	ListHospitals(ctx context.Context, filter HospitalFilter) ([]models.Hospital, error)
	GetBloodRequest(ctx context.Context, id string) (*models.BloodRequest, error)
	ListBloodRequests(ctx context.Context, filter RequestFilter) ([]models.BloodRequest, error)
}

// Batch collects writes that commit together or not at all. Create calls
// assign the document ID (and createdAt for requests) before returning.
type Batch interface {
	Reader

	CreateHospital(ctx context.Context, hospital *models.Hospital) error
	SetHospitalStatus(ctx context.Context, id string, status models.HospitalStatus) error
	DeleteHospital(ctx context.Context, id string) error

	CreateBloodRequest(ctx context.Context, request *models.BloodRequest) error
	UpdateBloodRequest(ctx context.Context, id string, patch models.BloodRequestPatch) error
	SetBloodRequestStatus(ctx context.Context, id string, status models.RequestStatus) error
	DeleteBloodRequest(ctx context.Context, id string) error
	DeleteBloodRequestsByHospital(ctx context.Context, hospitalID string) (int64, error)

	// DeleteAll removes every hospital and blood request
	DeleteAll(ctx context.Context) (int64, error)
}

// Store is a document store handle
type Store interface {
	Reader

	// RunBatch runs fn and commits its writes atomically. Any error from fn
	// or from the commit discards every write.
	RunBatch(ctx context.Context, fn func(ctx context.Context, b Batch) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// SortNewestFirst orders requests by createdAt descending. Requests without a
// timestamp sort after the dated ones and keep their relative order.
func SortNewestFirst(requests []models.BloodRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		return createdAt(&requests[i]).After(createdAt(&requests[j]))
	})
}

func createdAt(r *models.BloodRequest) time.Time {
	if r.CreatedAt == nil {
		return time.Time{}
	}
	return *r.CreatedAt
}
