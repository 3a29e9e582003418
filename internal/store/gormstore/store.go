// Package gormstore implements the document store on a relational database
// through gorm. Each collection maps to one table.
package gormstore

import (
	"context"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	_ store.Store = (*Store)(nil)
	_ store.Batch = (*batch)(nil)
)

type Store struct {
	db *gorm.DB
	reader
}

// New wraps an open gorm handle
func New(db *gorm.DB) *Store {
	return &Store{db: db, reader: reader{db: db}}
}

// RunBatch runs fn inside a database transaction
func (s *Store) RunBatch(ctx context.Context, fn func(ctx context.Context, b store.Batch) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &batch{reader: reader{db: tx}})
	})
	if err == nil {
		return nil
	}
	return classify("commit batch", err)
}

// Ping checks the underlying connection pool
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return classify("ping", err)
	}
	return classify("ping", sqlDB.PingContext(ctx))
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type reader struct {
	db *gorm.DB
}

// GetHospital reads one row by primary key
func (r reader) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&hospital).Error
	if err != nil {
		return nil, classify("get hospital", err)
	}
	return &hospital, nil
}

// ListHospitals narrows by name in SQL and re-checks it in Go, since MySQL's
// default collation compares names case-insensitively.
func (r reader) ListHospitals(ctx context.Context, filter store.HospitalFilter) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	q := r.db.WithContext(ctx).Model(&models.Hospital{})
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Order("name ASC").Order("id ASC").Find(&hospitals).Error; err != nil {
		return nil, classify("list hospitals", err)
	}

	out := hospitals[:0]
	for i := range hospitals {
		if filter.Matches(&hospitals[i]) {
			out = append(out, hospitals[i])
		}
	}
	return out, nil
}

// GetBloodRequest reads one row by primary key
func (r reader) GetBloodRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	var request models.BloodRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&request).Error
	if err != nil {
		return nil, classify("get blood request", err)
	}
	return &request, nil
}

// ListBloodRequests filters with equality conditions and returns a non-nil
// slice ordered newest first
func (r reader) ListBloodRequests(ctx context.Context, filter store.RequestFilter) ([]models.BloodRequest, error) {
	requests := []models.BloodRequest{}
	q := r.db.WithContext(ctx).Model(&models.BloodRequest{})
	if filter.HospitalID != "" {
		q = q.Where("hospital_id = ?", filter.HospitalID)
	}
	if filter.BloodGroup != "" {
		q = q.Where("blood_group = ?", filter.BloodGroup)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Order(r.newestFirst()).Find(&requests).Error; err != nil {
		return nil, classify("list blood requests", err)
	}
	return requests, nil
}

// newestFirst orders by createdAt descending with rows lacking it last.
// Postgres puts NULLs first in descending order unless told otherwise.
func (r reader) newestFirst() string {
	if r.db.Dialector.Name() == "postgres" {
		return "created_at DESC NULLS LAST"
	}
	return "created_at DESC"
}

type batch struct {
	reader
}

func (b *batch) CreateHospital(ctx context.Context, hospital *models.Hospital) error {
	hospital.ID = uuid.NewString()
	return classify("create hospital", b.db.WithContext(ctx).Create(hospital).Error)
}

func (b *batch) SetHospitalStatus(ctx context.Context, id string, status models.HospitalStatus) error {
	res := b.db.WithContext(ctx).Model(&models.Hospital{}).
		Where("id = ?", id).
		Update("status", status)
	return updated("set hospital status", res)
}

func (b *batch) DeleteHospital(ctx context.Context, id string) error {
	err := b.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Hospital{}).Error
	return classify("delete hospital", err)
}

func (b *batch) CreateBloodRequest(ctx context.Context, request *models.BloodRequest) error {
	now := b.db.NowFunc()
	request.ID = uuid.NewString()
	request.CreatedAt = &now
	return classify("create blood request", b.db.WithContext(ctx).Create(request).Error)
}

func (b *batch) UpdateBloodRequest(ctx context.Context, id string, patch models.BloodRequestPatch) error {
	// a map so that an emptied patient story is written too
	res := b.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"units":         patch.Units,
			"urgency":       patch.Urgency,
			"patient_name":  patch.PatientName,
			"patient_story": patch.PatientStory,
		})
	return updated("update blood request", res)
}

func (b *batch) SetBloodRequestStatus(ctx context.Context, id string, status models.RequestStatus) error {
	res := b.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ?", id).
		Update("status", status)
	return updated("set blood request status", res)
}

func (b *batch) DeleteBloodRequest(ctx context.Context, id string) error {
	err := b.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BloodRequest{}).Error
	return classify("delete blood request", err)
}

func (b *batch) DeleteBloodRequestsByHospital(ctx context.Context, hospitalID string) (int64, error) {
	res := b.db.WithContext(ctx).Where("hospital_id = ?", hospitalID).Delete(&models.BloodRequest{})
	if res.Error != nil {
		return 0, classify("delete hospital requests", res.Error)
	}
	return res.RowsAffected, nil
}

func (b *batch) DeleteAll(ctx context.Context) (int64, error) {
	requests := b.db.WithContext(ctx).Where("1 = 1").Delete(&models.BloodRequest{})
	if requests.Error != nil {
		return 0, classify("delete all blood requests", requests.Error)
	}
	hospitals := b.db.WithContext(ctx).Where("1 = 1").Delete(&models.Hospital{})
	if hospitals.Error != nil {
		return 0, classify("delete all hospitals", hospitals.Error)
	}
	return requests.RowsAffected + hospitals.RowsAffected, nil
}

func updated(op string, res *gorm.DB) error {
	if res.Error != nil {
		return classify(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
