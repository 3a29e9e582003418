// Package memory provides an in-memory implementation of the document store
// used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/store"

	"github.com/google/uuid"
)

// Compile-time contract assertions.
var (
	_ store.Store = (*Store)(nil)
	_ store.Batch = (*batch)(nil)
)

type state struct {
	hospitals map[string]models.Hospital
	requests  map[string]models.BloodRequest
	// insertion sequence, used as the tie-breaker for equal timestamps
	seq     map[string]uint64
	nextSeq uint64
}

func newState() state {
	return state{
		hospitals: make(map[string]models.Hospital),
		requests:  make(map[string]models.BloodRequest),
		seq:       make(map[string]uint64),
	}
}

func (s state) clone() state {
	out := newState()
	for id, h := range s.hospitals {
		out.hospitals[id] = h
	}
	for id, r := range s.requests {
		out.requests[id] = cloneRequest(r)
	}
	for id, n := range s.seq {
		out.seq[id] = n
	}
	out.nextSeq = s.nextSeq
	return out
}

func cloneRequest(r models.BloodRequest) models.BloodRequest {
	if r.CreatedAt != nil {
		t := *r.CreatedAt
		r.CreatedAt = &t
	}
	return r
}

// Store keeps hospitals and blood requests in process memory
type Store struct {
	mu    sync.RWMutex
	state state
	nowFn func() time.Time

	commitErr error
	readErr   error
}

// New returns an empty store
func New() *Store {
	return &Store{
		state: newState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock used to stamp createdAt
func (s *Store) SetClock(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// FailNextCommit makes the next RunBatch discard its writes and return err
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// FailReads makes every read return err until called again with nil
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// Put stores a request as-is, bypassing ID and timestamp assignment.
// Used to seed legacy documents.
func (s *Store) Put(request models.BloodRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextSeq++
	s.state.seq[request.ID] = s.state.nextSeq
	s.state.requests[request.ID] = cloneRequest(request)
}

func (s *Store) read(fn func(v *view) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.readErr != nil {
		return s.readErr
	}
	return fn(&view{state: &s.state})
}

// GetHospital returns a copy of the hospital or store.ErrNotFound
func (s *Store) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	var out *models.Hospital
	err := s.read(func(v *view) (err error) {
		out, err = v.GetHospital(ctx, id)
		return err
	})
	return out, err
}

// ListHospitals returns matching hospitals ordered by name
func (s *Store) ListHospitals(ctx context.Context, filter store.HospitalFilter) ([]models.Hospital, error) {
	var out []models.Hospital
	err := s.read(func(v *view) (err error) {
		out, err = v.ListHospitals(ctx, filter)
		return err
	})
	return out, err
}

// GetBloodRequest returns a copy of the request or store.ErrNotFound
func (s *Store) GetBloodRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	var out *models.BloodRequest
	err := s.read(func(v *view) (err error) {
		out, err = v.GetBloodRequest(ctx, id)
		return err
	})
	return out, err
}

// ListBloodRequests returns matching requests newest first. Requests
// without createdAt come last.
func (s *Store) ListBloodRequests(ctx context.Context, filter store.RequestFilter) ([]models.BloodRequest, error) {
	var out []models.BloodRequest
	err := s.read(func(v *view) (err error) {
		out, err = v.ListBloodRequests(ctx, filter)
		return err
	})
	return out, err
}

// RunBatch applies fn to a private copy of the state and swaps it in only
// when fn and the commit both succeed.
func (s *Store) RunBatch(ctx context.Context, fn func(ctx context.Context, b store.Batch) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &batch{
		view:  view{state: ptr(s.state.clone())},
		nowFn: s.nowFn,
	}
	if err := fn(ctx, b); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.commitErr != nil {
		err := s.commitErr
		s.commitErr = nil
		return fmt.Errorf("commit batch: %w", err)
	}

	s.state = *b.state
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

func ptr(st state) *state { return &st }

type view struct {
	state *state
}

func (v *view) GetHospital(_ context.Context, id string) (*models.Hospital, error) {
	h, ok := v.state.hospitals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &h, nil
}

func (v *view) ListHospitals(_ context.Context, filter store.HospitalFilter) ([]models.Hospital, error) {
	out := []models.Hospital{}
	for _, h := range v.state.hospitals {
		if filter.Matches(&h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (v *view) GetBloodRequest(_ context.Context, id string) (*models.BloodRequest, error) {
	r, ok := v.state.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r = cloneRequest(r)
	return &r, nil
}

func (v *view) ListBloodRequests(_ context.Context, filter store.RequestFilter) ([]models.BloodRequest, error) {
	out := []models.BloodRequest{}
	for _, r := range v.state.requests {
		if filter.Matches(&r) {
			out = append(out, cloneRequest(r))
		}
	}
	// newest insertion first, then a stable timestamp sort
	sort.Slice(out, func(i, j int) bool {
		return v.state.seq[out[i].ID] > v.state.seq[out[j].ID]
	})
	store.SortNewestFirst(out)
	return out, nil
}

type batch struct {
	view
	nowFn func() time.Time
}

func (b *batch) CreateHospital(_ context.Context, hospital *models.Hospital) error {
	hospital.ID = uuid.NewString()
	b.state.hospitals[hospital.ID] = *hospital
	return nil
}

func (b *batch) SetHospitalStatus(_ context.Context, id string, status models.HospitalStatus) error {
	h, ok := b.state.hospitals[id]
	if !ok {
		return store.ErrNotFound
	}
	h.Status = status
	b.state.hospitals[id] = h
	return nil
}

func (b *batch) DeleteHospital(_ context.Context, id string) error {
	delete(b.state.hospitals, id)
	return nil
}

func (b *batch) CreateBloodRequest(_ context.Context, request *models.BloodRequest) error {
	now := b.nowFn()
	request.ID = uuid.NewString()
	request.CreatedAt = &now
	b.state.nextSeq++
	b.state.seq[request.ID] = b.state.nextSeq
	b.state.requests[request.ID] = cloneRequest(*request)
	return nil
}

func (b *batch) UpdateBloodRequest(_ context.Context, id string, patch models.BloodRequestPatch) error {
	r, ok := b.state.requests[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Units = patch.Units
	r.Urgency = patch.Urgency
	r.PatientName = patch.PatientName
	r.PatientStory = patch.PatientStory
	b.state.requests[id] = r
	return nil
}

func (b *batch) SetBloodRequestStatus(_ context.Context, id string, status models.RequestStatus) error {
	r, ok := b.state.requests[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Status = status
	b.state.requests[id] = r
	return nil
}

func (b *batch) DeleteBloodRequest(_ context.Context, id string) error {
	delete(b.state.requests, id)
	delete(b.state.seq, id)
	return nil
}

func (b *batch) DeleteBloodRequestsByHospital(_ context.Context, hospitalID string) (int64, error) {
	var n int64
	for id, r := range b.state.requests {
		if r.HospitalID == hospitalID {
			delete(b.state.requests, id)
			delete(b.state.seq, id)
			n++
		}
	}
	return n, nil
}

func (b *batch) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(b.state.hospitals) + len(b.state.requests))
	fresh := newState()
	fresh.nextSeq = b.state.nextSeq
	*b.state = fresh
	return n, nil
}
