package service

import (
	"context"
	"errors"
	"strings"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/realtime"
	"blood-request-coordinator/internal/store"
	"blood-request-coordinator/internal/validation"
)

const (
	msgRequestsFailed  = "Failed to fetch blood requests. Please check your network connection."
	msgRequestFailed   = "An error occurred while fetching the request."
	msgHospitalsFailed = "Failed to fetch hospitals. Please check your network connection."

	// MsgRequestMissing is shown when a point read finds nothing
	MsgRequestMissing = "The request you are looking for could not be found or may have been deleted."
)

// RequestQuery narrows a request list. Empty fields, and a value of "all",
// apply no filter.
type RequestQuery struct {
	HospitalID string
	BloodGroup string
}

func (q RequestQuery) hospitalID() string {
	return unlessAll(q.HospitalID)
}

func (q RequestQuery) bloodGroup() (models.BloodGroup, error) {
	raw := unlessAll(q.BloodGroup)
	if raw == "" {
		return "", nil
	}
	group := models.BloodGroup(raw)
	if !group.Valid() {
		return "", invalid("Invalid filter provided.", &validation.Error{Fields: map[string]string{
			"bloodGroup": "Please select a valid blood group.",
		}})
	}
	return group, nil
}

// unlessAll trims raw and maps the "all" choice to no filter
func unlessAll(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "all") {
		return ""
	}
	return raw
}

type QueryService struct {
	store store.Store
	feed  realtime.Feed
}

func NewQueryService(st store.Store, feed realtime.Feed) *QueryService {
	if feed == nil {
		feed = realtime.NewLocalFeed()
	}
	return &QueryService{store: st, feed: feed}
}

// PublicRequests lists open requests, newest first
func (s *QueryService) PublicRequests(ctx context.Context, q RequestQuery) ([]models.BloodRequest, error) {
	group, err := q.bloodGroup()
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	requests, err := s.store.ListBloodRequests(ctx, store.RequestFilter{
		HospitalID: q.hospitalID(),
		BloodGroup: group,
		Status:     models.RequestOpen,
	})
	if err != nil {
		return nil, translate("publicRequests", err, msgRequestsFailed)
	}
	return requests, nil
}

func dashboardFilter(hospitalID, bloodGroup string) (store.RequestFilter, error) {
	hospitalID = strings.TrimSpace(hospitalID)
	if hospitalID == "" {
		return store.RequestFilter{}, invalid("Invalid filter provided.", &validation.Error{Fields: map[string]string{
			"hospitalId": "Please select a hospital.",
		}})
	}
	group, err := RequestQuery{BloodGroup: bloodGroup}.bloodGroup()
	if err != nil {
		return store.RequestFilter{}, err
	}
	return store.RequestFilter{HospitalID: hospitalID, BloodGroup: group}, nil
}

// DashboardRequests lists every request of one hospital regardless of status.
// The list is re-sorted here so documents without createdAt never break the
// ordering.
func (s *QueryService) DashboardRequests(ctx context.Context, hospitalID, bloodGroup string) ([]models.BloodRequest, error) {
	filter, err := dashboardFilter(hospitalID, bloodGroup)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	requests, err := s.store.ListBloodRequests(ctx, filter)
	if err != nil {
		return nil, translate("dashboardRequests", err, msgRequestsFailed)
	}
	store.SortNewestFirst(requests)
	return requests, nil
}

// GetRequest returns nil without an error when the request does not exist
func (s *QueryService) GetRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	request, err := s.store.GetBloodRequest(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("getRequest", err, msgRequestFailed)
	}
	return request, nil
}

// ActiveHospitals lists hospitals that may post requests, by name
func (s *QueryService) ActiveHospitals(ctx context.Context) ([]models.Hospital, error) {
	return s.hospitals(ctx, "activeHospitals", store.HospitalFilter{Status: models.HospitalActive})
}

// AllHospitals lists every hospital by name
func (s *QueryService) AllHospitals(ctx context.Context) ([]models.Hospital, error) {
	return s.hospitals(ctx, "allHospitals", store.HospitalFilter{})
}

func (s *QueryService) hospitals(ctx context.Context, op string, filter store.HospitalFilter) ([]models.Hospital, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	hospitals, err := s.store.ListHospitals(ctx, filter)
	if err != nil {
		return nil, translate(op, err, msgHospitalsFailed)
	}
	return hospitals, nil
}

// WatchPublicRequests streams PublicRequests again after every request change
func (s *QueryService) WatchPublicRequests(ctx context.Context, q RequestQuery) (*realtime.Subscription[[]models.BloodRequest], error) {
	if _, err := q.bloodGroup(); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return realtime.Watch(ctx, s.feed, func(ctx context.Context) ([]models.BloodRequest, error) {
		return s.PublicRequests(ctx, q)
	}, realtime.TopicBloodRequests), nil
}

// WatchDashboardRequests streams one hospital's dashboard list
func (s *QueryService) WatchDashboardRequests(ctx context.Context, hospitalID, bloodGroup string) (*realtime.Subscription[[]models.BloodRequest], error) {
	if _, err := dashboardFilter(hospitalID, bloodGroup); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return realtime.Watch(ctx, s.feed, func(ctx context.Context) ([]models.BloodRequest, error) {
		return s.DashboardRequests(ctx, hospitalID, bloodGroup)
	}, realtime.TopicBloodRequests), nil
}

// WatchRequest delivers nil snapshots while the request does not exist
func (s *QueryService) WatchRequest(ctx context.Context, id string) (*realtime.Subscription[*models.BloodRequest], error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return realtime.Watch(ctx, s.feed, func(ctx context.Context) (*models.BloodRequest, error) {
		return s.GetRequest(ctx, id)
	}, realtime.TopicBloodRequests), nil
}

// WatchActiveHospitals streams the active hospitals after every hospital change
func (s *QueryService) WatchActiveHospitals(ctx context.Context) (*realtime.Subscription[[]models.Hospital], error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return realtime.Watch(ctx, s.feed, s.ActiveHospitals, realtime.TopicHospitals), nil
}

// WatchAllHospitals streams the admin hospital list
func (s *QueryService) WatchAllHospitals(ctx context.Context) (*realtime.Subscription[[]models.Hospital], error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return realtime.Watch(ctx, s.feed, s.AllHospitals, realtime.TopicHospitals), nil
}
