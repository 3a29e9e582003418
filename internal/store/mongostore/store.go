// Package mongostore implements the document store on MongoDB. Hospitals and
// blood requests live in the "hospitals" and "bloodRequests" collections.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"blood-request-coordinator/internal/logging"
	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	hospitalsCollection = "hospitals"
	requestsCollection  = "bloodRequests"
)

var (
	_ store.Store = (*Store)(nil)
	_ store.Batch = (*batch)(nil)
)

type Store struct {
	client *mongo.Client
	reader
	nowFn func() time.Time
}

// Open connects to uri, verifies the deployment answers and ensures the
// query indexes exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := New(client, client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logging.Store.WithField("database", database).Info("Connected to MongoDB")
	return s, nil
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client: client,
		reader: reader{
			hospitals: db.Collection(hospitalsCollection),
			requests:  db.Collection(requestsCollection),
		},
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the composite indexes the filtered, createdAt-ordered
// request queries need.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "hospitalId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "bloodGroup", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return classify("create request indexes", err)
	}
	_, err = s.hospitals.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "name", Value: 1}}},
	})
	return classify("create hospital indexes", err)
}

// RunBatch runs fn inside a multi-document transaction. The driver may call
// fn more than once on transient transaction errors.
func (s *Store) RunBatch(ctx context.Context, fn func(ctx context.Context, b store.Batch) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return classify("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &batch{reader: s.reader, nowFn: s.nowFn})
	})
	if err == nil {
		return nil
	}
	return classify("commit batch", err)
}

func (s *Store) Ping(ctx context.Context) error {
	return classify("ping", s.client.Ping(ctx, nil))
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type reader struct {
	hospitals *mongo.Collection
	requests  *mongo.Collection
}

func (r reader) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	var hospital models.Hospital
	if err := r.hospitals.FindOne(ctx, bson.M{"_id": id}).Decode(&hospital); err != nil {
		return nil, classify("get hospital", err)
	}
	return &hospital, nil
}

func (r reader) ListHospitals(ctx context.Context, filter store.HospitalFilter) ([]models.Hospital, error) {
	query := bson.D{}
	if filter.Name != "" {
		query = append(query, bson.E{Key: "name", Value: filter.Name})
	}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.hospitals.Find(ctx, query, opts)
	if err != nil {
		return nil, classify("list hospitals", err)
	}

	hospitals := []models.Hospital{}
	if err := cursor.All(ctx, &hospitals); err != nil {
		return nil, classify("decode hospitals", err)
	}
	return hospitals, nil
}

func (r reader) GetBloodRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	var request models.BloodRequest
	if err := r.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&request); err != nil {
		return nil, classify("get blood request", err)
	}
	return &request, nil
}

func (r reader) ListBloodRequests(ctx context.Context, filter store.RequestFilter) ([]models.BloodRequest, error) {
	query := bson.D{}
	if filter.HospitalID != "" {
		query = append(query, bson.E{Key: "hospitalId", Value: filter.HospitalID})
	}
	if filter.BloodGroup != "" {
		query = append(query, bson.E{Key: "bloodGroup", Value: filter.BloodGroup})
	}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}

	// documents without createdAt sort last in descending order
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.requests.Find(ctx, query, opts)
	if err != nil {
		return nil, classify("list blood requests", err)
	}

	requests := []models.BloodRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, classify("decode blood requests", err)
	}
	return requests, nil
}

type batch struct {
	reader
	nowFn func() time.Time
}

func (b *batch) CreateHospital(ctx context.Context, hospital *models.Hospital) error {
	hospital.ID = uuid.NewString()
	_, err := b.hospitals.InsertOne(ctx, hospital)
	return classify("create hospital", err)
}

func (b *batch) SetHospitalStatus(ctx context.Context, id string, status models.HospitalStatus) error {
	res, err := b.hospitals.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	return matched("set hospital status", res, err)
}

func (b *batch) DeleteHospital(ctx context.Context, id string) error {
	_, err := b.hospitals.DeleteOne(ctx, bson.M{"_id": id})
	return classify("delete hospital", err)
}

func (b *batch) CreateBloodRequest(ctx context.Context, request *models.BloodRequest) error {
	// BSON dates keep millisecond precision
	now := b.nowFn().Truncate(time.Millisecond)
	request.ID = uuid.NewString()
	request.CreatedAt = &now
	_, err := b.requests.InsertOne(ctx, request)
	return classify("create blood request", err)
}

func (b *batch) UpdateBloodRequest(ctx context.Context, id string, patch models.BloodRequestPatch) error {
	res, err := b.requests.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"units":        patch.Units,
		"urgency":      patch.Urgency,
		"patientName":  patch.PatientName,
		"patientStory": patch.PatientStory,
	}})
	return matched("update blood request", res, err)
}

func (b *batch) SetBloodRequestStatus(ctx context.Context, id string, status models.RequestStatus) error {
	res, err := b.requests.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	return matched("set blood request status", res, err)
}

func (b *batch) DeleteBloodRequest(ctx context.Context, id string) error {
	_, err := b.requests.DeleteOne(ctx, bson.M{"_id": id})
	return classify("delete blood request", err)
}

func (b *batch) DeleteBloodRequestsByHospital(ctx context.Context, hospitalID string) (int64, error) {
	res, err := b.requests.DeleteMany(ctx, bson.M{"hospitalId": hospitalID})
	if err != nil {
		return 0, classify("delete hospital requests", err)
	}
	return res.DeletedCount, nil
}

func (b *batch) DeleteAll(ctx context.Context) (int64, error) {
	requests, err := b.requests.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, classify("delete all blood requests", err)
	}
	hospitals, err := b.hospitals.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, classify("delete all hospitals", err)
	}
	return requests.DeletedCount + hospitals.DeletedCount, nil
}

func matched(op string, res *mongo.UpdateResult, err error) error {
	if err != nil {
		return classify(op, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
