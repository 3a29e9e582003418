package mongostore

import (
	"context"
	"testing"
	"time"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestReads(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get hospital", func(mt *mtest.T) {
		s := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.hospitals", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "h1"},
			{Key: "name", Value: "Apollo Hospital"},
			{Key: "status", Value: "active"},
		}))

		h, err := s.GetHospital(context.Background(), "h1")
		require.NoError(mt, err)
		assert.Equal(mt, "Apollo Hospital", h.Name)
		assert.Equal(mt, models.HospitalActive, h.Status)
	})

	mt.Run("missing hospital", func(mt *mtest.T) {
		s := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.hospitals", mtest.FirstBatch))

		_, err := s.GetHospital(context.Background(), "nope")
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})

	mt.Run("list requests", func(mt *mtest.T) {
		s := New(mt.Client, mt.DB)
		created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.bloodRequests", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "r2"},
				{Key: "hospitalId", Value: "h1"},
				{Key: "bloodGroup", Value: "O-"},
				{Key: "units", Value: 2},
				{Key: "createdAt", Value: created},
			},
			bson.D{
				{Key: "_id", Value: "r1"},
				{Key: "hospitalId", Value: "h1"},
				{Key: "bloodGroup", Value: "A+"},
				{Key: "units", Value: 1},
			},
		))

		list, err := s.ListBloodRequests(context.Background(), store.RequestFilter{HospitalID: "h1"})
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "r2", list[0].ID)
		require.NotNil(mt, list[0].CreatedAt)
		assert.True(mt, created.Equal(*list[0].CreatedAt))
		assert.Nil(mt, list[1].CreatedAt)
	})

	mt.Run("unauthorized", func(mt *mtest.T) {
		s := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on db",
		}))

		_, err := s.ListHospitals(context.Background(), store.HospitalFilter{})
		assert.ErrorIs(mt, err, store.ErrPermissionDenied)
	})
}

func TestBatchWrites(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update of missing request", func(mt *mtest.T) {
		s := New(mt.Client, mt.DB)
		b := &batch{reader: s.reader, nowFn: s.nowFn}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := b.SetBloodRequestStatus(context.Background(), "missing", models.RequestClosed)
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})

	mt.Run("close is matched even when unchanged", func(mt *mtest.T) {
		s := New(mt.Client, mt.DB)
		b := &batch{reader: s.reader, nowFn: s.nowFn}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		err := b.SetBloodRequestStatus(context.Background(), "r1", models.RequestClosed)
		assert.NoError(mt, err)
	})

	mt.Run("cascade delete count", func(mt *mtest.T) {
		s := New(mt.Client, mt.DB)
		b := &batch{reader: s.reader, nowFn: s.nowFn}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		n, err := b.DeleteBloodRequestsByHospital(context.Background(), "h1")
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)
	})

	mt.Run("create stamps millisecond time", func(mt *mtest.T) {
		s := New(mt.Client, mt.DB)
		fixed := time.Date(2025, 3, 1, 8, 0, 0, 123456789, time.UTC)
		b := &batch{reader: s.reader, nowFn: func() time.Time { return fixed }}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		r := &models.BloodRequest{HospitalID: "h1", BloodGroup: models.APositive, Units: 1}
		require.NoError(mt, b.CreateBloodRequest(context.Background(), r))
		assert.NotEmpty(mt, r.ID)
		require.NotNil(mt, r.CreatedAt)
		assert.Equal(mt, fixed.Truncate(time.Millisecond), *r.CreatedAt)
	})
}
