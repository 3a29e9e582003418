package gormstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type StoreTestSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store *Store
	now   time.Time
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	sqlDB, mock, err := sqlmock.New()
	s.Require().NoError(err)

	s.now = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return s.now },
	})
	s.Require().NoError(err)

	s.mock = mock
	s.store = New(db)
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *StoreTestSuite) TestListBloodRequestsFiltersAndOrders() {
	newer := s.now
	older := s.now.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "hospital_id", "blood_group", "units", "status", "created_at"}).
		AddRow("r2", "h1", "O-", 2, "open", newer).
		AddRow("r1", "h1", "A+", 1, "open", older)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `blood_requests` WHERE hospital_id = ? AND status = ? ORDER BY created_at DESC")).
		WithArgs("h1", models.RequestOpen).
		WillReturnRows(rows)

	list, err := s.store.ListBloodRequests(context.Background(), store.RequestFilter{
		HospitalID: "h1",
		Status:     models.RequestOpen,
	})
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("r2", list[0].ID)
	s.Equal(models.ONegative, list[0].BloodGroup)
	s.Equal(2, list[0].Units)
	s.Require().NotNil(list[1].CreatedAt)
	s.True(older.Equal(*list[1].CreatedAt))
}

func (s *StoreTestSuite) TestListBloodRequestsEmptyIsNotNil() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `blood_requests` ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := s.store.ListBloodRequests(context.Background(), store.RequestFilter{})
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *StoreTestSuite) TestListHospitalsNameIsCaseSensitive() {
	rows := sqlmock.NewRows([]string{"id", "name", "status"}).
		AddRow("h1", "Apollo Hospital", "active").
		AddRow("h2", "apollo hospital", "active")

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `hospitals` WHERE name = ? ORDER BY name ASC,id ASC")).
		WithArgs("Apollo Hospital").
		WillReturnRows(rows)

	list, err := s.store.ListHospitals(context.Background(), store.HospitalFilter{Name: "Apollo Hospital"})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("h1", list[0].ID)
}

func (s *StoreTestSuite) TestGetHospitalNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `hospitals` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := s.store.GetHospital(context.Background(), "missing")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *StoreTestSuite) TestCreateBloodRequestStampsStoreTime() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `blood_requests`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	request := &models.BloodRequest{
		HospitalID:  "h1",
		BloodGroup:  models.BPositive,
		Units:       3,
		Urgency:     models.UrgencyCritical,
		PatientName: "Ravi",
		Status:      models.RequestOpen,
	}
	err := s.store.RunBatch(context.Background(), func(ctx context.Context, b store.Batch) error {
		return b.CreateBloodRequest(ctx, request)
	})
	s.Require().NoError(err)
	s.NotEmpty(request.ID)
	s.Require().NotNil(request.CreatedAt)
	s.Equal(s.now, *request.CreatedAt)
}

func (s *StoreTestSuite) TestSetStatusOfMissingRequestRollsBack() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("UPDATE `blood_requests` SET `status`=? WHERE id = ?")).
		WithArgs(models.RequestClosed, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectRollback()

	err := s.store.RunBatch(context.Background(), func(ctx context.Context, b store.Batch) error {
		return b.SetBloodRequestStatus(ctx, "missing", models.RequestClosed)
	})
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *StoreTestSuite) TestCascadeDeleteCommitFailure() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `hospitals` WHERE id = ?")).
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `blood_requests` WHERE hospital_id = ?")).
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	s.mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	var removed int64
	err := s.store.RunBatch(context.Background(), func(ctx context.Context, b store.Batch) (err error) {
		if err = b.DeleteHospital(ctx, "h1"); err != nil {
			return err
		}
		removed, err = b.DeleteBloodRequestsByHospital(ctx, "h1")
		return err
	})
	s.Require().Error(err)
	s.Contains(err.Error(), "commit batch")
	s.Equal(int64(2), removed)
}

func (s *StoreTestSuite) TestPermissionDeniedIsClassified() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `blood_requests`")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1142, Message: "SELECT command denied"})

	_, err := s.store.ListBloodRequests(context.Background(), store.RequestFilter{})
	s.ErrorIs(err, store.ErrPermissionDenied)
}

func TestPostgresOrdersMissingCreatedAtLast(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "blood_requests" WHERE status = $1 ORDER BY created_at DESC NULLS LAST`)).
		WithArgs(models.RequestOpen).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at"}).
			AddRow("dated", "open", created).
			AddRow("legacy", "open", nil))

	list, err := New(db).ListBloodRequests(context.Background(), store.RequestFilter{Status: models.RequestOpen})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "dated", list[0].ID)
	assert.Nil(t, list[1].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassify(t *testing.T) {
	other := errors.New("syntax error")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"RecordNotFound", gorm.ErrRecordNotFound, store.ErrNotFound},
		{"MySQLTableAccess", &mysqldriver.MySQLError{Number: 1142}, store.ErrPermissionDenied},
		{"MySQLMissingKey", &mysqldriver.MySQLError{Number: 1176}, store.ErrIndexRequired},
		{"PostgresPrivilege", &pgconn.PgError{Code: "42501"}, store.ErrPermissionDenied},
		{"PostgresConnection", &pgconn.PgError{Code: "08006"}, store.ErrUnavailable},
		{"BadConn", driver.ErrBadConn, store.ErrUnavailable},
		{"Other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.NoError(t, classify("op", nil))
}
