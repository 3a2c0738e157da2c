package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mundox-portal-bff/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_RecordAudit(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	entry := &model.AuditEntry{
		At:         time.Now(),
		RequestID:  "req-1",
		Method:     "POST",
		Path:       "/api/lab-reservations",
		UserID:     "u1",
		Role:       "student",
		ClientIP:   "10.0.0.1",
		Status:     201,
		DurationMS: 12,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_entries"`)).
		WithArgs(Any{}, "req-1", "POST", "/api/lab-reservations", "u1", "student", "10.0.0.1", 201, int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	require.NoError(t, s.RecordAudit(context.Background(), entry))
	assert.Equal(t, int64(7), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_RecordSecurityEvent_Error(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "security_events"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.RecordSecurityEvent(context.Background(), &model.SecurityEvent{At: time.Now(), IP: "10.0.0.1", Kind: "suspicious"})
	assert.ErrorContains(t, err, "10.0.0.1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListSecurityEvents(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name   string
		filter SecurityEventFilter
		query  string
	}{
		{
			name:   "No filter",
			filter: SecurityEventFilter{},
			query:  `SELECT * FROM "security_events" ORDER BY at DESC,id DESC LIMIT`,
		},
		{
			name:   "IP and kind",
			filter: SecurityEventFilter{IP: "10.0.0.1", Kind: "rate_limited", Limit: 5000},
			query:  `SELECT * FROM "security_events" WHERE ip = $1 AND kind = $2 ORDER BY at DESC,id DESC LIMIT`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			mock.ExpectQuery(regexp.QuoteMeta(tc.query)).
				WillReturnRows(sqlmock.NewRows([]string{"id", "at", "ip", "kind", "key", "detail"}).
					AddRow(2, now, "10.0.0.1", "rate_limited", "api", "limit exceeded for api").
					AddRow(1, now.Add(-time.Minute), "10.0.0.1", "rate_limited", "api", "limit exceeded for api"))

			events, err := s.ListSecurityEvents(context.Background(), tc.filter)
			require.NoError(t, err)
			require.Len(t, events, 2)
			assert.Equal(t, int64(2), events[0].ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSecurityEventFilter_Limit(t *testing.T) {
	assert.Equal(t, DefaultEventLimit, SecurityEventFilter{}.limit())
	assert.Equal(t, 20, SecurityEventFilter{Limit: 20}.limit())
	assert.Equal(t, MaxEventLimit, SecurityEventFilter{Limit: 10000}.limit())
}

func TestGormStore_PushSubscriptions(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "push_subscriptions" .* ON CONFLICT \("endpoint"\) DO UPDATE SET`).
		WithArgs("https://push.example/1", "key", "secret", "admin-1", Any{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	require.NoError(t, s.UpsertPushSubscription(ctx, &model.PushSubscription{
		Endpoint: "https://push.example/1",
		P256DH:   "key",
		Auth:     "secret",
		UserID:   "admin-1",
	}))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "user_id"}).
			AddRow("https://push.example/1", "key", "secret", "admin-1"))
	subs, err := s.ListPushSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "key", subs[0].P256DH)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "push_subscriptions" WHERE endpoint = $1`)).
		WithArgs("https://push.example/1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, s.DeletePushSubscription(ctx, "https://push.example/1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
