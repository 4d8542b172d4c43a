package datalog

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/grow-controller/internal/logic"
)

const (
	insertReading = `INSERT INTO readings (id, recorded_at, temperature_c, humidity_pct)`
	insertEvent   = `INSERT INTO events (id, occurred_at, type, reason, until, message)`
)

func TestSQLiteWriteReading(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLite(db)
	ts := time.Date(2024, 5, 1, 8, 0, 2, 0, time.Local)

	mock.ExpectExec(regexp.QuoteMeta(insertReading)).
		WithArgs(sqlmock.AnyArg(), "2024-05-01 08:00:02", 21.5, 85.25).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertEvent)).
		WithArgs(sqlmock.AnyArg(), "2024-05-01 08:00:02", "READING", nil, nil,
			"Logging sensor data; Temperature: 21.5 C; Humidity: 85.2 %").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = s.Write(context.Background(), readingEvent(ts, 21.5, 85.25))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteWriteFanEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLite(db)
	until := logic.NewTimeOfDay(8, 4, 8)
	ev := logic.Event{
		Timestamp: time.Date(2024, 5, 1, 8, 4, 0, 0, time.Local),
		Type:      logic.EventFanOn,
		Reason:    logic.ReasonMistFlush,
		Until:     &until,
	}

	mock.ExpectExec(regexp.QuoteMeta(insertEvent)).
		WithArgs(sqlmock.AnyArg(), "2024-05-01 08:04:00", "FAN_ON", "MIST_FLUSH", "08:04:08",
			"Fan ON (MIST_FLUSH until 08:04:08)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Write(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLite(db)
	mock.ExpectExec(regexp.QuoteMeta(insertEvent)).
		WillReturnError(errors.New("disk I/O error"))

	err = s.Write(context.Background(), logic.Event{Timestamp: time.Now(), Type: logic.EventMisterOff})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert event")
}

func TestSQLiteRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "recorded_at", "temperature_c", "humidity_pct"}).
		AddRow("b", "2024-05-01 08:02:02", 21.0, 89.0).
		AddRow("a", "2024-05-01 08:00:02", 20.5, 91.0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, recorded_at, temperature_c, humidity_pct")).
		WithArgs(2).
		WillReturnRows(rows)

	got, err := NewSQLite(db).Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, 89.0, got[0].Humidity)
	assert.Equal(t, 20.5, got[1].Temperature)
}

func TestInitDBRoundTrip(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	s := NewSQLite(db)
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 8, 0, 2, 0, time.Local)
	require.NoError(t, s.Write(ctx, readingEvent(ts, 20.0, 80.0)))
	require.NoError(t, s.Write(ctx, readingEvent(ts.Add(2*time.Minute), 21.0, 82.0)))
	require.NoError(t, s.Write(ctx, logic.Event{Timestamp: ts, Type: logic.EventLightsOn}))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-05-01 08:02:02", got[0].RecordedAt)
	assert.Equal(t, 82.0, got[0].Humidity)

	var events int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM events").Scan(&events))
	assert.Equal(t, 3, events)
}
