package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/careervault/internal/logging"
	"github.com/dmitrijs2005/careervault/internal/server/config"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func stubOpenDB(t *testing.T, fn func(string) (*sql.DB, error)) {
	t.Helper()
	orig := openDB
	openDB = fn
	t.Cleanup(func() { openDB = orig })
}

func TestNewApp_UnknownLogBackend(t *testing.T) {
	c := testConfig()
	c.LogBackend = "syslog"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "logger init error")
}

func TestNewApp_OpenError(t *testing.T) {
	stubOpenDB(t, func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") })

	_, err := NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "db init error")
}

func TestNewApp_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()
	stubOpenDB(t, func(string) (*sql.DB, error) { return db, nil })

	_, err = NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "db ping error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MigrationError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	stubOpenDB(t, func(string) (*sql.DB, error) { return db, nil })

	_, err = NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "migrations error")
}

func TestProviderOptions_DisabledWithoutKey(t *testing.T) {
	c := testConfig()
	c.GeminiAPIKey = ""
	assert.Nil(t, providerOptions(context.Background(), c, logging.Nop()))
}

func TestNewExporter_DisabledWithoutBucket(t *testing.T) {
	c := testConfig()
	c.S3Bucket = ""
	assert.Nil(t, newExporter(context.Background(), c, logging.Nop()))
}

func TestMetricsServer_ServesPrometheus(t *testing.T) {
	srv := newMetricsServer(":0")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
