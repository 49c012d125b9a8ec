package db

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPoolStats_Fields(t *testing.T) {
	stats := &PoolStats{
		TotalConns:      10,
		IdleConns:       5,
		AcquiredConns:   5,
		MaxConns:        20,
		AcquireCount:    100,
		AcquireDuration: "1.5s",
		Healthy:         true,
	}

	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["total_conns"] != float64(10) {
		t.Errorf("expected total_conns 10, got %v", decoded["total_conns"])
	}
	if decoded["acquire_duration"] != "1.5s" {
		t.Errorf("expected acquire_duration '1.5s', got %v", decoded["acquire_duration"])
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		setup      func() (Pinger, pgxmock.PgxPoolIface)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "storage disabled",
			setup:      func() (Pinger, pgxmock.PgxPoolIface) { return nil, nil },
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name: "database reachable",
			setup: func() (Pinger, pgxmock.PgxPoolIface) {
				mock, _ := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
				mock.ExpectPing()
				return mock, mock
			},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name: "database down",
			setup: func() (Pinger, pgxmock.PgxPoolIface) {
				mock, _ := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
				mock.ExpectPing().WillReturnError(errors.New("connection refused"))
				return mock, mock
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger, mock := tt.setup()
			if mock != nil {
				defer mock.Close()
			}

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := HealthHandler(pinger)(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if body["status"] != tt.wantBody {
				t.Errorf("expected status %q, got %v", tt.wantBody, body["status"])
			}

			if mock != nil {
				if err := mock.ExpectationsWereMet(); err != nil {
					t.Errorf("unmet expectations: %v", err)
				}
			}
		})
	}
}
