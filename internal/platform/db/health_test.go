package db

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHealthHandler_NoPool(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/db", nil), rec)

	if err := HealthHandler(nil)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var body HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.Storage != StorageMemory || body.Pool != nil || body.Migrated != nil {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestPoolStats_JSONTags(t *testing.T) {
	b, err := json.Marshal(PoolStats{TotalConns: 3, MaxConns: 10, AcquireDuration: "1s"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"total_conns":3`, `"max_conns":10`, `"acquire_duration":"1s"`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("expected %s in %s", key, b)
		}
	}
}
