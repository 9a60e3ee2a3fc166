//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ehr/emergency-view/internal/domain/emergency"
	"github.com/ehr/emergency-view/internal/domain/fullrecord"
	"github.com/ehr/emergency-view/internal/platform/db"
	"github.com/ehr/emergency-view/migrations"
)

func TestShareRepoPG(t *testing.T) {
	ctx := context.Background()
	repo := emergency.NewShareRepoPG(globalPool)
	token := uniqueToken("share")

	t.Run("Missing", func(t *testing.T) {
		if _, err := repo.GetByToken(ctx, token); !errors.Is(err, emergency.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PutAndGet", func(t *testing.T) {
		v := &emergency.View{PublicView: emergency.DemoRecord(), IsAuthenticated: true}
		if err := repo.Put(ctx, token, v); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := repo.GetByToken(ctx, token)
		if err != nil {
			t.Fatalf("GetByToken: %v", err)
		}
		if !got.IsAuthenticated {
			t.Error("expected is_authenticated to round trip")
		}
		if got.PublicView.BloodType == nil || *got.PublicView.BloodType != "A" {
			t.Errorf("unexpected blood type: %v", got.PublicView.BloodType)
		}
		if len(got.PublicView.Allergies) != 2 {
			t.Errorf("expected 2 allergies, got %d", len(got.PublicView.Allergies))
		}
	})

	t.Run("Replace", func(t *testing.T) {
		v := &emergency.View{PublicView: &emergency.Record{BloodType: ptrStr("O")}}
		if err := repo.Put(ctx, token, v); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := repo.GetByToken(ctx, token)
		if err != nil {
			t.Fatalf("GetByToken: %v", err)
		}
		if *got.PublicView.BloodType != "O" || got.IsAuthenticated {
			t.Errorf("expected replaced share, got %+v", got)
		}
	})

	t.Run("Revoked", func(t *testing.T) {
		if _, err := globalPool.Exec(ctx, `UPDATE emergency_share SET revoked_at = NOW() WHERE token = $1`, token); err != nil {
			t.Fatalf("revoke: %v", err)
		}
		if _, err := repo.GetByToken(ctx, token); !errors.Is(err, emergency.ErrNotFound) {
			t.Fatalf("expected revoked share hidden, got %v", err)
		}
		// sharing again lifts the revocation
		if err := repo.Put(ctx, token, &emergency.View{PublicView: &emergency.Record{}}); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if _, err := repo.GetByToken(ctx, token); err != nil {
			t.Fatalf("expected share restored, got %v", err)
		}
	})
}

func TestFullRecordPG(t *testing.T) {
	ctx := context.Background()
	src := fullrecord.NewPGSource(globalPool)
	token := uniqueToken("full")

	got, err := src.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Sections) != len(fullrecord.Reference().Sections) {
		t.Errorf("expected reference document for unknown token, got %d sections", len(got.Sections))
	}

	rec := &fullrecord.Record{Sections: []fullrecord.Section{
		{ID: "plan", Title: "Plan", Layout: fullrecord.LayoutSteps, Items: []fullrecord.Item{{Label: "Rest"}, {Label: "Hydrate"}}},
		{ID: "meds", Title: "Medications", Layout: fullrecord.LayoutList, Items: []fullrecord.Item{{Label: "Aspirin", Value: "81 mg"}}},
	}}
	if err := src.Put(ctx, token, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err = src.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Sections) != 2 || got.Sections[0].ID != "plan" || got.Sections[1].ID != "meds" {
		t.Fatalf("expected sections in stored order, got %+v", got.Sections)
	}
	if got.Sections[0].Layout != fullrecord.LayoutSteps || got.Sections[1].Items[0].Value != "81 mg" {
		t.Errorf("unexpected sections: %+v", got.Sections)
	}

	if err := src.Put(ctx, token, &fullrecord.Record{Sections: rec.Sections[1:]}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err = src.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Sections) != 1 {
		t.Errorf("expected Put to replace sections, got %d", len(got.Sections))
	}
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := db.NewMigrator(globalPool, migrations.FS)

	n, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	if n != 0 {
		t.Errorf("expected nothing left to apply, applied %d", n)
	}

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, s := range statuses {
		if !s.Applied || s.AppliedAt == nil {
			t.Errorf("migration %d not applied", s.Version)
		}
	}
}

func TestFetcher_PostgresBackedRecordAPI(t *testing.T) {
	ctx := context.Background()
	shares := emergency.NewShareRepoPG(globalPool)
	token := uniqueToken("api")
	if err := shares.Put(ctx, token, &emergency.View{PublicView: &emergency.Record{BloodType: ptrStr("B"), RhFactor: ptrStr("-")}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	e := echo.New()
	emergency.NewHandler(emergency.NewService(shares)).RegisterRoutes(e)
	ts := httptest.NewServer(e)
	defer ts.Close()

	f := emergency.NewFetcher(ts.URL)
	res := f.Fetch(ctx, token)
	if res.Source != emergency.SourceAPI {
		t.Fatalf("expected api source, got %s", res.Source)
	}
	if *res.Record.BloodType != "B" || *res.Record.RhFactor != "-" {
		t.Errorf("unexpected record: %+v", res.Record)
	}

	res = f.Fetch(ctx, uniqueToken("missing"))
	if res.Source != emergency.SourceFallback {
		t.Errorf("expected fallback for unknown token, got %s", res.Source)
	}
}

func TestHealthHandler_Migrated(t *testing.T) {
	e := echo.New()
	e.GET("/health/db", db.HealthHandler(globalPool))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest("GET", "/health/db", nil))

	var body db.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.Storage != db.StoragePostgres {
		t.Errorf("unexpected health: %+v", body)
	}
	if body.Migrated == nil || !*body.Migrated {
		t.Error("expected migrated schema")
	}
	if body.Pool == nil || body.Pool.MaxConns != 4 {
		t.Errorf("expected pool stats, got %+v", body.Pool)
	}
}
