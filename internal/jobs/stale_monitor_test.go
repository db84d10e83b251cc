package jobs

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"prediction-escrow/internal/database"
	"prediction-escrow/internal/models"
	"prediction-escrow/internal/repository"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestStaleMonitorScan(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:stale_monitor?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	repo := repository.NewRepository(db)
	ctx := context.Background()
	now := int64(1_700_000_000)

	for _, c := range []*models.Competition{
		{Address: "a1", CompetitionID: "overdue", Creator: "x", Token: "SOL", EndTime: now - 10, Vault: "v1"},
		{Address: "a2", CompetitionID: "open", Creator: "x", Token: "SOL", EndTime: now + 10, Vault: "v2"},
		{Address: "a3", CompetitionID: "done", Creator: "x", Token: "SOL", EndTime: now - 10, Vault: "v3", State: models.CompetitionStateResolved},
		{Address: "a4", CompetitionID: "deadline", Creator: "x", Token: "SOL", EndTime: now, Vault: "v4"},
	} {
		if _, err := repo.InsertCompetition(ctx, c); err != nil {
			t.Fatalf("InsertCompetition failed: %v", err)
		}
	}

	m := NewStaleMonitor(repo, fixedClock{time.Unix(now, 0)}, zap.NewNop())
	stale, err := m.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(stale) != 1 || stale[0].CompetitionID != "overdue" {
		t.Fatalf("expected only the overdue competition, got %d", len(stale))
	}

	// the monitor never resolves
	c, _ := repo.GetCompetitionByID(ctx, "overdue")
	if c.State != models.CompetitionStateActive {
		t.Error("stale competition must stay active")
	}
}

func TestRunnerRejectsBadSpec(t *testing.T) {
	r := NewRunner(zap.NewNop(), context.Background())
	if _, err := r.Add("bad", "not a spec", func(context.Context) {}); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	if _, err := r.Add("ok", "0 */10 * * * *", func(context.Context) {}); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
}
