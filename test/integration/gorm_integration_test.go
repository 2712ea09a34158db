package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/repository/contract"
	"ai-casefile-be/internal/repository/specification"
	"ai-casefile-be/internal/repository/unitofwork"
	"ai-casefile-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.CaseRepository())
	assert.NotNil(t, uow.FindingRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Case Repository", func(t *testing.T) {
		count, err := uow.CaseRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Case count: %d", count)
	})

	t.Run("Check Finding Repository", func(t *testing.T) {
		count, err := uow.FindingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Finding count: %d", count)
	})
}

// TestCaseProgressRoundtrip writes a case bundle, updates its progress with
// the version CAS and verifies a stale version is rejected.
func TestCaseProgressRoundtrip(t *testing.T) {
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	hash := "not-a-real-hash"
	owner := &entity.User{
		Id:           uuid.New(),
		Email:        "it-" + uuid.NewString() + "@example.com",
		PasswordHash: &hash,
		FullName:     "Integration Tester",
		Role:         entity.UserRoleUser,
	}
	if err := uow.UserRepository().Create(ctx, owner); err != nil {
		t.Fatalf("Failed to create owner: %v", err)
	}

	seeded := &entity.Case{
		Id:            uuid.New(),
		OwnerId:       owner.Id,
		Title:         "Integration Case",
		Difficulty:    entity.DifficultyEasy,
		Status:        entity.CaseStatusActive,
		Story:         "story",
		EnhancedStory: "enhanced story",
		Intro:         "intro",
		Clues:         []entity.Clue{{Id: "c1", Title: "clue", Description: "desc", Importance: entity.ClueImportanceMinor}},
		Suspects:      []entity.Suspect{{Id: "s1", Name: "suspect", Description: "desc", Alibi: "alibi", Motive: "motive"}},
		Locations:     []entity.Location{{Id: "l1", Name: "location", Description: "desc"}},
		Tags:          []string{"integration"},
		Progress:      entity.NewInvestigationProgress(),
	}
	seeded.Progress.CurrentDay = 1

	if err := uow.CaseRepository().Create(ctx, seeded); err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}
	defer func() {
		_ = uow.CaseRepository().Delete(ctx, seeded.Id)
	}()

	loaded, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: seeded.Id})
	assert.NoError(t, err)
	if !assert.NotNil(t, loaded) {
		return
	}
	assert.Equal(t, seeded.Title, loaded.Title)
	assert.Len(t, loaded.Clues, 1)
	assert.Len(t, loaded.Locations, 1)

	progress := loaded.Progress
	progress.DiscoveredClues = append(progress.DiscoveredClues, "c1")

	err = uow.CaseRepository().UpdateProgress(ctx, loaded.Id, &progress, loaded.ProgressVersion)
	assert.NoError(t, err)

	// The same expected version again must now conflict.
	err = uow.CaseRepository().UpdateProgress(ctx, loaded.Id, &progress, loaded.ProgressVersion)
	assert.ErrorIs(t, err, contract.ErrProgressConflict)

	reloaded, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: loaded.Id})
	assert.NoError(t, err)
	if assert.NotNil(t, reloaded) {
		assert.Equal(t, loaded.ProgressVersion+1, reloaded.ProgressVersion)
		assert.Contains(t, reloaded.Progress.DiscoveredClues, "c1")
	}
}
