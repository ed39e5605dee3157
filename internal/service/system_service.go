package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/database"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db        *sql.DB
	providers []string
}

// NewSystemService creates a new SystemService.
// providers names the price providers configured at startup; each is
// reported as a "provider_<name>" feature flag.
func NewSystemService(db *sql.DB, providers ...string) *SystemService {
	return &SystemService{
		db:        db,
		providers: providers,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(_ context.Context) error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application version, the applied schema
// migration and the enabled features.
func (s *SystemService) CheckVersion(ctx context.Context) (*model.VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	features := version.Features()
	for _, p := range s.providers {
		features["provider_"+p] = true
	}

	return &model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(dbVersion, 10),
		Features:   features,
	}, nil
}
