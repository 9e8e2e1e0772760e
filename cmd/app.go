package cmd

import (
	"fmt"

	"github.com/ariebrainware/clinic-reservation/booking"
	"github.com/ariebrainware/clinic-reservation/config"
	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// openStore connects to the database, migrates the schema and seeds the
// configured doctors and the item catalogue.
func openStore() (*gorm.DB, config.Catalog, error) {
	catalog, err := config.LoadCatalog(cfg.ItemCatalogFile)
	if err != nil {
		return nil, config.Catalog{}, err
	}

	db, err := config.ConnectMySQL()
	if err != nil {
		return nil, config.Catalog{}, fmt.Errorf("connect database: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return nil, config.Catalog{}, fmt.Errorf("migrate: %w", err)
	}
	if err := model.SeedDoctors(db, cfg.Doctors); err != nil {
		return nil, config.Catalog{}, err
	}
	if err := model.SeedTreatmentItems(db, catalog.Items); err != nil {
		return nil, config.Catalog{}, err
	}
	return db, catalog, nil
}

func buildSettings(catalog config.Catalog) (booking.Settings, error) {
	grid, err := cfg.Grid()
	if err != nil {
		return booking.Settings{}, err
	}
	return booking.Settings{
		Grid:            grid,
		Policy:          cfg.Policy(),
		FallbackRules:   catalog.FallbackRules,
		MaxOverflowDays: cfg.MaxOverflowDays,
		ItemCacheTTL:    cfg.ItemCacheTTL,
	}, nil
}

// newService builds the booking service. With a Redis client the doctor
// lock is shared across instances.
func newService(db *gorm.DB, catalog config.Catalog, opts ...booking.Option) (*booking.Service, error) {
	settings, err := buildSettings(catalog)
	if err != nil {
		return nil, err
	}
	if rdb := config.GetRedisClient(); rdb != nil {
		log.Info().Msg("using Redis doctor locks")
		opts = append(opts, booking.WithLocker(booking.NewRedisLocker(rdb, 0)))
	}
	return booking.NewService(db, settings, opts...)
}
