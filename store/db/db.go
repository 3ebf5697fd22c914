// Package db selects the concrete store driver from the profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/donna-ai/donna/internal/profile"
	"github.com/donna-ai/donna/store"
	"github.com/donna-ai/donna/store/db/postgres"
	"github.com/donna-ai/donna/store/db/sqlite"
)

// NewDBDriver creates a new db driver based on the profile. SQLite is
// the development default, PostgreSQL the production backend.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s (only 'sqlite' and 'postgres' are supported)", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
