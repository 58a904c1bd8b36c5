package providers

import (
	"fmt"
	"time"

	"github.com/gookit/validate"

	"trainlog/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tags first, then the rules that span several fields.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	if cv.conf.Store.Driver != "memory" && cv.conf.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for driver %q", cv.conf.Store.Driver)
	}
	if tz := cv.conf.Analytics.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid analytics.timezone: %w", err)
		}
	}
	if cv.conf.Cache.Enabled && cv.conf.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// Location resolves analytics.timezone, falling back to the local zone.
func Location(conf *structures.Config) *time.Location {
	if conf.Analytics.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(conf.Analytics.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
