package config

// ValidateForRun checks the configuration pieces the reconciliation service
// cannot start without.
func ValidateForRun(cfg *Config) error {
	if err := cfg.Redis.Validate(); err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	return nil
}
