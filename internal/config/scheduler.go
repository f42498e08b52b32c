package config

import (
	"os"
	"strconv"
	"time"
)

const (
	startGraceMinutesEnv = "START_GRACE_MIN"
	runLockTTLSecondsEnv = "RUN_LOCK_TTL_SECONDS"
	slotMinutesEnv       = "SLOT_MINUTES"
	defaultTimezoneEnv   = "DEFAULT_TIMEZONE"

	defaultStartGraceMinutes = 15
	defaultRunLockTTLSeconds = 60
	defaultSlotMinutes       = 5
	defaultTimezone          = "UTC"
)

type SchedulerConfig struct {
	StartGraceMinutes int
	RunLockTTLSeconds int
	SlotMinutes       int
	DefaultTimezone   string
}

func LoadSchedulerConfig() *SchedulerConfig {
	startGrace := defaultStartGraceMinutes
	if v := os.Getenv(startGraceMinutesEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			startGrace = parsed
		}
	}

	lockTTL := defaultRunLockTTLSeconds
	if v := os.Getenv(runLockTTLSecondsEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			lockTTL = parsed
		}
	}

	slotMinutes := defaultSlotMinutes
	if v := os.Getenv(slotMinutesEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			slotMinutes = parsed
		}
	}

	timezone := os.Getenv(defaultTimezoneEnv)
	if timezone == "" {
		timezone = defaultTimezone
	}

	return &SchedulerConfig{
		StartGraceMinutes: startGrace,
		RunLockTTLSeconds: lockTTL,
		SlotMinutes:       slotMinutes,
		DefaultTimezone:   timezone,
	}
}

func (c *SchedulerConfig) StartGrace() time.Duration {
	return time.Duration(c.StartGraceMinutes) * time.Minute
}

func (c *SchedulerConfig) RunLockTTL() time.Duration {
	return time.Duration(c.RunLockTTLSeconds) * time.Second
}
