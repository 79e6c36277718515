package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "clinicore"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// A lock holds its seat for the payment window; the admission lock only
	// covers the check-and-insert critical section.
	DefaultLockTTL          = 10 * time.Minute
	DefaultAdmissionLockTTL = 10 * time.Second
	DefaultSweepInterval    = 30 * time.Second

	DefaultMaxSlotRangeDays       = 60
	DefaultDefaultSlotDurationMin = 30
	DefaultDefaultSlotCapacity    = 5

	DefaultKafkaEventsEnabled = false

	DefaultPaginationLimit = 100
)
