package utils

import "time"

// =============================================================================
// History Window Constants
// =============================================================================

const (
	// DailyHistoryWindow is the number of most recent daily points used by daily and weekly forecasts
	DailyHistoryWindow = 365

	// ExtendedHistoryWindow is the number of daily points used by extended forecasts
	ExtendedHistoryWindow = 730

	// TrainHistoryWindow is the number of daily points used by explicit training
	TrainHistoryWindow = 730

	// MinDailyPoints is the minimum number of cleaned points for daily and weekly forecasts
	MinDailyPoints = 2

	// MinExtendedPoints is the minimum number of cleaned points for extended forecasts
	MinExtendedPoints = 30

	// OutlierSigma is the z-score gate applied to a history window
	OutlierSigma = 3.0
)

// =============================================================================
// Horizon Limits
// =============================================================================

const (
	// MaxForecastDays bounds /forecast
	MaxForecastDays = 365

	// MaxExtendedMonths bounds /extended-forecast
	MaxExtendedMonths = 24

	// MaxWeeklyMonths bounds /forecast-weekly
	MaxWeeklyMonths = 12

	// DaysPerMonth converts month horizons to days
	DaysPerMonth = 30

	// WeekBucketSize and MonthBucketSize partition daily forecasts
	WeekBucketSize  = 7
	MonthBucketSize = 30

	// WeeksPerMonth labels weekly buckets with a month ordinal
	WeeksPerMonth = 4
)

// =============================================================================
// Pattern Analysis Constants
// =============================================================================

const (
	// PatternMinPoints is the minimum series length for a pattern summary
	PatternMinPoints = 10

	// PatternRecentDays is the size of the recent sub-window by date
	PatternRecentDays = 180

	// PatternMinRecentPoints triggers the positional fallback when the recent window is sparser
	PatternMinRecentPoints = 5

	// PatternFallbackRows is the positional sub-window size
	PatternFallbackRows = 30

	// PatternRecentPrices is the number of trailing prices reported
	PatternRecentPrices = 10

	// NaiveVolatilityRows is the trailing window used for persistence volatility
	NaiveVolatilityRows = 30
)

// =============================================================================
// History Browsing Constants
// =============================================================================

const (
	// RecentHistoryLimit is the number of records returned by /history/recent
	RecentHistoryLimit = 1000

	// TopSummaryCount is the number of commodities and types listed by /data-stats
	TopSummaryCount = 10

	// DateLayout is the wire format of calendar dates
	DateLayout = "2006-01-02"
)

// =============================================================================
// Timeout Constants
// =============================================================================

const (
	// DefaultShutdownTimeout bounds graceful HTTP shutdown
	DefaultShutdownTimeout = 10 * time.Second

	// KeepAliveInterval is the default delay between keep-alive pings
	KeepAliveInterval = 10 * time.Minute

	// KeepAliveRequestTimeout bounds a single keep-alive ping
	KeepAliveRequestTimeout = 30 * time.Second

	// KeepAliveMaxElapsed bounds retries of a single keep-alive ping
	KeepAliveMaxElapsed = 30 * time.Second

	// EventPublishTimeout bounds publishing a model event
	EventPublishTimeout = 5 * time.Second
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNone disables model events
	QueueTypeNone QueueType = "none"

	// QueueTypeNATS represents NATS JetStream
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents an in-process queue
	QueueTypeMemory QueueType = "memory"
)
