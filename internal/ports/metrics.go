package ports

import "time"

type Metrics interface {
	PointsAwarded(entryType string)
	RankingRequest(sortBy string, result string, elapsed time.Duration)
	Notification(notificationType string, result string)
	LevelCache(result string)
}
