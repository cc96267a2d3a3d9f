package events

import "time"

var DatasetRefreshedTopic = "DatasetRefreshedEvent"

// DatasetRefreshed is published after the full dataset snapshot has been replaced.
type DatasetRefreshed struct {
	Records   int
	FetchedAt time.Time
}
