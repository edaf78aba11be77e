package response

// StatsResponse is the DTO for a crawl run's counters.
type StatsResponse struct {
	PagesCrawled  int64 `json:"pages_crawled"`
	RobotsBlocked int64 `json:"robots_blocked"`
	FetchErrors   int64 `json:"fetch_errors"`
	Enqueued      int64 `json:"enqueued"`
	FrontierSize  int64 `json:"frontier_size"`
	VisitedSize   int64 `json:"visited_size"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
