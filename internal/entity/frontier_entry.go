package entity

// FrontierEntry is one unit of crawl work: a URL and the depth at which it
// was discovered. Entries are owned by the frontier queue until popped and
// are consumed exactly once.
type FrontierEntry struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
}
