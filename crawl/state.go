package crawl

// Entry is a page retained by the content cache.
type Entry struct {
	Title string
	Text  string
	Links []string
}

// State holds the bookkeeping of a crawl: the set of canonical URLs already
// visited and a cache of page content keyed by the same URLs.
//
// A State is owned by the caller and passed to Crawler.CrawlWithState.
// Visited URLs only ever grow during a crawl. ResetVisited clears them while
// keeping the cache, which lets a caller crawl again without refetching.
// State is not safe for concurrent use.
type State struct {
	visited map[string]bool
	cache   map[string]*Entry
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		visited: make(map[string]bool),
		cache:   make(map[string]*Entry),
	}
}

// Visit marks url as visited. It returns false if url was already visited.
func (s *State) Visit(url string) bool {
	if s.visited[url] {
		return false
	}
	s.visited[url] = true
	return true
}

// Visited reports whether url has been visited.
func (s *State) Visited(url string) bool {
	return s.visited[url]
}

// VisitedCount returns the number of visited URLs.
func (s *State) VisitedCount() int {
	return len(s.visited)
}

// ResetVisited forgets visited URLs. Cached content is kept.
func (s *State) ResetVisited() {
	s.visited = make(map[string]bool)
}

// Cached returns the cached entry for url.
func (s *State) Cached(url string) (*Entry, bool) {
	e, ok := s.cache[url]
	return e, ok
}

// Store caches the entry for url.
func (s *State) Store(url string, e *Entry) {
	s.cache[url] = e
}
