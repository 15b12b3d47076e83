package crawler

// Frontier tracks the URLs a crawl still has to visit and the ones it has
// already seen. It is owned by a single crawl and is not safe for concurrent
// use; the crawl loop runs from one goroutine.
type Frontier struct {
	visited map[string]struct{}
	queued  map[string]struct{}
	queue   []string
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		visited: make(map[string]struct{}),
		queued:  make(map[string]struct{}),
	}
}

// Enqueue adds a URL to the queue unless it was already visited or is already
// queued. Returns true if the URL was accepted.
func (f *Frontier) Enqueue(url string) bool {
	if _, ok := f.visited[url]; ok {
		return false
	}
	if _, ok := f.queued[url]; ok {
		return false
	}
	f.queued[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Next pops the oldest queued URL. The second return is false when the queue
// is empty.
func (f *Frontier) Next() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, url)
	return url, true
}

// MarkVisited records a URL as visited. Idempotent.
func (f *Frontier) MarkVisited(url string) {
	f.visited[url] = struct{}{}
}

// Visited reports whether a URL has been marked visited.
func (f *Frontier) Visited(url string) bool {
	_, ok := f.visited[url]
	return ok
}

// Len returns the number of URLs currently queued.
func (f *Frontier) Len() int {
	return len(f.queue)
}
