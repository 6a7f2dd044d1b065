package query

import (
	"iter"
	"slices"

	"github.com/asaidimu/go-sift/core/value"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// PreparedQuery is a parsed query together with its compiled filter.
type PreparedQuery struct {
	Source    string
	Query     *Query
	Predicate Predicate
}

// Matches reports whether v passes the filter of the prepared query.
// Pagination is not considered.
func (pq *PreparedQuery) Matches(v value.Value) bool {
	return Matches(pq.Predicate, v)
}

// Apply filters and paginates seq.
func (pq *PreparedQuery) Apply(seq iter.Seq[value.Value]) iter.Seq[value.Value] {
	return Paginate(FilterSeq(seq, pq.Predicate, Identity), pq.Query.Limit, pq.Query.Offset)
}

// Prepare compiles q without caching it.
func Prepare(q *Query) *PreparedQuery {
	if q == nil {
		q = &Query{}
	}
	return &PreparedQuery{Source: q.String(), Query: q, Predicate: Compile(q.Filter)}
}

// DefaultCacheSize is the number of prepared queries a Processor keeps when
// no size is given.
const DefaultCacheSize = 1024

// Processor parses and compiles query strings once and caches the result, so
// that hot query strings, such as the ones coming from an HTTP endpoint, are
// not parsed again on every request. The cache holds at most a fixed number of
// queries and evicts the least recently used one. It is safe for concurrent
// use.
type Processor struct {
	prepared *lru.Cache[string, *PreparedQuery]
	logger   *zap.Logger
}

// NewProcessor creates a new Processor instance with a cache of
// DefaultCacheSize queries.
func NewProcessor(logger *zap.Logger) *Processor {
	return NewProcessorWithSize(logger, DefaultCacheSize)
}

// NewProcessorWithSize creates a Processor caching at most size queries. A
// size of zero or less selects DefaultCacheSize.
func NewProcessorWithSize(logger *zap.Logger, size int) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size
	cache, _ := lru.New[string, *PreparedQuery](size)
	return &Processor{
		prepared: cache,
		logger:   logger,
	}
}

// Prepare returns the prepared form of the query string qs, parsing and
// compiling it on first use. Parse errors are not cached.
func (p *Processor) Prepare(qs string) (*PreparedQuery, error) {
	if pq, ok := p.prepared.Get(qs); ok {
		return pq, nil
	}

	q, err := Parse(qs)
	if err != nil {
		p.logger.Debug("Failed to parse query", zap.String("query", qs), zap.Error(err))
		return nil, err
	}
	pq := Prepare(q)
	pq.Source = qs

	if existing, ok, _ := p.prepared.PeekOrAdd(qs, pq); ok {
		return existing, nil
	}
	p.logger.Debug("Prepared query", zap.String("query", qs), zap.String("filter", q.String()))
	return pq, nil
}

// Match compiles e and evaluates it against v.
func (p *Processor) Match(e Expr, v value.Value) bool {
	return Matches(Compile(e), v)
}

// ProcessDocuments applies the query string qs to docs and returns the
// matching page.
func (p *Processor) ProcessDocuments(docs []value.Value, qs string) ([]value.Value, error) {
	pq, err := p.Prepare(qs)
	if err != nil {
		return nil, err
	}
	out := slices.Collect(pq.Apply(slices.Values(docs)))
	p.logger.Debug("Documents remaining after filter",
		zap.String("query", qs),
		zap.Int("input", len(docs)),
		zap.Int("count", len(out)))
	return out, nil
}

// Len returns the number of cached queries.
func (p *Processor) Len() int {
	return p.prepared.Len()
}

// Reset drops every cached query.
func (p *Processor) Reset() {
	p.prepared.Purge()
	p.logger.Info("Cleared prepared query cache")
}
