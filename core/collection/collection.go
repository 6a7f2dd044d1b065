// Package collection provides an in-process document store for value.Value
// documents. Documents are kept in insertion order under generated ids and
// are queried with the expressions and query strings of the query package.
package collection

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-sift/core/query"
	"github.com/asaidimu/go-sift/core/value"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrDocumentNotFound is returned when no document has the requested id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument is returned for documents that are not maps.
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is a stored value together with its id.
type Document struct {
	ID    string      `json:"id"`
	Value value.Value `json:"value"`
}

func documentView(d Document) value.Value { return d.Value }

// Options configures a Collection.
type Options struct {
	Name          string
	Logger        *zap.Logger
	DisableEvents bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Name: "default"}
}

// Collection stores documents in memory and answers queries over them. It is
// safe for concurrent use. Queries run over a snapshot taken when they start,
// so writers are never blocked by a slow reader.
type Collection struct {
	name      string
	logger    *zap.Logger
	processor *query.Processor
	bus       *events.TypedEventBus[Event]

	mu    sync.RWMutex
	docs  map[string]value.Value
	order []string

	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// New creates an empty collection.
func New(opts Options) (*Collection, error) {
	if opts.Name == "" {
		opts.Name = DefaultOptions().Name
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Collection{
		name:          opts.Name,
		logger:        opts.Logger.With(zap.String("collection", opts.Name)),
		processor:     query.NewProcessor(opts.Logger),
		docs:          make(map[string]value.Value),
		subscriptions: make(map[string]*SubscriptionInfo),
	}

	if !opts.DisableEvents {
		bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("could not initialize event bus: %w", err)
		}
		c.bus = bus
	}
	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Insert stores copies of docs and returns their new ids in the same order.
// Only Map documents are accepted; if any document is invalid nothing is
// stored. Later changes to docs by the caller do not reach the collection.
func (c *Collection) Insert(docs ...value.Value) ([]string, error) {
	for i, doc := range docs {
		if _, ok := doc.(value.Map); !ok {
			err := fmt.Errorf("%w: document %d is a %s, expected a map", ErrInvalidDocument, i, kindOf(doc))
			c.logger.Debug("Rejected insert", zap.Error(err))
			return nil, err
		}
	}

	ids := make([]string, len(docs))
	c.mu.Lock()
	for i, doc := range docs {
		id := uuid.New().String()
		c.docs[id] = value.Clone(doc)
		c.order = append(c.order, id)
		ids[i] = id
	}
	c.mu.Unlock()

	c.logger.Debug("Inserted documents", zap.Int("count", len(ids)))
	c.emit(createEvent(DocumentCreate, "insert", c.name, len(docs), ids, "", nil, time.Time{}))
	return ids, nil
}

// Get returns a copy of the document stored under id.
func (c *Collection) Get(id string) (value.Value, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return value.Clone(doc), nil
}

// Update merges patch into the document stored under id with value.Merge
// and returns a copy of the result.
func (c *Collection) Update(id string, patch value.Value) (value.Value, error) {
	if _, ok := patch.(value.Map); !ok {
		return nil, fmt.Errorf("%w: patch is a %s, expected a map", ErrInvalidDocument, kindOf(patch))
	}

	c.mu.Lock()
	doc, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	merged := value.Merge(doc, value.Clone(patch))
	c.docs[id] = merged
	c.mu.Unlock()

	c.emit(createEvent(DocumentUpdate, "update", c.name, id, nil, "", nil, time.Time{}))
	return value.Clone(merged), nil
}

// Delete removes the document stored under id.
func (c *Collection) Delete(id string) error {
	c.mu.Lock()
	if _, ok := c.docs[id]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	c.mu.Unlock()

	c.emit(createEvent(DocumentDelete, "delete", c.name, id, 1, "", nil, time.Time{}))
	return nil
}

// All returns an iterator over a snapshot of every document in insertion
// order. Yielded documents are copies.
func (c *Collection) All() iter.Seq[Document] {
	docs := c.snapshot()
	return func(yield func(Document) bool) {
		for _, doc := range docs {
			if !yield(cloneDocument(doc)) {
				return
			}
		}
	}
}

// Find returns the documents matching q, after its offset and limit are
// applied. A nil q returns every document. The context is checked between
// documents.
func (c *Collection) Find(ctx context.Context, q *query.Query) ([]Document, error) {
	start := time.Now()
	rendered := q.String()

	var scanErr error
	var out []Document
	for doc := range query.Select(c.scan(ctx, &scanErr), documentView, q) {
		out = append(out, cloneDocument(doc))
	}

	if scanErr != nil {
		err := fmt.Errorf("find in collection %q: %w", c.name, scanErr)
		c.emit(createEvent(QueryFailed, "find", c.name, nil, nil, rendered, err, start))
		return nil, err
	}

	c.logger.Debug("Query executed", zap.String("query", rendered), zap.Int("count", len(out)))
	c.emit(createEvent(QuerySuccess, "find", c.name, nil, len(out), rendered, nil, start))
	return out, nil
}

// FindOne returns the first document matching q, honouring its offset. The
// limit of q is ignored. ErrDocumentNotFound is returned when nothing
// matches.
func (c *Collection) FindOne(ctx context.Context, q *query.Query) (Document, error) {
	one := uint64(1)
	single := query.Query{Limit: &one}
	if q != nil {
		single.Filter = q.Filter
		single.Offset = q.Offset
	}

	docs, err := c.Find(ctx, &single)
	if err != nil {
		return Document{}, err
	}
	if len(docs) == 0 {
		return Document{}, fmt.Errorf("%w: no match for %s", ErrDocumentNotFound, single.String())
	}
	return docs[0], nil
}

// FindPage returns the page of documents selected by q together with the
// number of documents matching its filter before the offset and limit are
// applied. Both are taken from the same snapshot.
func (c *Collection) FindPage(ctx context.Context, q *query.Query) ([]Document, int, error) {
	start := time.Now()
	rendered := q.String()

	var filter query.Expr
	var limit, offset *uint64
	if q != nil {
		filter, limit, offset = q.Filter, q.Limit, q.Offset
	}

	var scanErr error
	matched := slices.Collect(query.FilterSeq(c.scan(ctx, &scanErr), query.Compile(filter), documentView))
	if scanErr != nil {
		err := fmt.Errorf("find in collection %q: %w", c.name, scanErr)
		c.emit(createEvent(QueryFailed, "findPage", c.name, nil, nil, rendered, err, start))
		return nil, 0, err
	}

	var page []Document
	for doc := range query.Paginate(slices.Values(matched), limit, offset) {
		page = append(page, cloneDocument(doc))
	}

	c.logger.Debug("Query executed",
		zap.String("query", rendered),
		zap.Int("count", len(page)),
		zap.Int("total", len(matched)))
	c.emit(createEvent(QuerySuccess, "findPage", c.name, nil, len(page), rendered, nil, start))
	return page, len(matched), nil
}

// FindString parses qs and runs it with Find. Parsed query strings are
// cached, so repeated calls with the same string skip parsing.
func (c *Collection) FindString(ctx context.Context, qs string) ([]Document, error) {
	pq, err := c.processor.Prepare(qs)
	if err != nil {
		err = fmt.Errorf("find in collection %q: %w", c.name, err)
		c.emit(createEvent(QueryFailed, "find", c.name, qs, nil, "", err, time.Time{}))
		return nil, err
	}
	return c.Find(ctx, pq.Query)
}

// Count returns the number of documents matching e. Pagination does not
// apply; a nil e counts every document.
func (c *Collection) Count(ctx context.Context, e query.Expr) (int, error) {
	pred := query.Compile(e)

	var scanErr error
	n := 0
	for doc := range c.scan(ctx, &scanErr) {
		if query.Matches(pred, doc.Value) {
			n++
		}
	}
	if scanErr != nil {
		return 0, fmt.Errorf("count in collection %q: %w", c.name, scanErr)
	}
	return n, nil
}

// DeleteWhere removes every document matching e and returns how many were
// removed. If ctx is cancelled part way, the documents matched so far are
// still removed and the context error is returned with the count.
func (c *Collection) DeleteWhere(ctx context.Context, e query.Expr) (int, error) {
	pred := query.Compile(e)

	c.mu.Lock()
	var ctxErr error
	removed := make(map[string]bool)
	for _, id := range c.order {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		if query.Matches(pred, c.docs[id]) {
			removed[id] = true
			delete(c.docs, id)
		}
	}
	if len(removed) > 0 {
		c.order = slices.DeleteFunc(c.order, func(id string) bool { return removed[id] })
	}
	c.mu.Unlock()

	if len(removed) > 0 {
		c.emit(createEvent(DocumentDelete, "deleteWhere", c.name, nil, len(removed), exprString(e), nil, time.Time{}))
	}
	if ctxErr != nil {
		return len(removed), fmt.Errorf("delete in collection %q: %w", c.name, ctxErr)
	}
	return len(removed), nil
}

func (c *Collection) snapshot() []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Document, len(c.order))
	for i, id := range c.order {
		out[i] = Document{ID: id, Value: c.docs[id]}
	}
	return out
}

// scan yields a snapshot of the collection, stopping with *errp set when ctx
// is done.
func (c *Collection) scan(ctx context.Context, errp *error) iter.Seq[Document] {
	docs := c.snapshot()
	return func(yield func(Document) bool) {
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				*errp = err
				return
			}
			if !yield(doc) {
				return
			}
		}
	}
}

func cloneDocument(d Document) Document {
	return Document{ID: d.ID, Value: value.Clone(d.Value)}
}

func kindOf(v value.Value) string {
	if v == nil {
		return value.KindNull.String()
	}
	return v.Kind().String()
}

func exprString(e query.Expr) string {
	if query.IsNil(e) {
		return ""
	}
	return e.String()
}
