package query

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/asaidimu/go-sift/core/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewProcessor(t *testing.T) {
	p := NewProcessor(nil)
	require.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.Equal(t, 0, p.Len())
}

func TestProcessor_PrepareCaches(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	first, err := p.Prepare("name=Rasmus&$limit=1")
	require.NoError(t, err)
	second, err := p.Prepare("name=Rasmus&$limit=1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, "name=Rasmus&$limit=1", first.Source)
	assert.Equal(t, uint64(1), *first.Query.Limit)

	p.Reset()
	assert.Equal(t, 0, p.Len())
}

func TestProcessor_CacheBounded(t *testing.T) {
	p := NewProcessorWithSize(nil, 8)

	first, err := p.Prepare("id=0")
	require.NoError(t, err)
	for i := 1; i < 100; i++ {
		_, err := p.Prepare(fmt.Sprintf("id=%d", i))
		require.NoError(t, err)
		assert.LessOrEqual(t, p.Len(), 8)
	}
	assert.Equal(t, 8, p.Len())

	// the most recent query is still cached, the oldest was evicted
	last, err := p.Prepare("id=99")
	require.NoError(t, err)
	again, err := p.Prepare("id=99")
	require.NoError(t, err)
	assert.Same(t, last, again)

	evicted, err := p.Prepare("id=0")
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)
	assert.Equal(t, 8, p.Len())

	// a non-positive size falls back to the default
	fallback := NewProcessorWithSize(nil, -1)
	_, err = fallback.Prepare("id=1")
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.Len())
}

func TestProcessor_PrepareError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := NewProcessor(zap.New(core))

	_, err := p.Prepare("name")
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed to parse query").Len())
}

func TestProcessor_ProcessDocuments(t *testing.T) {
	p := NewProcessor(nil)

	out, err := p.ProcessDocuments(people(), "pet__type=cat&$offset=1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, value.String("Freja"), value.Lookup(out[0], "name"))

	out, err = p.ProcessDocuments(people(), "")
	require.NoError(t, err)
	assert.Len(t, out, 3)

	_, err = p.ProcessDocuments(people(), "$limit=x")
	assert.Error(t, err)
}

func TestProcessor_Match(t *testing.T) {
	p := NewProcessor(nil)
	doc := people()[2]
	assert.True(t, p.Match(Field("age").Lt(13), doc))
	assert.False(t, p.Match(Relation("pet", "type").Eq("cat"), doc))
}

func TestPreparedQuery(t *testing.T) {
	pq := Prepare(MustParse("age__gt=20&$limit=1"))
	assert.True(t, pq.Matches(people()[0]))
	assert.False(t, pq.Matches(people()[2]))

	got := slices.Collect(pq.Apply(slices.Values(people())))
	require.Len(t, got, 1)
	assert.Equal(t, value.String("Rasmus"), value.Lookup(got[0], "name"))

	empty := Prepare(nil)
	assert.True(t, empty.Matches(value.Null{}))
	assert.Equal(t, "EMPTY QUERY", empty.Source)
}

func TestProcessor_Concurrent(t *testing.T) {
	p := NewProcessor(nil)
	queries := []string{"a=1", "b=2", "c__in=x,y", "pet__type=cat"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pq, err := p.Prepare(queries[i%len(queries)])
			assert.NoError(t, err)
			assert.NotNil(t, pq)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(queries), p.Len())
}
