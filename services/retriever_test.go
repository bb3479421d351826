package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChunkSource struct {
	chunks []model.RAGChunk
	loads  int
}

func (f *fakeChunkSource) Load(context.Context) ([]model.RAGChunk, dto.ResumeReloadResult) {
	f.loads++
	return f.chunks, dto.ResumeReloadResult{Source: "fake", Chunks: len(f.chunks)}
}

func chunkIDs(chunks []model.RAGChunk) []int {
	ids := make([]int, len(chunks))
	for i, c := range chunks {
		ids[i] = c.Metadata.ChunkID
	}
	return ids
}

func TestSimilarity(t *testing.T) {
	doc := tokenize("Built a Machine Learning service in Go")

	assert.Equal(t, 0.0, similarity(nil, doc))
	assert.Equal(t, 1.0, similarity(tokenize("machine learning"), doc))
	assert.Equal(t, 0.5, similarity(tokenize("machine zzz"), doc))
	assert.Equal(t, 0.0, similarity(tokenize("qqq"), doc))
	assert.Equal(t, 1.0, similarity(tokenize("MACHINES"), doc), "document tokens contained in the query count")
}

func TestRetriever_RanksBuiltinCorpus(t *testing.T) {
	ctx := context.Background()
	svc := &RetrieverService{source: &ResumeService{}}

	results := svc.Search(ctx, "machine learning projects", 3)
	require.Len(t, results, 3)
	assert.Equal(t, []int{3, 4, 0}, chunkIDs(results))

	query := tokenize("machine learning projects")
	previous := 1.0
	for _, chunk := range results {
		score := similarity(query, tokenize(chunk.Text))
		assert.LessOrEqual(t, score, previous)
		previous = score
	}

	for _, chunk := range results {
		assert.NotContains(t, chunk.Text, "CONTACT DETAILS")
	}
}

func TestRetriever_TiesKeepCorpusOrder(t *testing.T) {
	svc := &RetrieverService{source: &ResumeService{}}

	assert.Equal(t, []int{0, 1, 2}, chunkIDs(svc.Search(context.Background(), "zzzz qqqq", 3)))
	assert.Equal(t, []int{3, 0, 1}, chunkIDs(svc.Search(context.Background(), "kubernetes", 3)))
}

func TestRetriever_TopK(t *testing.T) {
	ctx := context.Background()
	svc := &RetrieverService{source: &ResumeService{}}

	assert.Len(t, svc.Search(ctx, "go", 0), defaultTopK)
	assert.Len(t, svc.Search(ctx, "go", 50), len(builtinResumeSections))
}

func TestRetriever_LazyInitAndRefresh(t *testing.T) {
	ctx := context.Background()
	source := &fakeChunkSource{chunks: []model.RAGChunk{{Text: "golang services"}}}
	svc := &RetrieverService{source: source}

	status := svc.Status()
	assert.False(t, status.Initialized)
	assert.Equal(t, 0, status.DocumentCount)

	svc.Search(ctx, "golang", 1)
	svc.Search(ctx, "golang", 1)
	assert.Equal(t, 1, source.loads)

	status = svc.Status()
	assert.True(t, status.Initialized)
	assert.Equal(t, 1, status.DocumentCount)
	assert.Equal(t, "fake", status.Source)

	source.chunks = append(source.chunks, model.RAGChunk{Text: "redis caching"})
	status, result := svc.Refresh(ctx)
	assert.Equal(t, 2, status.DocumentCount)
	assert.Equal(t, 2, result.Chunks)
	assert.Equal(t, 2, source.loads)

	svc.Shutdown()
	assert.False(t, svc.Status().Initialized)
}

type slowChunkSource struct {
	loads atomic.Int32
}

func (s *slowChunkSource) Load(context.Context) ([]model.RAGChunk, dto.ResumeReloadResult) {
	s.loads.Add(1)
	time.Sleep(20 * time.Millisecond)
	return []model.RAGChunk{{Text: "golang services"}}, dto.ResumeReloadResult{Source: "slow", Chunks: 1}
}

func TestRetriever_ConcurrentFirstSearchesBuildOnce(t *testing.T) {
	source := &slowChunkSource{}
	svc := &RetrieverService{source: source}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, svc.Search(context.Background(), "golang", 1), 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.loads.Load())
	assert.True(t, svc.Status().Initialized)
}
