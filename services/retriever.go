package services

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	log "github.com/sirupsen/logrus"
)

const defaultTopK = 3

type chunkSource interface {
	Load(ctx context.Context) ([]model.RAGChunk, dto.ResumeReloadResult)
}

type indexedChunk struct {
	chunk  model.RAGChunk
	tokens []string
}

// RetrieverService ranks resume chunks by keyword containment. It is a stand-in for
// embedding search, callers only rely on the ranked top-k contract.
type RetrieverService struct {
	appContext.DefaultService

	source chunkSource

	// buildMu serialises corpus builds, mu guards the built index.
	buildMu sync.Mutex

	mu          sync.RWMutex
	index       []indexedChunk
	initialized bool
	lastUpdated time.Time
	sourceName  string
}

const RETRIEVER_SVC = "retriever_svc"

func (svc RetrieverService) Id() string {
	return RETRIEVER_SVC
}

func (svc *RetrieverService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *RetrieverService) Start() error {
	svc.source = svc.Service(RESUME_SVC).(*ResumeService)
	return nil
}

func (svc *RetrieverService) Shutdown() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.index = nil
	svc.initialized = false
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// similarity is the share of query tokens that contain, or are contained in, some
// document token.
func similarity(query, doc []string) float64 {
	if len(query) == 0 {
		return 0
	}

	matches := 0
	for _, q := range query {
		for _, d := range doc {
			if strings.Contains(d, q) || strings.Contains(q, d) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(query))
}

func (svc *RetrieverService) build(ctx context.Context) (dto.RAGStatus, dto.ResumeReloadResult) {
	chunks, result := svc.source.Load(ctx)

	index := make([]indexedChunk, len(chunks))
	for i, chunk := range chunks {
		index[i] = indexedChunk{chunk: chunk, tokens: tokenize(chunk.Text)}
	}

	svc.mu.Lock()
	svc.index = index
	svc.initialized = true
	svc.lastUpdated = time.Now().UTC()
	svc.sourceName = result.Source
	status := svc.statusLocked()
	svc.mu.Unlock()

	log.WithFields(log.Fields{"chunks": len(index), "source": result.Source}).Info("Retriever initialized")
	return status, result
}

func (svc *RetrieverService) ensureInitialized(ctx context.Context) {
	svc.mu.RLock()
	ready := svc.initialized
	svc.mu.RUnlock()

	if ready {
		return
	}

	svc.buildMu.Lock()
	defer svc.buildMu.Unlock()

	svc.mu.RLock()
	ready = svc.initialized
	svc.mu.RUnlock()
	if !ready {
		svc.build(ctx)
	}
}

// Search returns up to k chunks, best first. Equal scores keep corpus order.
func (svc *RetrieverService) Search(ctx context.Context, query string, k int) []model.RAGChunk {
	if k <= 0 {
		k = defaultTopK
	}
	svc.ensureInitialized(ctx)

	queryTokens := tokenize(query)

	type scored struct {
		chunk model.RAGChunk
		score float64
	}

	svc.mu.RLock()
	ranked := make([]scored, len(svc.index))
	for i, entry := range svc.index {
		ranked[i] = scored{chunk: entry.chunk, score: similarity(queryTokens, entry.tokens)}
	}
	svc.mu.RUnlock()

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]model.RAGChunk, len(ranked))
	for i, r := range ranked {
		out[i] = r.chunk
	}
	return out
}

func (svc *RetrieverService) Status() dto.RAGStatus {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.statusLocked()
}

func (svc *RetrieverService) statusLocked() dto.RAGStatus {
	return dto.RAGStatus{
		Initialized:   svc.initialized,
		DocumentCount: len(svc.index),
		LastUpdated:   svc.lastUpdated,
		Source:        svc.sourceName,
	}
}

// Refresh reloads the resume source and rebuilds the corpus.
func (svc *RetrieverService) Refresh(ctx context.Context) (dto.RAGStatus, dto.ResumeReloadResult) {
	svc.buildMu.Lock()
	defer svc.buildMu.Unlock()

	return svc.build(ctx)
}
