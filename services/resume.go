package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	appContext "github.com/alphabatem/common/context"
	"github.com/ledongthuc/pdf"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
)

const (
	resumeSourceEnv    = "resume_env"
	resumeSourceObject = "resume_object"
	resumeSourcePDF    = "resume_pdf"

	resumePreviewLength = 200
)

type resumePage struct {
	Number int
	Text   string
}

// ResumeService loads the resume text and splits it into retrieval chunks. Sources are
// tried in order: inline env text, a MinIO object, a local PDF, then the built-in corpus.
type ResumeService struct {
	appContext.DefaultService

	minioSvc *MinIOService

	content   string
	objectKey string
	pdfPath   string
	chunkSize int

	mu         sync.RWMutex
	lastResult dto.ResumeReloadResult
	lastLoaded time.Time
}

const RESUME_SVC = "resume_svc"

func (svc ResumeService) Id() string {
	return RESUME_SVC
}

func (svc *ResumeService) Configure(ctx *appContext.Context) error {
	svc.content = os.Getenv("RESUME_CONTENT")
	svc.objectKey = shared.GetEnv("RESUME_OBJECT_KEY", "")
	svc.pdfPath = shared.GetEnv("RESUME_PDF_PATH", "")
	svc.chunkSize = shared.GetEnvInt("RESUME_CHUNK_SIZE", 800)
	return svc.DefaultService.Configure(ctx)
}

func (svc *ResumeService) Start() error {
	if minioSvc, ok := svc.Service(MINIO_SVC).(*MinIOService); ok && minioSvc.Enabled() {
		svc.minioSvc = minioSvc
	}
	return nil
}

// Load reads the highest priority source that yields text and chunks it. It never fails,
// the built-in corpus is the last resort.
func (svc *ResumeService) Load(ctx context.Context) ([]model.RAGChunk, dto.ResumeReloadResult) {
	source, pages, err := svc.readPages(ctx)

	var chunks []model.RAGChunk
	if err == nil {
		chunks = chunkPages(pages, source, svc.chunkSize)
	}
	if len(chunks) == 0 {
		if err != nil {
			log.WithError(err).Warn("Falling back to built-in resume content")
		}
		source = builtinResumeSource
		chunks = builtinResumeChunks()
	}

	text := joinChunks(chunks)
	result := dto.ResumeReloadResult{
		Source:     source,
		TextLength: len(text),
		Preview:    preview(text),
		Chunks:     len(chunks),
	}

	svc.mu.Lock()
	svc.lastResult = result
	svc.lastLoaded = time.Now()
	svc.mu.Unlock()

	log.WithFields(log.Fields{"source": source, "chunks": len(chunks), "length": result.TextLength}).Info("Resume loaded")
	return chunks, result
}

func (svc *ResumeService) LastResult() (dto.ResumeReloadResult, time.Time) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.lastResult, svc.lastLoaded
}

func (svc *ResumeService) readPages(ctx context.Context) (string, []resumePage, error) {
	if strings.TrimSpace(svc.content) != "" {
		return resumeSourceEnv, []resumePage{{Number: 1, Text: cleanResumeText(svc.content)}}, nil
	}

	var lastErr error

	if svc.minioSvc != nil && svc.objectKey != "" {
		data, err := svc.minioSvc.ReadObject(ctx, svc.objectKey)
		if err == nil {
			pages, err := svc.decode(svc.objectKey, data)
			if err == nil {
				return resumeSourceObject, pages, nil
			}
			lastErr = err
		} else {
			lastErr = err
		}
		log.WithError(lastErr).WithField("object", svc.objectKey).Warn("Failed to read resume object")
	}

	if svc.pdfPath != "" {
		data, err := os.ReadFile(svc.pdfPath)
		if err == nil {
			pages, err := extractPDFPages(data)
			if err == nil {
				return resumeSourcePDF, pages, nil
			}
			lastErr = err
		} else {
			lastErr = err
		}
		log.WithError(lastErr).WithField("path", svc.pdfPath).Warn("Failed to read resume PDF")
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no resume source configured")
	}
	return "", nil, lastErr
}

func (svc *ResumeService) decode(name string, data []byte) ([]resumePage, error) {
	if strings.HasSuffix(strings.ToLower(name), ".pdf") || bytes.HasPrefix(data, []byte("%PDF")) {
		return extractPDFPages(data)
	}
	return []resumePage{{Number: 1, Text: cleanResumeText(string(data))}}, nil
}

func extractPDFPages(data []byte) ([]resumePage, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	var pages []resumePage
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			log.WithError(err).WithField("page", pageNum).Warn("PDF page extraction failed")
			continue
		}

		if cleaned := cleanResumeText(text); cleaned != "" {
			pages = append(pages, resumePage{Number: pageNum, Text: cleaned})
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf contains no extractable text")
	}
	return pages, nil
}

// cleanResumeText collapses runs of spaces inside lines, normalises bullets and keeps at
// most one blank line between paragraphs.
func cleanResumeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		line = strings.ReplaceAll(line, "•", "-")
		line = strings.ReplaceAll(line, "◦", "-")

		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// chunkPages packs paragraphs into chunks of at most size bytes without crossing pages.
// Paragraphs longer than size are split on word boundaries.
func chunkPages(pages []resumePage, source string, size int) []model.RAGChunk {
	if size <= 0 {
		size = 800
	}

	var chunks []model.RAGChunk
	emit := func(text string, page int) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		chunks = append(chunks, model.RAGChunk{
			Text: text,
			Metadata: model.ChunkMetadata{
				ChunkID:    len(chunks),
				Source:     source,
				PageNumber: page,
			},
		})
	}

	for _, page := range pages {
		var current strings.Builder
		for _, paragraph := range strings.Split(page.Text, "\n\n") {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}

			for _, piece := range splitLong(paragraph, size) {
				if current.Len() > 0 && current.Len()+2+len(piece) > size {
					emit(current.String(), page.Number)
					current.Reset()
				}
				if current.Len() > 0 {
					current.WriteString("\n\n")
				}
				current.WriteString(piece)
			}
		}
		emit(current.String(), page.Number)
	}

	return chunks
}

func splitLong(paragraph string, size int) []string {
	if len(paragraph) <= size {
		return []string{paragraph}
	}

	var pieces []string
	var current strings.Builder
	for _, word := range strings.Fields(paragraph) {
		for len(word) > size {
			if current.Len() > 0 {
				pieces = append(pieces, current.String())
				current.Reset()
			}
			pieces = append(pieces, word[:size])
			word = word[size:]
		}
		if current.Len() > 0 && current.Len()+1+len(word) > size {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

func joinChunks(chunks []model.RAGChunk) string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return strings.Join(texts, "\n\n")
}

func preview(text string) string {
	if len(text) <= resumePreviewLength {
		return text
	}
	cut := resumePreviewLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
