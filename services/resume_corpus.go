package services

import "github.com/lac-hong-legacy/portfolio_api/model"

const builtinResumeSource = "builtin_resume"

var builtinResumeSections = []string{
	`Jordan Avery - Software Engineer

EDUCATION:
- Bachelor of Science in Computer Science, Oregon State University (2021)
- Coursework: distributed systems, databases, compilers, statistics
- Teaching assistant for the systems programming sequence`,

	`CURRENT POSITION:
- Backend Engineer at Fernlight Analytics (March 2023 - Present)
- Location: Portland, OR
- Focus: Go services for event ingestion, billing pipelines and internal APIs`,

	`PROFESSIONAL EXPERIENCE:

Fernlight Analytics - Backend Engineer (2023 - Present)
- Rebuilt the event ingestion path in Go, cutting p99 latency from 900ms to 120ms
- Introduced Redis-backed caching and Prometheus dashboards for every service
- Led migration of three services from a monolith to independently deployed containers

Harbor Freight Labs - Software Engineer (2021 - 2023)
- Maintained PostgreSQL schemas and zero-downtime migrations for 40M-row tables
- Built internal CLI tooling used by 60+ engineers`,

	`TECHNICAL SKILLS:

Languages: Go, Python, TypeScript, SQL
Backend: gRPC, REST, PostgreSQL, Redis, Kafka, MinIO
Machine Learning: scikit-learn, PyTorch, feature pipelines for recommendation models
Infrastructure: Docker, Kubernetes, Terraform, GitHub Actions
Applied across production and side projects`,

	`PROJECTS:

1. Trailhead - machine learning service recommending hiking routes from GPS traces
   - Go API with a Python model server, trained on 2M public tracks
   - Technologies: Go, Python, PyTorch, PostgreSQL, Redis

2. Ledgerline - self-hosted expense tracker
   - Fiber REST API with SQLite storage and JWT auth
   - Technologies: Go, SQLite, React`,

	`PROJECTS (continued):

3. Quill - static site generator for technical writing
   - Markdown pipeline with incremental rebuilds and live reload
   - Technologies: Go, HTML templates, fsnotify

4. Beacon - uptime checker with Slack alerts
   - Worker pool probing 500+ endpoints per minute
   - Technologies: Go, Redis, Prometheus`,

	`PERSONAL INTERESTS & CAREER GOALS:

- Trail running and long-distance hiking
- Contributing to open-source Go tooling
- Mentoring early-career engineers
- Goal: grow into a staff role owning platform reliability`,

	`CONTACT DETAILS:
- Email: jordan.avery@example.com
- GitHub: https://github.com/jordan-avery
- LinkedIn: https://linkedin.com/in/jordan-avery
- Location: Portland, Oregon, USA`,
}

func builtinResumeChunks() []model.RAGChunk {
	chunks := make([]model.RAGChunk, len(builtinResumeSections))
	for i, text := range builtinResumeSections {
		chunks[i] = model.RAGChunk{
			Text: text,
			Metadata: model.ChunkMetadata{
				ChunkID:    i,
				Source:     builtinResumeSource,
				PageNumber: 1,
			},
		}
	}
	return chunks
}
