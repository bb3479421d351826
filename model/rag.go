package model

type ChunkMetadata struct {
	ChunkID    int    `json:"chunkId"`
	Source     string `json:"source"`
	PageNumber int    `json:"pageNumber"`
}

type RAGChunk struct {
	Text     string        `json:"pageContent"`
	Metadata ChunkMetadata `json:"metadata"`
}
