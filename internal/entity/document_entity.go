package entity

import "time"

type Document struct {
	Id        int64
	Title     string
	Content   string
	Source    string
	Tags      []string
	Embedding []float32
	CreatedAt time.Time
}

// ScoredDocument carries the query time similarity of a document.
type ScoredDocument struct {
	Document   *Document
	Similarity float64 // 0.0 to 1.0
}
