// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DocMetadata holds the descriptive metadata of a PDF, merged from the
// document info dictionary and heuristics over the first page.
type DocMetadata struct {
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author" yaml:"author"`
	Year     string `json:"year,omitempty" yaml:"year,omitempty"`
	Keywords string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Producer string `json:"producer,omitempty" yaml:"producer,omitempty"`
	Creator  string `json:"creator,omitempty" yaml:"creator,omitempty"`
}

// PDFInfo is the cheap, metadata-only view of a PDF used by the admission
// filter before any text is extracted.
type PDFInfo struct {
	Metadata  DocMetadata `json:"metadata" yaml:"metadata"`
	PageCount int         `json:"page_count" yaml:"page_count"`
	Encrypted bool        `json:"encrypted" yaml:"encrypted"`
}

// Figure is a figure or table caption found in the document text.
type Figure struct {
	// Type is "figure" or "table".
	Type    string `json:"type" yaml:"type"`
	Number  string `json:"number" yaml:"number"`
	Caption string `json:"caption" yaml:"caption"`
	Page    int    `json:"page" yaml:"page"`
}

// Document is the full extraction result for one PDF.
type Document struct {
	// Path is the absolute path of the source PDF.
	Path string `json:"path" yaml:"path"`

	Text       string      `json:"text" yaml:"text"`
	Metadata   DocMetadata `json:"metadata" yaml:"metadata"`
	Figures    []Figure    `json:"figures" yaml:"figures"`
	References []string    `json:"references" yaml:"references"`
	PageCount  int         `json:"page_count" yaml:"page_count"`
	SizeMB     float64     `json:"size_mb" yaml:"size_mb"`

	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// ProcessStatus is the outcome of processing one queued file.
type ProcessStatus string

const (
	StatusWritten  ProcessStatus = "written"
	StatusRejected ProcessStatus = "rejected"
	StatusSkipped  ProcessStatus = "skipped"
	StatusFailed   ProcessStatus = "failed"
)

// ProcessResult reports what happened to one file. NotePath is set only
// when Status is StatusWritten; Filter is set when the filter ran.
type ProcessResult struct {
	Path     string
	NotePath string
	Status   ProcessStatus
	Filter   *FilterResult
	Err      error
}
