// Copyright 2025 The Chatflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Document is one logical unit of loaded source text (a PDF page, a text
// file) with its provenance metadata.
type Document struct {
	Text     string
	Metadata map[string]string
}

// CommandRunner executes an external command and returns its stdout.
// It exists so PDF extraction can be faked in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Loader reads source files into documents. PDFs go through pdftotext; plain
// text and markdown are read directly.
type Loader struct {
	runner CommandRunner
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRunner sets a custom command runner for PDF extraction.
func WithRunner(runner CommandRunner) LoaderOption {
	return func(l *Loader) {
		if runner != nil {
			l.runner = runner
		}
	}
}

// NewLoader creates a loader that shells out to pdftotext for PDFs.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		runner: execRunner{},
		logger: slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source path into one or more documents. A PDF yields one
// document per page; text files yield one document each. Any unreadable or
// unsupported file fails the whole call.
func (l *Loader) Load(ctx context.Context, paths []string) ([]Document, error) {
	var documents []Document

	for _, path := range paths {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			docs, err := l.loadPDF(ctx, path)
			if err != nil {
				return nil, err
			}
			documents = append(documents, docs...)
		case ".txt", ".md":
			doc, ok, err := l.loadText(path)
			if err != nil {
				return nil, err
			}
			if ok {
				documents = append(documents, doc)
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
		}
	}

	l.logger.Debug("loaded documents", "paths", len(paths), "documents", len(documents))
	return documents, nil
}

// loadPDF extracts text with pdftotext and splits it into pages at form
// feeds, one document per non-empty page.
func (l *Loader) loadPDF(ctx context.Context, path string) ([]Document, error) {
	out, err := l.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdf extraction of %s: %w", path, err)
	}

	var docs []Document
	for i, page := range strings.Split(string(out), "\f") {
		if strings.TrimSpace(page) == "" {
			continue
		}
		docs = append(docs, Document{
			Text: page,
			Metadata: map[string]string{
				"source":    path,
				"filename":  filepath.Base(path),
				"file_type": "pdf",
				"page":      strconv.Itoa(i + 1),
			},
		})
	}
	return docs, nil
}

// loadText reads a plain text or markdown file as a single document.
// Empty files yield no document.
func (l *Loader) loadText(path string) (Document, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return Document{}, false, nil
	}

	fileType := "text"
	if strings.EqualFold(filepath.Ext(path), ".md") {
		fileType = "markdown"
	}

	return Document{
		Text: string(content),
		Metadata: map[string]string{
			"source":    path,
			"filename":  filepath.Base(path),
			"file_type": fileType,
		},
	}, true, nil
}
