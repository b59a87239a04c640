package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ApexForge13/policyscan/internal/model"
)

// stubAnalyzer implements Analyzer, echoing the document back as the carrier
type stubAnalyzer struct {
	calls int32
}

func (s *stubAnalyzer) Analyze(ctx context.Context, doc []byte, claimHint string) *model.StructuredRecord {
	atomic.AddInt32(&s.calls, 1)
	return &model.StructuredRecord{
		Carrier:   string(doc),
		RiskLevel: model.RiskLow,
	}
}

func writeTestDocs(t *testing.T, dir string) []string {
	t.Helper()
	files := map[string]string{
		"alpha.pdf":  "Carrier Alpha",
		"bravo.txt":  "Carrier Bravo",
		"notes.md":   "not a policy",
		"scan.PDF":   "Carrier Charlie",
		"readme":     "no extension",
	}
	var docs []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		ext := filepath.Ext(name)
		if ext == ".pdf" || ext == ".txt" || ext == ".PDF" {
			docs = append(docs, path)
		}
	}
	return docs
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	expected := writeTestDocs(t, dir)

	paths, err := ListDocuments(dir)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}

	if len(paths) != len(expected) {
		t.Errorf("expected %d documents, got %d: %v", len(expected), len(paths), paths)
	}
	for _, p := range paths {
		ext := filepath.Ext(p)
		if ext == ".md" || ext == "" {
			t.Errorf("unexpected file listed: %s", p)
		}
	}
}

func TestListDocuments_MissingDir(t *testing.T) {
	if _, err := ListDocuments("/no/such/directory"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestBatchProcessor_ProcessFiles(t *testing.T) {
	dir := t.TempDir()
	paths := writeTestDocs(t, dir)

	analyzer := &stubAnalyzer{}
	processor := NewBatchProcessor(analyzer, 2, "anthropic", 100, 10)

	results := processor.ProcessFiles(context.Background(), paths, "hail roof")

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("%s: unexpected error %v", r.Path, r.Error)
			continue
		}
		if r.Record == nil || r.Record.Carrier == "" {
			t.Errorf("%s: expected analyzed record", r.Path)
		}
	}
	if got := atomic.LoadInt32(&analyzer.calls); got != int32(len(paths)) {
		t.Errorf("expected %d analyze calls, got %d", len(paths), got)
	}
}

func TestBatchProcessor_ProcessFiles_Empty(t *testing.T) {
	processor := NewBatchProcessor(&stubAnalyzer{}, 2, "anthropic", 100, 10)

	results := processor.ProcessFiles(context.Background(), nil, "")
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestBatchProcessor_ReadFailure(t *testing.T) {
	processor := NewBatchProcessor(&stubAnalyzer{}, 2, "anthropic", 100, 10)

	results := processor.ProcessFiles(context.Background(), []string{"/no/such/file.pdf"}, "")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected read error reported in the result")
	}
	if results[0].GetError() == nil {
		t.Error("expected GetError to surface the read error")
	}
}

func TestBatchProcessor_ProcessDir(t *testing.T) {
	dir := t.TempDir()
	expected := writeTestDocs(t, dir)

	processor := NewBatchProcessor(&stubAnalyzer{}, 4, "anthropic", 100, 10)

	results, err := processor.ProcessDir(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("ProcessDir failed: %v", err)
	}
	if len(results) != len(expected) {
		t.Errorf("expected %d results, got %d", len(expected), len(results))
	}
}
