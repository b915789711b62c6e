package pipeline

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// BatchStats summarizes a batch run.
type BatchStats struct {
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

type docResult struct {
	docID string
	err   error
}

// RunBatch processes every case from a JSON input file and writes one
// output JSON per document into outDir. Documents are processed by a
// fixed worker pool; output order does not matter because each document
// lands in its own file.
func (p *Pipeline) RunBatch(inputPath, outDir string, workers int) (BatchStats, error) {
	start := time.Now()

	docs, err := LoadJSONCases(inputPath)
	if err != nil {
		return BatchStats{}, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchStats{}, fmt.Errorf("creating output directory: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	log.Printf("Processing %d cases from %s with %d workers", len(docs), inputPath, workers)

	docChan := make(chan Document, len(docs))
	resultChan := make(chan docResult, len(docs))
	for _, doc := range docs {
		docChan <- doc
	}
	close(docChan)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range docChan {
				resultChan <- docResult{docID: doc.DocID, err: p.processToFile(doc, outDir)}
			}
		}()
	}
	wg.Wait()
	close(resultChan)

	stats := BatchStats{Total: len(docs)}
	for r := range resultChan {
		if r.err != nil {
			stats.Failed++
			log.Printf("  FAILED %s: %v", r.docID, r.err)
			continue
		}
		stats.Succeeded++
		log.Printf("  ok %s", r.docID)
	}
	stats.Elapsed = time.Since(start)

	log.Printf("Completed: %d/%d cases processed -> %s (%.2fs)",
		stats.Succeeded, stats.Total, outDir, stats.Elapsed.Seconds())
	return stats, nil
}

func (p *Pipeline) processToFile(doc Document, outDir string) error {
	result := p.ProcessDocument(doc)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", doc.DocID, err)
	}
	outFile := filepath.Join(outDir, doc.DocID+".json")
	if err := os.WriteFile(outFile, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outFile, err)
	}
	return nil
}
