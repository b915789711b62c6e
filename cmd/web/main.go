package main

import (
	"fmt"
	"log"

	"github.com/ricardo-wurzmann/healthtech/internal/canonical"
	"github.com/ricardo-wurzmann/healthtech/internal/config"
	"github.com/ricardo-wurzmann/healthtech/internal/lexicon"
	"github.com/ricardo-wurzmann/healthtech/internal/ner"
	"github.com/ricardo-wurzmann/healthtech/internal/pipeline"
	"github.com/ricardo-wurzmann/healthtech/internal/postprocess"
	"github.com/ricardo-wurzmann/healthtech/internal/segment"
	"github.com/ricardo-wurzmann/healthtech/internal/web"
	"github.com/ricardo-wurzmann/healthtech/internal/web/handlers"
)

func main() {
	config.LoadEnv()

	fmt.Println("=== Clinical NER Pipeline Web Interface ===")

	port := config.GetEnvInt("WEB_PORT", 8080)
	host := config.GetEnv("WEB_HOST", "0.0.0.0")

	lexiconDir := config.GetEnv("LEXICON_DIR", "data/lexicons")
	vocabDir := config.GetEnv("VOCAB_DIR", "data/vocab")
	segTraining := config.GetEnv("SEGMENT_TRAINING", "")
	useCanonical := config.GetEnvBool("USE_CANONICAL", false)
	minFuzzy := config.GetEnvInt("FUZZY_MIN", ner.DefaultMinFuzzy)
	enableFuzzy := !config.GetEnvBool("NO_FUZZY", false)

	seg := segment.Load(segTraining)
	segKind := "regex"
	if segTraining != "" {
		segKind = "punkt"
	}

	info := handlers.EngineInfo{
		CanonicalMode: useCanonical,
		FuzzyEnabled:  enableFuzzy,
		SegmenterKind: segKind,
	}

	var p *pipeline.Pipeline
	if useCanonical {
		vocab, err := canonical.Load(vocabDir)
		if err != nil {
			log.Fatalf("Failed to load vocabulary: %v", err)
		}
		stats := vocab.Stats()
		info.VocabularyConcepts = stats.TotalConcepts
		info.VocabularyEntries = stats.TotalEntries
		fmt.Printf("Vocabulary: %d concepts, %d entries\n", stats.TotalConcepts, stats.TotalEntries)

		p = pipeline.NewCanonical(seg, vocab, postprocess.DefaultConfig())
	} else {
		terms, err := lexicon.LoadAll(lexiconDir, nil)
		if err != nil {
			log.Fatalf("Failed to load lexicons: %v", err)
		}
		info.LexiconTerms = len(terms)
		fmt.Printf("Lexicon: %d terms\n", len(terms))

		cfg := ner.Config{MinFuzzy: minFuzzy, EnableFuzzy: enableFuzzy}
		m := ner.NewMatcher(lexicon.NewIndex(terms), ner.DefaultPatterns, cfg)
		p = pipeline.New(seg, m, postprocess.DefaultConfig())
	}

	webConfig := &web.Config{
		Server: web.ServerConfig{
			Port: port,
			Host: host,
		},
		Features: web.FeatureConfig{
			DebugEndpointEnabled: config.GetEnvBool("ENABLE_DEBUG_ENDPOINT", true),
			StatsEnabled:         config.GetEnvBool("ENABLE_STATS", true),
		},
	}

	server, err := web.NewServer(webConfig, p, info)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	fmt.Printf("\nStarting web server on http://%s:%d\n", host, port)

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
