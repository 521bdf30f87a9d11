package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"propgraph/internal/codec"
	"propgraph/internal/config"
	"propgraph/internal/graph"
	"propgraph/internal/models"
	"propgraph/internal/repository/sqlite"
	"propgraph/internal/service"
	"propgraph/internal/symbols"
)

func main() {
	// Command line flags; unset flags fall back to the config file
	materialPath := flag.String("material", "", "material input file (json or yaml)")
	symbolPaths := flag.String("symbols", "", "comma-separated extra symbol definition files")
	dbPath := flag.String("db", "", "SQLite database path (empty disables persistence)")
	format := flag.String("format", "", "output format: json or yaml")
	workers := flag.Int("workers", 0, "parallel material evaluations")
	outPath := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if *materialPath == "" {
		log.Fatal("Missing required -material flag")
	}

	cfg, cfgPath, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgPath != "" {
		log.Printf("Loaded config: %s", cfgPath)
	}
	if *format == "" {
		*format = cfg.Evaluation.Format
	}
	if *workers == 0 {
		*workers = cfg.Evaluation.Workers
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.Path
	}

	// Symbol registry: built-ins plus any user definitions
	registry := symbols.Builtin()
	models.RegisterObjectTypes(registry)
	definitions := cfg.Symbols.Definitions
	if *symbolPaths != "" {
		definitions = strings.Split(*symbolPaths, ",")
	}
	for _, path := range definitions {
		if err := registry.LoadDefinitionFile(strings.TrimSpace(path)); err != nil {
			log.Fatalf("Failed to load symbol definitions: %v", err)
		}
		log.Printf("Loaded symbol definitions: %s", path)
	}

	importer, exporter, err := codec.ForFormat(*format)
	if err != nil {
		log.Fatalf("Unknown output format: %v", err)
	}

	// Material input may be json or yaml regardless of output format
	inputImporter := importer
	if strings.HasSuffix(*materialPath, ".json") {
		inputImporter, _, _ = codec.ForFormat("json")
	} else if strings.HasSuffix(*materialPath, ".yaml") || strings.HasSuffix(*materialPath, ".yml") {
		inputImporter, _, _ = codec.ForFormat("yaml")
	}

	f, err := os.Open(*materialPath)
	if err != nil {
		log.Fatalf("Failed to open material file: %v", err)
	}
	doc, err := inputImporter.Parse(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to parse material file: %v", err)
	}

	opts := []service.ServiceOption{service.WithMetrics(graph.NewMetrics())}
	if *dbPath != "" {
		repo, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer repo.Close()
		log.Printf("Database opened: %s", *dbPath)
		opts = append(opts, service.WithRepository(repo))
	}

	svc := service.NewEvaluationService(registry, models.Builtin(), opts...)

	mats, err := svc.LoadMaterials(doc)
	if err != nil {
		log.Fatalf("Failed to load materials: %v", err)
	}
	log.Printf("Loaded %d materials from %s", len(mats), *materialPath)

	ctx := context.Background()
	if err := svc.EvaluateAll(ctx, mats, *workers); err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}
	for _, mat := range mats {
		log.Printf("Material %s: %d quantities across %d symbols",
			mat.ID(), len(mat.Quantities()), len(mat.Symbols()))
	}

	out := os.Stdout
	if *outPath != "" {
		out, err = os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer out.Close()
	}
	if err := exporter.Export(svc.ExportDocument(mats), out); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
}
