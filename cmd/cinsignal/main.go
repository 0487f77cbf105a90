package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cinsignal/internal"
	"cinsignal/internal/config"
	"cinsignal/internal/logger"
	"cinsignal/internal/pipeline"
	"cinsignal/internal/storage"
	"cinsignal/internal/taxonomy"
	"cinsignal/internal/tradeitem"
)

const (
	metaTaxonomyFlattenedAt = "taxonomy.flattened_at"
	metaTaxonomySource      = "taxonomy.source"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logger.New("cinsignal", cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]
	processor := pipeline.NewProcessingService(nil, cfg, log)

	switch cmd {
	case "cin:snapshot", "cin:raw", "cin:signals":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "CIN xml path")
		out := fs.String("out", "", "output json path")
		_ = fs.Parse(args)
		requireFlags("--input and --out are required", *input, *out)

		art := transformFile(processor, *input, "")
		var view any
		switch cmd {
		case "cin:snapshot":
			view = art.Snapshot
		case "cin:raw":
			view = art.Raw
		default:
			view = art.Signals
		}
		must(pipeline.WriteJSON(view, *out))
		fmt.Printf("%s written to %s\n", strings.TrimPrefix(cmd, "cin:"), *out)
	case "cin:row":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "CIN xml path")
		lang := fs.String("lang", cfg.ExportLanguage, "language code")
		out := fs.String("out", "", "output path (.csv|.xlsx)")
		_ = fs.Parse(args)
		requireFlags("--input and --out are required", *input, *out)
		must(config.ValidateLanguage(*lang))

		art := transformFile(processor, *input, *lang)
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".csv":
			must(pipeline.ExportRowToCSV(art.Row, *out))
		case ".xlsx":
			must(pipeline.ExportRowToXLSX(art.Row, *out))
		default:
			must(fmt.Errorf("unsupported output type: %s", *out))
		}
		fmt.Printf("row lang=%s written to %s\n", *lang, *out)
	case "cin:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "CIN xml path")
		outDir := fs.String("out", "", "artifact directory (default OUTPUT_DIR/<gtin>)")
		_ = fs.Parse(args)
		requireFlags("--input is required", *input)

		db := openDB(cfg)
		defer db.Close()
		blob, err := os.ReadFile(*input)
		must(err)
		res, err := pipeline.NewProcessingService(db, cfg, log).Process(internal.SourceFile, blob)
		must(err)

		dir := *outDir
		if dir == "" {
			dir = filepath.Join(cfg.OutputDir, artifactDirName(res.Row.GTIN, res.Document.Hash))
		}
		must(pipeline.WriteArtifacts(res.Artifacts, dir))
		fmt.Printf("processed document id=%d trace=%s output=%s\n", res.Document.ID, res.TraceID, dir)
	case "cin:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		gtin := fs.String("gtin", "", "GTIN to fetch")
		_ = fs.Parse(args)
		requireFlags("--gtin is required", *gtin)
		must(cfg.Require("TRADEITEM_CLIENT_ID", cfg.TradeItemClientID))
		must(cfg.Require("TRADEITEM_USERNAME", cfg.TradeItemUsername))
		must(cfg.Require("TRADEITEM_PASSWORD", cfg.TradeItemPassword))

		db := openDB(cfg)
		defer db.Close()
		res, err := tradeitem.NewFetchService(db, cfg, log).Fetch(context.Background(), *gtin)
		must(err)
		fmt.Printf("fetched gtin=%s document id=%d output=%s\n", *gtin, res.Document.ID, filepath.Join(cfg.OutputDir, *gtin))
	case "cin:reproject":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		gtin := fs.String("gtin", "", "GTIN of a stored document")
		all := fs.Bool("all", false, "reproject every stored document")
		limit := fs.Int("limit", 1000, "max documents with --all")
		_ = fs.Parse(args)

		db := openDB(cfg)
		defer db.Close()
		svc := pipeline.NewProcessingService(db, cfg, log)
		if *all {
			n, err := svc.ReprojectAll(*limit)
			must(err)
			fmt.Printf("reprojected documents=%d\n", n)
			return
		}
		requireFlags("--gtin or --all is required", *gtin)
		doc, err := db.GetDocumentByGTIN(*gtin)
		must(err)
		if doc == nil {
			must(fmt.Errorf("%w: gtin %s", pipeline.ErrDocumentNotFound, *gtin))
		}
		_, err = svc.Reproject(doc.ID)
		must(err)
		fmt.Printf("reprojected document id=%d gtin=%s\n", doc.ID, *gtin)
	case "taxonomy:flatten":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.TaxonomyPath, "taxonomy source json")
		out := fs.String("out", "", "output json path")
		_ = fs.Parse(args)
		requireFlags("--out is required", *out)

		idx, err := taxonomy.Load(*input)
		must(err)
		for _, code := range idx.Duplicates() {
			log.Warn("duplicate taxonomy code, last occurrence wins", slog.Int("code", code))
		}
		must(pipeline.WriteJSON(idx.Entries(), *out))

		db := openDB(cfg)
		defer db.Close()
		must(db.ReplaceTaxonomy(idx.Entries()))
		must(db.SetMetadata(metaTaxonomyFlattenedAt, time.Now().UTC().Format(time.RFC3339)))
		must(db.SetMetadata(metaTaxonomySource, *input))
		fmt.Printf("flattened entries=%d unique=%d output=%s\n", len(idx.Entries()), idx.Len(), *out)
	case "taxonomy:levels":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.TaxonomyPath, "taxonomy source json")
		code := fs.Int("code", 0, "category code")
		_ = fs.Parse(args)
		if *code == 0 {
			must(fmt.Errorf("--code is required"))
		}

		idx, err := taxonomy.Load(*input)
		must(err)
		levels, ok := idx.LevelNames(*code)
		if !ok {
			must(fmt.Errorf("unknown code %d", *code))
		}
		for i := 1; i <= len(levels); i++ {
			key := fmt.Sprintf("level_%d", i)
			fmt.Printf("%s: %s\n", key, levels[key])
		}
	case "taxonomy:search":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.TaxonomyPath, "taxonomy source json")
		query := fs.String("q", "", "search text")
		size := fs.Int("size", 10, "max hits")
		_ = fs.Parse(args)
		requireFlags("--q is required", *query)

		idx, err := taxonomy.Load(*input)
		must(err)
		searcher, err := taxonomy.NewSearcher(idx)
		must(err)
		defer searcher.Close()
		hits, err := searcher.Search(*query, *size)
		must(err)
		for _, e := range hits {
			fmt.Printf("%d\tlevel=%d\t%s\n", e.Code, e.Level, strings.Join(e.Path, " > "))
		}
	case "serve":
		must(serve(cfg, log))
	default:
		usage()
		os.Exit(1)
	}
}

func transformFile(processor *pipeline.ProcessingService, path, lang string) pipeline.Artifacts {
	blob, err := os.ReadFile(path)
	must(err)
	art, err := processor.Transform(blob, lang)
	must(err)
	return art
}

func openDB(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func artifactDirName(gtin *string, hash string) string {
	if gtin != nil && *gtin != "" {
		return *gtin
	}
	return hash[:12]
}

func requireFlags(msg string, values ...string) {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			must(fmt.Errorf("%s", msg))
		}
	}
}

func usage() {
	fmt.Println("usage: cinsignal <command>")
	fmt.Println("commands:")
	fmt.Println("  cin:snapshot --input=cin.xml --out=snapshot.json")
	fmt.Println("  cin:raw --input=cin.xml --out=snapshot_raw.json")
	fmt.Println("  cin:signals --input=cin.xml --out=signals.json")
	fmt.Println("  cin:row --input=cin.xml [--lang=sv] --out=row.csv|row.xlsx")
	fmt.Println("  cin:process --input=cin.xml [--out=dir]")
	fmt.Println("  cin:fetch --gtin=07310865071811")
	fmt.Println("  cin:reproject --gtin=... | --all [--limit=1000]")
	fmt.Println("  taxonomy:flatten [--input=gpc.json] --out=flat.json")
	fmt.Println("  taxonomy:levels [--input=gpc.json] --code=10000045")
	fmt.Println("  taxonomy:search [--input=gpc.json] --q=bread [--size=10]")
	fmt.Println("  serve")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
