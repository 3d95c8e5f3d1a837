// Package main implements the redshift-extract binary: discover a
// table's schema, unload it through S3 staging, and emit the decoded
// records as JSON lines on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lakebound/redshift-extract/internal/config"
	"github.com/lakebound/redshift-extract/internal/connect"
	"github.com/lakebound/redshift-extract/internal/discovery"
	"github.com/lakebound/redshift-extract/internal/extract"
	"github.com/lakebound/redshift-extract/internal/schemamap"
	"github.com/lakebound/redshift-extract/internal/storage"
	"github.com/lakebound/redshift-extract/internal/unload"
	"github.com/lakebound/redshift-extract/pkg/types"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		table       string
		schemaName  string
		format      string
		listTables  bool
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&table, "table", "", "Table to extract (required unless -list)")
	flag.StringVar(&schemaName, "schema", "public", "Database schema the table lives in")
	flag.StringVar(&format, "format", "delimited", "Export encoding: delimited or parquet")
	flag.BoolVar(&listTables, "list", false, "List extractable tables and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "redshift-extract - bulk table extraction via S3 unload\n\n")
		fmt.Fprintf(os.Stderr, "Usage: redshift-extract [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("redshift-extract %s (%s)\n", version, commit)
		return
	}
	if table == "" && !listTables {
		flag.Usage()
		os.Exit(2)
	}

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := loadConfig(configFile)
	if err != nil {
		fatal(err)
	}

	var options map[string]any
	switch format {
	case "delimited":
	case "parquet":
		options = unload.ParquetOptions()
	default:
		fatal(fmt.Errorf("unknown format %q (must be delimited or parquet)", format))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if listTables {
		if err := list(ctx, cfg, schemaName); err != nil {
			fatal(err)
		}
		return
	}

	if err := run(ctx, cfg, schemaName, table, options); err != nil {
		fatal(err)
	}
}

// list prints the extractable tables of the configured schemas, or of
// the -schema flag when no schemas are configured.
func list(ctx context.Context, cfg *config.Config, schemaName string) error {
	conn, err := connect.Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	schemas := cfg.Schemas
	if len(schemas) == 0 {
		schemas = []string{schemaName}
	}

	disc := &discovery.Discoverer{DB: conn}
	for _, s := range schemas {
		tables, err := disc.DiscoverTables(ctx, s)
		if err != nil {
			return err
		}
		for _, t := range tables {
			fmt.Printf("%s.%s\n", s, t)
		}
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, schemaName, table string, options map[string]any) error {
	conn, err := connect.Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	disc := &discovery.Discoverer{
		DB:     conn,
		Mapper: schemamap.New(cfg.DatesAsString, cfg.SuperAsObject),
	}
	schema, err := disc.DiscoverSchema(ctx, schemaName, table)
	if err != nil {
		return err
	}
	if schema.Len() == 0 {
		return fmt.Errorf("table %s.%s not found or has no columns", schemaName, table)
	}

	pipeline := &extract.Pipeline{
		S3Config: storage.S3Config{
			Region:       cfg.AWSRegion,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3UsePathStyle,
		},
		Unloader: &unload.Executor{DB: conn, IAMRole: cfg.CopyRoleARN},
		Options:  options,
	}

	req := extract.Request{
		Table:  schemaName + "." + table,
		Schema: schema,
		Bucket: cfg.S3Bucket,
		Prefix: cfg.S3KeyPrefix,
	}

	enc := json.NewEncoder(os.Stdout)
	return pipeline.Run(ctx, req, func(record types.Record) error {
		return enc.Encode(record)
	})
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "redshift-extract: %v\n", err)
	os.Exit(1)
}
