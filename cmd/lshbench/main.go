// lshbench - corpus dedup benchmark and demo CLI for lshindex
// Builds a MinHash LSH index over a JSON-lines corpus, reports
// near-duplicate clusters, and can optionally serve a live stats API or
// a terminal dashboard while it ingests.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/corpuskit/lshindex/internal/cache"
	"github.com/corpuskit/lshindex/internal/config"
	"github.com/corpuskit/lshindex/internal/normalize"
	"github.com/corpuskit/lshindex/internal/parallel"
	"github.com/corpuskit/lshindex/internal/report"
	"github.com/corpuskit/lshindex/internal/ui"
	"github.com/corpuskit/lshindex/internal/web"
	"github.com/corpuskit/lshindex/pkg/lsh"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

var (
	version = "0.1.0-dev"

	// CLI flags
	corpusPath string
	configFile string
	outputFile string
	outputFmt  string
	verbose    bool
	webMode    bool
	webPort    string
	tuiMode    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lshbench",
		Short: "lshbench - LSH-based near-duplicate index builder",
		Long: `lshbench builds a locality-sensitive hash index over a
corpus of documents and reports near-duplicate clusters.

Features:
  - MinHash signing
  - Banded LSH indexing with tunable band/row split
  - Parallel bulk ingestion over a worker pool
  - JSON/HTML/Markdown dedup reports
  - Live stats API and terminal dashboard`,
		RunE: runBuild,
	}

	rootCmd.Flags().StringVarP(&corpusPath, "corpus", "i", "", "Path to a JSON-lines corpus file")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file (YAML)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Report output file path (default: stdout)")
	rootCmd.Flags().StringVarP(&outputFmt, "format", "f", "", "Report format: json, html, markdown (overrides config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().BoolVar(&webMode, "web", false, "Serve a live stats API while ingesting")
	rootCmd.Flags().StringVar(&webPort, "port", ":9090", "Stats API port")
	rootCmd.Flags().BoolVar(&tuiMode, "tui", false, "Show a terminal dashboard while ingesting")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lshbench version %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Println(ui.Banner)
	fmt.Println()
}

func runBuild(cmd *cobra.Command, args []string) error {
	printBanner()

	if corpusPath == "" {
		fmt.Println("  [!] No corpus specified. Use --corpus")
		fmt.Println()
		fmt.Println("  Quick start:")
		fmt.Println("    lshbench -i corpus.jsonl -o report.json")
		return nil
	}

	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if outputFmt != "" {
		cfg.Output.Format = outputFmt
	}
	if outputFile != "" {
		cfg.Output.OutputFile = outputFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if verbose {
		fmt.Printf("  [*] Corpus: %s\n", corpusPath)
		fmt.Printf("  [*] Bands x Rows: %d x %d (K=%d)\n", cfg.Index.Bands, cfg.Index.Rows, cfg.Index.Bands*cfg.Index.Rows)
		fmt.Printf("  [*] Threshold: %.2f\n", cfg.Index.Threshold)
		fmt.Printf("  [*] Workers: %d\n", cfg.Ingest.Workers)
	}

	items, err := loadCorpus(corpusPath)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	fmt.Printf("  [*] Loaded %d documents\n", len(items))

	signer, err := lsh.NewMinHashSigner(cfg.Index.Bands*cfg.Index.Rows, lsh.Width(cfg.Index.Width), cfg.Index.Seed)
	if err != nil {
		return fmt.Errorf("building signer: %w", err)
	}

	idx, err := lsh.NewMinHashIndex(cfg.Index.Bands, cfg.Index.Rows, lsh.Width(cfg.Index.Width), cfg.Index.Seed, cfg.Index.Threshold, containerOption(cfg.Index.Container))
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	var sigCache *cache.SignatureCache
	if cfg.Ingest.CacheResults {
		sigCache = cache.NewSignatureCache(cache.DefaultConfig())
	}

	var srv *web.Server
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if webMode {
		srv = web.NewServer(idx)
		go func() {
			fmt.Printf("  [*] Stats API listening on http://localhost%s\n", webPort)
			if err := srv.Start(webPort); err != nil {
				fmt.Printf("  [!] Server error: %v\n", err)
			}
		}()
		defer srv.Stop()
	}

	var dash *ui.Dashboard
	if tuiMode {
		dash = ui.NewDashboard()
		dash.SetCorpusSource(corpusPath)
		dash.Start()
		go func() {
			if err := ui.Run(dash); err != nil {
				fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
			}
		}()
	}

	buildStart := time.Now()

	pool, err := parallel.New(parallel.Options{Size: cfg.Ingest.Workers, PreAlloc: true, MaxBlocking: 4 * cfg.Ingest.Workers})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	tokenizer := normalize.NewTokenizer()

	ctx := context.Background()
	if cfg.Ingest.RateLimitRPS > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.Ingest.RateLimitRPS), 1)
		ctx = parallel.WithRateLimiter(ctx, limiter)
	}

	rawItems := make([]lsh.RawItem, 0, len(items))
	cacheKeys := make([]string, 0, len(items))
	for _, it := range items {
		if err := parallel.WaitRateLimit(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		tokens := tokenizer.Tokenize(it.Text)
		key := cache.Key([]byte(it.Text))

		if sigCache != nil {
			if sig, ok := sigCache.Get(key); ok {
				err := idx.Insert(lsh.ID(it.ID), sig)
				if err != nil && verbose {
					fmt.Printf("  [!] insert %s: %v\n", it.ID, err)
				}
				observeInsert(srv, dash, it.ID, err == nil)
				continue
			}
		}

		rawItems = append(rawItems, lsh.RawItem{ID: lsh.ID(it.ID), Tokens: tokens})
		cacheKeys = append(cacheKeys, key)
	}

	// Ingest in chunks so a corpus far larger than the worker pool's
	// queue doesn't pile every signature into memory before the first
	// one is inserted; the backpressure controller slows the producer
	// down once the pool's in-flight count gets ahead of its capacity.
	backpressure := parallel.NewBackpressureController(parallel.DefaultBackpressureConfig())
	const chunkSize = 500

	var allErrs []error
	for start := 0; start < len(rawItems); start += chunkSize {
		end := min(start+chunkSize, len(rawItems))
		chunk := rawItems[start:end]

		stats := pool.Stats()
		backpressure.CheckPressure(int(stats.Submitted-stats.Completed), stats.Capacity*chunkSize)

		chunkErrs := lsh.ParallelBulkInsert(pool, signer, idx, chunk)
		allErrs = append(allErrs, chunkErrs...)
		for range chunk {
			backpressure.RecordProcessed()
		}
	}

	if verbose {
		bpStats := backpressure.Stats()
		fmt.Printf("  [*] Backpressure: %d pressure events, rate %s\n", bpStats.PressureEvents, time.Duration(bpStats.CurrentRateNs))
	}

	errs := allErrs
	for i, err := range errs {
		kept := err == nil
		observeInsert(srv, dash, string(rawItems[i].ID), kept)
		if err != nil && verbose {
			fmt.Printf("  [!] insert %s: %v\n", rawItems[i].ID, err)
		}
		if sigCache != nil && err == nil {
			if sig, ok := idx.Signature(rawItems[i].ID); ok {
				sigCache.Set(cacheKeys[i], sig)
			}
		}
	}

	buildDuration := time.Since(buildStart)
	fmt.Printf("  [*] Indexed %d documents in %s\n", idx.Len(), buildDuration)

	allIDs := make([]lsh.ID, 0, idx.Len())
	for _, it := range items {
		if idx.Contains(lsh.ID(it.ID)) {
			allIDs = append(allIDs, lsh.ID(it.ID))
		}
	}

	clusters, err := idx.Cluster(allIDs)
	if err != nil {
		return fmt.Errorf("clustering: %w", err)
	}

	rpt := buildReport(corpusPath, cfg, clusters, idx, buildDuration)

	if dash != nil {
		dash.Complete()
		time.Sleep(300 * time.Millisecond)
	}

	mgr := report.NewManager(".")

	if cfg.Output.OutputFile == "" {
		if err := mgr.WriteToWriter(rpt, cfg.Output.Format, os.Stdout); err != nil {
			return fmt.Errorf("generating report: %w", err)
		}
	} else {
		f, err := os.Create(cfg.Output.OutputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		if err := mgr.WriteToWriter(rpt, cfg.Output.Format, f); err != nil {
			f.Close()
			return fmt.Errorf("generating report: %w", err)
		}
		f.Close()
		fmt.Printf("  [*] Report written to %s\n", cfg.Output.OutputFile)
	}

	if webMode {
		<-sigChan
		fmt.Println("\n  [*] Shutting down...")
	}

	return nil
}

func observeInsert(srv *web.Server, dash *ui.Dashboard, id string, kept bool) {
	if srv != nil && kept {
		srv.ObserveInsert(lsh.ID(id))
	}
	if dash != nil {
		dash.GetStats().RecordInsert(kept, false)
	}
}

func containerOption(name string) lsh.IndexOption {
	switch strings.ToLower(name) {
	case "hashed_set":
		return lsh.WithContainerFactory(func() lsh.IDContainer { return lsh.NewHashedSetContainer() })
	case "dense_sequence":
		return lsh.WithContainerFactory(func() lsh.IDContainer { return lsh.NewDenseSequenceContainer() })
	default:
		return lsh.WithContainerFactory(func() lsh.IDContainer { return lsh.NewSmallVectorContainer() })
	}
}

// corpusDoc is one line of a JSON-lines corpus.
type corpusDoc struct {
	ID   string
	Text string
}

func loadCorpus(path string) ([]corpusDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []corpusDoc
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		result := gjson.Parse(line)
		id := result.Get("id").String()
		text := result.Get("text").String()
		if id == "" {
			id = fmt.Sprintf("doc-%d", lineNo)
		}

		docs = append(docs, corpusDoc{ID: id, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func buildReport(source string, cfg *config.Config, clusters [][]lsh.ID, idx *lsh.MinHashIndex, buildDuration time.Duration) *report.Report {
	rpt := report.NewReport("lshindex dedup report", source)

	var itemsInGroups int64
	largest := 0

	for i, group := range clusters {
		if len(group) < 2 {
			continue
		}
		members := make([]string, len(group))
		for j, id := range group {
			members[j] = string(id)
		}

		similarity := estimateGroupSimilarity(idx, group)

		rpt.AddFinding(report.Finding{
			ID:                  fmt.Sprintf("cluster-%d", i),
			Algorithm:           string(cfg.Index.Algorithm),
			Members:             members,
			EstimatedSimilarity: similarity,
			Confidence:          report.ConfidenceFor(similarity, cfg.Index.Threshold),
			Timestamp:           time.Now(),
		})

		itemsInGroups += int64(len(group))
		if len(group) > largest {
			largest = len(group)
		}
	}

	rpt.SetStatistics(report.Statistics{
		TotalItems:             int64(idx.Len()),
		DuplicateGroups:        int64(len(rpt.Findings)),
		ItemsInDuplicateGroups: itemsInGroups,
		LargestGroupSize:       largest,
		BuildDuration:          buildDuration,
	})

	return rpt
}

// estimateGroupSimilarity reports the lowest pairwise similarity within a
// cluster against its first member, a conservative estimate of how
// tightly the whole group agrees.
func estimateGroupSimilarity(idx *lsh.MinHashIndex, group []lsh.ID) float64 {
	if len(group) < 2 {
		return 1.0
	}
	head, ok := idx.Signature(group[0])
	if !ok {
		return 0
	}

	lowest := 1.0
	for _, id := range group[1:] {
		sig, ok := idx.Signature(id)
		if !ok {
			continue
		}
		if s := head.EstimateJaccard(sig); s < lowest {
			lowest = s
		}
	}
	return lowest
}
