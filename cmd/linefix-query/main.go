package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"linefix/internal/database"
	"linefix/internal/exitcodes"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", "", "Path to normalization history database")
	recent := flag.Int("recent", 0, "Show N most recent events")
	stats := flag.Bool("stats", false, "Show normalization statistics")
	action := flag.String("action", "", "Filter by action (NORMALIZE, ERROR)")
	ext := flag.String("ext", "", "Filter by file extension (e.g. .js)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest normalized files")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -db is required")
		usage()
		os.Exit(exitcodes.InvalidConfig)
	}

	// Open database
	db, err := database.NewHistoryDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	// Handle different query modes
	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *ext != "":
		showByExtension(db, *ext, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	default:
		usage()
		os.Exit(exitcodes.InvalidConfig)
	}
}

func usage() {
	flag.Usage()
	fmt.Println("\nExamples:")
	fmt.Println("  linefix-query --db history.db --recent 10       # Show 10 most recent events")
	fmt.Println("  linefix-query --db history.db --stats           # Show normalization statistics")
	fmt.Println("  linefix-query --db history.db --action ERROR    # Show failed files")
	fmt.Println("  linefix-query --db history.db --ext .js         # Show normalized .js files")
	fmt.Println("  linefix-query --db history.db --path '/src/%'   # Show events under /src")
	fmt.Println("  linefix-query --db history.db --largest 10      # Show 10 largest rewrites")
}

func showRecent(db *database.HistoryDB, limit int, jsonOutput bool) {
	records, err := db.GetRecent(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to query recent events: %v", err)
	}
	printRecords(records, jsonOutput)
}

func showByAction(db *database.HistoryDB, action string, jsonOutput bool) {
	records, err := db.GetByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}
	printRecords(records, jsonOutput)
}

func showByExtension(db *database.HistoryDB, ext string, jsonOutput bool) {
	records, err := db.GetByExtension(ext)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by extension: %v", err)
	}
	printRecords(records, jsonOutput)
}

func showByPath(db *database.HistoryDB, pattern string, jsonOutput bool) {
	records, err := db.GetByPath(pattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}
	printRecords(records, jsonOutput)
}

func showLargest(db *database.HistoryDB, limit int, jsonOutput bool) {
	records, err := db.GetLargest(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to query largest rewrites: %v", err)
	}
	printRecords(records, jsonOutput)
}

func printRecords(records []database.Record, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(records) == 0 {
		fmt.Println("No matching events")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tACTION\tPATH\tENCODING\tCRLF\tCR\tSIZE\tERROR")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Action,
			r.Path,
			r.Encoding,
			r.CRLFCount,
			r.CRCount,
			formatBytes(r.Size),
			r.ErrorMessage,
		)
	}
	w.Flush()
}

func showStats(db *database.HistoryDB, days int, jsonOutput bool) {
	stats, err := db.GetStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Normalization Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Files normalized:  %d\n", stats.TotalNormalized)
	fmt.Printf("Errors:            %d\n", stats.TotalErrors)
	fmt.Printf("Bytes rewritten:   %s\n", formatBytes(stats.TotalBytes))
	fmt.Printf("CRLF rewritten:    %d\n", stats.TotalCRLF)
	fmt.Printf("Lone CR rewritten: %d\n\n", stats.TotalCR)

	if len(stats.ByExtension) > 0 {
		fmt.Println("By Extension:")
		for ext, count := range stats.ByExtension {
			fmt.Printf("  %-15s %d\n", ext, count)
		}
		fmt.Println()
	}

	if len(stats.ByEncoding) > 0 {
		fmt.Println("By Encoding:")
		for enc, count := range stats.ByEncoding {
			fmt.Printf("  %-15s %d\n", enc, count)
		}
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGT"[exp])
}
