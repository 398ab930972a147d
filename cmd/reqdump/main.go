// Command reqdump runs the requirements-table extractor over a PDF and
// prints the result. Useful for checking what a document yields before
// uploading it.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/testgen/internal/reqtable"
)

func main() {
	csvPath := flag.String("csv", "", "also write the table as CSV to this path")
	verbose := flag.Bool("v", false, "log scan diagnostics")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: reqdump [-csv out.csv] [-v] <file.pdf>")
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	table, _, err := reqtable.ExtractFile(flag.Arg(0), reqtable.DefaultPatterns(), log)
	if err != nil {
		log.Error("extraction failed", "error", err)
		os.Exit(1)
	}
	if table == nil {
		fmt.Println("no requirements table found")
		return
	}

	fmt.Printf("%-24s %s\n", reqtable.Columns[0], reqtable.Columns[1])
	for _, row := range table.Rows {
		fmt.Printf("%-24s %s\n", row.UniqueID, row.Name)
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Error("failed to create csv file", "path", *csvPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := table.WriteCSV(f); err != nil {
			log.Error("failed to write csv", "path", *csvPath, "error", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %d rows to %s\n", len(table.Rows), *csvPath)
	}
}
