package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pyhub-apps/pdfsheet"
	"github.com/pyhub-apps/pdfsheet/internal/config"
	"github.com/pyhub-apps/pdfsheet/internal/driver"
	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: benchmark <pdf-file>")
		os.Exit(1)
	}

	pdfPath := os.Args[1]

	// Warm-up run
	doc, err := pdfsheet.Open(pdfPath)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	doc.Close()

	// Benchmark PDF opening
	start := time.Now()
	doc, err = pdfsheet.Open(pdfPath)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	openTime := time.Since(start)
	pageCount := doc.PageCount()

	fmt.Printf("=== pdfsheet Benchmark ===\n")
	fmt.Printf("File: %s\n", pdfPath)
	fmt.Printf("Pages: %d\n", pageCount)
	fmt.Printf("Open time: %v\n", openTime)

	// Benchmark object extraction
	var totalObjects int
	start = time.Now()
	for i := 0; i < pageCount; i++ {
		page, err := doc.GetPage(i)
		if err != nil {
			continue
		}
		objects, err := page.GetObjects()
		if err != nil {
			log.Printf("Page %d: %v", i+1, err)
			continue
		}
		totalObjects += len(objects.Chars) + len(objects.Lines) + len(objects.Rects)
	}
	objectTime := time.Since(start)

	fmt.Printf("Object extraction time: %v\n", objectTime)
	fmt.Printf("Total objects: %d\n", totalObjects)
	fmt.Printf("Objects/sec: %.0f obj/sec\n", float64(totalObjects)/objectTime.Seconds())

	// Benchmark table extraction; objects are cached, so this measures the
	// algorithm alone
	algorithm := pdfsheet.NewSpreadsheetAlgorithm()
	var totalTables int
	start = time.Now()
	for i := 0; i < pageCount; i++ {
		page, err := doc.GetPage(i)
		if err != nil {
			continue
		}
		tables, err := algorithm.Extract(page)
		if err != nil {
			log.Printf("Page %d: %v", i+1, err)
			continue
		}
		totalTables += len(tables)
	}
	tableTime := time.Since(start)
	doc.Close()

	fmt.Printf("Table extraction time: %v\n", tableTime)
	fmt.Printf("Total tables found: %d\n", totalTables)

	// Benchmark the full driver run at different worker counts
	if pageCount > 0 {
		fmt.Printf("\n=== Driver ===\n")
		for _, workers := range []int{1, 2, 4, 8} {
			cfg := config.Default()
			cfg.Path = pdfPath
			cfg.PageLimit = pageCount
			cfg.Workers = workers
			cfg.Exhaustion = pdf.ExhaustionStop

			start = time.Now()
			if err := driver.Run(context.Background(), cfg, io.Discard); err != nil {
				log.Fatalf("Driver run failed: %v", err)
			}
			elapsed := time.Since(start)
			fmt.Printf("Workers %d: %v (%.2f pages/sec)\n", workers, elapsed, float64(pageCount)/elapsed.Seconds())
		}
	}

	// Summary
	totalTime := openTime + objectTime + tableTime
	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Total processing time: %v\n", totalTime)
	if pageCount > 0 {
		fmt.Printf("Pages/sec: %.2f\n", float64(pageCount)/totalTime.Seconds())
	}
}
