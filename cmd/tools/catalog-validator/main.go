// cmd/tools/catalog-validator/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"product-chatbot/internal/catalog"
	"product-chatbot/internal/common/validation"
)

const defaultCatalogPath = "data/products.json"

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)

	validatePath := validateCmd.String("path", defaultCatalogPath, "Path to catalog file")
	validateJSON := validateCmd.Bool("json", false, "Print the report as JSON")
	statsPath := statsCmd.String("path", defaultCatalogPath, "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		ok, err := runValidate(*validatePath, *validateJSON, os.Stdout)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			os.Exit(1)
		}

	case "stats":
		statsCmd.Parse(os.Args[2:])
		if err := runStats(*statsPath, os.Stdout); err != nil {
			fmt.Printf("Error reading catalog: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

// runValidate prints the report and returns false when the catalog has
// schema errors. Duplicate keys are printed as warnings only.
func runValidate(path string, asJSON bool, w io.Writer) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	report, err := validation.ValidateCatalog(data)
	if err != nil {
		return false, err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return report.Valid(), enc.Encode(report)
	}

	for _, issue := range report.Errors {
		fmt.Fprintf(w, "ERROR   %s\n", issue)
	}
	for _, issue := range report.Warnings {
		fmt.Fprintf(w, "WARNING %s\n", issue)
	}

	if report.Valid() {
		fmt.Fprintf(w, "Catalog validation passed: %d products, %d warnings.\n", report.Products, len(report.Warnings))
	} else {
		fmt.Fprintf(w, "Catalog validation failed: %d errors, %d warnings.\n", len(report.Errors), len(report.Warnings))
	}
	return report.Valid(), nil
}

type stats struct {
	Products     int
	Categories   map[string]int
	Brands       int
	MissingPrice int
	MissingStock int
	OutOfStock   int
	AveragePrice float64
}

func collectStats(path string) (*stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	products, err := catalog.Parse(data)
	if err != nil {
		return nil, err
	}

	s := &stats{Products: len(products), Categories: map[string]int{}}
	brands := map[string]struct{}{}
	var priceSum float64
	var priced int

	for _, p := range products {
		category := p.Category
		if category == "" {
			category = "(none)"
		}
		s.Categories[category]++
		if p.Brand != "" {
			brands[p.Brand] = struct{}{}
		}
		if p.Price == nil {
			s.MissingPrice++
		} else {
			priceSum += *p.Price
			priced++
		}
		switch {
		case p.Stock == nil:
			s.MissingStock++
		case *p.Stock <= 0:
			s.OutOfStock++
		}
	}
	s.Brands = len(brands)
	if priced > 0 {
		s.AveragePrice = priceSum / float64(priced)
	}
	return s, nil
}

func runStats(path string, w io.Writer) error {
	s, err := collectStats(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Products:      %d\n", s.Products)
	fmt.Fprintf(w, "Brands:        %d\n", s.Brands)
	fmt.Fprintf(w, "Missing price: %d\n", s.MissingPrice)
	fmt.Fprintf(w, "Missing stock: %d\n", s.MissingStock)
	fmt.Fprintf(w, "Out of stock:  %d\n", s.OutOfStock)
	fmt.Fprintf(w, "Average price: %.2f\n", s.AveragePrice)
	fmt.Fprintln(w, "Categories:")

	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %d\n", name, s.Categories[name])
	}
	return nil
}

func help() {
	fmt.Println("Usage: catalog-validator <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  validate -path <file> [-json]   Check the catalog against the product schema")
	fmt.Println("  stats    -path <file>           Summarise the catalog contents")
	fmt.Println("  help                            Show this help")
}
