package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/supplyradar/supplyradar/internal/application"
	"github.com/supplyradar/supplyradar/internal/config"
)

var categoryCmd = &cobra.Command{
	Use:   "category <name>",
	Short: "Run a category-focused procurement risk scan",
	Long: `Score procurement risk for one retail category using commodity-filtered
price feeds, and report its bottlenecks, supply network, and
recommendations as JSON.

Known categories: ` + strings.Join(knownCategories(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: runCategory,
}

func knownCategories() []string {
	names := make([]string, 0, len(application.CategoryCommodities))
	for name := range application.CategoryCommodities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runCategory(cmd *cobra.Command, args []string) error {
	category := args[0]
	if _, ok := application.CategoryCommodities[category]; !ok {
		return fmt.Errorf("unknown category %q (known: %s)", category, strings.Join(knownCategories(), ", "))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	svc, _, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	report, err := svc.ComputeCategoryRisk(ctx, category)
	if err != nil {
		return fmt.Errorf("category scan failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
