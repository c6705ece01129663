package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/config"
	"github.com/nurpe/linen-admin/internal/db"
	"github.com/nurpe/linen-admin/internal/excel"
	"github.com/nurpe/linen-admin/internal/logger"
	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/pdf"
	"github.com/nurpe/linen-admin/internal/pricing"
	"github.com/nurpe/linen-admin/internal/repository"
	"github.com/nurpe/linen-admin/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, database, log, err := connect()
		if err != nil {
			return err
		}
		if err := db.Migrate(database); err != nil {
			return err
		}
		log.Info().Msg("schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed-categories",
	Short: "Create the standard linen categories",
	Long:  "Creates every category of the standard price list. Categories that already exist are left untouched.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, database, log, err := connect()
		if err != nil {
			return err
		}
		created, err := seedCategories(cmd, repository.NewCategoryRepository(database), pricing.DefaultEntries)
		if err != nil {
			return err
		}
		log.Info().Int("created", created).Int("total", len(pricing.DefaultEntries)).Msg("categories seeded")
		return nil
	},
}

var (
	exportMonth  string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export-report",
	Short: "Write a monthly invoice report to a file",
	Example: `  linenctl export-report --month 2024-03
  linenctl export-report --month 2024-all --format pdf --out reports/`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, database, log, err := connect()
		if err != nil {
			return err
		}

		prices := pricing.DefaultTable(cfg.Pricing.FallbackPrice)
		reports := service.NewReportService(
			repository.NewBatchRepository(database),
			repository.NewClientRepository(database),
			repository.NewSettingsRepository(database),
			analytics.NewCalculator(prices),
			excel.NewGenerator(cfg.Pricing.Currency),
			pdf.NewGenerator(cfg.Pricing.Currency),
			log,
		)

		file, err := reports.Export(cmd.Context(), exportMonth, exportFormat)
		if err != nil {
			return err
		}
		path := filepath.Join(exportOut, file.FileName)
		if err := os.WriteFile(path, file.Content, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "period as YYYY-MM or YYYY-all")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "xlsx or pdf")
	exportCmd.Flags().StringVar(&exportOut, "out", ".", "output directory")
	_ = exportCmd.MarkFlagRequired("month")
}

type categoryCreator interface {
	Create(ctx context.Context, category model.LinenCategory) (*model.LinenCategory, error)
}

func seedCategories(cmd *cobra.Command, categories categoryCreator, entries []pricing.Entry) (int, error) {
	created := 0
	for _, entry := range entries {
		_, err := categories.Create(cmd.Context(), model.LinenCategory{
			Name:         entry.Name,
			PricePerItem: entry.Price,
			IsActive:     true,
		})
		if repository.IsUniqueViolation(err) {
			fmt.Fprintf(cmd.OutOrStdout(), "skip %s: already exists\n", entry.Name)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create %s: %w", entry.Name, err)
		}
		created++
	}
	return created, nil
}

func connect() (*config.Config, *gorm.DB, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Environment)
	// migrations run explicitly from the migrate command
	cfg.DB.AutoMigrate = false
	database, err := db.New(cfg, log)
	if err != nil {
		return nil, nil, log, err
	}
	return cfg, database, log, nil
}
