package main

import (
	"fmt"
	"io"

	"github.com/bulletin-board-api/internal/config"
	"github.com/bulletin-board-api/internal/database"
	"github.com/bulletin-board-api/internal/legacy"
	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/repository"
	"github.com/bulletin-board-api/internal/service"
	"github.com/bulletin-board-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds what the subcommands share. The database is only opened by
// commands that need it.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *database.DB
	services *service.Services
}

func (a *app) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	a.log = logger.NewWithOptions(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	return nil
}

func (a *app) open() error {
	db, err := database.New(&a.cfg.Database, a.log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(a.cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	a.db = db
	a.services = service.NewServices(repository.New(db), a.cfg, a.log)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "importer",
		Short:         "Import legacy bulletin board exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if cmd.Annotations["db"] == "none" {
				return nil
			}
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(
		newImportCommand(a),
		newImportDirCommand(a),
		newSeedCommand(a),
		newCopyImagesCommand(a),
		newRepairImagesCommand(a),
		newMigrateDownCommand(a),
	)
	return root
}

func newImportCommand(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "import <file.xml>",
		Short: "Import one export file into a board",
		Long: "Import one export file. The board is taken from --category, or derived\n" +
			"from the file name when the flag is omitted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.services.Board.SeedDefaultCategories(ctx); err != nil {
				return err
			}

			job, err := a.services.Import.ImportFile(ctx, args[0], category)
			if job != nil {
				printJob(cmd.OutOrStdout(), job)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "target board name or legacy module label")
	return cmd
}

func newImportDirCommand(a *app) *cobra.Command {
	var prefix, category string

	cmd := &cobra.Command{
		Use:   "import-dir <dir>",
		Short: "Import every matching export file in a directory, in name order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.services.Board.SeedDefaultCategories(ctx); err != nil {
				return err
			}

			jobs, err := a.services.Import.ImportDir(ctx, args[0], prefix, category)
			for _, job := range jobs {
				printJob(cmd.OutOrStdout(), job)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", service.DefaultGalleryPrefix, "file name prefix to match")
	cmd.Flags().StringVarP(&category, "category", "c", "", "target board for every file (default: derived per file)")
	return cmd
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-categories",
		Short: "Create the default boards that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.services.Board.SeedDefaultCategories(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d default categories\n", created, len(models.DefaultCategories))
			return nil
		},
	}
}

func newCopyImagesCommand(a *app) *cobra.Command {
	var dst string

	cmd := &cobra.Command{
		Use:         "copy-images <legacy-files-dir>",
		Short:       "Copy image files from a legacy upload tree into the restore directory",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"db": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dst == "" {
				dst = a.cfg.Import.RestoreImageDir
			}
			result, err := legacy.CopyImages(args[0], dst)
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d images, skipped %d existing\n", result.Copied, result.Skipped)
			if err != nil {
				return err
			}
			a.log.Info().Str("src", args[0]).Str("dst", dst).Int("copied", result.Copied).Msg("Images copied")
			return nil
		},
	}
	cmd.Flags().StringVar(&dst, "dst", "", "destination directory (default: RESTORE_IMAGE_DIR)")
	return cmd
}

func newRepairImagesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repair-images",
		Short: "Point image sources of already imported posts at the restore path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := a.services.Import.RepairImagePaths(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d posts\n", updated)
			return nil
		},
	}
}

func newMigrateDownCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "migrate-down",
		Short:       "Roll back the most recent schema migration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"db": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.New(&a.cfg.Database, a.log)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.MigrateDown(a.cfg.Database.MigrationsPath)
		},
	}
}

func printJob(w io.Writer, job *models.Job) {
	fmt.Fprintf(w, "%s\t%s\t%s\tposts=%d/%d comments=%d failed_comments=%d recovered_fields=%d\n",
		job.FilePath, job.Category, job.Status,
		job.SuccessfulCount, job.TotalRecords,
		job.CommentsImported, job.CommentsFailed, job.FieldsRecovered)
	if job.ErrorMessage != "" {
		fmt.Fprintf(w, "\terror: %s\n", job.ErrorMessage)
	}
}
