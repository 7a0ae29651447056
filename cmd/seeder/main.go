package main

import (
	"fmt"
	"os"
	"path/filepath"

	"perangkat-desa-backend/config"
	"perangkat-desa-backend/internal/database"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"
	"perangkat-desa-backend/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "seeder",
		Short:         "Alat bantu database Perangkat Desa",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = cfg.NewLogger()

			// Koneksi DB sekaligus AutoMigrate
			a.db, err = config.ConnectDB(cfg.Database)
			return err
		},
	}
	cmd.AddCommand(newSeedCmd(a), newImportCmd(a), newPurgeCmd(a))
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Isi admin kecamatan pertama dan pengaturan awal",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := database.LoadSeed(file)
			if err != nil {
				return err
			}
			a.log.Info("Menjalankan SeedAll...")
			if err := database.SeedAll(cmd.Context(), a.db, seed, a.cfg.KecamatanName, a.log); err != nil {
				return err
			}
			a.log.Info("Seeding selesai")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File seed YAML (default: seed bawaan)")
	return cmd
}

// noopPublisher dipakai karena tidak ada subscriber live di proses CLI.
type noopPublisher struct{}

func (noopPublisher) Publish(...string) {}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx|file.xls>...",
		Short: "Import file Excel perangkat desa memakai pengaturan upload tersimpan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := usecase.NewSettingUsecase(repository.NewSettingRepository(a.db), a.cfg.KecamatanName)
			uc := usecase.NewPerangkatUsecase(repository.NewPerangkatRepository(a.db), settings, noopPublisher{}, a.log, a.cfg.KecamatanName)
			session := model.Session{Role: model.RoleAdminKecamatan, Nama: "seeder"}

			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				res, err := uc.Import(cmd.Context(), session, filepath.Base(path), f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			}
			return nil
		},
	}
}

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Hapus catatan token logout yang sudah kadaluwarsa",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := usecase.NewAuthUsecase(repository.NewAkunRepository(a.db), a.cfg.JWTSecret, a.cfg.JWTTTL, a.log)
			auth.PurgeRevoked(cmd.Context())
			return nil
		},
	}
}
