package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"solosphere/internal/config"
	"solosphere/internal/db"
	"solosphere/internal/domain"
	"solosphere/internal/repository"
)

const usage = `uso: migrate <comando>

  up            aplica las migraciones pendientes
  down          revierte todas las migraciones (pide confirmación)
  version       muestra la versión actual del esquema
  force <N>     marca la versión N sin ejecutar SQL
  seed <email>  inserta publicaciones de ejemplo para el comprador dado`

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	loadDotEnv(log.Printf)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "up":
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Esquema al día.")
	case "down":
		fmt.Print("Esto borra jobs y bids. Confirmar [s/N]: ")
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "s") {
			fmt.Println("Cancelado.")
			return
		}
		if err := withMigrator(cfg.DatabaseURL, func(m *migrate.Migrate) error { return m.Down() }); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Migraciones revertidas.")
	case "version":
		err := withMigrator(cfg.DatabaseURL, func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("Sin migraciones aplicadas.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Versión %d (dirty=%t)\n", version, dirty)
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}
	case "force":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			os.Exit(2)
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("versión inválida: %v", err)
		}
		if err := withMigrator(cfg.DatabaseURL, func(m *migrate.Migrate) error { return m.Force(version) }); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Versión forzada a %d.\n", version)
	case "seed":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			os.Exit(2)
		}
		if err := seedJobs(ctx, cfg, logger, os.Args[2]); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Println(usage)
		os.Exit(2)
	}
}

// loadDotEnv carga .env si existe; su ausencia sólo se avisa.
func loadDotEnv(warnf func(format string, args ...any), files ...string) {
	if err := godotenv.Load(files...); err != nil {
		warnf("warning: loading .env: %v", err)
	}
}

func withMigrator(databaseURL string, fn func(*migrate.Migrate) error) error {
	m, err := db.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func seedJobs(ctx context.Context, cfg *config.Config, logger *zap.Logger, buyer string) error {
	buyer = strings.TrimSpace(buyer)
	if buyer == "" {
		return errors.New("buyer email required")
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	jobs := repository.NewPgJobRepository(pool)
	samples := []struct {
		title    string
		category string
		min, max float64
		days     int
	}{
		{"Responsive landing page", "Web Development", 150, 400, 7},
		{"Brand logo refresh", "Graphics Design", 80, 200, 10},
		{"Launch campaign copy", "Digital Marketing", 100, 250, 14},
	}

	now := time.Now().UTC()
	for _, sample := range samples {
		deadline := now.AddDate(0, 0, sample.days)
		job := domain.Job{
			ID:        uuid.NewString(),
			Title:     sample.title,
			Category:  sample.category,
			Deadline:  &deadline,
			MinPrice:  sample.min,
			MaxPrice:  sample.max,
			BuyerInfo: domain.BuyerInfo{Email: buyer},
			CreatedAt: now,
		}
		if err := jobs.Insert(ctx, job); err != nil {
			return fmt.Errorf("insert %q: %w", sample.title, err)
		}
		logger.Info("job seeded", zap.String("job_id", job.ID), zap.String("title", job.Title))
	}
	fmt.Printf("%d publicaciones creadas para %s.\n", len(samples), buyer)
	return nil
}
