package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shalevclinic/backend/config"
	"github.com/shalevclinic/backend/internal/observability"
	"github.com/shalevclinic/backend/models"
	"github.com/spf13/cobra"

	repomongo "github.com/shalevclinic/backend/repositories/mongo"
)

// newSeedCommand creates the 'seed' command
func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample services and articles for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runSeed(ctx context.Context) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := repomongo.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(context.Background()) }()

	servicesRepo := repomongo.NewServiceRepository(db, logger)
	articlesRepo := repomongo.NewArticleRepository(db, logger)

	sampleServices := []*models.Service{
		{
			Title:       "Swedish Massage",
			Duration:    "60 minutes",
			Price:       "280 NIS",
			Description: "A classic full-body massage using long flowing strokes to release tension and improve circulation.",
			Benefits:    []string{"Stress relief", "Improved circulation", "Muscle relaxation"},
			Category:    "relaxation",
			SuitableFor: "Anyone looking to unwind",
			IsActive:    true,
			Order:       1,
		},
		{
			Title:       "Deep Tissue Massage",
			Duration:    "60 minutes",
			Price:       "320 NIS",
			Description: "Focused pressure on the deeper muscle layers, aimed at chronic tension and recovery from strain.",
			Benefits:    []string{"Chronic pain relief", "Faster recovery", "Better mobility"},
			Category:    "therapeutic",
			SuitableFor: "Athletes and people with persistent muscle pain",
			IsActive:    true,
			Order:       2,
		},
		{
			Title:       "Sports Massage",
			Duration:    "45 minutes",
			Price:       "300 NIS",
			Description: "Pre- and post-activity treatment combining stretching and targeted muscle work.",
			Benefits:    []string{"Injury prevention", "Performance support"},
			Category:    "sports",
			SuitableFor: "Active people preparing for or recovering from training",
			IsActive:    true,
			Order:       3,
		},
	}

	for _, s := range sampleServices {
		if err := servicesRepo.Create(ctx, s); err != nil {
			return fmt.Errorf("failed to seed service %q: %w", s.Title, err)
		}
	}

	sampleArticles := []*models.Article{
		{
			Title:       "The Benefits of Regular Massage",
			Content:     "Regular massage treatment does more than feel good. It lowers stress hormones, improves sleep quality and keeps muscles supple between training sessions. This article walks through what the research actually supports.",
			IsPublished: true,
			Tags:        []string{"wellness", "massage"},
		},
		{
			Title:       "Preparing for Your First Visit",
			Content:     "Not sure what to expect from a first treatment? Here is how a session at the clinic works, from the health declaration you fill in at the door to aftercare advice for the following day.",
			IsPublished: true,
			Tags:        []string{"guide"},
		},
	}

	for _, a := range sampleArticles {
		if err := articlesRepo.Create(ctx, a); err != nil {
			return fmt.Errorf("failed to seed article %q: %w", a.Title, err)
		}
	}

	fmt.Printf("seeded %d services and %d articles\n", len(sampleServices), len(sampleArticles))
	return nil
}
