package seeds

import (
	"context"
	"log"

	"gorm.io/gorm"

	"colegio_backend/internals/configs"
	"colegio_backend/internals/seeds/demo"
)

func RunAllSeeds(ctx context.Context, db *gorm.DB, cfg configs.Config) error {
	log.Println("📥 Seed: colegio de demostración")
	if err := demo.Seed(ctx, db, cfg.DefaultAccountPassword); err != nil {
		return err
	}
	log.Println("✅ Seeds terminados")
	return nil
}
