package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"marketplace-portal/internal/config"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/locations"
)

// Loads the administrative division files into the locations tables.
// Safe to re-run: existing rows are matched by parent and name.
func main() {
	configPath := flag.String("config", "", "path to config file")
	rwandaFile := flag.String("rwanda", "", "Rwanda locations JSON (overrides config)")
	drcFile := flag.String("drc", "", "DR Congo locations JSON (overrides config)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = getEnv("CONFIG_PATH", "/app/config/portal_config.yaml")
	}

	appConfig, err := config.LoadConfig(path)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", path, err)
		appConfig = config.DefaultConfig()
	}

	mysqlCfg := appConfig.Database.MySQL
	portStr := ""
	if mysqlCfg.Port > 0 {
		portStr = fmt.Sprintf("%d", mysqlCfg.Port)
	}

	gormDB, err := database.NewGormDB(
		getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
		getEnvOrConfig(portStr, "DB_PORT", "3306"),
		getEnvOrConfig(mysqlCfg.User, "DB_USER", "portal_user"),
		getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "portal_pass"),
		getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "portal_db"),
	)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	seeder := locations.NewSeeder(gormDB.DB())

	rwPath := *rwandaFile
	if rwPath == "" {
		rwPath = appConfig.Seed.RwandaFile
	}
	if rwPath != "" {
		if err := seeder.SeedRwandaFile(rwPath); err != nil {
			log.Fatalf("Failed to seed Rwanda locations: %v", err)
		}
	}

	drcPath := *drcFile
	if drcPath == "" {
		drcPath = appConfig.Seed.DRCFile
	}
	if drcPath != "" {
		if err := seeder.SeedDRCFile(drcPath); err != nil {
			log.Fatalf("Failed to seed DR Congo locations: %v", err)
		}
	}

	log.Println("[Seed] done")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
