package config

import (
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"little-lemon-api/models"
	"little-lemon-api/roles"
)

var DB *gorm.DB

// JWTSecret signs tokens — read from env or fallback for local development.
var JWTSecret []byte

func init() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	JWTSecret = []byte(getEnv("JWT_SECRET", "little_lemon_dev_secret"))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the store selected by DB_DRIVER (sqlite by default, postgres
// via DB_DSN), migrates the schema and seeds the three role groups.
func InitDB() {
	var dialector gorm.Dialector
	switch getEnv("DB_DRIVER", "sqlite") {
	case "postgres":
		dialector = postgres.Open(os.Getenv("DB_DSN"))
	default:
		dialector = sqlite.Open(getEnv("DB_PATH", "little_lemon.db"))
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database connected and migrated")
}

// Migrate creates the schema and seeds the role groups. Separated from
// InitDB so tests can run it against their own in-memory database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Category{},
		&models.MenuItem{},
		&models.Cart{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return err
	}

	for _, role := range roles.All() {
		group := models.Group{Name: string(role)}
		if err := db.Where("name = ?", group.Name).FirstOrCreate(&group).Error; err != nil {
			return err
		}
	}
	return nil
}
