package database

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	config "github.com/tutiful/tutiful_backend/configs"
	"github.com/tutiful/tutiful_backend/models"
	"github.com/tutiful/tutiful_backend/utils"
)

var DB *gorm.DB

// GormConfig is shared by the server and the test databases.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	}
}

func ConnectDB() {
	var err error
	dsn := withUTCSession(config.Config("DATABASE_URL"))

	DB, err = gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("🔥 Failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(config.Int("DB_MAX_OPEN_CONNS"))
	sqlDB.SetConnMaxLifetime(config.Duration("DB_CONN_MAX_LIFETIME"))

	fmt.Println("✅ Database connected successfully")
}

// withUTCSession pins the session time zone so DATE columns compare against
// UTC-midnight parameters without shifting a day.
func withUTCSession(dsn string) string {
	if strings.Contains(strings.ToLower(dsn), "timezone") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("timezone", "UTC")
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn + " TimeZone=UTC")
}

func Models() []interface{} {
	return []interface{}{
		&models.Agency{},
		&models.User{},
		&models.Subject{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.Attendance{},
		&models.StudentPayment{},
		&models.TutorPayment{},
		&models.Notification{},
	}
}

func Migrate() {
	if err := DB.AutoMigrate(Models()...); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed.")
		return
	}

	var count int64
	if err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
	}
	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
	}

	log.Println("✅ Admin user seeded successfully")
}
