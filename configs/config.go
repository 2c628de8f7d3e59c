package config

import (
	"log"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	conf     *viper.Viper
	loadOnce sync.Once
)

func load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	conf = viper.New()
	conf.SetDefault("APP_ENV", "development")
	conf.SetDefault("PORT", "8080")
	conf.SetDefault("SCHEDULE_TIMEZONE", "Asia/Singapore")
	conf.SetDefault("ENROLLMENT_MONTHS", 1)
	conf.SetDefault("ATTENDANCE_WEEKS_AHEAD", 4)
	conf.SetDefault("PLATFORM_FEE_RATE", 0.1)
	conf.SetDefault("CRON_ATTENDANCE", "0 1 * * *")
	conf.SetDefault("CRON_RECONCILE", "5 0 * * *")
	conf.SetDefault("CRON_REMINDERS", "*/5 * * * *")
	conf.SetDefault("CRON_PROGRESSION", "*/5 * * * *")
	conf.SetDefault("DB_MAX_OPEN_CONNS", 25)
	conf.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	conf.SetDefault("ADMIN_FULL_NAME", "Administrator")
	conf.AutomaticEnv()
}

func settings() *viper.Viper {
	loadOnce.Do(load)
	return conf
}

func Config(key string) string {
	return settings().GetString(key)
}

func Int(key string) int {
	return settings().GetInt(key)
}

func Float(key string) float64 {
	return settings().GetFloat64(key)
}

func Duration(key string) time.Duration {
	return settings().GetDuration(key)
}

// Location resolves SCHEDULE_TIMEZONE, falling back to UTC when the zone
// database does not know the name.
func Location() *time.Location {
	name := Config("SCHEDULE_TIMEZONE")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️ Unknown SCHEDULE_TIMEZONE %q, using UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

// Set overrides a setting for the lifetime of the process.
func Set(key string, value interface{}) {
	settings().Set(key, value)
}
