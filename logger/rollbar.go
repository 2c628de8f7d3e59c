package logger

import (
	"log"

	"github.com/rollbar/rollbar-go"

	config "github.com/tutiful/tutiful_backend/configs"
)

var reporting bool

// Init enables Rollbar reporting when ROLLBAR_TOKEN is configured.
func Init() {
	token := config.Config("ROLLBAR_TOKEN")
	if token == "" {
		log.Println("Rollbar token not configured, errors are only logged locally.")
		rollbar.SetEnabled(false)
		return
	}

	rollbar.SetToken(token)
	rollbar.SetEnvironment(config.Config("APP_ENV"))
	rollbar.SetServerRoot("github.com/tutiful/tutiful_backend")
	rollbar.SetEnabled(true)
	reporting = true
	log.Println("✅ Rollbar error reporting enabled.")
}

// Error logs err and forwards it to Rollbar with the given custom fields.
func Error(err error, extras ...map[string]interface{}) {
	if err == nil {
		return
	}

	custom := map[string]interface{}{}
	for _, e := range extras {
		for k, v := range e {
			custom[k] = v
		}
	}

	if len(custom) > 0 {
		log.Printf("🔥 %v %v", err, custom)
	} else {
		log.Printf("🔥 %v", err)
	}

	if reporting {
		rollbar.Error(err, custom)
	}
}

// Close flushes pending reports.
func Close() {
	if reporting {
		rollbar.Close()
	}
}
