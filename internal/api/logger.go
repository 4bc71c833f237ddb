package api

import "github.com/edctrack/exposure/internal/logger"

func getLogger() logger.Logger {
	return logger.Global().Module("api")
}
