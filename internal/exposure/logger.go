package exposure

import "github.com/edctrack/exposure/internal/logger"

func getLogger() logger.Logger {
	return logger.Global().Module("exposure")
}
