package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	Logger  zerolog.Logger
	logFile *os.File
)

// Init configures the global zerolog logger. Format "pretty" switches to the
// console writer; a non-empty file path adds a file sink alongside stdout.
func Init(level, format, filePath string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	var writers []io.Writer
	if format == "pretty" {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		writers = append(writers, os.Stdout)
	}

	if filePath != "" && filePath != "none" && filePath != "disabled" {
		logFile, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open log file, using stdout only")
			logFile = nil
		} else {
			writers = append(writers, logFile)
		}
	}

	Logger = zerolog.New(io.MultiWriter(writers...)).With().
		Timestamp().
		Logger()
	log.Logger = Logger

	Logger.Info().
		Str("log_level", parsed.String()).
		Bool("file_sink", logFile != nil).
		Msg("Logger initialized")
}

func Close() {
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
	}
}
