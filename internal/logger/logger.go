package logger

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kafka"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	ServiceName string
	Level       string
	// 空字串表示不寫檔
	FilePath     string
	KafkaBrokers []string
	// 空字串表示不送 kafka
	KafkaTopic string
}

// Logger 持有需要關閉的 writer
type Logger struct {
	zerolog.Logger
	closers []io.Closer
}

// New 建立 logger 並設為全域 log.Logger
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{os.Stdout}
	l := &Logger{}

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, err
		}
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		writers = append(writers, fileWriter)
		l.closers = append(l.closers, fileWriter)
	}

	if cfg.KafkaTopic != "" && len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.DefaultConfig(cfg.KafkaBrokers, cfg.KafkaTopic))
		if err != nil {
			return nil, err
		}
		// 非同步寫入, 避免 broker 變慢拖住請求
		dw := diode.NewWriter(NewKafkaWriter(producer), 1000, 10*time.Millisecond, func(missed int) {
			log.Warn().Int("missed", missed).Msg("kafka log writer dropped messages")
		})
		writers = append(writers, dw)
		l.closers = append(l.closers, dw)
	}

	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Logger()
	log.Logger = l.Logger
	return l, nil
}

func (l *Logger) Close() error {
	var errs []error
	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
