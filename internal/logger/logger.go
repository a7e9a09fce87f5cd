package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New создает логгер: консоль плюс файл в режиме дозаписи, если путь задан
func New(levelStr string, filePath string) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if filePath == "" {
		log.SetOutput(os.Stdout)
		return log, nopCloser{}, nil
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("ошибка создания папки логов: %w", err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка открытия файла логов: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))

	return log, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
