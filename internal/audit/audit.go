package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Log appends one line per admin action to an append-only file, formatted
// as "<ISO-timestamp> | <ACTION> | <details>". Write failures are logged
// at error level and swallowed; a moderation action is never blocked by
// logging trouble.
type Log struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// New builds an audit log writing to path, creating parent directories
// as needed.
func New(path string, logger *zap.Logger) *Log {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("create audit log dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	return &Log{path: path, logger: logger, now: time.Now}
}

// Record appends one entry. It never returns an error.
func (l *Log) Record(action, details string) {
	line := fmt.Sprintf("%s | %s | %s\n",
		l.now().UTC().Format(time.RFC3339), action, details)

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.logger.Error("open audit log", zap.String("action", action), zap.Error(err))
		return
	}
	defer file.Close()

	if _, err := file.WriteString(line); err != nil {
		l.logger.Error("append audit entry", zap.String("action", action), zap.Error(err))
	}
}
