package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared JSON-line logger used across the service.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// RequestLog carries the per-request fields the HTTP middleware reports for
// every completed marketplace call.
type RequestLog struct {
	RequestID string
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	Remote    string
	UserAgent string
}

// LogRequest emits one structured JSON line per completed request.
func LogRequest(rl RequestLog) {
	entry := map[string]any{
		"ts":          time.Now().UTC().Format(time.RFC3339Nano),
		"level":       "info",
		"msg":         "request_complete",
		"request_id":  rl.RequestID,
		"method":      rl.Method,
		"path":        rl.Path,
		"status":      rl.Status,
		"duration_ms": float64(rl.Duration.Microseconds()) / 1000.0,
		"remote":      rl.Remote,
		"user_agent":  rl.UserAgent,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"ts":"error","level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
