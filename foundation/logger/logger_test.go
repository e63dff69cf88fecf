package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/logger"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	log, err := logger.New("TEST", path)
	if err != nil {
		t.Fatalf("Should be able to construct a logger: %s", err)
	}

	log.Infow("startup", "status", "testing")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Should be able to read the log file: %s", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("Should write json log entries: %s", err)
	}

	if entry["service"] != "TEST" || entry["status"] != "testing" || entry["msg"] != "startup" {
		t.Fatalf("Should log the service and fields: %v", entry)
	}
}
