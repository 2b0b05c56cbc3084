package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile stamps LastRun and writes every collector to path in the
// node_exporter textfile format. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	r.LastRun.Set(float64(time.Now().Unix()))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
