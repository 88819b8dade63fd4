package store

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// CLIReader is the query-side surface: it shells out to the store's own
// CLI binary and parses its pipe-delimited, one-row-per-line output.
type CLIReader struct {
	Dir string // directory containing the `corrosion` binary and config.toml
}

// NewCLIReader builds a reader against the store CLI installed in dir.
func NewCLIReader(dir string) *CLIReader {
	return &CLIReader{Dir: dir}
}

// Query implements Reader. Empty stdout yields an empty (non-nil) slice.
// Any failure to invoke the CLI or a non-zero exit is reported as an error;
// callers are expected to log it and continue with an empty result.
func (r *CLIReader) Query(ctx context.Context, sql string) ([][]string, error) {
	bin := filepath.Join(r.Dir, "corrosion")
	cfg := filepath.Join(r.Dir, "config.toml")

	cmd := exec.CommandContext(ctx, bin, "query", "--config", cfg, sql)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("store query failed: %w: %s", err, stderr.String())
	}

	out := strings.TrimRight(stdout.String(), "\n")
	if out == "" {
		return [][]string{}, nil
	}

	lines := strings.Split(out, "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, strings.Split(line, "|"))
	}
	return rows, nil
}

// Scalar returns the first cell of the first row.
func (r *CLIReader) Scalar(ctx context.Context, sql string) (string, bool) {
	rows, err := r.Query(ctx, sql)
	if err != nil || len(rows) == 0 || len(rows[0]) == 0 {
		return "", false
	}
	return rows[0][0], true
}
