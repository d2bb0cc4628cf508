package convert

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	execute "github.com/alexellis/go-execute/v2"
	"go.uber.org/zap"
)

// ErrGhostscriptMissing reports that the gs binary is not installed
var ErrGhostscriptMissing = fmt.Errorf("ghostscript (gs) not found, install from https://www.ghostscript.com/")

// Ghostscript runs the gs binary for size-targeted PDF compression.
// This is a separate mode from the primary in-process compression path.
type Ghostscript struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGhostscript creates a runner for the given binary with a per-invocation timeout
func NewGhostscript(binary string, timeout time.Duration, logger *zap.Logger) *Ghostscript {
	return &Ghostscript{binary: binary, timeout: timeout, logger: logger}
}

// QualityTier maps a target output size in KB to a gs -dPDFSETTINGS tier
func QualityTier(targetKB int) string {
	switch {
	case targetKB <= 500:
		return "screen"
	case targetKB <= 1500:
		return "ebook"
	default:
		return "printer"
	}
}

// CompressToTarget rewrites inPath to outPath at the quality tier derived
// from targetKB. Returns ErrGhostscriptMissing when the binary is absent.
func (g *Ghostscript) CompressToTarget(ctx context.Context, inPath, outPath string, targetKB int) error {
	if _, err := exec.LookPath(g.binary); err != nil {
		return ErrGhostscriptMissing
	}

	tier := QualityTier(targetKB)
	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		fmt.Sprintf("-dPDFSETTINGS=/%s", tier),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		fmt.Sprintf("-sOutputFile=%s", outPath),
		inPath,
	}

	g.logger.Debug("running ghostscript",
		zap.String("binary", g.binary),
		zap.String("tier", tier),
		zap.Int("target_kb", targetKB))

	runCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	task := execute.ExecTask{
		Command: g.binary,
		Args:    args,
	}

	res, err := task.Execute(runCtx)
	if err != nil {
		return fmt.Errorf("ghostscript execution failed: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("ghostscript exited with code %d: %s", res.ExitCode, res.Stderr)
	}

	return nil
}
