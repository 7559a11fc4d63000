package changelog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// RunScript executes the repository's changelog generator script with dir as
// its working directory. Relative script paths resolve against dir. A missing
// script is not an error: the step reports skipped so releases still work in
// repositories that have not adopted a generator.
func RunScript(ctx context.Context, dir, script string, stdout, stderr io.Writer) (skipped bool, err error) {
	if strings.TrimSpace(script) == "" {
		return true, nil
	}
	path := script
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, script)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("stat changelog generator: %w", statErr)
	}
	cmd := commandContext(ctx, path) //nolint:gosec
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("changelog generator %s: %w", script, err)
	}
	return false, nil
}
