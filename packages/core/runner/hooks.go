package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runHook executes a lifecycle hook command through the shell. Hook
// failures are reported but never interrupt the watch session.
func (r *Runner) runHook(ctx context.Context, command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: hook command %q failed: %v\n", command, err)
	}
}
