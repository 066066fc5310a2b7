package pytest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecHost runs the pytest binary as a subprocess. The child's output is
// forwarded to os.Stdout/os.Stderr as it arrives, which keeps it subject
// to any scoped stream suppression the caller has in place.
type ExecHost struct {
	// Binary is the pytest executable to run. Empty means "pytest"
	// resolved through PATH.
	Binary string

	// Dir is the working directory for the invocation. Empty means the
	// current directory.
	Dir string
}

// execConfig is the resolved state parsed from pytest's session header.
// It implements IniFiler; the header is the only channel an external
// process has into the resolved config, for old and new pytest alike.
type execConfig struct {
	rootDir string
	iniFile string
}

func (c *execConfig) RootDir() string { return c.rootDir }

func (c *execConfig) IniFile() string {
	if c.iniFile == "" {
		return ""
	}
	if filepath.IsAbs(c.iniFile) {
		return c.iniFile
	}
	// pytest prints the config file relative to rootdir
	return filepath.Join(c.rootDir, c.iniFile)
}

// Main runs pytest, scanning its output for the session header line. Once
// the header is seen the observers are notified; if any observer requests
// a stop the child process is killed and the run reports ExitOK.
func (h *ExecHost) Main(ctx context.Context, args []string, observers ...Observer) (int, error) {
	bin := h.Binary
	if bin == "" {
		bin = "pytest"
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = h.Dir
	cmd.Stderr = os.Stderr

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return ExitInternalError, fmt.Errorf("connecting to %s: %w", bin, err)
	}

	if err := cmd.Start(); err != nil {
		return ExitInternalError, fmt.Errorf("starting %s: %w", bin, err)
	}

	stopped := scanOutput(pipe, os.Stdout, observers, func() {
		_ = cmd.Process.Kill()
	})

	err = cmd.Wait()
	if stopped {
		return ExitOK, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return ExitInternalError, fmt.Errorf("running %s: %w", bin, err)
	}
	return ExitOK, nil
}

// scanOutput forwards pytest's output line by line, firing the observers
// when the session header appears. Returns true if an observer stopped
// the run (kill is invoked before returning in that case).
func scanOutput(r io.Reader, w io.Writer, observers []Observer, kill func()) bool {
	stopped := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(w, line)
		if stopped {
			continue
		}
		cfg, ok := parseHeader(line)
		if !ok {
			continue
		}
		for _, obs := range observers {
			if obs.ConfigResolved(cfg) {
				stopped = true
			}
		}
		if stopped {
			kill()
		}
	}
	// The scanner gives up on lines longer than its buffer. Keep
	// draining so the child never blocks on a full stdout pipe.
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(w, r)
	}
	return stopped
}

// parseHeader recognizes pytest's session header, e.g.
//
//	rootdir: /home/dev/proj, configfile: tox.ini
//	rootdir: /home/dev/proj, inifile: setup.cfg
//
// Newer pytest labels the field "configfile", older versions "inifile".
func parseHeader(line string) (Config, bool) {
	if !strings.HasPrefix(strings.TrimSpace(line), "rootdir:") {
		return nil, false
	}

	cfg := &execConfig{}
	for _, field := range strings.Split(line, ",") {
		name, value, found := strings.Cut(field, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		switch name {
		case "rootdir":
			cfg.rootDir = value
		case "configfile", "inifile":
			cfg.iniFile = value
		}
	}
	return cfg, true
}
