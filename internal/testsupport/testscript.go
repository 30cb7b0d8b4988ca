// Package testsupport builds the gridws binary for testscript tests and
// provides the custom script commands they use.
package testsupport

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce  sync.Once
	gridwsPath string
	buildErr   error
)

// BuildGridws builds the gridws binary once and returns its path.
func BuildGridws(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "gridws-bin-")
		if err != nil {
			buildErr = err
			return
		}

		gridwsPath = filepath.Join(binDir, "gridws")
		cmd := exec.Command("go", "build", "-o", gridwsPath, ".")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build gridws: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return gridwsPath
}

// SetupScriptEnv points $GRIDWS at the binary and gives every script its own
// home directory. The store defaults to gridworkspaces.db in $WORK.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("GRIDWS", BuildGridws(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("GRIDWS_LOG_LEVEL", "warn")
	return nil
}

var importedConfig = regexp.MustCompile(`imported config ([0-9a-f-]{36})`)

// CmdConfigID finds the id printed by "gridws import" in a file and stores it
// in an env var.
func CmdConfigID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("configid does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: configid FILE VAR")
	}

	m := importedConfig.FindStringSubmatch(ts.ReadFile(args[0]))
	if m == nil {
		ts.Fatalf("no imported config id in %s", args[0])
	}
	ts.Setenv(args[1], m[1])
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
