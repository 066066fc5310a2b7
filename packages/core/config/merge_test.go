package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pytest-watch/ptw/packages/core/pytest"
)

// fakeHost simulates pytest: it reports a resolved config file through
// the observers and otherwise returns a fixed exit code.
type fakeHost struct {
	path  string
	code  int
	err   error
	calls int
}

type fakeHostConfig struct {
	path string
}

func (c fakeHostConfig) RootDir() string { return "/" }
func (c fakeHostConfig) IniFile() string { return c.path }

func (h *fakeHost) Main(ctx context.Context, args []string, observers ...pytest.Observer) (int, error) {
	h.calls++
	if h.err != nil {
		return h.code, h.err
	}
	for _, obs := range observers {
		if obs.ConfigResolved(fakeHostConfig{path: h.path}) {
			return pytest.ExitOK, nil
		}
	}
	return h.code, nil
}

func TestLocateAppendsCollectOnly(t *testing.T) {
	var got []string
	host := hostFunc(func(ctx context.Context, args []string, observers ...pytest.Observer) (int, error) {
		got = append([]string(nil), args...)
		return pytest.ExitNoTestsCollected, nil
	})

	_, err := Locate(context.Background(), host, []string{"-x", "tests"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "tests", "--collect-only"}, got)
}

// hostFunc adapts a function to the pytest.Host interface.
type hostFunc func(ctx context.Context, args []string, observers ...pytest.Observer) (int, error)

func (f hostFunc) Main(ctx context.Context, args []string, observers ...pytest.Observer) (int, error) {
	return f(ctx, args, observers...)
}

func TestLocateFindsPath(t *testing.T) {
	host := &fakeHost{path: "/proj/tox.ini"}

	path, err := Locate(context.Background(), host, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "/proj/tox.ini", path)
	assert.Equal(t, 1, host.calls)
}

func TestLocateNoConfigFile(t *testing.T) {
	host := &fakeHost{code: pytest.ExitNoTestsCollected}

	path, err := Locate(context.Background(), host, nil, false)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLocateInterrupted(t *testing.T) {
	host := &fakeHost{code: pytest.ExitInterrupted}

	_, err := Locate(context.Background(), host, nil, false)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestLocateCollectError(t *testing.T) {
	host := &fakeHost{code: pytest.ExitUsageError}

	_, err := Locate(context.Background(), host, nil, false)
	var collectErr *CollectError
	require.ErrorAs(t, err, &collectErr)
	assert.Equal(t, pytest.ExitUsageError, collectErr.Code)
}

func TestLocateSilencedRetriesOnce(t *testing.T) {
	host := &fakeHost{code: pytest.ExitInterrupted}

	_, err := Locate(context.Background(), host, nil, true)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, 2, host.calls)
}

func TestLocateSilencedSuccessDoesNotRetry(t *testing.T) {
	host := &fakeHost{path: "/proj/pytest.ini"}

	path, err := Locate(context.Background(), host, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "/proj/pytest.ini", path)
	assert.Equal(t, 1, host.calls)
}

func TestMergeNoConfigFile(t *testing.T) {
	host := &fakeHost{code: pytest.ExitNoTestsCollected}
	args := Args{"--clear": false, "--onpass": "", "--ignore": []string{}}

	ok := Merge(context.Background(), host, args, nil, false, false)

	assert.True(t, ok)
	assert.Equal(t, Args{"--clear": false, "--onpass": "", "--ignore": []string{}}, args)
}

func TestMergeInterrupted(t *testing.T) {
	host := &fakeHost{code: pytest.ExitInterrupted}
	args := Args{"--clear": false}

	assert.False(t, Merge(context.Background(), host, args, nil, false, false))
}

func TestMergeCollectFailure(t *testing.T) {
	host := &fakeHost{code: pytest.ExitInternalError}
	args := Args{"--clear": false}

	assert.False(t, Merge(context.Background(), host, args, nil, false, false))
}

func TestMergeHostError(t *testing.T) {
	host := &fakeHost{err: errors.New("pytest not found")}
	args := Args{"--clear": false}

	assert.False(t, Merge(context.Background(), host, args, nil, false, false))
}

func TestMergeNoSection(t *testing.T) {
	path := writeConfig(t, "[pytest]\naddopts = -x\n")
	host := &fakeHost{path: path}
	args := Args{"--clear": false, "--onpass": "", "--ignore": []string{}}

	ok := Merge(context.Background(), host, args, nil, false, false)

	assert.True(t, ok)
	assert.Equal(t, Args{"--clear": false, "--onpass": "", "--ignore": []string{}}, args)
}

func TestMergeUnreadableConfigIsNoop(t *testing.T) {
	host := &fakeHost{path: "/does/not/exist.ini"}
	args := Args{"--clear": false}

	ok := Merge(context.Background(), host, args, nil, false, false)

	assert.True(t, ok)
	assert.Equal(t, Args{"--clear": false}, args)
}

func TestMergeAppliesOptions(t *testing.T) {
	path := writeConfig(t, `[pytest-watch]
ignore = [ "a", "b" ]
clear = true
onpass = say passed
`)
	host := &fakeHost{path: path}
	args := Args{
		"--ignore": []string{},
		"--clear":  false,
		"--onpass": "",
		"--onfail": "",
	}

	ok := Merge(context.Background(), host, args, nil, false, false)

	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, args["--ignore"])
	assert.Equal(t, true, args["--clear"])
	assert.Equal(t, "say passed", args["--onpass"])
	assert.Equal(t, "", args["--onfail"])
}

func TestMergeCLIPrecedence(t *testing.T) {
	path := writeConfig(t, `[pytest-watch]
clear = false
onpass = from config
spool = 500
`)
	host := &fakeHost{path: path}
	args := Args{
		"--clear":  true,
		"--onpass": "from cli",
		"--spool":  "",
	}

	ok := Merge(context.Background(), host, args, nil, false, false)

	require.True(t, ok)
	assert.Equal(t, true, args["--clear"])
	assert.Equal(t, "from cli", args["--onpass"])
	assert.Equal(t, "500", args["--spool"])
}

func TestMergeListAccumulates(t *testing.T) {
	path := writeConfig(t, "[pytest-watch]\nignore = [y, z]\n")
	host := &fakeHost{path: path}
	args := Args{"--ignore": []string{"x"}}

	// A non-empty CLI list is a set value: config must not touch it.
	ok := Merge(context.Background(), host, args, nil, false, false)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, args["--ignore"])

	// An unset list accumulates the config sequence.
	args = Args{"--ignore": []string{}}
	ok = Merge(context.Background(), host, args, nil, false, false)
	require.True(t, ok)
	assert.Equal(t, []string{"y", "z"}, args["--ignore"])
}

func TestMergeScalarIntoList(t *testing.T) {
	path := writeConfig(t, "[pytest-watch]\nignore = build\n")
	host := &fakeHost{path: path}
	args := Args{"--ignore": []string{}}

	ok := Merge(context.Background(), host, args, nil, false, false)

	require.True(t, ok)
	assert.Equal(t, []string{"build"}, args["--ignore"])
}

func TestMergeInvalidBoolSkipped(t *testing.T) {
	path := writeConfig(t, "[pytest-watch]\nclear = maybe\n")
	host := &fakeHost{path: path}
	args := Args{"--clear": false}

	ok := Merge(context.Background(), host, args, nil, false, false)

	require.True(t, ok)
	assert.Equal(t, false, args["--clear"])
}

func TestMergeKeySetUnchanged(t *testing.T) {
	path := writeConfig(t, `[pytest-watch]
ignore = [a]
unknown = value
`)
	host := &fakeHost{path: path}
	args := Args{"--ignore": []string{}, "--clear": false, "notanoption": "x"}

	ok := Merge(context.Background(), host, args, nil, false, false)

	require.True(t, ok)
	assert.Len(t, args, 3)
	assert.Contains(t, args, "--ignore")
	assert.Contains(t, args, "--clear")
	assert.Equal(t, "x", args["notanoption"])
}
