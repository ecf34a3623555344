package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/fnevents/pkg/fnevents/recording"
	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const definitions = `
functions:
  - name: OpenDoc
    value: 1
  - name: CloseDoc
    value: 2
    goal: Perf
  - name: Internal
    value: 3
    special: true
  - name: Broken
    value: "not-a-number"
`

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"catalog", "check", "sessions", "decode"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestCatalogCommand(t *testing.T) {
	defs := writeFile(t, "defs.yaml", definitions)

	out, stderr, err := run(t, "catalog", defs, "--version", "9.0.1")
	require.NoError(t, err)
	assert.Equal(t, "9.0.1\n1 OpenDoc Undefined\n2 CloseDoc Perf\n", out)
	assert.Contains(t, stderr, "function definition skipped")
	assert.Contains(t, stderr, "function=Broken")
}

func TestCatalogCommandDebugFromConfig(t *testing.T) {
	defs := writeFile(t, "defs.yaml", definitions)
	cfg := writeFile(t, "fnevents.toml", `
[fnevents]
debug = true
debug_marker = "DBG_"
product_version = "2.0"
definitions = "`+filepath.ToSlash(defs)+`"
log_level = "error"
`)

	out, stderr, err := run(t, "catalog", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "2.0\n1 DBG_OpenDoc Undefined\n2 DBG_CloseDoc Perf\n", out)
	assert.Empty(t, stderr)

	out, _, err = run(t, "catalog", "--config", cfg, "--debug=false", "--version", "2.1")
	require.NoError(t, err)
	assert.Equal(t, "2.1\n1 OpenDoc Undefined\n2 CloseDoc Perf\n", out)
}

func TestCatalogCommandJSON(t *testing.T) {
	defs := writeFile(t, "defs.yaml", definitions)

	out, _, err := run(t, "catalog", defs, "--version", "1.0", "--format", "json", "--log-level", "error")
	require.NoError(t, err)

	var doc struct {
		Version string `json:"version"`
		Entries []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
			Goal string `json:"goal"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "1.0", doc.Version)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "CloseDoc", doc.Entries[1].Name)
	assert.Equal(t, "Perf", doc.Entries[1].Goal)
}

func TestCatalogCommandErrors(t *testing.T) {
	_, _, err := run(t, "catalog")
	assert.ErrorContains(t, err, "no definitions file")
	assert.Equal(t, exitCommandError, exitCode(err))

	_, _, err = run(t, "catalog", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitCommandError, exitCode(err))

	_, _, err = run(t, "catalog", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")

	_, _, err = run(t, "catalog", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestCheckCommand(t *testing.T) {
	clean := writeFile(t, "clean.yaml", "functions:\n  - name: A\n    value: 1\n")
	out, _, err := run(t, "check", clean)
	require.NoError(t, err)
	assert.Equal(t, "1 definitions, 0 problems\n", out)

	dirty := writeFile(t, "dirty.json", `{"functions":[
		{"name":"A","value":1},
		{"name":"B","value":1},
		{"name":"Has Space","value":2}
	]}`)
	out, _, err = run(t, "check", dirty)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.Contains(t, out, "B: value 1 already used by A")
	assert.Contains(t, out, "Has Space: name contains whitespace")
	assert.Contains(t, out, "3 definitions, 2 problems")
}

func seedRecording(t *testing.T) (string, string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "trace.db")
	store, err := recording.NewSQLiteStore(db)
	require.NoError(t, err)

	rec := recording.NewRecorder(store)
	rec.Handle(wire.SendCatalog{Text: "9.0.1\n1 OpenDoc Undefined\n2 CloseDoc Perf\n"})
	rec.Handle(wire.BlockStart{Message: "readme.md", FunctionID: 1, BlockID: 1})
	rec.Handle(wire.BlockStop{FunctionID: 1, Tick: 42, BlockID: 1})
	rec.Handle(wire.BlockStart{Message: "pending", FunctionID: 2, BlockID: 2})
	require.NoError(t, rec.Err())
	require.NoError(t, store.Close())
	return db, rec.Session()
}

func TestSessionsCommand(t *testing.T) {
	db, session := seedRecording(t)

	out, _, err := run(t, "sessions", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "SESSION")
	assert.Contains(t, out, session)

	out, _, err = run(t, "sessions", "--db", db, "--format", "json")
	require.NoError(t, err)
	var infos []struct {
		ID     string `json:"ID"`
		Events int    `json:"Events"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, session, infos[0].ID)
	assert.Equal(t, 4, infos[0].Events)

	_, _, err = run(t, "sessions", "--db", db, "--delete", session, "--log-level", "error")
	require.NoError(t, err)
	out, _, err = run(t, "sessions", "--db", db, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestDecodeCommand(t *testing.T) {
	db, session := seedRecording(t)

	out, _, err := run(t, "decode", "--db", db, "--session", session)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "SendCatalog version=9.0.1 entries=2")
	assert.Contains(t, lines[1], `BlockStart OpenDoc(1) block=1 "readme.md"`)
	assert.Contains(t, lines[2], "BlockStop OpenDoc(1) block=1 tick=42 elapsed=")
	assert.Contains(t, lines[3], "BlockStart CloseDoc(2) block=2")
	assert.Equal(t, `open: function=2 block=2 "pending"`, lines[4])
}

func TestDecodeCommandJSON(t *testing.T) {
	db, session := seedRecording(t)

	out, _, err := run(t, "decode", "--db", db, "--session", session, "--format", "json")
	require.NoError(t, err)

	var report struct {
		Lines []struct {
			Event    string `json:"event"`
			Function string `json:"function"`
		} `json:"lines"`
		Open []struct {
			BlockID int `json:"block_id"`
		} `json:"open"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Lines, 4)
	assert.Equal(t, "OpenDoc", report.Lines[2].Function)
	require.Len(t, report.Open, 1)
	assert.Equal(t, 2, report.Open[0].BlockID)
}

func TestDecodeCommandUnknownSession(t *testing.T) {
	db, _ := seedRecording(t)
	_, _, err := run(t, "decode", "--db", db, "--session", "nope")
	assert.ErrorContains(t, err, "has no events")
	assert.Equal(t, exitCommandError, exitCode(err))
}

func TestMissingDatabaseIsNotCreated(t *testing.T) {
	db := filepath.Join(t.TempDir(), "nothere.db")

	for _, args := range [][]string{
		{"sessions", "--db", db},
		{"decode", "--db", db, "--session", "s"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, _, err := run(t, args...)
			assert.ErrorContains(t, err, "does not exist")
			assert.Equal(t, exitCommandError, exitCode(err))
			assert.NoFileExists(t, db)
		})
	}
}

func TestDecodeCommandUndecodableRecord(t *testing.T) {
	db, session := seedRecording(t)
	store, err := recording.NewSQLiteStore(db)
	require.NoError(t, err)
	_, err = store.Append(session, wire.IDLog, []byte{0xc1})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, stderr, err := run(t, "decode", "--db", db, "--session", session)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.ErrorContains(t, err, "1 records could not be decoded")
	assert.Contains(t, out, "BlockStop OpenDoc(1) block=1 tick=42")
	assert.Contains(t, stderr, "record skipped")
}
