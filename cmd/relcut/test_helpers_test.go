package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pelletier/go-toml/v2"

	"relcut/internal/config"
)

type cliTestEnv struct {
	baseDir     string
	repoDir     string
	bareDir     string
	configPath  string
	journalPath string
	repo        *gogit.Repository
}

const pluginSource = `package plugin

// Upload tracks one finished upload.
//
// .. versionadded:: 3.1.6
//    Track uploads per user.
type Upload struct{}
`

// setupCLITestEnv builds a plugin checkout at version 3.1.6a0 with one
// commit, a local bare remote named origin, and a configuration file pointing
// relcut at it. HOME is isolated so no host git or relcut configuration
// leaks in.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config"))

	repoDir := filepath.Join(base, "repo")
	if err := os.MkdirAll(filepath.Join(repoDir, "plugin"), 0o755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}
	raw, err := gogit.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	repoCfg, err := raw.Config()
	if err != nil {
		t.Fatalf("read repo config: %v", err)
	}
	repoCfg.User.Name = "Release Tester"
	repoCfg.User.Email = "release@example.org"
	if err := raw.SetConfig(repoCfg); err != nil {
		t.Fatalf("set repo config: %v", err)
	}

	files := map[string]string{
		"VERSION":          "3.1.6a0\n",
		"PLUGININFO":       "Name=\"Upload Stats\"\nVersion=\"3.1.6a0\"\n",
		"plugin/widget.go": pluginSource,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(repoDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	commitAll(t, raw, "Initial commit")

	bareDir := filepath.Join(base, "remote.git")
	if _, err := gogit.PlainInit(bareDir, true); err != nil {
		t.Fatalf("init bare remote: %v", err)
	}
	if _, err := raw.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{bareDir}}); err != nil {
		t.Fatalf("create remote: %v", err)
	}

	stateDir := filepath.Join(base, "state")
	journalPath := filepath.Join(stateDir, "journal.db")

	cfgVal := config.Default()
	cfgVal.Paths.Root = repoDir
	cfgVal.Paths.StateDir = stateDir
	cfgVal.Release.MetadataFile = "PLUGININFO"
	cfgVal.Changelog.SourceDir = "plugin"
	cfgVal.Changelog.UseBuiltin = true
	cfgVal.Journal.Path = journalPath
	cfgVal.Logging.Level = "error"

	data, err := toml.Marshal(cfgVal)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:     base,
		repoDir:     repoDir,
		bareDir:     bareDir,
		configPath:  configPath,
		journalPath: journalPath,
		repo:        raw,
	}
}

func commitAll(t *testing.T, repo *gogit.Repository, msg string) {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		t.Fatalf("add all: %v", err)
	}
	sig := &object.Signature{Name: "Release Tester", Email: "release@example.org", When: time.Now()}
	if _, err := wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output does not contain %q:\n%s", want, output)
	}
}

func readRepoFile(t *testing.T, env *cliTestEnv, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.repoDir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}
