package config

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/fwsetup/fsapi"
)

func TestNewStateIsACopy(t *testing.T) {
	a := NewState()
	a.Env["SOMETHING"] = "x"
	b := NewState()
	_, ok := b.Env["SOMETHING"]
	qt.Check(t, ok, qt.IsFalse)
	qt.Check(t, b.WorkingDirectory, qt.Not(qt.Equals), "")
}

func TestStateAccessors(t *testing.T) {
	state := State{Env: map[string]string{}}
	qt.Check(t, GitPath(state), qt.Equals, "git")
	qt.Check(t, Debug(state), qt.IsFalse)
	qt.Check(t, OmnicacheFromEnv(state), qt.Equals, "")

	state.Env[EnvFwsetupGit] = "/opt/git/bin/git"
	state.Env[EnvOmnicachePath] = "/cache"
	qt.Check(t, GitPath(state), qt.Equals, "/opt/git/bin/git")
	qt.Check(t, OmnicacheFromEnv(state), qt.Equals, "/cache")

	for value, expect := range map[string]bool{
		"1":     true,
		"true":  true,
		"yes":   true,
		"0":     false,
		"false": false,
		"":      false,
	} {
		state.Env[EnvFwsetupDebug] = value
		qt.Check(t, Debug(state), qt.Equals, expect, qt.Commentf("value %q", value))
	}
}

func TestResolveOmnicache(t *testing.T) {
	dir := t.TempDir()

	path, valid := ResolveOmnicache("")
	qt.Check(t, path, qt.Equals, "")
	qt.Check(t, valid, qt.IsTrue)

	path, valid = ResolveOmnicache(dir)
	qt.Check(t, path, qt.Equals, dir)
	qt.Check(t, valid, qt.IsTrue)

	path, valid = ResolveOmnicache(filepath.Join(dir, "missing"))
	qt.Check(t, path, qt.Equals, "")
	qt.Check(t, valid, qt.IsFalse)

	file := filepath.Join(dir, "file")
	qt.Assert(t, os.WriteFile(file, nil, 0644), qt.IsNil)
	path, valid = ResolveOmnicache(file)
	qt.Check(t, path, qt.Equals, "")
	qt.Check(t, valid, qt.IsFalse)
}

func TestFindWorkspaceRoot(t *testing.T) {
	fsys := fstest.MapFS{
		"home/user/ws/.git/HEAD":                     &fstest.MapFile{Data: []byte("ref: refs/heads/main\n")},
		"home/user/ws/Platforms/Board/README":        &fstest.MapFile{},
		"home/user/ws/MU_BASECORE/.git":              &fstest.MapFile{Data: []byte("gitdir: ../.git/modules/MU_BASECORE\n")},
		"home/user/ws/MU_BASECORE/MdePkg/MdePkg.dec": &fstest.MapFile{},
		"tmp/elsewhere/file":                         &fstest.MapFile{},
	}

	for _, tt := range []struct {
		search string
		expect string
		found  bool
	}{
		{"home/user/ws", "home/user/ws", true},
		{"home/user/ws/Platforms/Board", "home/user/ws", true},
		{"home/user/ws/MU_BASECORE/MdePkg", "home/user/ws/MU_BASECORE", true},
		{"tmp/elsewhere", "", false},
	} {
		root, found, err := FindWorkspaceRoot(fsys, "", tt.search)
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, found, qt.Equals, tt.found, qt.Commentf("search %q", tt.search))
		qt.Check(t, root, qt.Equals, tt.expect, qt.Commentf("search %q", tt.search))
	}
}

func TestFindWorkspaceRootAtBasis(t *testing.T) {
	fsys := fstest.MapFS{
		".git/HEAD": &fstest.MapFile{},
		"sub/file":  &fstest.MapFile{},
	}
	root, found, err := FindWorkspaceRoot(fsys, "", "sub")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, found, qt.IsTrue)
	qt.Check(t, root, qt.Equals, ".")
}

func TestResolveWorkspaceRoot(t *testing.T) {
	ws := t.TempDir()
	qt.Assert(t, os.Mkdir(filepath.Join(ws, ".git"), 0755), qt.IsNil)
	nested := filepath.Join(ws, "Platforms", "Board")
	qt.Assert(t, os.MkdirAll(nested, 0755), qt.IsNil)
	file := filepath.Join(ws, "README")
	qt.Assert(t, os.WriteFile(file, nil, 0644), qt.IsNil)

	t.Run("search-upward", func(t *testing.T) {
		root, err := ResolveWorkspaceRoot(State{WorkingDirectory: nested}, "")
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, root, qt.Equals, ws)
	})
	t.Run("given-directory", func(t *testing.T) {
		root, err := ResolveWorkspaceRoot(State{WorkingDirectory: "/"}, nested)
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, root, qt.Equals, nested)
	})
	t.Run("given-relative", func(t *testing.T) {
		prev, err := os.Getwd()
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, os.Chdir(ws), qt.IsNil)
		t.Cleanup(func() { os.Chdir(prev) })
		root, err := ResolveWorkspaceRoot(State{WorkingDirectory: ws}, "Platforms")
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, root, qt.Equals, filepath.Join(ws, "Platforms"))
	})
	for name, given := range map[string]string{
		"given-missing": filepath.Join(ws, "missing"),
		"given-file":    file,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveWorkspaceRoot(State{WorkingDirectory: nested}, given)
			qt.Check(t, serum.Code(err), qt.Equals, fsapi.ECodeWorkspace)
		})
	}
	t.Run("not-found", func(t *testing.T) {
		outside := t.TempDir()
		_, err := ResolveWorkspaceRoot(State{WorkingDirectory: outside}, "")
		qt.Check(t, serum.Code(err), qt.Equals, fsapi.ECodeWorkspace)
	})
}

func TestReadUserDefaults(t *testing.T) {
	dir := t.TempDir()
	defaults, err := ReadUserDefaults(filepath.Join(dir, "missing.yaml"))
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, defaults, qt.Equals, UserDefaults{})

	filename := filepath.Join(dir, "config.yaml")
	qt.Assert(t, os.WriteFile(filename, []byte("omnicache: /srv/omnicache\nforce: true\n"), 0644), qt.IsNil)
	defaults, err = ReadUserDefaults(filename)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, defaults, qt.Equals, UserDefaults{Omnicache: "/srv/omnicache", Force: true})

	qt.Assert(t, os.WriteFile(filename, []byte("omnicache: [\n"), 0644), qt.IsNil)
	_, err = ReadUserDefaults(filename)
	qt.Check(t, serum.Code(err), qt.Equals, fsapi.ECodeSerialization)
}
