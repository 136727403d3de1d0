package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"tide/interpreter-go/pkg/driver"
)

func runDeps(args []string, logger *slog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "tide deps requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "tide deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall(logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall(logger *slog.Logger) int {
	manifestPath, err := driver.FindManifest(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestFile, err)
		return 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	cacheDir, err := driver.Home()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", driver.EnvHome, err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := driver.LockPath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Tool = cliToolVersion

	installer := newDependencyInstaller(manifest, cacheDir, logger)
	changed, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range installer.logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockFile, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockFile, lockPath)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

// dependencyInstaller resolves a manifest's dependencies, following the
// manifests of path and git packages transitively.
type dependencyInstaller struct {
	manifest *driver.Manifest
	cacheDir string
	logger   *slog.Logger
	logs     []string

	resolved  map[string]*driver.LockedPackage
	resolving map[string]bool
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string, logger *slog.Logger) *dependencyInstaller {
	return &dependencyInstaller{
		manifest: manifest,
		cacheDir: cacheDir,
		logger:   logger,
	}
}

// Install resolves every dependency into lock and reports whether the lock
// changed. Entries no longer reachable from the manifest are dropped.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, error) {
	d.resolved = make(map[string]*driver.LockedPackage)
	d.resolving = make(map[string]bool)
	d.logs = nil

	if err := d.installAll(d.manifest); err != nil {
		return false, err
	}

	changed := false
	names := make([]string, 0, len(d.resolved))
	for name, pkg := range d.resolved {
		names = append(names, name)
		if lock.Put(pkg) {
			changed = true
		}
	}
	if lock.Prune(names) {
		changed = true
	}
	return changed, nil
}

func (d *dependencyInstaller) installAll(manifest *driver.Manifest) error {
	for _, name := range manifest.DependencyNames() {
		if err := d.install(manifest, name, manifest.Dependencies[name]); err != nil {
			return err
		}
	}
	return nil
}

func (d *dependencyInstaller) install(owner *driver.Manifest, name string, spec *driver.DependencySpec) error {
	if d.resolving[name] {
		return fmt.Errorf("dependency cycle through %q", name)
	}

	var (
		pkg *driver.LockedPackage
		dir string
		err error
	)
	if spec.IsGit() {
		pkg, dir, err = d.fetchGit(name, spec)
	} else {
		pkg, dir, err = d.fetchPath(owner, name, spec)
	}
	if err != nil {
		return err
	}

	if existing, ok := d.resolved[name]; ok {
		if existing.Source != pkg.Source {
			return fmt.Errorf("dependency %q resolves to both %s and %s", name, existing.Source, pkg.Source)
		}
		return nil
	}
	d.resolved[name] = pkg
	d.logs = append(d.logs, fmt.Sprintf("Resolved %s %s (%s)", name, pkg.Version, pkg.Source))
	d.logger.Debug("dependency resolved", "name", name, "version", pkg.Version, "source", pkg.Source)

	nested, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("dependency %q: %w", name, err)
	}
	d.resolving[name] = true
	defer delete(d.resolving, name)
	return d.installAll(nested)
}

func (d *dependencyInstaller) fetchPath(owner *driver.Manifest, name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	dir := spec.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(owner.Dir(), filepath.FromSlash(dir))
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("dependency %q: %s is not a directory", name, dir)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, dir, err)
	}
	version := "path"
	if m, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestFile)); err == nil && m.Version != "" {
		version = m.Version
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  version,
		Source:   driver.PathSource(dir),
		Checksum: checksum,
	}, dir, nil
}

func (d *dependencyInstaller) fetchGit(name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	baseDir := filepath.Join(d.cacheDir, "pkg", "src", name)
	version, commit, err := ensureGitCheckout(baseDir, spec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	checkoutDir := filepath.Join(baseDir, driver.SanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, checkoutDir, err)
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", spec.Git, commit),
		Checksum: checksum,
	}, checkoutDir, nil
}

// ensureGitCheckout clones the repository and checks out the pinned revision
// into baseDir/<version>, reusing an existing checkout of the same version.
func ensureGitCheckout(baseDir string, spec *driver.DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	defer os.RemoveAll(tmpDir)

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: spec.Git})
	if err != nil {
		return "", "", fmt.Errorf("git clone %s: %w", spec.Git, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, driver.SanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.RemoveAll(filepath.Join(tmpDir, ".git")); err != nil {
		return "", "", err
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *driver.DependencySpec) (plumbing.Revision, string, error) {
	switch {
	case spec.Rev != "":
		return plumbing.Revision(spec.Rev), spec.Rev, nil
	case spec.Tag != "":
		return plumbing.Revision("refs/tags/" + spec.Tag), spec.Tag, nil
	case spec.Branch != "":
		return plumbing.Revision("refs/heads/" + spec.Branch), spec.Branch, nil
	}
	return "", "", errors.New("git dependencies require rev, tag or branch")
}

// dirChecksum hashes file names and contents in walk order, skipping .git.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
