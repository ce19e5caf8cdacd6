package ps

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"
	"github.com/nickyhof/LightDB/core"
)

var (
	ErrNotInitialized  = errors.New("persistence layer not initialized")
	ErrMalformedSchema = errors.New("malformed schema file")
	ErrMalformedRow    = errors.New("malformed row")
)

const (
	tablesDir   = "tables"
	metadataDir = "tables-metadata"
)

// Persistence stores schema and table files on a billy filesystem. When
// history is enabled the same filesystem is the worktree of a git
// repository and every snapshot becomes a commit.
type Persistence struct {
	fs   billy.Filesystem
	repo *git.Repository
}

// IsInitialized returns true if the persistence layer has a filesystem
func (p *Persistence) IsInitialized() bool {
	return p != nil && p.fs != nil
}

// ensureInitialized checks if the persistence layer is initialized and returns an error if not
func (p *Persistence) ensureInitialized() error {
	if !p.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

// HistoryEnabled reports whether mutations are recorded as git commits.
func (p *Persistence) HistoryEnabled() bool {
	return p.IsInitialized() && p.repo != nil
}

// Filesystem exposes the data directory to collaborators that keep their
// own files next to the tables (the user store).
func (p *Persistence) Filesystem() billy.Filesystem {
	return p.fs
}

func NewMemoryPersistence(history bool) (Persistence, error) {
	wt := memfs.New()

	if !history {
		return Persistence{fs: wt}, nil
	}

	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(wt))
	if err != nil {
		return Persistence{}, err
	}

	return Persistence{
		fs:   wt,
		repo: repo,
	}, nil
}

func NewFilePersistence(baseDir string, history bool) (Persistence, error) {
	// Ensure base directory exists
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return Persistence{}, fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	wt := osfs.New(baseDir)

	if !history {
		return Persistence{fs: wt}, nil
	}

	fs, err := wt.Chroot(".git")
	if err != nil {
		return Persistence{}, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository

	if _, statErr := os.Stat(fs.Root()); statErr != nil {
		// Directory doesn't exist, initialize new repo
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	} else {
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return Persistence{}, err
	}

	return Persistence{
		fs:   wt,
		repo: repo,
	}, nil
}

func (p *Persistence) tablePath(name string) string {
	return p.fs.Join(tablesDir, name+".txt")
}

func (p *Persistence) tempTablePath(name string) string {
	return p.fs.Join(tablesDir, name+"-temp.txt")
}

func (p *Persistence) schemaPath(name string) string {
	return p.fs.Join(metadataDir, name+"_metadata.txt")
}

func (p *Persistence) exists(path string) bool {
	_, err := p.fs.Stat(path)
	return err == nil
}
