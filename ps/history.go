package ps

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
	"github.com/nickyhof/LightDB/core"
)

var ErrHistoryDisabled = errors.New("history is not enabled")

// historyDirs are the only paths recorded in snapshots. Anything else in the
// data directory, such as the account file, is left out of commits and
// untouched by Restore.
var historyDirs = []string{tablesDir, metadataDir}

func inHistory(path string) bool {
	for _, dir := range historyDirs {
		if strings.HasPrefix(path, dir+"/") {
			return true
		}
	}
	return false
}

func hasStagedChanges(status git.Status) bool {
	for _, file := range status {
		if file.Staging != git.Unmodified && file.Staging != git.Untracked {
			return true
		}
	}
	return false
}

// Transaction is one recorded snapshot of the data directory.
type Transaction struct {
	Id      string
	When    time.Time
	Author  string // "Name <email>" format
	Message string
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("Transaction{Id: %s, When: %s, Author: %s}", transaction.Id, transaction.When, transaction.Author)
}

// Snapshot commits the current state of the data directory. It is a no-op
// without history or when nothing changed since the last snapshot.
func (p *Persistence) Snapshot(message string, identity core.Identity) (Transaction, error) {
	if !p.HistoryEnabled() {
		return Transaction{}, nil
	}

	wt, err := p.repo.Worktree()
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	for _, dir := range historyDirs {
		if !p.exists(dir) {
			continue
		}
		if err := wt.AddWithOptions(&git.AddOptions{Path: dir}); err != nil {
			return Transaction{}, fmt.Errorf("%w: failed to stage changes: %v", core.ErrIO, err)
		}
	}

	status, err := wt.Status()
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	if !hasStagedChanges(status) {
		return Transaction{}, nil
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  identity.Name,
			Email: identity.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: failed to commit: %v", core.ErrIO, err)
	}

	commit, err := p.repo.CommitObject(hash)
	if err != nil {
		return Transaction{Id: hash.String(), Message: message}, nil
	}
	return transactionFromCommit(commit), nil
}

func (p *Persistence) LatestTransaction() Transaction {
	if !p.HistoryEnabled() {
		return Transaction{}
	}

	headRef, err := p.repo.Head()
	if err != nil || headRef == nil {
		// No commits yet
		return Transaction{}
	}

	commit, err := p.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Transaction{}
	}

	return transactionFromCommit(commit)
}

// History lists snapshots newest first. A limit of zero or less returns
// every snapshot.
func (p *Persistence) History(limit int) ([]Transaction, error) {
	if !p.HistoryEnabled() {
		return nil, ErrHistoryDisabled
	}

	transactions := []Transaction{}
	if _, err := p.repo.Head(); err != nil {
		return transactions, nil
	}

	cIter, err := p.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	defer cIter.Close()

	err = cIter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(transactions) >= limit {
			return storer.ErrStop
		}
		transactions = append(transactions, transactionFromCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	return transactions, nil
}

// Restore resets the data directory to the snapshot with the given id.
// Later snapshots stay reachable in the repository but are no longer HEAD.
func (p *Persistence) Restore(id string) error {
	if !p.HistoryEnabled() {
		return ErrHistoryDisabled
	}

	hash, err := p.repo.ResolveRevision(plumbing.Revision(id))
	if err != nil {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	commit, err := p.repo.CommitObject(*hash)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}

	paths, err := p.restorePaths(commit)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	wt, err := p.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	// An empty Files list would reset the whole worktree
	mode := git.HardReset
	if len(paths) == 0 {
		mode = git.SoftReset
	}
	if err := wt.Reset(&git.ResetOptions{Mode: mode, Commit: *hash, Files: paths}); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return nil
}

// restorePaths lists the recorded files of both the index and the target
// commit, so files created after the snapshot are removed too.
func (p *Persistence) restorePaths(commit *object.Commit) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	add := func(path string) {
		if inHistory(path) && !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	idx, err := p.repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	for _, entry := range idx.Entries {
		add(entry.Name)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	err = tree.Files().ForEach(func(file *object.File) error {
		add(file.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func transactionFromCommit(commit *object.Commit) Transaction {
	author := ""
	if commit.Author.Name != "" || commit.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
	}

	return Transaction{
		Id:      commit.Hash.String(),
		When:    commit.Committer.When,
		Author:  author,
		Message: commit.Message,
	}
}
