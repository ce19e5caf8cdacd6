package ps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
	"github.com/go-git/go-git/v6/plumbing/transport/ssh"
)

const defaultReplica = "origin"

// AuthType selects how a replica is authenticated.
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeToken AuthType = "token"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeBasic AuthType = "basic"
)

// ReplicaAuth holds credentials for pushing history to a replica.
type ReplicaAuth struct {
	Type       AuthType
	Token      string
	KeyPath    string
	Passphrase string
	Username   string
	Password   string
}

// Replica is a git remote that receives copies of the table history.
type Replica struct {
	Name string
	URLs []string
}

func (auth *ReplicaAuth) method() (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}

	switch auth.Type {
	case AuthTypeNone, "":
		return nil, nil
	case AuthTypeToken:
		return &http.BasicAuth{Username: "git", Password: auth.Token}, nil
	case AuthTypeSSH:
		keyPath := auth.KeyPath
		if keyPath == "" {
			home, _ := os.UserHomeDir()
			keyPath = filepath.Join(home, ".ssh", "id_rsa")
		}
		return ssh.NewPublicKeysFromFile("git", keyPath, auth.Passphrase)
	case AuthTypeBasic:
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", auth.Type)
	}
}

func (p *Persistence) AddReplica(name, url string) error {
	if !p.HistoryEnabled() {
		return ErrHistoryDisabled
	}
	if name == "" {
		name = defaultReplica
	}

	_, err := p.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	if err != nil {
		return fmt.Errorf("failed to add replica '%s': %w", name, err)
	}
	return nil
}

func (p *Persistence) ListReplicas() ([]Replica, error) {
	if !p.HistoryEnabled() {
		return nil, ErrHistoryDisabled
	}

	remotes, err := p.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list replicas: %w", err)
	}

	replicas := make([]Replica, len(remotes))
	for i, remote := range remotes {
		cfg := remote.Config()
		replicas[i] = Replica{Name: cfg.Name, URLs: cfg.URLs}
	}
	return replicas, nil
}

func (p *Persistence) RemoveReplica(name string) error {
	if !p.HistoryEnabled() {
		return ErrHistoryDisabled
	}

	if err := p.repo.DeleteRemote(name); err != nil {
		return fmt.Errorf("failed to remove replica '%s': %w", name, err)
	}
	return nil
}

// PushHistory sends the current branch to a replica. Being already up to
// date is not an error.
func (p *Persistence) PushHistory(name string, auth *ReplicaAuth) error {
	if !p.HistoryEnabled() {
		return ErrHistoryDisabled
	}
	if name == "" {
		name = defaultReplica
	}

	head, err := p.repo.Head()
	if err != nil {
		return fmt.Errorf("nothing to push: %w", err)
	}

	method, err := auth.method()
	if err != nil {
		return fmt.Errorf("failed to configure auth: %w", err)
	}

	refSpec := config.RefSpec(fmt.Sprintf("%s:%s", head.Name(), head.Name()))
	err = p.repo.Push(&git.PushOptions{
		RemoteName: name,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       method,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push to '%s': %w", name, err)
	}
	return nil
}

// PullHistory fast-forwards the data directory to the replica's branch.
func (p *Persistence) PullHistory(name string, auth *ReplicaAuth) error {
	if !p.HistoryEnabled() {
		return ErrHistoryDisabled
	}
	if name == "" {
		name = defaultReplica
	}

	wt, err := p.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	method, err := auth.method()
	if err != nil {
		return fmt.Errorf("failed to configure auth: %w", err)
	}

	options := &git.PullOptions{RemoteName: name, Auth: method}
	if head, err := p.repo.Head(); err == nil {
		options.ReferenceName = head.Name()
	}

	err = wt.Pull(options)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull from '%s': %w", name, err)
	}
	return nil
}
