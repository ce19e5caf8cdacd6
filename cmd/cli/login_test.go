package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v6/memfs"

	"github.com/nickyhof/LightDB/auth"
)

func runLogin(t *testing.T, users *auth.UserStore, lines ...string) (auth.User, string, error) {
	t.Helper()
	in := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	out := &bytes.Buffer{}
	user, err := loginMenu(in, out, users)
	return user, out.String(), err
}

func TestLoginMenuRegisterThenLogin(t *testing.T) {
	users := auth.NewUserStore(memfs.New())

	user, _, err := runLogin(t, users, "2", "alice", "s3cret", "First pet?", "Rex")
	if err != nil {
		t.Fatalf("Registration failed: %v", err)
	}
	if user.Name != "alice" {
		t.Errorf("Expected alice, got %s", user.Name)
	}

	user, output, err := runLogin(t, users, "1", "alice", "s3cret", " rex ")
	if err != nil {
		t.Fatalf("Login failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "First pet?") {
		t.Errorf("Expected security question prompt, got:\n%s", output)
	}
	if user.Name != "alice" {
		t.Errorf("Expected alice, got %s", user.Name)
	}
}

func TestLoginMenuRetriesAfterFailure(t *testing.T) {
	users := auth.NewUserStore(memfs.New())
	if _, err := users.Register(auth.Registration{Name: "bob", Password: "pw", Question: "Color?", Answer: "blue"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, output, err := runLogin(t, users,
		"1", "bob", "wrong",
		"1", "bob", "pw", "green",
		"1", "bob", "pw", "blue",
	)
	if err != nil {
		t.Fatalf("Expected eventual login, got %v", err)
	}
	if user.Name != "bob" {
		t.Errorf("Expected bob, got %s", user.Name)
	}
	if !strings.Contains(output, auth.ErrInvalidCredentials.Error()) {
		t.Error("Expected invalid credentials message")
	}
	if !strings.Contains(output, auth.ErrWrongAnswer.Error()) {
		t.Error("Expected wrong answer message")
	}
}

func TestLoginMenuExit(t *testing.T) {
	users := auth.NewUserStore(memfs.New())

	if _, _, err := runLogin(t, users, "9", "3"); err != errLoginAborted {
		t.Errorf("Expected errLoginAborted, got %v", err)
	}
	if _, _, err := runLogin(t, users, "1", "someone"); err != errLoginAborted {
		t.Errorf("Expected errLoginAborted at end of input, got %v", err)
	}
}
