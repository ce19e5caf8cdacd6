package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nickyhof/LightDB/auth"
)

var errLoginAborted = errors.New("login aborted")

// loginMenu loops until the user logs in, registers or chooses to exit.
func loginMenu(in *bufio.Reader, out io.Writer, users *auth.UserStore) (auth.User, error) {
	for {
		fmt.Fprintln(out, boldStyle.Render("1) Login  2) Register  3) Exit"))
		choice, err := ask(in, out, "Choice: ")
		if err != nil {
			return auth.User{}, errLoginAborted
		}

		switch choice {
		case "1":
			user, err := login(in, out, users)
			if errors.Is(err, io.EOF) {
				return auth.User{}, errLoginAborted
			}
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ %v", err)))
				continue
			}
			fmt.Fprintln(out, successStyle.Render("✓ Welcome back, "+user.Name))
			return user, nil
		case "2":
			user, err := register(in, out, users)
			if errors.Is(err, io.EOF) {
				return auth.User{}, errLoginAborted
			}
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ %v", err)))
				continue
			}
			fmt.Fprintln(out, successStyle.Render("✓ Registered "+user.Name))
			return user, nil
		case "3", "q", "exit":
			return auth.User{}, errLoginAborted
		default:
			fmt.Fprintln(out, errorStyle.Render("✗ Unknown choice: "+choice))
		}
	}
}

// login checks the password first and then the security answer.
func login(in *bufio.Reader, out io.Writer, users *auth.UserStore) (auth.User, error) {
	name, err := ask(in, out, "Username: ")
	if err != nil {
		return auth.User{}, err
	}
	password, err := ask(in, out, "Password: ")
	if err != nil {
		return auth.User{}, err
	}

	user, err := users.Authenticate(name, password)
	if err != nil {
		return auth.User{}, err
	}

	answer, err := ask(in, out, user.Question+" ")
	if err != nil {
		return auth.User{}, err
	}
	if err := users.VerifyAnswer(user, answer); err != nil {
		return auth.User{}, err
	}
	return user, nil
}

func register(in *bufio.Reader, out io.Writer, users *auth.UserStore) (auth.User, error) {
	var registration auth.Registration
	var err error

	if registration.Name, err = ask(in, out, "Username: "); err != nil {
		return auth.User{}, err
	}
	if registration.Password, err = ask(in, out, "Password: "); err != nil {
		return auth.User{}, err
	}
	if registration.Question, err = ask(in, out, "Security question: "); err != nil {
		return auth.User{}, err
	}
	if registration.Answer, err = ask(in, out, "Answer: "); err != nil {
		return auth.User{}, err
	}

	return users.Register(registration)
}

func ask(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, promptStyle.Render(prompt))
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}
