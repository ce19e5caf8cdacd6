package auth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v6"
	"golang.org/x/crypto/bcrypt"

	"github.com/nickyhof/LightDB/core"
)

const usersFile = "users.txt"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongAnswer        = errors.New("security answer does not match")
)

// User is one stored account. Password and answer are bcrypt hashes.
type User struct {
	Name         string
	PasswordHash string
	Question     string
	AnswerHash   string
}

// Registration carries the plain-text fields of a new account.
type Registration struct {
	Name     string
	Password string
	Question string
	Answer   string
}

// UserStore keeps accounts in users.txt, one per line:
// name,bcrypt(password),question,bcrypt(answer).
type UserStore struct {
	fs   billy.Filesystem
	cost int
}

func NewUserStore(fs billy.Filesystem) *UserStore {
	return &UserStore{fs: fs, cost: bcrypt.DefaultCost}
}

func (store *UserStore) users() ([]User, error) {
	file, err := store.fs.Open(usersFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	defer file.Close()

	var users []User
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) != 4 {
			continue
		}
		users = append(users, User{
			Name:         fields[0],
			PasswordHash: fields[1],
			Question:     fields[2],
			AnswerHash:   fields[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return users, nil
}

// Lookup finds a user by exact name.
func (store *UserStore) Lookup(name string) (User, error) {
	users, err := store.users()
	if err != nil {
		return User{}, err
	}
	for _, user := range users {
		if user.Name == name {
			return user, nil
		}
	}
	return User{}, fmt.Errorf("user %s: %w", name, core.ErrNotFound)
}

// Register stores a new account. Every field is required and none may
// contain a comma or a line break.
func (store *UserStore) Register(registration Registration) (User, error) {
	for label, value := range map[string]string{
		"username": registration.Name,
		"password": registration.Password,
		"question": registration.Question,
		"answer":   registration.Answer,
	} {
		if strings.TrimSpace(value) == "" {
			return User{}, fmt.Errorf("%w: %s is required", core.ErrValidation, label)
		}
		if strings.ContainsAny(value, ",\r\n") {
			return User{}, fmt.Errorf("%w: %s must not contain commas or line breaks", core.ErrValidation, label)
		}
	}

	if _, err := store.Lookup(registration.Name); err == nil {
		return User{}, fmt.Errorf("%s: %w", registration.Name, ErrUserExists)
	} else if !errors.Is(err, core.ErrNotFound) {
		return User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registration.Password), store.cost)
	if err != nil {
		return User{}, err
	}
	answerHash, err := bcrypt.GenerateFromPassword([]byte(normalizeAnswer(registration.Answer)), store.cost)
	if err != nil {
		return User{}, err
	}

	user := User{
		Name:         registration.Name,
		PasswordHash: string(passwordHash),
		Question:     registration.Question,
		AnswerHash:   string(answerHash),
	}

	file, err := store.fs.OpenFile(usersFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	defer file.Close()

	line := strings.Join([]string{user.Name, user.PasswordHash, user.Question, user.AnswerHash}, ",") + "\n"
	if _, err := file.Write([]byte(line)); err != nil {
		return User{}, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return user, nil
}

// Authenticate checks a password. Unknown users and wrong passwords both
// return ErrInvalidCredentials.
func (store *UserStore) Authenticate(name, password string) (User, error) {
	user, err := store.Lookup(name)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// VerifyAnswer checks the security answer, ignoring case and surrounding
// whitespace.
func (store *UserStore) VerifyAnswer(user User, answer string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.AnswerHash), []byte(normalizeAnswer(answer))) != nil {
		return ErrWrongAnswer
	}
	return nil
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
