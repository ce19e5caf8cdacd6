package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nickyhof/LightDB/auth"
	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/db"
)

var errAuthRequired = errors.New("authentication required: send AUTH JWT <token>")

// ConnectionState tracks one client connection. The session is created
// once the connection has an identity.
type ConnectionState struct {
	session       *db.Session
	identity      *core.Identity
	authenticated bool
	tokenExpiry   time.Time
}

// IsAuthenticated returns true if the connection has been authenticated.
func (cs *ConnectionState) IsAuthenticated() bool {
	return cs.authenticated
}

// Identity returns the connection's identity, or nil if not authenticated.
func (cs *ConnectionState) Identity() *core.Identity {
	return cs.identity
}

// expired reports whether the token used to authenticate has run out.
func (cs *ConnectionState) expired(now time.Time) bool {
	return !cs.tokenExpiry.IsZero() && now.After(cs.tokenExpiry)
}

// parseAuthCommand parses an AUTH command and returns the auth type and token.
// Supported formats:
//   - AUTH JWT <token>
func parseAuthCommand(line string) (authType, token string, err error) {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(strings.ToUpper(line), "AUTH ") {
		return "", "", errors.New("not an AUTH command")
	}

	parts := strings.Fields(line)
	if len(parts) < 3 {
		return "", "", errors.New("invalid AUTH command: expected AUTH <type> <credentials>")
	}

	authType = strings.ToUpper(parts[1])
	token = parts[2]

	switch authType {
	case "JWT":
		return authType, token, nil
	default:
		return "", "", fmt.Errorf("unsupported auth type: %s", authType)
	}
}

func authError(err error) Response {
	return Response{
		Success: false,
		Type:    "auth",
		Error:   err.Error(),
	}
}

// handleAuth processes an AUTH command. A successful AUTH starts a new
// session for the token's identity, discarding any open transaction.
func (s *Server) handleAuth(line string, state *ConnectionState) Response {
	if s.tokens == nil {
		return authError(errors.New("authentication not configured"))
	}

	_, token, err := parseAuthCommand(line)
	if err != nil {
		return authError(err)
	}

	identity, expiresAt, err := auth.ValidateToken(*s.tokens, token)
	if err != nil {
		return authError(err)
	}

	state.identity = &identity
	state.authenticated = true
	state.tokenExpiry = expiresAt
	state.session = s.instance.Session(identity)

	ar := AuthResponse{
		Authenticated: true,
		Identity:      identity.String(),
	}
	if !expiresAt.IsZero() {
		ar.ExpiresIn = int(time.Until(expiresAt).Seconds())
	}

	data, _ := json.Marshal(ar)
	return Response{
		Success: true,
		Type:    "auth",
		Result:  data,
	}
}
