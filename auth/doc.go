// Package auth holds LightDB's credentials: the users.txt account store
// that gates the CLI, and the HS256 tokens accepted by the TCP server.
package auth
