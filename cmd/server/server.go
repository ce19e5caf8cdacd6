package main

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/nickyhof/LightDB"
	"github.com/nickyhof/LightDB/auth"
	"github.com/nickyhof/LightDB/core"
)

// Server is a TCP SQL server that exposes the LightDB engine. Every
// connection gets its own session, so transactions are per connection.
type Server struct {
	listener   net.Listener
	instance   *LightDB.Instance
	identity   core.Identity
	tokens     *auth.TokenConfig
	tlsEnabled bool
	mu         sync.Mutex // statements from all connections run one at a time
	done       chan struct{}
	wg         sync.WaitGroup
	connsMu    sync.Mutex
	conns      map[net.Conn]struct{}
}

// NewServer creates a server where every connection acts as identity.
func NewServer(instance *LightDB.Instance, identity core.Identity) *Server {
	return &Server{
		instance: instance,
		identity: identity,
		done:     make(chan struct{}),
		conns:    make(map[net.Conn]struct{}),
	}
}

// NewServerWithAuth creates a server that requires AUTH JWT <token> before
// any statement. The token's claims become the connection's identity.
func NewServerWithAuth(instance *LightDB.Instance, tokens auth.TokenConfig) *Server {
	server := NewServer(instance, core.Identity{})
	server.tokens = &tokens
	return server
}

// AuthEnabled reports whether connections must authenticate.
func (s *Server) AuthEnabled() bool {
	return s.tokens != nil
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("SQL Server listening on %s", listener.Addr())

	go s.acceptLoop()
	return nil
}

// StartTLS is Start with TLS using the given certificate and key files.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.tlsEnabled = true

	log.Printf("SQL Server listening on %s (TLS)", listener.Addr())

	go s.acceptLoop()
	return nil
}

// TLSEnabled reports whether the server was started with StartTLS.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// Stop shuts down the server. Open connections are closed, so clients
// waiting between statements do not hold it up; uncommitted session
// statements are dropped.
func (s *Server) Stop() error {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	return nil
}

// track registers conn so Stop can close it. It returns false once the
// server is stopping.
func (s *Server) track(conn net.Conn) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) newConnectionState() *ConnectionState {
	state := &ConnectionState{}
	if !s.AuthEnabled() {
		identity := s.identity
		state.identity = &identity
		state.session = s.instance.Session(identity)
	}
	return state
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	if !s.track(conn) {
		return
	}
	defer s.untrack(conn)

	state := s.newConnectionState()
	log.Printf("Client connected: %s", conn.RemoteAddr())
	defer func() {
		if state.session != nil && len(state.session.Pending()) > 0 {
			log.Printf("Session %s closed with %d uncommitted statement(s)", state.session.ID, len(state.session.Pending()))
		}
	}()

	reader := bufio.NewReader(conn)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		// One statement per line
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				select {
				case <-s.done:
				default:
					log.Printf("Read error from %s: %v", conn.RemoteAddr(), err)
				}
			}
			return
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}

		if strings.HasPrefix(query, "{") {
			req, err := DecodeRequest([]byte(query))
			if err != nil {
				if !s.respond(conn, Response{Success: false, Error: fmt.Sprintf("invalid request: %v", err)}) {
					return
				}
				continue
			}
			query = strings.TrimSpace(req.Query)
		}

		if strings.EqualFold(query, "quit") || strings.EqualFold(query, "exit") {
			log.Printf("Client disconnected: %s", conn.RemoteAddr())
			return
		}

		var response Response
		if strings.HasPrefix(strings.ToUpper(query), "AUTH ") {
			response = s.handleAuth(query, state)
			if response.Success {
				log.Printf("Client %s authenticated as %s (session %s)", conn.RemoteAddr(), state.Identity(), state.session.ID)
			}
		} else {
			response = s.executeQuery(query, state)
		}

		if !s.respond(conn, response) {
			return
		}
	}
}

func (s *Server) respond(conn net.Conn, response Response) bool {
	data, err := EncodeResponse(response)
	if err != nil {
		log.Printf("Failed to encode response: %v", err)
		return true
	}

	if _, err := conn.Write(data); err != nil {
		log.Printf("Write error to %s: %v", conn.RemoteAddr(), err)
		return false
	}
	return true
}

func (s *Server) executeQuery(query string, state *ConnectionState) Response {
	if s.AuthEnabled() {
		if !state.IsAuthenticated() {
			return Response{Success: false, Error: errAuthRequired.Error()}
		}
		if state.expired(time.Now()) {
			state.authenticated = false
			return Response{Success: false, Error: "token expired: " + errAuthRequired.Error()}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := state.session.Execute(query)
	if err != nil {
		return Response{
			Success: false,
			Error:   err.Error(),
		}
	}
	return NewResultResponse(result)
}
