package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/nickyhof/LightDB"
	"github.com/nickyhof/LightDB/auth"
	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/ps"
)

// Version is set at build time via -ldflags
var Version = "dev"

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Border(lipgloss.DoubleBorder()).
	Padding(0, 3).
	Align(lipgloss.Center)

func main() {
	port := flag.Int("port", 3306, "TCP port to listen on")
	baseDir := flag.String("baseDir", "", "Base directory for persistence (memory if empty)")
	history := flag.Bool("history", false, "Record every change as a git commit in the data directory")
	replica := flag.String("replica", "", "Git URL registered as the origin replica")
	jwtSecret := flag.String("jwtSecret", os.Getenv("LIGHTDB_JWT_SECRET"), "HS256 secret; enables AUTH JWT when set (env LIGHTDB_JWT_SECRET)")
	jwtIssuer := flag.String("jwtIssuer", "", "Expected token issuer")
	jwtAudience := flag.String("jwtAudience", "", "Expected token audience")
	tlsCert := flag.String("tlsCert", "", "TLS certificate file")
	tlsKey := flag.String("tlsKey", "", "TLS key file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("LightDB SQL Server v%s\n", Version)
		return
	}

	var persistence ps.Persistence
	var err error
	if *baseDir == "" {
		log.Println("Using memory persistence")
		persistence, err = ps.NewMemoryPersistence(*history)
	} else {
		log.Printf("Using file persistence: %s", *baseDir)
		persistence, err = ps.NewFilePersistence(*baseDir, *history)
	}
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	instance := LightDB.Open(&persistence)

	if *replica != "" {
		if err := persistence.AddReplica("origin", *replica); err != nil {
			log.Fatalf("Failed to add replica: %v", err)
		}
	}

	var server *Server
	if *jwtSecret != "" {
		server = NewServerWithAuth(instance, auth.TokenConfig{
			Secret:   *jwtSecret,
			Issuer:   *jwtIssuer,
			Audience: *jwtAudience,
		})
	} else {
		server = NewServer(instance, core.Identity{
			Name:  "LightDB Server",
			Email: "server@lightdb.local",
		})
	}

	addr := fmt.Sprintf(":%d", *port)
	if *tlsCert != "" && *tlsKey != "" {
		err = server.StartTLS(addr, *tlsCert, *tlsKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Println()
	fmt.Println(bannerStyle.Render(fmt.Sprintf("LightDB SQL Server v%s\nFlat-file SQL Database", Version)))
	fmt.Println()
	fmt.Printf("Listening on port %d\n", *port)
	if server.AuthEnabled() {
		fmt.Println("Authenticate with 'AUTH JWT <token>' before sending statements")
	}
	fmt.Println("Send SQL statements (one per line), 'quit' to disconnect")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
