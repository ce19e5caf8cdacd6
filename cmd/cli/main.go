package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nickyhof/LightDB"
	"github.com/nickyhof/LightDB/auth"
	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/db"
	"github.com/nickyhof/LightDB/op"
	"github.com/nickyhof/LightDB/ps"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#02D98E"))
	boldStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	bannerStyle  = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 3).
			Align(lipgloss.Center)
)

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the CLI state
type CLI struct {
	instance    *LightDB.Instance
	session     *db.Session
	in          *bufio.Reader
	out         io.Writer
	history     []string
	historyFile string
	s3          *ps.S3Config
	tokens      auth.TokenConfig
}

func main() {
	baseDir := flag.String("baseDir", "", "Data directory (memory persistence when empty)")
	history := flag.Bool("history", false, "Record every change as a git commit in the data directory")
	sqlFile := flag.String("sqlFile", "", "SQL script to execute (non-interactive)")
	userName := flag.String("name", "LightDB", "Name recorded as author of changes")
	userEmail := flag.String("email", "cli@lightdb.local", "Email recorded as author of changes")
	noLogin := flag.Bool("noLogin", false, "Skip the login menu")
	jwtSecret := flag.String("jwtSecret", os.Getenv("LIGHTDB_JWT_SECRET"), "Secret for .token (env LIGHTDB_JWT_SECRET)")
	jwtIssuer := flag.String("jwtIssuer", "lightdb", "Issuer written into tokens")
	s3Region := flag.String("s3Region", "", "AWS region for s3:// locations")
	s3Endpoint := flag.String("s3Endpoint", "", "Custom S3-compatible endpoint")
	flag.Parse()

	out := os.Stdout
	printBanner(out)

	var persistence ps.Persistence
	var err error
	if *baseDir == "" {
		fmt.Fprintln(out, successStyle.Render("Using memory persistence"))
		persistence, err = ps.NewMemoryPersistence(*history)
	} else {
		fmt.Fprintln(out, successStyle.Render("Using file persistence: "+*baseDir))
		persistence, err = ps.NewFilePersistence(*baseDir, *history)
	}
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
	instance := LightDB.Open(&persistence)

	in := bufio.NewReader(os.Stdin)
	identity := core.Identity{Name: *userName, Email: *userEmail}
	if !*noLogin && *sqlFile == "" {
		user, err := loginMenu(in, out, instance.Users())
		if err != nil {
			fmt.Fprintln(out, successStyle.Render("Goodbye!"))
			return
		}
		identity.Name = user.Name
	}

	cli := &CLI{
		instance:    instance,
		session:     instance.Session(identity),
		in:          in,
		out:         out,
		history:     make([]string, 0),
		historyFile: getHistoryPath(),
		s3:          &ps.S3Config{Region: *s3Region, Endpoint: *s3Endpoint},
		tokens:      auth.TokenConfig{Secret: *jwtSecret, Issuer: *jwtIssuer},
	}

	// Execute SQL file if provided
	if *sqlFile != "" {
		if err := cli.importFile(*sqlFile); err != nil {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Error importing file: %v", err)))
			os.Exit(1)
		}
		return
	}

	cli.loadHistory()
	cli.run()
	cli.saveHistory()
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bannerStyle.Render(fmt.Sprintf("LightDB v%s\nFlat-file SQL Database", Version)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Type .help for commands, .quit to exit")
	fmt.Fprintln(w)
}

func (cli *CLI) printError(err error) {
	fmt.Fprintln(cli.out, errorStyle.Render(fmt.Sprintf("✗ Error: %v", err)))
}

func (cli *CLI) printUsage(usage string) {
	fmt.Fprintln(cli.out, errorStyle.Render("✗ Usage: "+usage))
}

// run reads statements until EOF or .quit. Statements may span lines and
// end with a semicolon.
func (cli *CLI) run() {
	var multiLineBuffer strings.Builder

	for {
		fmt.Fprint(cli.out, cli.getPrompt(multiLineBuffer.Len() > 0))

		input, err := cli.in.ReadString('\n')
		if err != nil && input == "" {
			fmt.Fprintln(cli.out, "\n"+successStyle.Render("Goodbye!"))
			return
		}

		input = strings.TrimRight(input, "\r\n")
		if strings.TrimSpace(input) == "" {
			continue
		}

		if multiLineBuffer.Len() == 0 && strings.HasPrefix(strings.TrimSpace(input), ".") {
			if quit := cli.handleCommand(input); quit {
				fmt.Fprintln(cli.out, successStyle.Render("Goodbye!"))
				return
			}
			continue
		}

		multiLineBuffer.WriteString(input)

		trimmed := strings.TrimSpace(multiLineBuffer.String())
		if !strings.HasSuffix(trimmed, ";") {
			multiLineBuffer.WriteString(" ")
			continue
		}
		multiLineBuffer.Reset()

		cli.addToHistory(trimmed)
		cli.execute(trimmed)
	}
}

func (cli *CLI) execute(statement string) {
	result, err := cli.session.Execute(statement)
	if err != nil {
		cli.printError(err)
		return
	}
	result.Render(cli.out)
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return promptStyle.Render("   ...>") + " "
	}

	state := ""
	if cli.session.State() != db.Idle {
		state = fmt.Sprintf(" (%s)", cli.session.State())
	}
	return promptStyle.Render("lightdb"+state+">") + " "
}

// handleCommand runs a dot command and reports whether the CLI should exit.
func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return false
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		return true

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".tables":
		cli.showTables()

	case ".describe", ".desc":
		if len(parts) < 2 {
			cli.printUsage(".describe <table>")
			break
		}
		cli.describeTable(parts[1])

	case ".import":
		if len(parts) < 2 {
			cli.printUsage(".import <file|http(s)://...|s3://bucket/key>")
			break
		}
		if err := cli.importFile(parts[1]); err != nil {
			cli.printError(err)
		}

	case ".dump":
		if len(parts) < 2 {
			cli.printUsage(".dump <file|s3://bucket/key>")
			break
		}
		if err := cli.session.Engine().Dump(context.Background(), parts[1], cli.s3); err != nil {
			cli.printError(err)
			break
		}
		fmt.Fprintln(cli.out, successStyle.Render("✓ Dumped to "+parts[1]))

	case ".history":
		cli.printHistory()

	case ".log":
		limit := 10
		if len(parts) > 1 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				limit = n
			}
		}
		cli.printLog(limit)

	case ".restore":
		if len(parts) < 2 {
			cli.printUsage(".restore <transaction>")
			break
		}
		if err := op.GetDatabase(cli.instance.Persistence).Restore(ps.Transaction{Id: parts[1]}); err != nil {
			cli.printError(err)
			break
		}
		fmt.Fprintln(cli.out, successStyle.Render("✓ Restored to "+parts[1]))

	case ".replica":
		cli.handleReplica(parts[1:])

	case ".push", ".pull":
		name := ""
		if len(parts) > 1 {
			name = parts[1]
		}
		var err error
		if strings.ToLower(parts[0]) == ".push" {
			err = cli.instance.Persistence.PushHistory(name, nil)
		} else {
			err = cli.instance.Persistence.PullHistory(name, nil)
		}
		if err != nil {
			cli.printError(err)
			break
		}
		fmt.Fprintln(cli.out, successStyle.Render("✓ Done"))

	case ".token":
		ttl := time.Hour
		if len(parts) > 1 {
			parsed, err := time.ParseDuration(parts[1])
			if err != nil {
				cli.printUsage(".token [ttl, e.g. 30m]")
				break
			}
			ttl = parsed
		}
		token, err := auth.IssueToken(cli.tokens, cli.session.Engine().Identity, ttl)
		if err != nil {
			cli.printError(err)
			break
		}
		fmt.Fprintln(cli.out, token)

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".version":
		fmt.Fprintf(cli.out, "LightDB version %s\n", Version)

	default:
		fmt.Fprintln(cli.out, errorStyle.Render(fmt.Sprintf("✗ Unknown command: %s (type .help for commands)", parts[0])))
	}

	return false
}

func (cli *CLI) printHelp() {
	fmt.Fprintln(cli.out)
	fmt.Fprintln(cli.out, boldStyle.Render("Special Commands:"))
	fmt.Fprintln(cli.out, "  .help, .h              Show this help message")
	fmt.Fprintln(cli.out, "  .quit, .exit           Exit the CLI")
	fmt.Fprintln(cli.out, "  .tables                List all tables")
	fmt.Fprintln(cli.out, "  .describe <table>      Show the columns of a table")
	fmt.Fprintln(cli.out, "  .import <location>     Execute a script (file, http(s)://, s3://)")
	fmt.Fprintln(cli.out, "  .dump <location>       Write all tables as a script (file, s3://)")
	fmt.Fprintln(cli.out, "  .history               Show command history")
	fmt.Fprintln(cli.out, "  .log [n]               Show the last n recorded changes")
	fmt.Fprintln(cli.out, "  .restore <id>          Reset all tables to a recorded change")
	fmt.Fprintln(cli.out, "  .replica add|list|remove  Manage history replicas")
	fmt.Fprintln(cli.out, "  .push [replica]        Push history to a replica")
	fmt.Fprintln(cli.out, "  .pull [replica]        Pull history from a replica")
	fmt.Fprintln(cli.out, "  .token [ttl]           Issue a server token for the current user")
	fmt.Fprintln(cli.out, "  .clear                 Clear the screen")
	fmt.Fprintln(cli.out, "  .version               Show version info")
	fmt.Fprintln(cli.out)
	fmt.Fprintln(cli.out, boldStyle.Render("SQL Commands:"))
	fmt.Fprintln(cli.out, "  CREATE TABLE <table> (<column> <integer|text|real> [primarykey], ...);")
	fmt.Fprintln(cli.out, "  INSERT INTO <table> VALUES (<vals>);")
	fmt.Fprintln(cli.out, "  SELECT <*|cols> FROM <table> [WHERE <col>=<val> [AND|OR <col>=<val>]];")
	fmt.Fprintln(cli.out, "  UPDATE <table> SET <col>=<val>, ... [WHERE ...];")
	fmt.Fprintln(cli.out, "  DELETE FROM <table> [WHERE ...];")
	fmt.Fprintln(cli.out)
	fmt.Fprintln(cli.out, boldStyle.Render("Transactions:")+" BEGIN TRANSACTION; ... END TRANSACTION; COMMIT; or ROLLBACK;")
	fmt.Fprintln(cli.out)
}

func (cli *CLI) showTables() {
	names, err := op.GetDatabase(cli.instance.Persistence).TableNames()
	if err != nil {
		cli.printError(err)
		return
	}

	result := db.QueryResult{Columns: []string{"table"}, RecordsRead: len(names)}
	for _, name := range names {
		result.Data = append(result.Data, []string{name})
	}
	result.Render(cli.out)
}

func (cli *CLI) describeTable(name string) {
	tableOp, err := op.GetTable(name, cli.instance.Persistence)
	if err != nil {
		cli.printError(err)
		return
	}

	result := db.QueryResult{Columns: []string{"column", "type", "key"}, RecordsRead: len(tableOp.Table.Columns)}
	for _, column := range tableOp.Table.Columns {
		key := ""
		if column.PrimaryKey {
			key = "PRIMARY KEY"
		}
		result.Data = append(result.Data, []string{column.Name, column.Type.String(), key})
	}
	result.Render(cli.out)
}

func (cli *CLI) printLog(limit int) {
	transactions, err := op.GetDatabase(cli.instance.Persistence).History(limit)
	if err != nil {
		cli.printError(err)
		return
	}
	if len(transactions) == 0 {
		fmt.Fprintln(cli.out, "No recorded changes")
		return
	}

	for _, txn := range transactions {
		fmt.Fprintf(cli.out, "%s  %s  %-24s %s\n",
			promptStyle.Render(txn.Id[:min(len(txn.Id), 8)]),
			txn.When.Format("2006-01-02 15:04:05"),
			txn.Author,
			truncate(txn.Message, 50))
	}
}

func (cli *CLI) handleReplica(args []string) {
	persistence := cli.instance.Persistence
	if len(args) == 0 {
		cli.printUsage(".replica add <name> <url> | list | remove <name>")
		return
	}

	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			cli.printUsage(".replica add <name> <url>")
			return
		}
		if err := persistence.AddReplica(args[1], args[2]); err != nil {
			cli.printError(err)
			return
		}
		fmt.Fprintln(cli.out, successStyle.Render("✓ Added replica "+args[1]))
	case "list":
		replicas, err := persistence.ListReplicas()
		if err != nil {
			cli.printError(err)
			return
		}
		for _, replica := range replicas {
			fmt.Fprintf(cli.out, "  %s  %s\n", replica.Name, strings.Join(replica.URLs, ", "))
		}
	case "remove":
		if len(args) < 2 {
			cli.printUsage(".replica remove <name>")
			return
		}
		if err := persistence.RemoveReplica(args[1]); err != nil {
			cli.printError(err)
			return
		}
		fmt.Fprintln(cli.out, successStyle.Render("✓ Removed replica "+args[1]))
	default:
		cli.printUsage(".replica add <name> <url> | list | remove <name>")
	}
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	if len(cli.history) > 1000 {
		cli.history = cli.history[len(cli.history)-1000:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}

	start := max(0, len(cli.history)-20)
	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lightdb_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	start := max(0, len(cli.history)-1000)
	for i := start; i < len(cli.history); i++ {
		_, _ = file.WriteString(cli.history[i] + "\n")
	}
}

// importFile executes a script through the session and prints one line
// per statement
func (cli *CLI) importFile(location string) error {
	report, err := cli.session.ImportScript(context.Background(), location, cli.s3)
	if err != nil {
		return err
	}

	for _, failure := range report.Failures {
		fmt.Fprintln(cli.out, errorStyle.Render("✗ "+truncate(failure.Query, 50)))
		fmt.Fprintf(cli.out, "      Error: %v\n", failure.Err)
	}

	summary := fmt.Sprintf("✓ Import complete: %d succeeded, %d failed", report.Succeeded, len(report.Failures))
	fmt.Fprintln(cli.out, "\n"+successStyle.Render(summary))
	return nil
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
