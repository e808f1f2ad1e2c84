package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/flemzord/toolclaw/internal/query"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/tool"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// errNotConnected is reported by every action that needs a connection.
var errNotConnected = errors.New("not connected to a database; use the connect action first")

// Options tune a Tool.
type Options struct {
	MaxRows      int
	QueryTimeout time.Duration
	Credentials  *security.CredentialStore
	Logger       *slog.Logger

	// SQLiteRoots confines sqlite database files to these directories.
	// Empty means any path.
	SQLiteRoots []string
}

// connection is the single live connection owned by a Tool.
type connection struct {
	db          *sql.DB
	dbType      string
	dialect     dialect
	display     string
	connectedAt time.Time
}

// Tool runs read-only queries against one SQLite, MySQL or PostgreSQL
// connection at a time.
type Tool struct {
	tool.BaseTool
	actions *tool.Actions
	opts    Options
	now     func() time.Time

	mu   sync.Mutex
	conn *connection
}

// New returns a disconnected database tool.
func New(opts Options) *Tool {
	if opts.MaxRows <= 0 {
		opts.MaxRows = 100
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	t := &Tool{opts: opts, now: time.Now}
	t.actions = tool.MustActions(
		tool.Action{Name: "connect", Required: []string{"db_type", "connection_string"}, Handler: t.connect,
			Description: "Open a connection, closing any previous one"},
		tool.Action{Name: "query", Required: []string{"sql"}, Handler: t.query,
			Description: "Run a read-only SELECT"},
		tool.Action{Name: "disconnect", Handler: t.disconnect,
			Description: "Close the connection; a no-op when none is open"},
		tool.Action{Name: "show_tables", Handler: t.showTables,
			Description: "List tables"},
		tool.Action{Name: "describe", Required: []string{"table"}, Handler: t.describe,
			Description: "Show the columns of a table"},
		tool.Action{Name: "status", Handler: t.status,
			Description: "Show the connection state"},
	)
	t.BaseTool = tool.BaseTool{
		ToolName:        "database",
		ToolDescription: "Read-only SQL over SQLite, MySQL or PostgreSQL. Only SELECT queries are allowed.",
		ToolSchema: t.actions.Schema(
			tool.Param{Name: "db_type", Type: tool.TypeString, Description: "sqlite, mysql or postgresql"},
			tool.Param{Name: "connection_string", Type: tool.TypeString,
				Description: "File path for sqlite, DSN or URL otherwise; ${cred:NAME} references are expanded"},
			tool.Param{Name: "sql", Type: tool.TypeString, Description: "SELECT statement"},
			tool.Param{Name: "table", Type: tool.TypeString, Description: "Table name for describe"},
		),
	}
	return t
}

// Validate implements tool.Tool.
func (t *Tool) Validate(args tool.Args) error {
	if err := t.BaseTool.Validate(args); err != nil {
		return err
	}
	return t.actions.Validate(args)
}

// Execute implements tool.Tool.
func (t *Tool) Execute(ctx context.Context, args tool.Args) (tool.Output, error) {
	return t.actions.Run(ctx, args)
}

// Close releases the connection, if any.
func (t *Tool) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

// Ping checks the open connection, if any.
func (t *Tool) Ping(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	return t.conn.db.PingContext(ctx)
}

func (t *Tool) closeLocked() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.db.Close()
	t.conn = nil
	return err
}

func (t *Tool) connect(ctx context.Context, args tool.Args) (tool.Output, error) {
	key, d, ok := lookupDialect(args.StringOr("db_type", ""))
	if !ok {
		return tool.Fail(tool.ConditionValidation, "unsupported db_type %q (supported: sqlite, mysql, postgresql)",
			args.StringOr("db_type", "")), nil
	}
	if !slices.Contains(sql.Drivers(), d.driver) {
		return tool.Fail(tool.ConditionUnavailable, "driver not installed: %s", key), nil
	}

	raw := args.StringOr("connection_string", "")
	expanded, err := t.expand(raw)
	if err != nil {
		return tool.Fail(tool.ConditionValidation, "%v", err), nil
	}
	dsn, err := d.dsn(expanded)
	if err != nil {
		return tool.Fail(tool.ConditionValidation, "invalid connection_string: %s", security.RedactDSN(err.Error())), nil
	}
	if key == "sqlite" {
		if err := confineSQLite(dsn, t.opts.SQLiteRoots); err != nil {
			return tool.Fail(tool.ConditionSafety, "%v", err), nil
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.closeLocked(); err != nil {
		t.opts.Logger.Warn("closing previous connection", "error", err)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return tool.Fail(tool.ConditionExecution, "connect failed: %s", security.RedactDSN(err.Error())), nil
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, t.opts.QueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return tool.Fail(tool.ConditionExecution, "connect failed: %s", security.RedactDSN(err.Error())), nil
	}

	t.conn = &connection{
		db:          db,
		dbType:      key,
		dialect:     d,
		display:     security.RedactDSN(raw),
		connectedAt: t.now(),
	}
	t.opts.Logger.Info("database connected", "db_type", key, "connection", t.conn.display)
	return tool.Textf("connected to %s database", strings.ToUpper(key)), nil
}

// expand resolves ${cred:NAME} references.
func (t *Tool) expand(s string) (string, error) {
	if t.opts.Credentials == nil {
		if strings.Contains(s, "${cred:") {
			return "", fmt.Errorf("%w: no credential store configured", security.ErrUnknownCredential)
		}
		return s, nil
	}
	return t.opts.Credentials.Expand(s)
}

func (t *Tool) query(ctx context.Context, args tool.Args) (tool.Output, error) {
	stmt := strings.TrimSpace(args.StringOr("sql", ""))
	if v := query.Check(stmt); !v.Accepted {
		return tool.Fail(tool.ConditionSafety, "%v", v.Err()), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return tool.Fail(tool.ConditionUnavailable, "%v", errNotConnected), nil
	}
	return t.run(ctx, stmt)
}

// run executes trusted or already-checked SQL on the live connection.
// The caller holds t.mu.
func (t *Tool) run(ctx context.Context, stmt string, args ...any) (tool.Output, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.QueryTimeout)
	defer cancel()

	d := &query.SQLDriver{DB: t.conn.db, Limit: t.opts.MaxRows}
	columns, rows, err := d.QueryArgs(ctx, stmt, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return tool.Fail(tool.ConditionTimeout, "query timed out after %s", t.opts.QueryTimeout), nil
		}
		return tool.Fail(tool.ConditionExecution, "query failed: %v", err), nil
	}
	return tool.Text(query.Format(columns, rows, t.opts.MaxRows)), nil
}

func (t *Tool) disconnect(_ context.Context, _ tool.Args) (tool.Output, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return tool.Text("no active database connection"), nil
	}
	dbType := t.conn.dbType
	if err := t.closeLocked(); err != nil {
		return tool.Textf("database connection closed with warning: %v", err), nil
	}
	t.opts.Logger.Info("database disconnected", "db_type", dbType)
	return tool.Text("database connection closed"), nil
}

func (t *Tool) showTables(ctx context.Context, _ tool.Args) (tool.Output, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return tool.Fail(tool.ConditionUnavailable, "%v", errNotConnected), nil
	}
	return t.run(ctx, t.conn.dialect.tables)
}

func (t *Tool) describe(ctx context.Context, args tool.Args) (tool.Output, error) {
	table := strings.TrimSpace(args.StringOr("table", ""))
	if !tableName.MatchString(table) {
		return tool.Fail(tool.ConditionValidation, "invalid table name"), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return tool.Fail(tool.ConditionUnavailable, "%v", errNotConnected), nil
	}

	stmt, params := t.conn.dialect.describe(table)
	out, err := t.run(ctx, stmt, params...)
	if err == nil && !out.IsError && out.Content == query.NoRows {
		return tool.Fail(tool.ConditionExecution, "table %q does not exist or is not accessible", table), nil
	}
	return out, err
}

func (t *Tool) status(_ context.Context, _ tool.Args) (tool.Output, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return tool.Text("database status: not connected"), nil
	}
	return tool.Textf("database status: connected\ntype: %s\nconnected for: %s\nconnection: %s",
		strings.ToUpper(t.conn.dbType),
		t.now().Sub(t.conn.connectedAt).Round(100*time.Millisecond),
		t.conn.display,
	), nil
}
