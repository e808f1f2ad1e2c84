package fileeditor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/flemzord/toolclaw/internal/tool"
)

// Options tune an Editor.
type Options struct {
	// Roots are the directories the editor may touch. Relative paths are
	// resolved against the first one.
	Roots []string

	// Forbidden are prefixes never touched unless they contain a root.
	// Nil means the default system directories.
	Forbidden []string

	// Extensions is the allow-list of file extensions. Empty allows all.
	Extensions []string

	MaxFileSize int64
	Backup      bool
	Logger      *slog.Logger
}

// Editor reads and writes text files inside a set of safe roots.
type Editor struct {
	tool.BaseTool
	actions *tool.Actions
	guard   *guard
	opts    Options
}

// New returns an Editor.
func New(opts Options) *Editor {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}
	if opts.Forbidden == nil {
		opts.Forbidden = defaultForbidden
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Editor{
		opts:  opts,
		guard: newGuard(opts.Roots, opts.Forbidden, opts.Extensions),
	}
	e.actions = tool.MustActions(
		tool.Action{Name: "read", Required: []string{"path"}, Handler: e.read, Description: "Read a text file"},
		tool.Action{Name: "write", Required: []string{"path", "content"}, Handler: e.write,
			Description: "Replace a file's content, backing it up first"},
		tool.Action{Name: "create", Required: []string{"path"}, Handler: e.create, Description: "Create a new file"},
		tool.Action{Name: "delete", Required: []string{"path"}, Handler: e.delete,
			Description: "Delete a file, backing it up first"},
		tool.Action{Name: "list", Handler: e.list, Description: "List a directory"},
		tool.Action{Name: "info", Required: []string{"path"}, Handler: e.info, Description: "Show file metadata"},
		tool.Action{Name: "backup", Required: []string{"path"}, Handler: e.backupAction, Description: "Copy a file to path.backup"},
		tool.Action{Name: "restore", Required: []string{"path"}, Handler: e.restore,
			Description: "Copy a backup over a file"},
	)
	e.BaseTool = tool.BaseTool{
		ToolName:        "file_editor",
		ToolDescription: "Reads, writes, creates, deletes, lists, backs up and restores text files inside the workspace",
		ToolSchema: e.actions.Schema(
			tool.Param{Name: "path", Type: tool.TypeString, Description: "File or directory, absolute or relative to the workspace"},
			tool.Param{Name: "content", Type: tool.TypeString, Description: "Text for write and create"},
			tool.Param{Name: "backup_path", Type: tool.TypeString, Description: "Backup to restore from; defaults to path.backup"},
		),
	}
	return e
}

// Validate implements tool.Tool.
func (e *Editor) Validate(args tool.Args) error {
	if err := e.BaseTool.Validate(args); err != nil {
		return err
	}
	return e.actions.Validate(args)
}

// Execute implements tool.Tool.
func (e *Editor) Execute(ctx context.Context, args tool.Args) (tool.Output, error) {
	return e.actions.Run(ctx, args)
}

// fail maps filesystem and guard errors onto output conditions.
func fail(err error) tool.Output {
	switch {
	case errors.Is(err, errUnsafePath), errors.Is(err, errExtensionBlocked):
		return tool.Fail(tool.ConditionSafety, "%v", err)
	case errors.Is(err, fs.ErrNotExist):
		return tool.Fail(tool.ConditionExecution, "not found: %v", unwrapPath(err))
	default:
		return tool.Fail(tool.ConditionExecution, "%v", err)
	}
}

func unwrapPath(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Path
	}
	return err.Error()
}

// file resolves path and checks its extension.
func (e *Editor) file(args tool.Args) (string, error) {
	path, err := e.guard.resolve(args.StringOr("path", ""))
	if err != nil {
		return "", err
	}
	if err := e.guard.checkExtension(path); err != nil {
		return "", err
	}
	return path, nil
}

// regular stats path and requires a regular file.
func regular(path string) (fs.FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}
	return fi, nil
}

func (e *Editor) read(_ context.Context, args tool.Args) (tool.Output, error) {
	path, err := e.file(args)
	if err != nil {
		return fail(err), nil
	}
	fi, err := regular(path)
	if err != nil {
		return fail(err), nil
	}
	if fi.Size() > e.opts.MaxFileSize {
		return tool.Fail(tool.ConditionValidation, "file too large (%d bytes, limit %d)", fi.Size(), e.opts.MaxFileSize), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path checked by the guard
	if err != nil {
		return fail(err), nil
	}
	if !utf8.Valid(data) {
		return tool.Fail(tool.ConditionValidation, "file is not valid UTF-8 text: %s", path), nil
	}
	return tool.Textf("read %s (%d characters):\n\n%s", path, utf8.RuneCount(data), data), nil
}

func (e *Editor) checkContent(content string) error {
	if int64(len(content)) > e.opts.MaxFileSize {
		return fmt.Errorf("content too large (%d bytes, limit %d)", len(content), e.opts.MaxFileSize)
	}
	return nil
}

func (e *Editor) write(_ context.Context, args tool.Args) (tool.Output, error) {
	path, err := e.file(args)
	if err != nil {
		return fail(err), nil
	}
	content := args.StringOr("content", "")
	if err := e.checkContent(content); err != nil {
		return tool.Fail(tool.ConditionValidation, "%v", err), nil
	}

	var note string
	if _, err := regular(path); err == nil && e.opts.Backup {
		backup, err := e.backup(path)
		if err != nil {
			return tool.Fail(tool.ConditionExecution, "backup failed, write cancelled: %v", err), nil
		}
		note = fmt.Sprintf(" (backup: %s)", backup)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fail(err), nil
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fail(err), nil
	}
	e.opts.Logger.Info("file written", "path", path, "bytes", len(content))
	return tool.Textf("wrote %s (%d characters)%s", path, utf8.RuneCountInString(content), note), nil
}

func (e *Editor) create(_ context.Context, args tool.Args) (tool.Output, error) {
	path, err := e.file(args)
	if err != nil {
		return fail(err), nil
	}
	content := args.StringOr("content", "")
	if err := e.checkContent(content); err != nil {
		return tool.Fail(tool.ConditionValidation, "%v", err), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fail(err), nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // path checked by the guard
	if errors.Is(err, fs.ErrExist) {
		return tool.Fail(tool.ConditionExecution, "file already exists: %s", path), nil
	}
	if err != nil {
		return fail(err), nil
	}
	_, werr := f.WriteString(content)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fail(werr), nil
	}
	return tool.Textf("created %s", path), nil
}

func (e *Editor) delete(_ context.Context, args tool.Args) (tool.Output, error) {
	path, err := e.file(args)
	if err != nil {
		return fail(err), nil
	}
	if _, err := regular(path); err != nil {
		return fail(err), nil
	}

	var note string
	if e.opts.Backup {
		backup, err := e.backup(path)
		if err != nil {
			return tool.Fail(tool.ConditionExecution, "backup failed, delete cancelled: %v", err), nil
		}
		note = fmt.Sprintf(" (backup: %s)", backup)
	}
	if err := os.Remove(path); err != nil {
		return fail(err), nil
	}
	e.opts.Logger.Info("file deleted", "path", path)
	return tool.Textf("deleted %s%s", path, note), nil
}

func (e *Editor) list(_ context.Context, args tool.Args) (tool.Output, error) {
	path, err := e.guard.resolve(args.StringOr("path", "."))
	if err != nil {
		return fail(err), nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fail(err), nil
	}
	if len(entries) == 0 {
		return tool.Textf("directory is empty: %s", path), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "directory %s (%d entries):", path, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Fprintf(&b, "\n[dir]  %s/", entry.Name())
			continue
		}
		var size int64
		if fi, err := entry.Info(); err == nil {
			size = fi.Size()
		}
		fmt.Fprintf(&b, "\n[file] %s (%d bytes)", entry.Name(), size)
	}
	return tool.Text(b.String()), nil
}

func (e *Editor) info(_ context.Context, args tool.Args) (tool.Output, error) {
	path, err := e.guard.resolve(args.StringOr("path", ""))
	if err != nil {
		return fail(err), nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fail(err), nil
	}
	kind := "file"
	if fi.IsDir() {
		kind = "directory"
	}
	return tool.Textf("path: %s\nsize: %d bytes\nmodified: %s\nextension: %s\nparent: %s\ntype: %s",
		path, fi.Size(), fi.ModTime().UTC().Format(time.RFC3339), filepath.Ext(path), filepath.Dir(path), kind), nil
}

func (e *Editor) backupAction(_ context.Context, args tool.Args) (tool.Output, error) {
	path, err := e.guard.resolve(args.StringOr("path", ""))
	if err != nil {
		return fail(err), nil
	}
	if _, err := regular(path); err != nil {
		return fail(err), nil
	}
	backup, err := e.backup(path)
	if err != nil {
		return fail(err), nil
	}
	return tool.Textf("backed up %s to %s", path, backup), nil
}

// backup copies path to the next free backup name and returns it.
func (e *Editor) backup(path string) (string, error) {
	dst, err := nextBackupPath(path)
	if err != nil {
		return "", err
	}
	if err := copyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (e *Editor) restore(_ context.Context, args tool.Args) (tool.Output, error) {
	path, err := e.file(args)
	if err != nil {
		return fail(err), nil
	}
	src := args.StringOr("backup_path", "")
	if strings.TrimSpace(src) == "" {
		src = path + ".backup"
	}
	src, err = e.guard.resolve(src)
	if err != nil {
		return fail(err), nil
	}
	if _, err := regular(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tool.Fail(tool.ConditionExecution, "backup not found: %s", src), nil
		}
		return fail(err), nil
	}
	if err := copyFile(src, path); err != nil {
		return fail(err), nil
	}
	e.opts.Logger.Info("file restored", "path", path, "from", src)
	return tool.Textf("restored %s from %s", path, src), nil
}

// copyFile copies src to dst, keeping the source's permission bits and
// modification time.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) //nolint:gosec // both paths checked by the guard
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm()) //nolint:gosec // checked by the guard
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return os.Chtimes(dst, fi.ModTime(), fi.ModTime())
}
