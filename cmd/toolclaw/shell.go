package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/flemzord/toolclaw/internal/tool"
	"github.com/spf13/cobra"
)

func shellCmd(flags *globalFlags) *cobra.Command {
	var accessible bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Pick tools and fill in their arguments interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, cmd, flags, oneShotSkip...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			sh := &shell{
				registry:   rt.Registry,
				in:         cmd.InOrStdin(),
				out:        cmd.OutOrStdout(),
				accessible: accessible,
			}
			err = sh.loop(ctx)
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use plain prompts instead of the terminal UI")
	return cmd
}

type shell struct {
	registry   *tool.Registry
	in         io.Reader
	out        io.Writer
	accessible bool
}

func (s *shell) form(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithInput(s.in).
		WithOutput(s.out).
		WithAccessible(s.accessible)
}

func (s *shell) loop(ctx context.Context) error {
	for {
		names := s.registry.Names()
		if len(names) == 0 {
			fmt.Fprintln(s.out, "no tools registered")
			return nil
		}

		var name string
		opts := huh.NewOptions(names...)
		opts = append(opts, huh.NewOption("quit", ""))
		pick := huh.NewSelect[string]().
			Title("Tool").
			Options(opts...).
			Value(&name)
		if err := s.form(huh.NewGroup(pick)).RunWithContext(ctx); err != nil {
			return err
		}
		if name == "" {
			return nil
		}

		t, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		args, err := s.promptArgs(ctx, t)
		if err != nil {
			return err
		}

		out := s.registry.Dispatch(ctx, name, args)
		if out.IsError {
			fmt.Fprintf(s.out, "[%s] %s\n\n", out.Condition, out.Content)
		} else {
			fmt.Fprintf(s.out, "%s\n\n", out.Content)
		}
	}
}

// promptArgs asks for every declared parameter. Blank optional answers
// are left out of the call.
func (s *shell) promptArgs(ctx context.Context, t tool.Tool) (tool.Args, error) {
	params := t.Schema().Params
	if len(params) == 0 {
		return tool.Args{}, nil
	}

	raw := make([]string, len(params))
	fields := make([]huh.Field, 0, len(params))
	for i, p := range params {
		title := p.Name
		if p.Required {
			title += " *"
		}
		if len(p.Enum) > 0 {
			opts := huh.NewOptions(p.Enum...)
			if !p.Required {
				opts = append([]huh.Option[string]{huh.NewOption("(none)", "")}, opts...)
			}
			fields = append(fields, huh.NewSelect[string]().
				Title(title).
				Description(p.Description).
				Options(opts...).
				Value(&raw[i]))
			continue
		}
		fields = append(fields, huh.NewInput().
			Title(title).
			Description(p.Description).
			Placeholder(string(p.Type)).
			Value(&raw[i]).
			Validate(func(v string) error {
				_, _, err := parseArgValue(p, v)
				return err
			}))
	}

	group := huh.NewGroup(fields...).Title(t.Name()).Description(t.Description())
	if err := s.form(group).RunWithContext(ctx); err != nil {
		return nil, err
	}

	args := tool.Args{}
	for i, p := range params {
		v, ok, err := parseArgValue(p, raw[i])
		if err != nil {
			return nil, err
		}
		if ok {
			args[p.Name] = v
		}
	}
	return args, nil
}

// parseArgValue converts a typed-in answer to the value the parameter
// declares. It reports false for a blank optional answer.
func parseArgValue(p tool.Param, raw string) (any, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if p.Required {
			return nil, false, fmt.Errorf("%s is required", p.Name)
		}
		return nil, false, nil
	}

	var v any
	switch p.Type {
	case tool.TypeString:
		v = raw
	case tool.TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, false, fmt.Errorf("%s must be true or false", p.Name)
		}
		v = b
	case tool.TypeAny, "":
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
	default:
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, false, fmt.Errorf("%s must be a JSON %s", p.Name, p.Type)
		}
	}

	check := tool.Schema{Params: []tool.Param{p}}
	if err := check.Validate(tool.Args{p.Name: v}); err != nil {
		return nil, false, err
	}
	return v, true, nil
}
