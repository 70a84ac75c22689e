package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/typesafety/contract"
	"github.com/vk/typesafety/criteria"
	"github.com/vk/typesafety/internal/ctxlog"
)

// App encapsulates the logger, the criteria scope and the output stream of
// one run.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	scope  *criteria.Scope
}

// NewApp returns an App writing results to outW and logs to logW. A nil
// scope means the builtin types only.
func NewApp(outW, logW io.Writer, cfg *Config, scope *criteria.Scope) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	if scope == nil {
		scope = criteria.NewScope()
	}
	logger.Debug("App configured.", "log_level", cfg.LogLevel, "log_format", cfg.LogFormat)

	return &App{outW: outW, logger: logger, scope: scope}
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Check loads the contract files under paths and prints one line per
// contract.
func (a *App) Check(ctx context.Context, paths ...string) (*contract.Set, error) {
	ctx = a.context(ctx)
	a.logger.Debug("Checking contracts.", "paths", paths)

	set, err := contract.Load(ctx, a.scope, paths...)
	if err != nil {
		return nil, err
	}

	for _, name := range set.Names() {
		c, _ := set.Lookup(name)
		fmt.Fprintln(a.outW, describe(c))
	}
	a.logger.Info("Contracts are well formed.", "count", set.Len())
	return set, nil
}

// describe renders a contract as name(args) returns.
func describe(c *contract.Contract) string {
	s := c.Name + "("
	for i, arg := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += arg.String()
	}
	s += ")"
	if c.Returns != nil {
		s += " " + c.Returns.String()
	}
	if c.Description != "" {
		s += "  # " + c.Description
	}
	return s
}

// Match parses criteriaSrc and valueSrc and matches the value. The value is
// printed when it conforms.
func (a *App) Match(ctx context.Context, criteriaSrc, valueSrc string) (any, error) {
	c, err := criteria.Parse(criteriaSrc, a.scope)
	if err != nil {
		return nil, err
	}
	value, err := criteria.Literal(valueSrc)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", valueSrc, err)
	}
	a.logger.Debug("Matching value.", "criteria", c.String(), "kind", c.Kind().String(), "value", value)

	v, err := c.Match(value)
	if err != nil {
		if errors.Is(err, criteria.ErrTypeMismatch) {
			a.logger.Debug("Value rejected.", "error", err)
		}
		return nil, err
	}
	fmt.Fprintf(a.outW, "%#v\n", v)
	return v, nil
}

// Valid reports and prints whether criteriaSrc is a well-formed criteria.
func (a *App) Valid(ctx context.Context, criteriaSrc string) bool {
	c, err := criteria.Parse(criteriaSrc, a.scope)
	if err != nil {
		a.logger.Debug("Criteria rejected.", "error", err)
	}
	valid := err == nil && criteria.IsValid(c)
	fmt.Fprintln(a.outW, valid)
	return valid
}
