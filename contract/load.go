package contract

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/typesafety/criteria"
	"github.com/vk/typesafety/internal/ctxlog"
	"github.com/vk/typesafety/internal/fsutil"
)

// Contract holds the criteria declared for one callable.
type Contract struct {
	Name        string
	Description string
	Args        []criteria.Criteria
	Returns     criteria.Criteria
	// DeclRange is where the contract block starts.
	DeclRange hcl.Range
}

// Set is a collection of contracts keyed by qualified name.
type Set struct {
	contracts map[string]*Contract
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{contracts: make(map[string]*Contract)}
}

// Add registers c. Names must be unique.
func (s *Set) Add(c *Contract) error {
	if prev, exists := s.contracts[c.Name]; exists {
		return fmt.Errorf("%s: contract %q already declared at %s", c.DeclRange, c.Name, prev.DeclRange)
	}
	s.contracts[c.Name] = c
	return nil
}

// Lookup returns the contract named name.
func (s *Set) Lookup(name string) (*Contract, bool) {
	c, ok := s.contracts[name]
	return c, ok
}

// Names lists contract names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.contracts))
	for name := range s.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of contracts.
func (s *Set) Len() int {
	return len(s.contracts)
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "contract", LabelNames: []string{"name"}},
	},
}

var blockAttributes = map[string]struct{}{
	"description": {},
	"args":        {},
	"returns":     {},
}

// Load reads every .hcl file under paths into a new Set. Criteria names are
// resolved against scope; nil means the builtin types.
func Load(ctx context.Context, scope *criteria.Scope, paths ...string) (*Set, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Contract loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Warn("No .hcl contract files found.", "paths", paths)
	}

	set := NewSet()
	parser := hclparse.NewParser()
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := set.decodeFile(ctx, f, scope); err != nil {
			return nil, fmt.Errorf("failed to load contracts from %s: %w", file, err)
		}
		logger.Debug("Loaded contract file.", "file", file)
	}

	logger.Info("Contracts loaded.", "files", len(files), "contracts", set.Len())
	return set, nil
}

// LoadSource reads contracts from an in-memory file.
func LoadSource(ctx context.Context, scope *criteria.Scope, filename string, src []byte) (*Set, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	set := NewSet()
	if err := set.decodeFile(ctx, f, scope); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Set) decodeFile(ctx context.Context, f *hcl.File, scope *criteria.Scope) error {
	logger := ctxlog.FromContext(ctx)

	content, diags := f.Body.Content(fileSchema)
	if diags.HasErrors() {
		return diags
	}

	for _, block := range content.Blocks {
		c, err := decodeContract(block, f.Bytes, scope)
		if err != nil {
			return err
		}
		if err := s.Add(c); err != nil {
			return err
		}
		logger.Debug("Decoded contract.", "name", c.Name, "args", len(c.Args), "has_returns", c.Returns != nil)
	}
	return nil
}

func decodeContract(block *hcl.Block, src []byte, scope *criteria.Scope) (*Contract, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	for name, attr := range attrs {
		if _, ok := blockAttributes[name]; !ok {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unsupported argument",
				Detail:   fmt.Sprintf("An argument named %q is not expected in a contract block.", name),
				Subject:  attr.NameRange.Ptr(),
			}}
		}
	}

	name := block.Labels[0]
	c := &Contract{Name: name, DeclRange: block.DefRange}

	if attr, ok := attrs["description"]; ok {
		if diags := gohcl.DecodeExpression(attr.Expr, nil, &c.Description); diags.HasErrors() {
			return nil, diags
		}
	}

	if attr, ok := attrs["args"]; ok {
		tuple, isTuple := attr.Expr.(*hclsyntax.TupleConsExpr)
		if !isTuple {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid args",
				Detail:   "args must be a list with one criteria per positional parameter.",
				Subject:  attr.Expr.Range().Ptr(),
			}}
		}
		for i, e := range tuple.Exprs {
			arg, err := criteria.ParseExpression(e, src, scope)
			if err != nil {
				return nil, fmt.Errorf("contract %q, argument %d: %w", name, i, err)
			}
			c.Args = append(c.Args, arg)
		}
	}

	if attr, ok := attrs["returns"]; ok {
		ret, err := criteria.ParseExpression(attr.Expr, src, scope)
		if err != nil {
			return nil, fmt.Errorf("contract %q, returns: %w", name, err)
		}
		c.Returns = ret
	}

	return c, nil
}
