package contract_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/typesafety/contract"
	"github.com/vk/typesafety/criteria"
	"github.com/vk/typesafety/decorate"
	"github.com/vk/typesafety/guard"
	"github.com/vk/typesafety/internal/ctxlog"
)

type Account struct {
	balance int
}

func (a *Account) Deposit(amount int) int {
	a.balance += amount
	return a.balance
}

func (a *Account) Balance() int { return a.balance }

func (a *Account) SetBalance(v int) { a.balance = v }

func Add(a, b int) int { return a + b }

func Parse(s string) (int, error) { return strconv.Atoi(s) }

func newNamespace() *decorate.Namespace {
	ns := decorate.New(decorate.Here())
	ns.Set("Add", Add)
	ns.Set("Parse", Parse)
	ns.Set("Sprint", fmt.Sprint)

	cls := decorate.NewClass(reflect.TypeFor[*Account]())
	cls.Set("Deposit", (*Account).Deposit)
	cls.Set("balance", &decorate.Property{Get: (*Account).Balance, Set: (*Account).SetBalance})
	ns.Set("Account", cls)
	return ns
}

func newScope() *criteria.Scope {
	scope := criteria.NewScope()
	scope.RegisterPredicate("positive", func(v int) bool { return v > 0 })
	return scope
}

const contracts = `
contract "Add" {
  description = "adds two positive numbers"
  args        = [positive, positive]
  returns     = int
}

contract "Parse" {
  args    = [string]
  returns = positive
}

contract "Account.Deposit" {
  args = [any, positive]
}

contract "Account.balance.set" {
  args = [any, positive]
}
`

func loadContracts(t *testing.T, src string) *contract.Set {
	t.Helper()
	set, err := contract.LoadSource(context.Background(), newScope(), "contracts.hcl", []byte(src))
	require.NoError(t, err)
	return set
}

func recovered(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return nil
}

func TestLoadSource(t *testing.T) {
	t.Parallel()
	set := loadContracts(t, contracts)

	assert.Equal(t, []string{"Account.Deposit", "Account.balance.set", "Add", "Parse"}, set.Names())

	add, ok := set.Lookup("Add")
	require.True(t, ok)
	assert.Equal(t, "adds two positive numbers", add.Description)
	require.Len(t, add.Args, 2)
	assert.Equal(t, "positive", add.Args[0].String())
	assert.Equal(t, "int", add.Returns.String())
	assert.Equal(t, 2, add.DeclRange.Start.Line)
}

func TestApply(t *testing.T) {
	t.Parallel()
	ns := newNamespace()
	require.NoError(t, loadContracts(t, contracts).Apply(context.Background(), ns))

	add := ns.Get("Add").(func(int, int) int)
	assert.Equal(t, 3, add(1, 2))
	r := recovered(func() { add(-1, 2) })
	var argErr *guard.ArgumentError
	require.ErrorAs(t, r.(error), &argErr)
	assert.Equal(t, "Add", argErr.Func)

	parse := ns.Get("Parse").(func(string) (int, error))
	n, err := parse("12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	_, err = parse("-5")
	require.ErrorIs(t, err, criteria.ErrTypeMismatch)

	assert.Equal(t, "x", ns.Get("Sprint").(func(...any) string)("x"), "imported functions are untouched")

	cls := ns.Get("Account").(*decorate.Class)
	acct := &Account{}
	deposit := cls.Get("Deposit").(func(*Account, int) int)
	assert.Equal(t, 5, deposit(acct, 5))
	assert.NotNil(t, recovered(func() { deposit(acct, -5) }))

	prop := cls.Get("balance").(*decorate.Property)
	prop.Set.(func(*Account, int))(acct, 9)
	assert.Equal(t, 9, prop.Get.(func(*Account) int)(acct))
	assert.NotNil(t, recovered(func() { prop.Set.(func(*Account, int))(acct, 0) }))
	assert.Equal(t, 9, acct.Balance())
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	t.Parallel()
	set := loadContracts(t, `
contract "Sprint" {}
contract "Missing" {}
contract "Add" { args = [int, int, int] }
contract "Parse" { returns = string }
contract "Account.Deposit" { args = [any, string] }
contract "Account.balance.set" { returns = int }
contract "Account.Nope" {}
contract "Account.balance.get" {}
`)

	err := set.Validate(context.Background(), newNamespace())
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "contract validation failed")
	assert.Contains(t, msg, "contract 'Sprint': 'Sprint' is not native to namespace github.com/vk/typesafety/contract_test")
	assert.Contains(t, msg, "contract 'Missing': 'Missing' is not declared in namespace")
	assert.Contains(t, msg, "contract 'Add': declares 3 arguments, but the callable has 2 positional parameters")
	assert.Contains(t, msg, "contract 'Parse', returns: type mismatch. Contract requires 'string' but the parameter is 'int'")
	assert.Contains(t, msg, "contract 'Account.Deposit', argument 1: type mismatch. Contract requires 'string' but the parameter is 'int'")
	assert.Contains(t, msg, "contract 'Account.balance.set': declares returns, but the callable has no results")
	assert.Contains(t, msg, "contract 'Account.Nope': class 'Account' has no member 'Nope'")
	assert.Contains(t, msg, "contract 'Account.balance.get': unknown property accessor 'get'")
}

func Join(parts []string) string { return strings.Join(parts, ",") }

func Tally(counts map[string]int) int { return len(counts) }

func Drain(ch chan int) int { return len(ch) }

func TestValidate_SchemaCriteria(t *testing.T) {
	t.Parallel()
	ns := decorate.New(decorate.Here())
	ns.Set("Join", Join)
	ns.Set("Tally", Tally)
	ns.Set("Drain", Drain)
	ns.Set("Add", Add)

	ok := loadContracts(t, `
contract "Join" {
  args    = [schema(list(string))]
  returns = schema(string)
}
contract "Tally" {
  args    = [schema(map(number))]
  returns = schema(number)
}
`)
	require.NoError(t, ok.Validate(context.Background(), ns))

	bad := loadContracts(t, `
contract "Join" { args = [schema(list(number))] }
contract "Tally" { returns = schema(string) }
contract "Drain" { args = [schema(number)] }
`)
	err := bad.Validate(context.Background(), ns)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "contract 'Join', argument 0: type mismatch. Contract requires 'list of number' but the parameter provides 'list of string'")
	assert.Contains(t, msg, "contract 'Tally', returns: type mismatch. Contract requires 'string' but the parameter provides 'number'")
	assert.Contains(t, msg, "contract 'Drain', argument 0: could not imply schema type from parameter type 'chan int'")
}

func TestValidate_DynamicSchemaWarns(t *testing.T) {
	t.Parallel()
	ns := decorate.New(decorate.Here())
	ns.Set("Add", Add)

	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&logs, nil)))

	set := loadContracts(t, `contract "Add" { args = [schema(any), int] }`)
	require.NoError(t, set.Validate(ctx, ns))
	assert.Contains(t, logs.String(), "schema(any)")
	assert.Contains(t, logs.String(), `"contract":"Add"`)
}

func TestApply_StopsOnValidationError(t *testing.T) {
	t.Parallel()
	ns := newNamespace()
	set := loadContracts(t, `contract "Missing" {}`)

	require.Error(t, set.Apply(context.Background(), ns))
	assert.Equal(t, -1, ns.Get("Add").(func(int, int) int)(-2, 1), "nothing was decorated")
}

func TestLoadSource_Invalid(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		src  string
		msg  string
	}{
		{name: "syntax", src: `contract "A" {`, msg: "failed to parse HCL file"},
		{name: "unknown block", src: `widget "A" {}`, msg: "Unsupported block type"},
		{name: "unknown attribute", src: `contract "A" { color = "red" }`, msg: `An argument named "color" is not expected`},
		{name: "args not a list", src: `contract "A" { args = int }`, msg: "args must be a list"},
		{name: "bad argument criteria", src: `contract "A" { args = [widget] }`, msg: `contract "A", argument 0`},
		{name: "bad returns criteria", src: `contract "A" { returns = 42 }`, msg: `contract "A", returns`},
		{name: "duplicate", src: "contract \"A\" {}\ncontract \"A\" {}", msg: `contract "A" already declared`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := contract.LoadSource(context.Background(), newScope(), "contracts.hcl", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math.hcl"), []byte(`contract "Add" { args = [int, int] }`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bank"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank", "account.hcl"), []byte(`contract "Account.Deposit" { args = [any, positive] }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a contract"), 0o644))

	set, err := contract.Load(context.Background(), newScope(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Account.Deposit", "Add"}, set.Names())

	_, err = contract.Load(context.Background(), newScope(), filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestLoad_DuplicateAcrossFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"a.hcl", "b.hcl"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`contract "Add" {}`), 0o644))
	}

	_, err := contract.Load(context.Background(), nil, dir)
	require.ErrorContains(t, err, `contract "Add" already declared at`)
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "T.v", contract.Key(decorate.Callable{Qualname: "T.v", Kind: decorate.KindGetter}))
	assert.Equal(t, "T.v.set", contract.Key(decorate.Callable{Qualname: "T.v", Kind: decorate.KindSetter}))
	assert.Equal(t, "T.v.del", contract.Key(decorate.Callable{Qualname: "T.v", Kind: decorate.KindDeleter}))
	assert.Equal(t, "f", contract.Key(decorate.Callable{Qualname: "f", Kind: decorate.KindFunction}))
}
