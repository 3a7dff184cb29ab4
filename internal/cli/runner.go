// Package cli dispatches subcommands: the interactive table plus
// scriptable one-shot commands against the same backend contract.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"phonecrm/internal/api"
	"phonecrm/internal/config"
	"phonecrm/internal/model"
	"phonecrm/internal/session"
	"phonecrm/internal/tui"
	"phonecrm/internal/ui"
)

// Env is everything a subcommand needs: parsed config, the shared
// session and the diagnostic logger.
type Env struct {
	Config  *config.Config
	Session *session.Handle
	Logger  *slog.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error,
// 2 usage). No arguments opens the interactive table.
func Run(args []string, env Env) int {
	if len(args) == 0 {
		return doLs(env)
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls":
		return doLs(env)

	case "add":
		if len(a) != 1 {
			ui.Fail("usage: phonecrm add <count>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("add: not a number: " + a[0])
			return 2
		}
		if n <= 0 {
			ui.Fail("add: count must be positive")
			return 2
		}
		return doAdd(env, n)

	case "set":
		if len(a) != 3 {
			ui.Fail("usage: phonecrm set <id> <field> <value>")
			return 2
		}
		id, err := strconv.ParseInt(a[0], 10, 64)
		if err != nil {
			ui.Fail("set: not an id: " + a[0])
			return 2
		}
		return doSet(env, id, a[1], a[2])

	case "rm":
		if len(a) != 1 {
			ui.Fail("usage: phonecrm rm <id>")
			return 2
		}
		id, err := strconv.ParseInt(a[0], 10, 64)
		if err != nil {
			ui.Fail("rm: not an id: " + a[0])
			return 2
		}
		return doRm(env, id)

	case "return":
		if len(a) != 1 {
			ui.Fail("usage: phonecrm return <id>")
			return 2
		}
		id, err := strconv.ParseInt(a[0], 10, 64)
		if err != nil {
			ui.Fail("return: not an id: " + a[0])
			return 2
		}
		return doReturn(env, id)

	case "stats":
		return doStats(env)

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: phonecrm auth <login|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin(env)
		case "logout":
			return doAuthLogout(env)
		case "status":
			return doAuthStatus(env)
		case "whoami":
			return doAuthWhoAmI(env)
		default:
			ui.Fail("usage: phonecrm auth <login|logout|status|whoami>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`phonecrm - phone inventory client

Usage:
  phonecrm [flags] <subcommand> [args]

Subcommands:
  ls                        Open the interactive table (default)
  add <count>               Create count blank rows in the active tab
  set <id> <field> <value>  Update one field of a row
  rm <id>                   Delete a row
  return <id>               Put a sold row back in stock
  stats                     Print the aggregates for the active tab
  auth <login|logout|status|whoami>   Session management

Fields:
  fio sana model imei gb purchase_price sold_date sale_price

Examples:
  phonecrm auth login
  phonecrm ls
  phonecrm add 5
  phonecrm set 42 sale_price 1200000
  phonecrm -tab korea stats
`)
}

// -------------- auth subcommands ----------------

func doAuthLogin(env Env) int {
	c, code := newClient(env)
	if code != 0 {
		return code
	}

	var username, password string
	fmt.Print("Username: ")
	if _, err := fmt.Scanln(&username); err != nil {
		ui.Fail("read username: " + err.Error())
		return 1
	}
	fmt.Print("Password: ")
	if _, err := fmt.Scanln(&password); err != nil {
		ui.Fail("read password: " + err.Error())
		return 1
	}

	token, err := c.Login(context.Background(), username, password)
	if err != nil {
		ui.Fail("login failed: check username and password")
		return 1
	}
	if err := env.Session.Store(token, username); err != nil {
		ui.Fail("save session: " + err.Error())
		return 1
	}
	ui.OK("logged in as " + username)
	return 0
}

func doAuthLogout(env Env) int {
	switch err := env.Session.Clear(); {
	case err == nil:
		ui.OK("logged out")
		return 0
	case errors.Is(err, session.ErrEnvToken):
		ui.OK(err.Error())
		return 0
	default:
		ui.Fail("logout: " + err.Error())
		return 1
	}
}

func doAuthStatus(env Env) int {
	info := env.Session.Info()
	if info == nil {
		fmt.Println(ui.Muted.Render("not logged in"))
		fmt.Println("Run: phonecrm auth login")
		return 0
	}
	fmt.Printf("source: %s\n", info.Source)
	if info.Username != "" {
		fmt.Printf("username: %s\n", info.Username)
	}
	if info.ExpiresAt != nil {
		fmt.Printf("expires: %s\n", info.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Println("expires: (unknown)")
	}
	fmt.Println("env override: PHONECRM_TOKEN")
	return 0
}

// doAuthWhoAmI decodes the JWT claims locally (unverified); opaque
// tokens print basic info.
func doAuthWhoAmI(env Env) int {
	info := env.Session.Info()
	if info == nil {
		ui.Fail("not logged in. Run: phonecrm auth login")
		return 2
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(info.Token, claims); err == nil {
		b, _ := json.MarshalIndent(claims, "", "  ")
		fmt.Println("JWT claims:")
		fmt.Println(string(b))
		return 0
	}
	fmt.Println("Opaque token (cannot introspect locally).")
	fmt.Println("source:", info.Source)
	return 0
}

// -------------- subcommand impls ----------------

func doLs(env Env) int {
	if env.Config.BaseURL == "" {
		ui.Fail("backend URL is not set (PHONECRM_API_URL or -base)")
		return 2
	}
	if err := tui.Run(env.Config, env.Session, env.Logger); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func doAdd(env Env, count int) int {
	c, code := backend(env)
	if code != 0 {
		return code
	}
	tab := activeTab(env)
	items, err := c.CreateItems(context.Background(), tab.ID, count)
	if err != nil {
		if api.IsAuthError(err) {
			return failRequest("add", err)
		}
		ui.Fail(fmt.Sprintf("added %d of %d: %v", len(items), count, err))
		return 1
	}
	ui.OK(fmt.Sprintf("added %d to %s", len(items), tab.Label))
	return 0
}

func doSet(env Env, id int64, field, raw string) int {
	if !model.KnownField(field) {
		ui.Fail("unknown field: " + field)
		fmt.Fprintln(os.Stderr, ui.Muted.Render("fields: "+strings.Join(model.Fields, " ")))
		return 2
	}
	value, err := model.ParseFieldInput(field, raw)
	if err != nil {
		ui.Fail("set: " + err.Error())
		return 2
	}
	c, code := backend(env)
	if code != 0 {
		return code
	}
	if err := c.UpdateItem(context.Background(), id, field, value); err != nil {
		return failRequest("set", err)
	}
	ui.OK("updated")
	return 0
}

func doRm(env Env, id int64) int {
	c, code := backend(env)
	if code != 0 {
		return code
	}
	if err := c.DeleteItem(context.Background(), id); err != nil {
		return failRequest("rm", err)
	}
	ui.OK("removed")
	return 0
}

func doReturn(env Env, id int64) int {
	c, code := backend(env)
	if code != 0 {
		return code
	}
	if _, err := c.ReturnItem(context.Background(), id); err != nil {
		return failRequest("return", err)
	}
	ui.OK("returned to stock")
	return 0
}

func doStats(env Env) int {
	c, code := backend(env)
	if code != 0 {
		return code
	}
	tab := activeTab(env)
	st, err := c.Stats(context.Background(), tab.ID)
	if err != nil {
		return failRequest("stats", err)
	}

	sold := st.TotalRows - st.TotalItems
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.Title.Render(tab.Label),
		ui.Success.Render("sold"), sold,
		ui.Pending.Render("in stock"), st.TotalItems,
		ui.Accent.Render("rows"), st.TotalRows,
	)

	lines := []string{
		header,
		ui.Muted.Render(ui.ProgressBar(sold, st.TotalRows, 28)),
		"",
		"stock value  " + ui.Money(st.InventoryValue),
		"sold cost    " + ui.Money(st.SoldPurchaseValue),
		"sales        " + ui.Money(st.SalesValue),
		"profit       " + ui.Money(st.Profit),
	}
	ui.Panel(lines)
	return 0
}

// -------------- shared helpers ------------------

// backend builds the API client for a command that needs a session.
func backend(env Env) (*api.Client, int) {
	if !env.Session.LoggedIn() {
		ui.Fail("not logged in. Run: phonecrm auth login")
		return nil, 2
	}
	return newClient(env)
}

func newClient(env Env) (*api.Client, int) {
	if env.Config.BaseURL == "" {
		ui.Fail("backend URL is not set (PHONECRM_API_URL or -base)")
		return nil, 2
	}
	c := api.New(api.Config{
		BaseURL: env.Config.BaseURL,
		Timeout: env.Config.Timeout,
		Token:   env.Session.Token,
		OnAuthExpired: func() {
			_ = env.Session.Clear()
		},
	})
	return c, 0
}

func activeTab(env Env) model.Tab {
	if t, ok := model.TabByID(env.Config.Tab); ok {
		return t
	}
	return model.DefaultTab()
}

// failRequest prints a backend failure. An expired token gets the fixed
// login hint instead of the raw error.
func failRequest(op string, err error) int {
	if api.IsAuthError(err) {
		ui.Fail("session expired. Run: phonecrm auth login")
		return 1
	}
	ui.Fail(op + ": " + err.Error())
	return 1
}
