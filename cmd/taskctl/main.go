// taskctl is the terminal client for the task-manager API.
//
//	taskctl register -name NAME -email EMAIL [-password PASSWORD]
//	taskctl login -email EMAIL [-password PASSWORD]
//	taskctl logout
//	taskctl whoami
//	taskctl [dashboard]
//
// TASKCTL_API_URL sets the API root (default http://localhost:5000/api) and TASKCTL_SESSION_DB the
// SQLite file holding the session (default $XDG_DATA_HOME/taskctl/session.db).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"task-manager/backend/internal/apperror"
	"task-manager/backend/internal/client"
	"task-manager/backend/internal/client/session"
	"task-manager/backend/internal/client/tasklist"
	"task-manager/backend/internal/client/ui"
	"task-manager/backend/internal/task/domain"
)

// Version information set via ldflags
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "taskctl:", apperror.Message(err, err.Error()))
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "dashboard"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	if cmd == "version" || cmd == "--version" || cmd == "-v" {
		fmt.Printf("taskctl %s\n", version)
		return nil
	}

	v := viper.New()
	v.SetEnvPrefix("TASKCTL")
	v.AutomaticEnv()
	v.SetDefault("API_URL", client.DefaultBaseURL)
	v.SetDefault("SESSION_DB", "")

	dbPath := v.GetString("SESSION_DB")
	if dbPath == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return err
		}
		dbPath = p
	}
	store, err := session.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	holder, err := session.NewHolder(ctx, store)
	if err != nil {
		return err
	}
	api, err := client.New(v.GetString("API_URL"), client.WithTokenSource(holder))
	if err != nil {
		return err
	}
	holder.SetAuthenticator(api)

	switch cmd {
	case "register":
		fs := flag.NewFlagSet("register", flag.ContinueOnError)
		name := fs.String("name", "", "Display name")
		email := fs.String("email", "", "Email address")
		password := fs.String("password", "", "Password (prompted when empty)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		pw, err := promptIfEmpty(*password, "Password: ")
		if err != nil {
			return err
		}
		if err := holder.Register(ctx, *name, *email, pw); err != nil {
			return err
		}
		fmt.Printf("Registered and logged in as %s\n", holder.User().Email)
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		email := fs.String("email", "", "Email address")
		password := fs.String("password", "", "Password (prompted when empty)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		pw, err := promptIfEmpty(*password, "Password: ")
		if err != nil {
			return err
		}
		if err := holder.Login(ctx, *email, pw); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", holder.User().Email)
		return nil

	case "logout":
		if err := holder.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil

	case "whoami":
		u := holder.User()
		if u == nil {
			return errors.New("not logged in")
		}
		fmt.Printf("%s <%s>\n", u.Name, u.Email)
		return nil

	case "dashboard":
		if !holder.IsAuthenticated() {
			return errors.New("not logged in; run taskctl login or taskctl register")
		}
		dash := ui.NewDashboard(ctx, tasklist.New(api, domain.DefaultLimit), holder.User().Name, holder.Logout)
		if _, err := tea.NewProgram(dash, tea.WithAltScreen()).Run(); err != nil {
			return err
		}
		switch {
		case dash.SessionExpired:
			fmt.Println(ui.MsgSessionExpired)
		case dash.LoggedOut:
			fmt.Println("Logged out")
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
