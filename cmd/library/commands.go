package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/LotusZhao0521/Library/internal/api/client"
	"github.com/LotusZhao0521/Library/internal/core/domain"
	"github.com/LotusZhao0521/Library/internal/core/ports"
)

type app struct {
	session ports.Session
	guard   ports.Guard
	nav     ports.Navigator
	table   *domain.RouteTable

	users   *client.Users
	books   *client.Books
	borrows *client.Borrows
}

// enter runs the navigation guard for the view backing a command. A
// redirect cancels the command, mirroring a cancelled route transition.
func (a *app) enter(ctx context.Context, path string) error {
	route, ok := a.table.Match(path)
	if !ok {
		return fmt.Errorf("no route matches %s", path)
	}
	decision := a.guard.Evaluate(ctx, route)
	if !decision.Allowed {
		a.nav.NavigateTo(decision.RedirectTo)
		return fmt.Errorf("access to %s denied", route.Path)
	}
	a.nav.NavigateTo(route)
	return nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given (try 'library --help')")
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "logout":
		return a.session.Logout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "books":
		return a.cmdBooks(ctx)
	case "book":
		return a.cmdBook(ctx, rest)
	case "borrow":
		return a.cmdBorrow(ctx, rest)
	case "return":
		return a.cmdReturn(ctx, rest)
	case "my-borrows":
		return a.cmdMyBorrows(ctx)
	case "note":
		return a.cmdNote(ctx, rest)
	case "passwd":
		return a.cmdPasswd(ctx, rest)
	case "admin-books":
		return a.cmdAdminBooks(ctx, rest)
	case "admin-users":
		return a.cmdAdminUsers(ctx, rest)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: library login <username>")
	}
	if err := a.enter(ctx, "/login"); err != nil {
		return err
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, args[0], password); err != nil {
		return err
	}

	if dashboard, ok := a.table.ByName(domain.RouteDashboard); ok {
		a.nav.NavigateTo(dashboard)
	}
	fmt.Printf("logged in as %s\n", args[0])
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	if err := a.enter(ctx, "/"); err != nil {
		return err
	}
	u := a.session.Identity()
	if u == nil {
		return fmt.Errorf("identity not resolved")
	}
	fmt.Printf("%s (#%d, %s) since %s\n", u.Username, u.ID, u.Role, u.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *app) cmdBooks(ctx context.Context) error {
	if err := a.enter(ctx, "/"); err != nil {
		return err
	}
	books, err := a.books.List(ctx)
	if err != nil {
		return err
	}
	for _, b := range books {
		fmt.Printf("%4d  %-12s %-30s %-20s %s\n", b.ID, b.BookNo, b.Title, b.Author, b.Status)
	}
	return nil
}

func (a *app) cmdBook(ctx context.Context, args []string) error {
	id, err := parseID(args, "book <id>")
	if err != nil {
		return err
	}
	if err := a.enter(ctx, fmt.Sprintf("/books/%d", id)); err != nil {
		return err
	}

	b, err := a.books.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("#%d %s by %s (%s)\n", b.ID, b.Title, b.Author, b.Status)
	if b.ISBN != "" {
		fmt.Printf("isbn: %s\n", b.ISBN)
	}

	recs, err := a.books.Records(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range recs {
		who := strconv.FormatInt(r.UserID, 10)
		if r.User != nil {
			who = r.User.Username
		}
		returned := "still out"
		if r.ReturnTime != nil {
			returned = r.ReturnTime.Format("2006-01-02")
		}
		fmt.Printf("  borrowed by %s on %s, returned: %s\n", who, r.BorrowTime.Format("2006-01-02"), returned)
	}
	return nil
}

func (a *app) cmdBorrow(ctx context.Context, args []string) error {
	id, err := parseID(args, "borrow <id>")
	if err != nil {
		return err
	}
	if err := a.enter(ctx, fmt.Sprintf("/books/%d", id)); err != nil {
		return err
	}
	rec, err := a.books.Borrow(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("borrowed, record #%d\n", rec.ID)
	return nil
}

func (a *app) cmdReturn(ctx context.Context, args []string) error {
	id, err := parseID(args, "return <id>")
	if err != nil {
		return err
	}
	if err := a.enter(ctx, fmt.Sprintf("/books/%d", id)); err != nil {
		return err
	}
	rec, err := a.books.Return(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("returned, record #%d closed\n", rec.ID)
	return nil
}

func (a *app) cmdMyBorrows(ctx context.Context) error {
	if err := a.enter(ctx, "/my-borrows"); err != nil {
		return err
	}
	recs, err := a.borrows.ListMine(ctx)
	if err != nil {
		return err
	}
	for _, r := range recs {
		title := strconv.FormatInt(r.BookID, 10)
		if r.Book != nil {
			title = r.Book.Title
		}
		state := "out since " + r.BorrowTime.Format("2006-01-02")
		if r.ReturnTime != nil {
			state = "returned " + r.ReturnTime.Format("2006-01-02")
		}
		fmt.Printf("%4d  %-30s %s", r.ID, title, state)
		if r.Note != "" {
			fmt.Printf("  (%s)", r.Note)
		}
		fmt.Println()
	}
	return nil
}

func (a *app) cmdNote(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: library note <record-id> <text>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record id %q", args[0])
	}
	if err := a.enter(ctx, "/my-borrows"); err != nil {
		return err
	}
	if _, err := a.borrows.UpdateNote(ctx, id, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Println("note updated")
	return nil
}

func (a *app) cmdPasswd(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: library passwd <old> <new>")
	}
	if err := a.enter(ctx, "/change-password"); err != nil {
		return err
	}
	_, err := a.users.ChangePassword(ctx, ports.ChangePasswordInput{
		OldPassword: args[0],
		NewPassword: args[1],
	})
	if err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}

func (a *app) cmdAdminBooks(ctx context.Context, args []string) error {
	if err := a.enter(ctx, "/admin/books"); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: library admin-books <add|rm> ...")
	}
	switch args[0] {
	case "add":
		if len(args) < 4 {
			return fmt.Errorf("usage: library admin-books add <book-no> <title> <author>")
		}
		b, err := a.books.Create(ctx, ports.CreateBookInput{
			BookNo: args[1],
			Title:  args[2],
			Author: args[3],
		})
		if err != nil {
			return err
		}
		fmt.Printf("created book #%d\n", b.ID)
		return nil
	case "rm":
		id, err := parseID(args[1:], "admin-books rm <id>")
		if err != nil {
			return err
		}
		if err := a.books.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	}
	return fmt.Errorf("unknown admin-books action %q", args[0])
}

func (a *app) cmdAdminUsers(ctx context.Context, args []string) error {
	if err := a.enter(ctx, "/admin/users"); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: library admin-users <list|add|role> ...")
	}
	switch args[0] {
	case "list":
		users, err := a.users.List(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%4d  %-20s %s\n", u.ID, u.Username, u.Role)
		}
		return nil
	case "add":
		if len(args) < 4 {
			return fmt.Errorf("usage: library admin-users add <username> <password> <role>")
		}
		u, err := a.users.Create(ctx, ports.CreateUserInput{
			Username: args[1],
			Password: args[2],
			Role:     args[3],
		})
		if err != nil {
			return err
		}
		fmt.Printf("created user #%d\n", u.ID)
		return nil
	case "role":
		if len(args) < 3 {
			return fmt.Errorf("usage: library admin-users role <id> <admin|user>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[1])
		}
		if _, err := a.users.UpdateRole(ctx, id, args[2]); err != nil {
			return err
		}
		fmt.Println("role updated")
		return nil
	}
	return fmt.Errorf("unknown admin-users action %q", args[0])
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("usage: library %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
