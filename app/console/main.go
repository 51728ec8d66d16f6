package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"kidcheck/client/poller"
	"kidcheck/client/store"
	"kidcheck/client/view"
	"kidcheck/config"
	"kidcheck/domain"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func main() {
	// the console runs fine on defaults, a missing .env is not fatal here
	_ = godotenv.Load()
	log = config.GetLogrusInstance()

	role := flag.String("role", domain.RoleParent, "parent or admin")
	localOnly := flag.Bool("local-only", false, "skip the remote API and use the local store only")
	storePath := flag.String("store", config.GetLocalStorePath(), "path of the local store")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, err := store.OpenLocal(*storePath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer local.Close()

	var remote store.Backend
	if !*localOnly {
		remote = store.NewRemote(config.GetRemoteAPIURL(), config.GetRemoteTimeout())
	}
	requests := store.NewFallback(remote, local, log)
	identity := view.NewIdentity(requests, local, config.GetAdminPassphrase())

	opts := []poller.Option{
		poller.WithInterval(config.GetPollInterval()),
		poller.WithRefreshDelay(config.GetRefreshDelay()),
		poller.WithLogger(log),
	}

	c := &console{
		ctx:      ctx,
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
		identity: identity,
		requests: requests,
		local:    local,
		opts:     opts,
	}

	switch *role {
	case domain.RoleParent:
		err = c.runParent()
	case domain.RoleAdmin:
		err = c.runAdmin()
	default:
		err = fmt.Errorf("unknown role %q", *role)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

type console struct {
	ctx      context.Context
	in       *bufio.Scanner
	out      io.Writer
	identity *view.Identity
	requests *store.Fallback
	local    *store.Local
	opts     []poller.Option
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt reads one command line. ok is false at end of input or on interrupt.
func (c *console) prompt(label string) (fields []string, ok bool) {
	for {
		if c.ctx.Err() != nil {
			return nil, false
		}
		c.printf("%s> ", label)
		if !c.in.Scan() {
			return nil, false
		}
		fields = strings.Fields(c.in.Text())
		if len(fields) > 0 {
			return fields, true
		}
	}
}

func (c *console) confirm(id string) bool {
	c.printf("Are you sure you want to delete request %s? [y/N] ", id)
	if !c.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(c.in.Text()))
	return answer == "y" || answer == "yes"
}

func (c *console) report(err error) {
	c.printf("error: %v\n", err)
}

func (c *console) signInParent() (*domain.Session, error) {
	if session, err := c.identity.Current(c.ctx, domain.RoleParent); err == nil {
		return session, nil
	}
	c.printf("login <email> <password> | register <name> <email> <password> [child name]\n")
	for {
		fields, ok := c.prompt("parent")
		if !ok {
			return nil, context.Canceled
		}
		switch {
		case fields[0] == "login" && len(fields) == 3:
			session, err := c.identity.LoginParent(c.ctx, fields[1], fields[2])
			if err != nil {
				c.report(err)
				continue
			}
			return session, nil
		case fields[0] == "register" && len(fields) >= 4:
			session, err := c.identity.RegisterParent(c.ctx, domain.RegisterRequest{
				Name:      fields[1],
				Email:     fields[2],
				Password:  fields[3],
				ChildName: strings.Join(fields[4:], " "),
			})
			if err != nil {
				c.report(err)
				continue
			}
			return session, nil
		case fields[0] == "quit":
			return nil, context.Canceled
		default:
			c.printf("login <email> <password> | register <name> <email> <password> [child name]\n")
		}
	}
}

func (c *console) runParent() error {
	session, err := c.signInParent()
	if err != nil {
		return err
	}

	v, err := view.NewParentView(*session, c.requests, c.local, c.opts...)
	if err != nil {
		return err
	}
	if err := v.Open(c.ctx); err != nil {
		return err
	}
	defer v.Close()

	c.printf("%s\n", parentWelcome(v))
	for {
		fields, ok := c.prompt("parent")
		if !ok {
			return nil
		}
		switch fields[0] {
		case "help":
			c.printf("children | child add | child set <row> <grade> <name> | child rm <row>\n")
			c.printf("ask checkin|checkout <row> | list | delete <id> | logout | quit\n")
		case "children":
			for i, child := range v.Children() {
				label := "(empty)"
				if child.Selectable() {
					label = child.Label()
				}
				c.printf("%d. %s\n", i, label)
			}
		case "child":
			if err := c.editChild(v, fields[1:]); err != nil {
				c.report(err)
			}
		case "ask":
			if len(fields) != 3 {
				c.printf("ask checkin|checkout <row>\n")
				continue
			}
			row, err := strconv.Atoi(fields[2])
			if err != nil {
				c.report(err)
				continue
			}
			req, err := v.Ask(c.ctx, domain.RequestType(fields[1]), row)
			if err != nil {
				c.report(err)
				continue
			}
			c.printf("Sent: %s\n", req.RequestMessage)
		case "list":
			for _, r := range v.Requests() {
				c.printRequest(r)
			}
		case "delete":
			if len(fields) != 2 {
				c.printf("delete <id>\n")
				continue
			}
			if deleted, err := v.Delete(c.ctx, fields[1], c.confirm); err != nil {
				c.report(err)
			} else if deleted {
				c.printf("Deleted %s\n", fields[1])
			}
		case "logout":
			return c.identity.Logout(c.ctx)
		case "quit":
			return nil
		default:
			c.printf("unknown command %q, type help\n", fields[0])
		}
	}
}

// parentWelcome is the header line naming the signed in account.
func parentWelcome(v *view.ParentView) string {
	return fmt.Sprintf("Welcome, %s <%s>. Type help for commands.", v.Name(), v.Email())
}

func (c *console) editChild(v *view.ParentView, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("child add | child set <row> <grade> <name> | child rm <row>")
	}
	switch args[0] {
	case "add":
		return v.AddChild(c.ctx)
	case "set":
		if len(args) < 4 {
			return fmt.Errorf("child set <row> <grade> <name>")
		}
		row, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return v.UpdateChild(c.ctx, row, domain.Child{Name: strings.Join(args[3:], " "), Grade: args[2]})
	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("child rm <row>")
		}
		row, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return v.RemoveChild(c.ctx, row)
	default:
		return fmt.Errorf("unknown child command %q", args[0])
	}
}

func (c *console) signInAdmin() (*domain.Session, error) {
	if session, err := c.identity.Current(c.ctx, domain.RoleAdmin); err == nil {
		return session, nil
	}
	c.printf("login <passphrase> <name>\n")
	for {
		fields, ok := c.prompt("admin")
		if !ok {
			return nil, context.Canceled
		}
		if fields[0] == "quit" {
			return nil, context.Canceled
		}
		if fields[0] != "login" || len(fields) < 3 {
			c.printf("login <passphrase> <name>\n")
			continue
		}
		session, err := c.identity.LoginAdmin(c.ctx, strings.Join(fields[2:], " "), fields[1])
		if err != nil {
			c.report(err)
			continue
		}
		return session, nil
	}
}

func (c *console) runAdmin() error {
	session, err := c.signInAdmin()
	if err != nil {
		return err
	}

	v, err := view.NewAdminView(*session, c.requests, c.opts...)
	if err != nil {
		return err
	}
	v.Open(c.ctx)
	defer v.Close()

	c.printf("Welcome, %s. Type help for commands.\n", v.Name())
	for {
		fields, ok := c.prompt("admin")
		if !ok {
			return nil
		}
		switch fields[0] {
		case "help":
			c.printf("pending | processed | stats | status <id> checked-in|checked-out | time <id> <time>\n")
			c.printf("note <id> <text> | approve <id> | reject <id> | delete <id> | logout | quit\n")
		case "pending":
			for _, r := range v.Pending() {
				c.printRequest(r)
			}
		case "processed":
			for _, r := range v.Processed() {
				c.printRequest(r)
			}
		case "stats":
			stats := v.Stats()
			c.printf("pending %d, processed %d, total %d\n", stats.Pending, stats.Processed, stats.Total)
		case "status", "time", "note":
			if len(fields) < 3 {
				c.printf("%s <id> <value>\n", fields[0])
				continue
			}
			value := strings.Join(fields[2:], " ")
			switch fields[0] {
			case "status":
				v.SetActualStatus(fields[1], domain.ActualStatus(value))
			case "time":
				v.SetTime(fields[1], value)
			default:
				v.SetNote(fields[1], value)
			}
		case "approve", "reject":
			if len(fields) != 2 {
				c.printf("%s <id>\n", fields[0])
				continue
			}
			respond := v.Approve
			if fields[0] == "reject" {
				respond = v.Reject
			}
			req, err := respond(c.ctx, fields[1])
			if err != nil {
				c.report(err)
				continue
			}
			c.printf("Sent: %s\n", *req.Feedback)
		case "delete":
			if len(fields) != 2 {
				c.printf("delete <id>\n")
				continue
			}
			if deleted, err := v.Delete(c.ctx, fields[1], c.confirm); err != nil {
				c.report(err)
			} else if deleted {
				c.printf("Deleted %s\n", fields[1])
			}
		case "logout":
			return c.identity.Logout(c.ctx)
		case "quit":
			return nil
		default:
			c.printf("unknown command %q, type help\n", fields[0])
		}
	}
}

func (c *console) printRequest(r domain.StatusRequest) {
	c.printf("[%s] %s %s (%s) by %s <%s>, %s\n", r.ID, r.Type, r.ChildName, r.ChildGrade,
		r.ParentName, r.ParentEmail, r.Timestamp.Local().Format(domain.ResponseTimeLayout))
	c.printf("    %s\n", r.RequestMessage)
	if r.Feedback != nil {
		c.printf("    %s: %s (at %s)\n", r.Status, *r.Feedback, derefOr(r.ResponseTime, "-"))
	} else {
		c.printf("    %s\n", r.Status)
	}
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
