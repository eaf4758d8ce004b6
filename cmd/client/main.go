package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/keyharmony/keyharmony/internal/client/api"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to drive the
// disclosure workflow.
func repl(client *api.Client, session api.Session) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("%s> ", session.Username)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, submit <name> [reason...], requests [all],")
			fmt.Println("  review <id>, escalate <id>, approve <id> <value> [comment...],")
			fmt.Println("  deny <id> [comment...], secret <id>, secrets, notifications, audit, exit")
		case "submit":
			if len(args) < 2 {
				fmt.Println("Usage: submit <name> [reason...]")
				continue
			}
			req, err := client.Submit(args[1], strings.Join(args[2:], " "))
			report(req, err)
		case "requests":
			all := len(args) > 1 && args[1] == "all"
			requests, err := client.Requests(all)
			report(requests, err)
		case "review":
			id, ok := parseID(args)
			if !ok {
				continue
			}
			req, err := client.Review(id)
			report(req, err)
		case "escalate":
			id, ok := parseID(args)
			if !ok {
				continue
			}
			req, err := client.Escalate(id)
			report(req, err)
		case "approve":
			if len(args) < 3 {
				fmt.Println("Usage: approve <id> <value> [comment...]")
				continue
			}
			id, ok := parseID(args)
			if !ok {
				continue
			}
			req, err := client.Approve(id, args[2], strings.Join(args[3:], " "))
			report(req, err)
		case "deny":
			id, ok := parseID(args)
			if !ok {
				continue
			}
			req, err := client.Deny(id, strings.Join(args[2:], " "))
			report(req, err)
		case "secret":
			id, ok := parseID(args)
			if !ok {
				continue
			}
			value, err := client.Secret(id)
			if err != nil {
				fmt.Println("Error:", err)
			} else {
				fmt.Println(value)
			}
		case "secrets":
			secrets, err := client.Secrets()
			report(secrets, err)
		case "notifications":
			messages, err := client.Notifications()
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			for _, m := range messages {
				fmt.Println("-", m)
			}
		case "audit":
			entries, err := client.Audit()
			report(entries, err)
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// parseID reads the <id> argument following a command name.
func parseID(args []string) (int64, bool) {
	if len(args) < 2 {
		fmt.Printf("Usage: %s <id>\n", args[0])
		return 0, false
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Println("id must be a number")
		return 0, false
	}
	return id, true
}

// report prints v as indented JSON, or the error.
func report(v any, err error) {
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// main parses command-line flags, logs in and starts the shell.
func main() {
	var (
		baseURL  string
		username string
		passwd   string
		showVer  bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&username, "user", "", "username for login")
	flag.StringVar(&passwd, "password", "", "password for login")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("KeyHarmony Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	if username == "" || passwd == "" {
		log.Fatal("please provide -user and -password")
	}

	client := api.New(baseURL)
	session, err := client.Login(username, passwd)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Logged in as %s (admin=%v). Type 'help' for commands.\n", session.Username, session.IsAdmin)

	repl(client, session)
}
