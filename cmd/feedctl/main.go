// Command feedctl is a small client for the feedscribe management API. It
// covers the day-to-day operator actions: inspecting background tasks,
// cancelling pending ones, clearing finished records and kicking off feed
// refreshes.
//
// Usage:
//
//	feedctl -server http://localhost:8080 -password secret tasks [status]
//	feedctl ... task <name>
//	feedctl ... cancel <name>
//	feedctl ... clear
//	feedctl ... stats
//	feedctl ... refresh [feed-id]
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	server := flag.String("server", envOr("FEEDSCRIBE_SERVER", "http://localhost:8080"),
		"base URL of the feedscribe server")
	password := flag.String("password", os.Getenv("FEEDSCRIBE_PASSWORD"),
		"admin password (defaults to FEEDSCRIBE_PASSWORD)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: feedctl [-server URL] [-password PW] <tasks|task|cancel|clear|stats|refresh> [arg]")
		os.Exit(2)
	}

	c := &client{
		baseURL: *server,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	if err := c.login(*password); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "tasks":
		path := "/api/tasks"
		if len(args) > 1 {
			path += "?status=" + args[1]
		}
		err = c.do(http.MethodGet, path)
	case "task":
		err = c.requireArg(args, "task name", func(name string) error {
			return c.do(http.MethodGet, "/api/tasks/"+name)
		})
	case "cancel":
		err = c.requireArg(args, "task name", func(name string) error {
			return c.do(http.MethodPost, "/api/tasks/"+name+"/cancel")
		})
	case "clear":
		err = c.do(http.MethodDelete, "/api/tasks/completed")
	case "stats":
		err = c.do(http.MethodGet, "/api/tasks/stats")
	case "refresh":
		if len(args) > 1 {
			err = c.do(http.MethodPost, "/api/feeds/"+args[1]+"/refresh")
		} else {
			err = c.do(http.MethodPost, "/api/feeds/refresh")
		}
	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *client) requireArg(args []string, what string, fn func(string) error) error {
	if len(args) < 2 {
		return fmt.Errorf("%s required", what)
	}
	return fn(args[1])
}

// login exchanges the admin password for an access token.
func (c *client) login(password string) error {
	if password == "" {
		return fmt.Errorf("no password given (use -password or FEEDSCRIBE_PASSWORD)")
	}

	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return err
	}

	resp, err := c.http.Post(c.baseURL+"/api/auth/token", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return err
	}
	c.token = token.AccessToken
	return nil
}

// do performs an authenticated request and pretty-prints the JSON response.
func (c *client) do(method, path string) error {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if len(raw) > 0 && json.Indent(&pretty, raw, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else if len(raw) > 0 {
		fmt.Println(string(raw))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
