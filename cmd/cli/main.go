package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/gosplit/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gosplit-cli",
		Short: "GoSplit CLI tool",
		Long:  `A command line interface for interacting with the GoSplit API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoSplit API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(expensesCmd())
	rootCmd.AddCommand(finalizeCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User directory operations",
	}

	var email, name string
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a user",
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodPost, "/api/v1/users/", map[string]string{
				"email": email,
				"name":  name,
			})
		},
	}
	register.Flags().StringVar(&email, "email", "", "User email (required)")
	register.Flags().StringVar(&name, "name", "", "Display name")
	_ = register.MarkFlagRequired("email")

	lookup := &cobra.Command{
		Use:   "lookup EMAIL",
		Short: "Resolve a user by email",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/users/lookup?email="+args[0], nil)
		},
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, listPath("/api/v1/users/", limit, offset), nil)
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(register, lookup, list)
	return cmd
}

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Event operations",
	}

	var name, currency string
	var members []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Run: func(cmd *cobra.Command, args []string) {
			memberList := make([]map[string]string, len(members))
			for i, m := range members {
				memberList[i] = map[string]string{"email": m}
			}
			request(http.MethodPost, "/api/v1/events/", map[string]any{
				"name":          name,
				"base_currency": currency,
				"members":       memberList,
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Event name (required)")
	create.Flags().StringVar(&currency, "currency", "USD", "Base currency")
	create.Flags().StringArrayVar(&members, "member", nil, "Member email (repeatable)")
	_ = create.MarkFlagRequired("name")

	get := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Show an event with expenses and balances",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/events/"+args[0], nil)
		},
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, listPath("/api/v1/events/", limit, offset), nil)
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	del := &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodDelete, "/api/v1/events/"+args[0], nil)
		},
	}

	balances := &cobra.Command{
		Use:   "balances EVENT_ID",
		Short: "Show per-member balances",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/events/"+args[0]+"/balances", nil)
		},
	}

	consistency := &cobra.Command{
		Use:   "consistency EVENT_ID",
		Short: "Check the event ledger conservation invariant",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/events/"+args[0]+"/consistency", nil)
		},
	}

	cmd.AddCommand(create, get, list, del, balances, consistency)
	return cmd
}

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Expense operations",
	}

	var body string
	add := &cobra.Command{
		Use:   "add EVENT_ID",
		Short: "Add an expense from a JSON body ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			payload, err := readBody(body)
			if err != nil {
				fmt.Printf("Error reading body: %v\n", err)
				os.Exit(1)
			}
			request(http.MethodPost, "/api/v1/events/"+args[0]+"/expenses/", payload)
		},
	}
	add.Flags().StringVar(&body, "body", "-", "Expense JSON")

	update := &cobra.Command{
		Use:   "update EVENT_ID INDEX",
		Short: "Replace an expense from a JSON body ('-' reads stdin)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			payload, err := readBody(body)
			if err != nil {
				fmt.Printf("Error reading body: %v\n", err)
				os.Exit(1)
			}
			request(http.MethodPut, "/api/v1/events/"+args[0]+"/expenses/"+args[1], payload)
		},
	}
	update.Flags().StringVar(&body, "body", "-", "Expense JSON")

	del := &cobra.Command{
		Use:   "delete EVENT_ID INDEX",
		Short: "Delete an expense by index",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodDelete, "/api/v1/events/"+args[0]+"/expenses/"+args[1], nil)
		},
	}

	cmd.AddCommand(add, update, del)
	return cmd
}

func finalizeCmd() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "finalize EVENT_ID",
		Short: "Compute the settlement plan in a target currency",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodPost, "/api/v1/events/"+args[0]+"/finalize?final_currency="+currency, nil)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "USD", "Settlement currency")
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrations(databaseURL, path); err != nil {
				fmt.Printf("Migration failed: %v\n", err)
				os.Exit(1)
			}
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrationsDown(databaseURL, path); err != nil {
				fmt.Printf("Rollback failed: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")

	cmd.AddCommand(up, down)
	return cmd
}

// request performs an API call and prints the JSON response.
func request(method, path string, payload any) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 300 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}

	if len(raw) == 0 {
		fmt.Println("OK")
		return
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		fmt.Println(string(raw))
		return
	}

	printJSON(parsed)
}

// readBody parses an inline JSON body, reading stdin when source is "-".
func readBody(source string) (any, error) {
	raw := []byte(source)
	if source == "-" {
		var err error
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	return parsed, nil
}

func listPath(base string, limit, offset int) string {
	return base + "?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
