// doorctl is a manual smoke-test tool for the UniFi Access developer API:
// list the doors a token can see, or unlock one directly, without going
// through the phone flow.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/teich/phone-gate-bridge/internal/infrastructure/unifi"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "list-doors":
		runListDoors(os.Args[2:])
	case "unlock":
		runUnlock(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: doorctl <list-doors|unlock> [flags]")
}

type sharedFlags struct {
	host     *string
	port     *int
	token    *string
	tokenEnv *string
	timeout  *time.Duration
	insecure *bool
}

func addSharedFlags(fs *flag.FlagSet) *sharedFlags {
	return &sharedFlags{
		host:     fs.String("host", "", "UDM Pro hostname or IP (required)"),
		port:     fs.Int("port", 12445, "Access API port"),
		token:    fs.String("token", "", "API token (prefer -token-env with a protected environment variable)"),
		tokenEnv: fs.String("token-env", "UNIFI_ACCESS_API_TOKEN", "environment variable that stores the API token"),
		timeout:  fs.Duration("timeout", 5*time.Second, "HTTP timeout"),
		insecure: fs.Bool("insecure", false, "disable TLS certificate verification"),
	}
}

func (f *sharedFlags) client() (*unifi.Config, error) {
	if *f.host == "" {
		return nil, fmt.Errorf("-host is required")
	}
	token := *f.token
	if token == "" {
		token = os.Getenv(*f.tokenEnv)
	}
	if token == "" {
		return nil, fmt.Errorf("API token not found: pass -token or set %s", *f.tokenEnv)
	}
	return &unifi.Config{
		Host:        *f.host,
		Port:        *f.port,
		Token:       token,
		Timeout:     *f.timeout,
		InsecureTLS: *f.insecure,
	}, nil
}

func runListDoors(args []string) {
	fs := flag.NewFlagSet("list-doors", flag.ExitOnError)
	shared := addSharedFlags(fs)
	fs.Parse(args)

	cfg, err := shared.client()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *shared.timeout)
	defer cancel()

	doors, err := unifi.NewClient(*cfg).ListDoors(ctx)
	if err != nil {
		log.Fatalf("list-doors: %v", err)
	}

	out, _ := json.MarshalIndent(doors, "", "  ")
	fmt.Println(string(out))
}

func runUnlock(args []string) {
	fs := flag.NewFlagSet("unlock", flag.ExitOnError)
	shared := addSharedFlags(fs)
	doorID := fs.String("door-id", "", "UniFi Access door UUID")
	doorName := fs.String("door-name", "Gate", "door name to resolve when -door-id is not set")
	actorID := fs.String("actor-id", "doorctl", "actor id for Access logs")
	actorName := fs.String("actor-name", "doorctl", "actor name for Access logs")
	extraJSON := fs.String("extra-json", "", "JSON object passed through as extra payload")
	fs.Parse(args)

	cfg, err := shared.client()
	if err != nil {
		log.Fatal(err)
	}

	var extra map[string]string
	if *extraJSON != "" {
		if err := json.Unmarshal([]byte(*extraJSON), &extra); err != nil {
			log.Fatalf("unlock: invalid -extra-json: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *shared.timeout)
	defer cancel()

	client := unifi.NewClient(*cfg)
	id := *doorID
	if id == "" {
		id, err = client.FindDoorID(ctx, *doorName)
		if err != nil {
			log.Fatalf("unlock: %v", err)
		}
	}

	if err := client.Unlock(ctx, id, *actorID, *actorName, extra); err != nil {
		log.Fatalf("unlock: %v", err)
	}
	fmt.Printf("unlocked door %s\n", id)
}
