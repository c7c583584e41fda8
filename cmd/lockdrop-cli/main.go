package main

import (
	"fmt"
	"os"

	"lockdrop/config"
	"lockdrop/observability/logging"
)

var configPath = defaultConfigPath()

func defaultConfigPath() string {
	if path := os.Getenv("LOCKDROP_CONFIG"); path != "" {
		return path
	}
	return "./lockdrop.toml"
}

func main() {
	logging.Setup("lockdrop-cli", os.Getenv("LOCKDROP_ENV"))

	args := os.Args[1:]
	if len(args) < 1 {
		printUsage()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	command := args[0]
	switch command {
	case "generate-key":
		if len(args) < 2 {
			fmt.Println("Error: Please provide an output key file.")
			printUsage()
			return
		}
		generateKey(args[1])
	case "tree":
		if len(args) < 2 {
			fmt.Println("Error: Please provide a recipients file.")
			printUsage()
			return
		}
		buildTree(cfg, args[1], args[2:])
	case "proof":
		if len(args) < 3 {
			fmt.Println("Error: Please provide a campaign id and a recipient address.")
			printUsage()
			return
		}
		printProof(cfg, args[1], args[2])
	case "verify":
		if len(args) < 3 {
			fmt.Println("Error: Please provide a campaign id and a recipient address.")
			printUsage()
			return
		}
		verifyProof(cfg, args[1], args[2])
	case "sign-claim":
		if len(args) < 6 {
			fmt.Println("Error: Please provide a key file, campaign id, amount, nonce and expiry.")
			printUsage()
			return
		}
		signClaim(cfg, args[1], args[2], args[3], args[4], args[5])
	case "sign-delegation":
		if len(args) < 5 {
			fmt.Println("Error: Please provide a key file, delegate address, nonce and expiry.")
			printUsage()
			return
		}
		signDelegation(cfg, args[1], args[2], args[3], args[4])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println(`Usage: lockdrop-cli <command> [arguments]

Commands:
  generate-key <file>                                    Generate a new key and save it to a file
  tree <recipients.toml> [campaign-id]                   Build a campaign commitment tree and store it locally
  proof <campaign-id> <address>                          Print the membership proof for a recipient
  verify <campaign-id> <address>                         Re-verify a stored proof against the stored root
  sign-claim <key-file> <campaign-id> <amount> <nonce> <expiry>
                                                         Sign a proxy-claim authorization
  sign-delegation <key-file> <delegate> <nonce> <expiry> Sign a delegation authorization

Environment:
  LOCKDROP_CONFIG  Path to the TOML config file (default ./lockdrop.toml)`)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
