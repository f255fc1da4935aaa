package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Generates the bcrypt hash for ADMIN_KEY_HASH from a chosen admin key.
func main() {
	keyFlag := flag.String("key", "", "Admin key to hash (save it; it cannot be recovered from the hash)")
	flag.Parse()

	key := *keyFlag
	if key == "" && flag.NArg() >= 1 {
		key = flag.Arg(0)
	}
	// Trim so the stored hash matches what the server receives (AdminAuthMiddleware trims the header)
	key = strings.TrimSpace(key)
	if key == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/hash-admin-key/main.go --key \"your-admin-key\"")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Set this in your environment:")
	fmt.Printf("ADMIN_KEY_HASH=%s\n", string(hash))
}
