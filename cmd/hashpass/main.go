// cmd/hashpass/main.go
package main

import (
	"fmt"
	"os"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/pkg/auth"
	"github.com/sirupsen/logrus"
)

// Prints a bcrypt hash for seeding admin accounts by hand.
func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("usage: hashpass <password>")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	passwords := auth.NewPasswordManager(cfg)
	hash, err := passwords.HashPassword(os.Args[1])
	if err != nil {
		logrus.WithError(err).Fatal("failed to hash password")
	}

	if err := passwords.VerifyPassword(os.Args[1], hash); err != nil {
		logrus.WithError(err).Fatal("hash verification failed")
	}

	fmt.Println(hash)
}
