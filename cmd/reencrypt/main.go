// Re-encrypts the stored session with a new scrypt cost under the same
// password. The daemon must be stopped.
// Usage: go run ./cmd/reencrypt -scrypt-n N
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/AlexZinkM/evm-wallet/internal/config"
	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	newN := flag.Int("scrypt-n", 0, "scrypt cost of the re-encrypted session (power of two)")
	flag.Parse()
	if *newN < 2 || *newN&(*newN-1) != 0 {
		return errors.New("-scrypt-n must be a power of two > 1")
	}
	if *newN == cfg.ScryptN {
		return fmt.Errorf("session already uses scrypt N=%d", cfg.ScryptN)
	}

	// Opening the store takes its process lock, so this fails while the
	// daemon is running
	var store session.Store
	if cfg.SessionBackend == "bolt" {
		s, err := session.OpenBoltStore(cfg.SessionDBPath)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	} else {
		release, err := session.LockFile(cfg.SessionFilePath)
		if err != nil {
			return err
		}
		defer release()
		store = session.NewFileStore(cfg.SessionFilePath)
	}

	machine := session.NewMachine(store, crypto.NewCipher(params(cfg.ScryptN)), nil)
	if machine.Restore() != model.SessionLocked {
		return errors.New("no stored session")
	}
	account, err := machine.Account()
	if err != nil {
		return err
	}

	password, err := config.PromptForPassword(fmt.Sprintf("Password for %s: ", account.Name))
	if err != nil {
		return err
	}
	defer clear(password)

	if err := machine.Reseal(string(password), crypto.NewCipher(params(*newN))); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Session of %s re-encrypted (scrypt N=%d).\n", account.Name, *newN)
	fmt.Fprintf(os.Stderr, "Set SCRYPT_N=%d before starting the daemon.\n", *newN)
	return nil
}

func params(n int) crypto.ScryptParams {
	return crypto.ScryptParams{N: n, R: 8, P: 1}
}
