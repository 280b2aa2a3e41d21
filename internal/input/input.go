// Package input reads the operator-supplied wallet and the access token.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"LootSpinner/internal/model"
)

// ErrNoInput is returned when the input stream ends before a valid wallet is read.
var ErrNoInput = errors.New("input closed before a valid wallet was entered")

// PromptWallet asks for a wallet address until a valid one is entered.
// There is no retry limit; only end of input stops the loop.
func PromptWallet(in io.Reader, out io.Writer) (model.Wallet, error) {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Enter your wallet address: ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("read wallet: %w", err)
			}
			return "", ErrNoInput
		}
		line := strings.TrimRight(sc.Text(), "\r")
		if err := model.ValidateWallet(line); err != nil {
			fmt.Fprintln(out, `Invalid wallet! Must start with "0x" and have appropriate length.`)
			continue
		}
		return model.Wallet(line), nil
	}
}

// LoadToken reads the access token file and trims surrounding whitespace.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
