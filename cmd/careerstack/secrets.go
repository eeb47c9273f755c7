package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/careerstack/internal/secrets"
)

var secretsCommand = &cobra.Command{
	Use:   "secrets",
	Short: "Encrypt API keys for storage in the config file",
	Long: `Encrypted values start with "` + secrets.Prefix + `" and are decrypted with the local key at key_file,
which is created on first use. Only the Notion secret and the AI API key are read encrypted.`,
}

var secretsEncryptCommand = &cobra.Command{
	Use:   "encrypt [value]",
	Short: "Encrypt a value (read from stdin when no argument is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSecretsEncryptCmd,
}

var secretsDecryptCommand = &cobra.Command{
	Use:   "decrypt <value>",
	Short: "Decrypt a value produced by encrypt",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretsDecryptCmd,
}

func init() {
	secretsCommand.AddCommand(secretsEncryptCommand, secretsDecryptCommand)
	rootCmd.AddCommand(secretsCommand)
}

func openBox() (*secrets.Box, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	box, err := secrets.Open(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	return box, nil
}

func runSecretsEncryptCmd(cmd *cobra.Command, args []string) error {
	var value string
	if len(args) == 1 {
		value = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("no value given on stdin")
		}
		value = strings.TrimRight(line, "\r\n")
	}
	if value == "" {
		return fmt.Errorf("value is empty")
	}

	box, err := openBox()
	if err != nil {
		return err
	}
	encrypted, err := box.Encrypt(value)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), encrypted)
	return nil
}

func runSecretsDecryptCmd(cmd *cobra.Command, args []string) error {
	box, err := openBox()
	if err != nil {
		return err
	}
	plain, err := box.Decrypt(args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), plain)
	return nil
}
