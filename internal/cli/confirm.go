// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrConfirmationRequired is returned when a destructive command needs
// --yes because it cannot prompt.
var ErrConfirmationRequired = errors.New("confirmation required: stdin is not a terminal; use --yes")

// RequireConfirmation asks question on out and reads a y/N answer from in.
//   - yes is true (--yes): confirmed without prompting
//   - in is not a terminal: ErrConfirmationRequired
//   - otherwise: prompt and accept "y" or "yes"
func RequireConfirmation(in io.Reader, out io.Writer, question string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !isTerminalReader(in) {
		return false, ErrConfirmationRequired
	}
	return PromptYesNo(in, out, question)
}

// PromptYesNo prompts once and parses the answer. Anything other than y/yes
// is a no.
func PromptYesNo(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
