// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// Confirm shows msg on w and asks the user whether to continue.
// It is a variable so tests can replace the terminal prompt.
var Confirm = func(w io.Writer, msg string) (bool, error) {
	fmt.Fprint(w, msg) //nolint:errcheck

	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("Proceed? [y/N] ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}

		if err != nil {
			return false, err
		}

		switch answer, ok := parseAnswer(input); {
		case ok:
			return answer, nil
		default:
			fmt.Fprintln(w, "Please answer y or n.") //nolint:errcheck
		}
	}
}

// parseAnswer accepts y, yes, n, no and an empty line, which means no.
func parseAnswer(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "", "n", "no":
		return false, true
	default:
		return false, false
	}
}
