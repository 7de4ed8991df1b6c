package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// SelectOption presents a numbered list of options and returns the index
// the user picked. Empty input returns defaultIndex.
func SelectOption(message string, options []string, defaultIndex int, input io.Reader, output io.Writer) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("no options to select from")
	}
	if defaultIndex < 0 || defaultIndex >= len(options) {
		defaultIndex = 0
	}

	bold := color.New(color.Bold)
	if _, err := bold.Fprintln(output, message); err != nil {
		return -1, err
	}
	for i, opt := range options {
		if _, err := fmt.Fprintf(output, "  %d) %s\n", i+1, opt); err != nil {
			return -1, err
		}
	}

	scanner := bufio.NewScanner(input)
	for {
		if _, err := fmt.Fprintf(output, "Select [1-%d] (default %d): ", len(options), defaultIndex+1); err != nil {
			return -1, err
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return -1, err
			}
			return -1, io.EOF
		}

		response := strings.TrimSpace(scanner.Text())
		if response == "" {
			return defaultIndex, nil
		}

		n, err := strconv.Atoi(response)
		if err != nil || n < 1 || n > len(options) {
			if _, err := fmt.Fprintf(output, "Please enter a number between 1 and %d\n", len(options)); err != nil {
				return -1, err
			}
			continue
		}
		return n - 1, nil
	}
}

// MultiSelect presents a numbered list and returns the indices the user
// picked. Input is comma separated numbers; "a" or empty input selects
// everything.
func MultiSelect(message string, options []string, input io.Reader, output io.Writer) ([]int, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("no options to select from")
	}

	bold := color.New(color.Bold)
	if _, err := bold.Fprintln(output, message); err != nil {
		return nil, err
	}
	for i, opt := range options {
		if _, err := fmt.Fprintf(output, "  %d) %s\n", i+1, opt); err != nil {
			return nil, err
		}
	}

	scanner := bufio.NewScanner(input)
	for {
		if _, err := fmt.Fprintf(output, "Select (e.g. 1,3) or 'a' for all [all]: "); err != nil {
			return nil, err
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		response := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if response == "" || response == "a" || response == "all" {
			all := make([]int, len(options))
			for i := range options {
				all[i] = i
			}
			return all, nil
		}

		indices, err := parseSelection(response, len(options))
		if err != nil {
			if _, err := fmt.Fprintln(output, err.Error()); err != nil {
				return nil, err
			}
			continue
		}
		return indices, nil
	}
}

// parseSelection turns "1,3" into zero-based indices, deduplicated and
// in the order first mentioned.
func parseSelection(response string, count int) ([]int, error) {
	var indices []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(response, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > count {
			return nil, fmt.Errorf("Please enter numbers between 1 and %d, separated by commas", count)
		}
		if seen[n-1] {
			continue
		}
		seen[n-1] = true
		indices = append(indices, n-1)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("Please enter numbers between 1 and %d, separated by commas", count)
	}
	return indices, nil
}
