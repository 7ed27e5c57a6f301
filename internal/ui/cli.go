package ui

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CliPrompter uses stdin/stdout for interaction — fallback for headless
// environments where no dialog toolkit is reachable.
type CliPrompter struct {
	reader *bufio.Reader
}

// NewCliPrompter returns a new CLI-based prompter.
func NewCliPrompter() *CliPrompter {
	return &CliPrompter{reader: bufio.NewReader(os.Stdin)}
}

func (c *CliPrompter) Notify(title, message string) {
	fmt.Printf("[%s] %s\n", title, message)
}

func (c *CliPrompter) Error(title, message string) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", title, message)
}

func (c *CliPrompter) Entry(title, text string) (string, bool) {
	fmt.Printf("%s: ", text)
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (c *CliPrompter) Question(title, message string, buttons []string) (string, bool) {
	fmt.Printf("[%s] %s\n", title, message)
	for i, b := range buttons {
		fmt.Printf("  %d) %s\n", i+1, b)
	}
	fmt.Print("Choice (enter to dismiss): ")

	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(buttons) {
		return "", false
	}
	return buttons[n-1], true
}
