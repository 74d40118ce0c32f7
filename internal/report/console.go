package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	skipColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

// Console prints human-readable run progress. All methods are safe for
// concurrent use; structured data never goes here, only notices.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Infof(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Skipf prints a yellow skip notice (e.g. a feature not enabled for the scope).
func (c *Console) Skipf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	skipColor.Fprintf(c.w, format+"\n", args...)
}

// Warnf prints a yellow warning (e.g. an unknown requested feature).
func (c *Console) Warnf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	skipColor.Fprintf(c.w, format+"\n", args...)
}

// Errorf prints a red failure notice.
func (c *Console) Errorf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	errorColor.Fprintf(c.w, format+"\n", args...)
}

// Successf prints a green completion notice.
func (c *Console) Successf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	successColor.Fprintf(c.w, format+"\n", args...)
}
