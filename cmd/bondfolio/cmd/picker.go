package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sjkwon/bondfolio/persist"
)

// termPicker is the terminal stand-in for a file dialog: it prompts for a
// path on the same input stream the session reads from. Dismissing the
// prompt cancels, which workflows treat as a no-op.
type termPicker struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *termPicker) PickOpen() (string, error) {
	fmt.Fprint(p.out, "file to open (empty cancels): ")
	line, ok := p.readLine()
	if !ok || line == "" {
		return "", persist.ErrCancelled
	}
	return line, nil
}

func (p *termPicker) PickSave(suggested string) (string, error) {
	fmt.Fprintf(p.out, "save as [%s] ('-' cancels): ", suggested)
	line, ok := p.readLine()
	if !ok || line == "-" {
		return "", persist.ErrCancelled
	}
	if line == "" {
		return suggested, nil
	}
	return line, nil
}

func (p *termPicker) readLine() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}
