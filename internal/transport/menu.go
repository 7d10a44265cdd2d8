package transport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const menuText = `
============================================================
TICKET QR CODE GENERATOR
============================================================

Available options:
1. Generate complete tickets (QR code + design)
2. Generate QR codes only
3. Both

Your choice (1/2/3): `

// ParseMenuChoice maps a menu answer to a render mode. Unrecognized answers
// fall back to the most inclusive mode and report ok=false.
func ParseMenuChoice(choice string) (mode entity.RenderMode, ok bool) {
	switch strings.TrimSpace(choice) {
	case "1":
		return entity.RenderTickets, true
	case "2":
		return entity.RenderSymbols, true
	case "3":
		return entity.RenderBoth, true
	default:
		return entity.RenderBoth, false
	}
}

// PromptRenderMode reads one answer from in. The menu is only printed when
// in is a terminal; piped input is read silently.
func PromptRenderMode(in io.Reader, out io.Writer, interactive bool) entity.RenderMode {
	if interactive {
		fmt.Fprint(out, menuText)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		logrus.Warnf("Failed to read menu choice: %v", err)
	}

	mode, ok := ParseMenuChoice(line)
	if !ok {
		logrus.WithField("choice", strings.TrimSpace(line)).Warn("Invalid menu choice")
		fmt.Fprintln(out, "Invalid choice. Generating both tickets and QR codes by default...")
	}
	return mode
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
