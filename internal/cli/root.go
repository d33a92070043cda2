package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	s := fmt.Sprintf("%d file(s)", a.set.Len())
	if a.cancel.IsSet() {
		s += " cancelling"
	}
	return fmt.Sprintf("(%s)", s)
}

// Root runs the interactive loop until EOF or an exit command.
func (a *App) Root(ctx context.Context) {
	printlnFn("Media uploader CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
