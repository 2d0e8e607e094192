package display

import (
	"fmt"
	"os"

	"github.com/backmassage/jxlmaster/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, `     _       _ __  __           _
    | |_  __| |  \/  | __ _ ___| |_ ___ _ __
 _  | \ \/ /| | |\/| |/ _`+"`"+` / __| __/ _ \ '__|
| |_| |>  < | | |  | | (_| \__ \ ||  __/ |
 \___//_/\_\|_|_|  |_|\__,_|___/\__\___|_|
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
