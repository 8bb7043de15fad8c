// Command mcp-travel serves the holiday travel tools (weather, news, hotels,
// flights) as an MCP server on stdin/stdout. It reads the same config and
// .env files as holiday.
package main

import (
	"fmt"
	"os"

	"github.com/soyeahso/holiday/internal/cli"
)

func main() {
	if err := cli.ExecuteMCP(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "mcp-travel:", err)
		os.Exit(1)
	}
}
