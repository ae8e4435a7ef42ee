// pintos-go simulates the thread scheduling core of a small teaching
// operating-system kernel: thread creation, blocking and unblocking,
// priority donation, and the BSD-style multi-level feedback queue.
//
// Commands:
//
//	boot      - boot the scheduler and replay a scenario
//	stats     - boot a scenario and print final scheduling statistics
//	scenario  - generate or inspect scenario files
package main

import (
	"fmt"
	"os"

	"pintos-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pintos-go:", err)
		os.Exit(1)
	}
}
