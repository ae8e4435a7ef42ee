package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pintos-go/kernel"
	"pintos-go/scenario"
	"pintos-go/timer"
)

var statsCmd = &cobra.Command{
	Use:   "stats [scenario.json]",
	Short: "Boot a scenario and print final scheduling statistics",
	Long: `Stats boots the scheduler, replays the given scenario (or the
built-in default), and prints the system load_avg followed by a table of
every remaining thread's tid, status, nice value, and recent_cpu — the
latter two being what get_nice/get_recent_cpu expose.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// statsTableWidth returns the terminal width when stdout is a TTY, or a
// fixed fallback otherwise. runStats uses it only to bound the length of
// the separator rules (at most 60); the table columns have fixed widths.
func statsTableWidth() int {
	const fallback = 80
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

func runStats(cmd *cobra.Command, args []string) error {
	scn := scenario.Default()
	if len(args) == 1 {
		loaded, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		scn = loaded
	}
	if scn.MLFQS || globalMLFQS {
		scn.MLFQS = true
	}

	k := kernel.New(scn.MLFQS)
	k.Start()

	if _, err := scenario.Run(k, scn); err != nil {
		return err
	}
	drv := timer.New(k)
	drv.Step(1000)

	width := statsTableWidth()
	fmt.Println(strings.Repeat("-", min(width, 60)))
	fmt.Printf("policy=%s  ticks=%d  load_avg=%d\n", policyName(scn.MLFQS), k.Ticks(), k.GetLoadAvg())
	fmt.Println(strings.Repeat("-", min(width, 60)))
	fmt.Printf("%-12s %6s %10s %5s %10s\n", "thread", "tid", "status", "nice", "recent_cpu")

	old := k.Intr.Disable()
	k.ForEach(func(t *kernel.Thread) {
		fmt.Printf("%-12s %6d %10s %5d %10d\n", t.Name, t.TID, t.Status, t.Nice, k.GetRecentCpu(t))
	})
	k.Intr.SetLevel(old)

	return nil
}
