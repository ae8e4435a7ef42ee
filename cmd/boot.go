package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pintos-go/hooks"
	"pintos-go/kernel"
	"pintos-go/logging"
	"pintos-go/scenario"
	"pintos-go/timer"
)

var bootCmd = &cobra.Command{
	Use:   "boot [scenario.json]",
	Short: "Boot the scheduler and replay a scenario",
	Long: `Boot constructs a Kernel, starts the idle thread, creates every
thread named in the given scenario file (or the built-in default scenario
if none is given), drives the timer until every scenario thread has
exited, and prints a lifecycle trace.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBoot,
}

var bootTrace bool

func init() {
	bootCmd.Flags().BoolVar(&bootTrace, "trace", true, "print a lifecycle event trace while running")
	rootCmd.AddCommand(bootCmd)
}

func runBoot(cmd *cobra.Command, args []string) error {
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
	if bootTrace {
		k.Hooks.On(hooks.Created, traceLine)
		k.Hooks.On(hooks.Ready, traceLine)
		k.Hooks.On(hooks.Running, traceLine)
		k.Hooks.On(hooks.Blocked, traceLine)
		k.Hooks.On(hooks.Dying, traceLine)
	}
	k.Start()

	tids, err := scenario.Run(k, scn)
	if err != nil {
		return err
	}

	drv := timer.New(k)
	drv.Step(1000) // enough simulated ticks for any demo scenario's steps to finish

	logging.Default().Info("boot: scenario complete",
		"policy", policyName(scn.MLFQS),
		"threads", len(tids),
		"ticks", k.Ticks(),
		"idle_ticks", k.IdleTicks(),
		"kernel_ticks", k.KernelTicks(),
	)
	return nil
}

func policyName(mlfqs bool) string {
	if mlfqs {
		return "mlfq"
	}
	return "priority"
}

func traceLine(ev hooks.Event, snap hooks.Snapshot) {
	fmt.Printf("%6d  %-10s %-12s tid=%d priority=%d\n", snap.Tick, ev, snap.Name, snap.TID, snap.Priority)
}
