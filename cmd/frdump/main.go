// Command frdump is a small inspection tool that opens a frame file and
// prints a summary of its table of contents: frame count, run numbers, and
// the channel names registered per payload class. It is a thin consumer of
// the frame package, carrying no format semantics of its own.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gwframe/frame"
	"github.com/gwframe/frame/toc"
)

var payloadClasses = []struct {
	name  string
	class toc.PayloadClass
}{
	{"ADC", toc.ADC},
	{"Proc", toc.Proc},
	{"Ser", toc.Ser},
	{"Sim", toc.Sim},
	{"SimEvent", toc.SimEvent},
	{"Event", toc.Event},
}

func dumpTOC(path string) error {
	r, err := frame.Open(path, nil)
	if err != nil {
		return fmt.Errorf("frdump: %w", err)
	}
	defer r.Close()

	fmt.Printf("%s: %d frame(s), run numbers %v\n", path, r.FrameCount(), r.Plan().TOC().RunNumbers())

	for _, pc := range payloadClasses {
		names := r.ChannelNames(pc.class)
		if len(names) == 0 {
			continue
		}

		fmt.Printf("  %s (%d):\n", pc.name, len(names))
		for _, name := range names {
			fmt.Printf("    %s\n", name)
		}
	}

	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "frdump [file]",
		Short: "Print a frame file's table-of-contents summary",
		Long:  "frdump opens a frame file and prints its frame count, run numbers, and registered channel names per payload class.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpTOC(args[0])
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("frdump 0.1.0")
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
