package main

import (
	"flag"

	"github.com/plan-systems/klog"
)

func main() {

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	interactive := flag.Bool("i", false, "interactive solve mode: read a polynomial and refine its series root")
	trace := flag.Bool("trace", false, "trace series terms and Newton steps to the log")

	flag.Parse()

	if *interactive {
		runInteractive(*trace)
	} else {
		// With a pathname, run the script; without one, drop into the REPL.
		go_gpython(flag.Arg(0))
	}

	klog.Flush()
}
