// Command poolview drives a fixed-slot block pool from a script or an
// interactive terminal view.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/fixedkit/hook"
)

func main() {
	var (
		slots       = flag.Int("slots", 8, "Number of slots")
		size        = flag.Int("size", 32, "Slot size in bytes")
		align       = flag.Int("align", 0, "Slot alignment (power of two, 0 = default)")
		layoutFile  = flag.String("layout", "", "YAML layout file; its first pool is used")
		poolName    = flag.String("pool", "", "Pool to use from -layout")
		script      = flag.String("script", "", "Commands to run (g,p0,r0,u0,w0:text,s)")
		guest       = flag.Bool("guest", false, "Place the pool in WebAssembly linear memory")
		verbose     = flag.Bool("v", false, "Log pool failures")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg := sessionConfig{
		slots:      *slots,
		size:       *size,
		align:      *align,
		layoutFile: *layoutFile,
		poolName:   *poolName,
		guest:      *guest,
	}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		hook.SetLogger(logger)
		cfg.hook = hook.Zap(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg, *script); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *script); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg sessionConfig, script string) error {
	ctx := context.Background()

	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	fmt.Printf("Pool: %s  slots=%d  slot size=%d\n", s.pool.Name(), s.pool.Cap(), s.pool.SlotSize())
	if s.region != nil {
		fmt.Printf("Guest region: 0x%x..0x%x\n", s.region.Offset(), s.region.Offset()+s.region.Len())
	}
	fmt.Println()

	var scriptErr error
	if script != "" {
		scriptErr = s.run(script, func(line string) { fmt.Println(line) })
		fmt.Println()
	}
	for _, line := range s.slots() {
		fmt.Println(line)
	}
	return scriptErr
}
