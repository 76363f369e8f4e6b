package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, &cli{}, os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs one command and always releases what its pre-run hook opened
func execute(ctx context.Context, c *cli, args []string) error {
	defer c.close()

	root := newRootCmd(c)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
