// Command blewisd is the Blewis daemon: it listens for BOOP connections
// and serves commands against an in-memory store.
package main

import (
	"fmt"
	"net"
	"os"

	opLogging "github.com/op/go-logging"
	"github.com/urfave/cli"

	blewislogging "github.com/notthelewis/blewis/internal/logging"
	blewisversion "github.com/notthelewis/blewis/internal/version"
	"github.com/notthelewis/blewis/server"
	"github.com/notthelewis/blewis/store"
)

func main() {
	app := cli.NewApp()
	app.Name = "blewisd"
	app.Usage = "an in-memory key/value store speaking BOOP over TCP"
	app.Version = blewisversion.CURRENT_VERSION.String()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "listen,l",
			Value: server.DefaultAddr,
			Usage: "address to listen on",
		},
		cli.IntFlag{
			Name:  "shards",
			Value: 16,
			Usage: "number of store shards, must be a power of two",
		},
		cli.IntFlag{
			Name:  "capacity",
			Value: 1024,
			Usage: "initial capacity hint per shard",
		},
		cli.BoolFlag{
			Name:  "verbose,v",
			Usage: "log at DEBUG level",
		},
	}
	app.Action = runDaemon
	app.Run(os.Args)
}

func runDaemon(c *cli.Context) error {
	level := opLogging.INFO
	if c.Bool("verbose") {
		level = opLogging.DEBUG
	}
	log := blewislogging.Setup(level)
	log.Noticef("%s", blewislogging.Cyan(fmt.Sprintf("blewisd %s starting", blewisversion.CURRENT_VERSION)))

	st, err := store.NewShards(c.Int("capacity"), c.Int("shards"))
	if err != nil {
		return cli.NewExitError(blewislogging.Red(err.Error()), 1)
	}

	addr := c.String("listen")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("listen on %s: %s", addr, err), 1)
	}
	log.Noticef("%s", blewislogging.Green(fmt.Sprintf("listening on %s", addr)))

	return server.Serve(ln, st)
}
