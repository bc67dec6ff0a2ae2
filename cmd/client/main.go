package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Wa4h1h/tftpc/pkg/client"
	"github.com/Wa4h1h/tftpc/pkg/config"
	"github.com/Wa4h1h/tftpc/pkg/utils"
)

const usage = `usage: tftpc [-p port] [get|put] server [origin] [destination]

Without get or put an interactive shell is started.`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	fs := flag.NewFlagSet("tftpc", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	port := fs.Int("p", cfg.Client.Port, "server port")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.Client.Port = *port

	if err := cfg.Client.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 2
	}

	l := utils.NewLogger(cfg.LogLevel).Sugar()

	defer func() {
		_ = l.Sync()
	}()

	rest := fs.Args()
	mode := ""

	if len(rest) > 0 && (strings.EqualFold(rest[0], "get") || strings.EqualFold(rest[0], "put")) {
		mode = strings.ToLower(rest[0])
		rest = rest[1:]
	}

	server := cfg.Server
	if len(rest) > 0 {
		server, rest = rest[0], rest[1:]
	}

	if server == "" {
		fs.Usage()

		return 2
	}

	c := client.NewClient(l, cfg.Client)
	if err := c.Connect(server); err != nil {
		fmt.Fprintf(os.Stderr, "Unknown server: '%s'.\n", server)

		return 1
	}

	p := newProgress(os.Stdout)
	c.SetProgress(p.update)

	if mode == "" {
		fmt.Printf("Exchanging files with server '%s' (%s).\n\n", server, c.Server())

		if err := client.NewCli(l, &shellClient{Client: c, p: p}, os.Stdin, os.Stdout).Read(); err != nil {
			l.Error(err)

			return 1
		}

		return 0
	}

	if len(rest) == 0 {
		fmt.Fprintf(os.Stderr, "You have to designate the file to %s.\n", mode)

		return 2
	}

	origin, destination := rest[0], ""
	if len(rest) > 1 {
		destination = rest[1]
	}

	p.start()
	defer p.stop()

	var res client.Result

	switch mode {
	case "get":
		res, err = c.Get(origin, destination)
	case "put":
		res, err = c.Put(origin, destination)
	}

	p.stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	if mode == "get" {
		fmt.Printf("Received file '%s' %d bytes.\n", origin, res.Bytes)
	} else {
		fmt.Printf("Sent file '%s' %d bytes.\n", origin, res.Bytes)
	}

	return 0
}
