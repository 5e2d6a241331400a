// Command ringctl is an interactive operator console for a ChordRing
// deployment: it drives the same peer wire protocol (internal/peerclient)
// real nodes use to talk to each other, against whichever node address the
// operator points it at.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"ChordRing/internal/peerclient"
	"ChordRing/internal/ring"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "address of a ring node to connect to")
	bits := flag.Uint("bits", 6, "ring identifier bit width (must match the deployment)")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	space, err := ring.NewSpace(uint8(*bits))
	if err != nil {
		fmt.Println("invalid -bits:", err)
		return
	}
	pc := peerclient.New(space, *timeout, *timeout)

	currentAddr := *addr
	fmt.Printf("ChordRing interactive console. Connected to %s\n", currentAddr)
	fmt.Println("Available commands: insert/lookup/info/ring/successor/predecessor/findsuccessor/use/quit")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(fmt.Sprintf("ringctl[%s]> ", currentAddr))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("Aborted")
				continue
			}
			break
		}
		line.AppendHistory(input)

		args := strings.Fields(strings.TrimSpace(input))
		if len(args) == 0 {
			continue
		}
		cmd := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)

		switch cmd {
		case "insert":
			if len(args) < 2 {
				fmt.Println("Usage: insert <key>")
				cancel()
				continue
			}
			start := time.Now()
			id, err := pc.InsertKey(ctx, currentAddr, args[1])
			if err != nil {
				fmt.Printf("insert failed: %v | latency=%s\n", err, time.Since(start))
			} else {
				fmt.Printf("insert succeeded, owner=%s | latency=%s\n", id.String(), time.Since(start))
			}

		case "lookup":
			if len(args) < 2 {
				fmt.Println("Usage: lookup <key>")
				cancel()
				continue
			}
			start := time.Now()
			found, err := pc.ContainsKey(ctx, currentAddr, args[1])
			if err != nil {
				fmt.Printf("lookup failed: %v | latency=%s\n", err, time.Since(start))
			} else {
				fmt.Printf("key %q present=%t | latency=%s\n", args[1], found, time.Since(start))
			}

		case "successor":
			succ, err := pc.Successor(ctx, currentAddr)
			if err != nil {
				fmt.Printf("successor failed: %v\n", err)
			} else {
				fmt.Printf("successor: %s\n", succ.Addr)
			}

		case "predecessor":
			pred, err := pc.Predecessor(ctx, currentAddr)
			if err != nil {
				fmt.Printf("predecessor failed: %v\n", err)
			} else {
				fmt.Printf("predecessor: %s\n", pred.Addr)
			}

		case "findsuccessor":
			if len(args) < 2 {
				fmt.Println("Usage: findsuccessor <id>")
				cancel()
				continue
			}
			n, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				fmt.Println("invalid id:", err)
				cancel()
				continue
			}
			succ, err := pc.FindSuccessor(ctx, currentAddr, ring.ID(n))
			if err != nil {
				fmt.Printf("find_successor failed: %v\n", err)
			} else {
				fmt.Printf("find_successor(%d) = %s\n", n, succ.Addr)
			}

		case "info":
			fmt.Println("info is served as JSON over HTTP; try: curl http://" + currentAddr + "/info")

		case "ring":
			fmt.Println("ring walk is served as JSON over HTTP; try: curl http://" + currentAddr + "/ring")

		case "use":
			if len(args) < 2 {
				fmt.Println("Usage: use <addr>")
				cancel()
				continue
			}
			currentAddr = args[1]
			fmt.Printf("switched to %s\n", currentAddr)

		case "exit", "quit":
			fmt.Println("Bye!")
			cancel()
			return

		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}

		cancel()
	}
}
