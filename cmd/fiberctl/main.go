// Command fiberctl triggers and inspects FiberDesk background jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const usage = `usage: fiberctl [-redis addr] <command>

commands:
  trigger <job>   enqueue a job (directory:refresh)
  queue           print default queue counters
  scheduled       list scheduled tasks
`

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fiberctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	redisAddr := fs.String("redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "redis address")
	requestedBy := fs.String("as", envOr("USER", "fiberctl"), "name recorded on triggered jobs")
	limit := fs.Int("n", 10, "number of scheduled tasks to list")
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cli := NewJobsCLI(*redisAddr)
	defer func() { _ = cli.Close() }()

	switch fs.Arg(0) {
	case "trigger":
		if fs.NArg() < 2 {
			fmt.Fprintln(stderr, "trigger: job name required")
			return 2
		}
		info, err := cli.Trigger(ctx, fs.Arg(1), *requestedBy)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
	case "queue":
		stats, err := cli.InspectQueue()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "%s: pending=%d active=%d scheduled=%d retry=%d failed=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Failed)
	case "scheduled":
		tasks, err := cli.ListScheduled(*limit)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		for _, t := range tasks {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format("2006-01-02 15:04:05"))
		}
	default:
		fs.Usage()
		return 2
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
