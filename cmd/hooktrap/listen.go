package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"hooktrap-hq/hooktrap/pkg/client"
	"hooktrap-hq/hooktrap/pkg/event"
)

var listenFlags struct {
	mode     string
	interval time.Duration
	limit    int
	afterID  int64
	jsonMode bool
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Watch events arriving at the saved target",
	Long: `Watch events arriving at the saved collector target.

The default mode polls the logs endpoint on an interval with a
forward-only cursor. Stream mode follows the live Server-Sent Events
surface instead; events collected while disconnected are not replayed,
so polling is the safer default.`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().StringVar(&listenFlags.mode, "mode", "poll", "listen mode: poll or stream")
	listenCmd.Flags().DurationVar(&listenFlags.interval, "interval", 5*time.Second, "polling interval (poll mode)")
	listenCmd.Flags().IntVar(&listenFlags.limit, "limit", 50, "max events per poll (1-200)")
	listenCmd.Flags().Int64Var(&listenFlags.afterID, "after-id", 0, "start cursor (event id)")
	listenCmd.Flags().BoolVar(&listenFlags.jsonMode, "json", false, "print each event as raw JSON")
}

func runListen(cmd *cobra.Command, args []string) error {
	st, err := loadTarget()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch listenFlags.mode {
	case "poll":
		fmt.Printf("Polling %s every %s (Ctrl+C to stop)\n", st.LogsURL(), listenFlags.interval)
		poller := &client.Poller{
			LogsURL:      st.LogsURL(),
			Interval:     listenFlags.interval,
			StartAfterID: listenFlags.afterID,
			Limit:        listenFlags.limit,
		}
		err := poller.Run(ctx, printEvent, func(err error) {
			fmt.Fprintf(os.Stderr, "poll error: %v\n", err)
		})
		if err == context.Canceled {
			fmt.Println("\nstopped")
			return nil
		}
		return err

	case "stream":
		fmt.Printf("Streaming %s (Ctrl+C to stop)\n", st.EventsURL())
		streamer := &client.Streamer{EventsURL: st.EventsURL()}
		err := streamer.Run(ctx, printEvent)
		if err == context.Canceled {
			fmt.Println("\nstopped")
			return nil
		}
		return err

	default:
		return fmt.Errorf("mode must be \"poll\" or \"stream\"")
	}
}

func printEvent(ev *event.Event) {
	if listenFlags.jsonMode {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("id:        %d\n", ev.ID)
	fmt.Printf("time:      %s\n", ev.ReceivedAt)
	fmt.Printf("method:    %s\n", ev.Method)
	fmt.Printf("path:      %s\n", ev.Path)
	if ev.Query != "" {
		fmt.Printf("query:     %s\n", ev.Query)
	}
	fmt.Printf("client_ip: %s\n", ev.ClientIP)
	if ev.UserAgent != "" {
		fmt.Printf("ua:        %s\n", truncate(ev.UserAgent, 200))
	}
	if ev.Origin != "" {
		fmt.Printf("origin:    %s\n", truncate(ev.Origin, 200))
	}
	if ev.Referer != "" {
		fmt.Printf("referer:   %s\n", truncate(ev.Referer, 200))
	}
	if ev.BodyTruncated {
		fmt.Println("body:      truncated")
	}
	fmt.Println("------------------------------------------------------------")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
