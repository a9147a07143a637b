// linkctl is the operator tool for the live brain link: it connects
// to a running brain process, inspects its state and steers its flow.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"braincore/interfaces/livelink"

	"go.uber.org/zap"
)

func main() {
	endpoint := flag.String("endpoint", "ws://localhost:9090/link", "live link endpoint")
	brainID := flag.String("brain", "", "brain id to connect to")
	flowID := flag.String("flow", "", "flow id for navigate")
	watch := flag.Bool("watch", false, "stay connected and print thought updates")
	timeout := flag.Duration("timeout", 10*time.Second, "dial timeout")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "list"
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	client := livelink.NewClient(*endpoint, logger)
	client.OnQueryReply = func(msg livelink.Envelope) {
		pretty, _ := json.MarshalIndent(msg.Payload, "", "  ")
		fmt.Println(string(pretty))
	}
	client.OnThought = func(count int, at time.Time) {
		fmt.Printf("thought #%d at %s\n", count, at.Format(time.RFC3339))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		logger.Fatal("Failed to connect", zap.Error(err))
	}
	defer client.Close()

	switch command {
	case "list":
		// the client issues list-brains on its own after connecting
	case "connect":
		if *brainID == "" {
			logger.Fatal("connect requires -brain")
		}
		client.ConnectToBrain(*brainID)
	case "navigate":
		if *flowID == "" {
			logger.Fatal("navigate requires -flow")
		}
		client.NavigateToFlow(*flowID)
	case "subscribe":
		client.SubscribeToThoughts()
	case "save":
		client.SaveFlow()
	default:
		logger.Fatal("Unknown command", zap.String("command", command))
	}

	if *watch || command == "subscribe" {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		return
	}

	// Give fire-and-forget replies a moment to arrive before exiting
	time.Sleep(2 * time.Second)

	if state := client.State(); state != nil {
		pretty, _ := json.MarshalIndent(state, "", "  ")
		fmt.Println(string(pretty))
	}
}
