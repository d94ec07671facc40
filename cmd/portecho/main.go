package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	machport "github.com/GriffinCanCode/MachPort"
	"github.com/GriffinCanCode/MachPort/internal/config"
	"github.com/GriffinCanCode/MachPort/internal/logging"
)

func main() {
	cfg := config.LoadOrDefault()

	// Flags override environment
	messages := flag.Int("n", cfg.Echo.Messages, "Number of messages to echo")
	payload := flag.Int("payload", cfg.Echo.PayloadSize, "Payload size in bytes")
	timeout := flag.Duration("timeout", cfg.Echo.Timeout, "Per-operation timeout")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored debug logs)")
	flag.Parse()

	var log *logging.Logger
	if *dev {
		log = logging.NewDevelopment()
	} else {
		l, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			OutputPaths: []string{"stdout"},
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(1)
		}
		log = l
	}
	defer log.Sync()
	machport.SetLogger(log.Logger)

	if err := run(*messages, *payload, *timeout, log.Logger); err != nil {
		log.Fatal("echo run failed", zap.Error(err))
	}
}

// run bounces messages through a self-loop: a receive right and a send right
// over the same port, with this process on both ends.
func run(messages, payloadSize int, timeout time.Duration, log *zap.Logger) error {
	if messages <= 0 {
		return fmt.Errorf("message count must be positive, got %d", messages)
	}

	port, err := machport.New()
	if err != nil {
		return fmt.Errorf("allocate port: %w", err)
	}
	defer port.Close()

	sender, err := port.MakeSender()
	if err != nil {
		return fmt.Errorf("derive sender: %w", err)
	}
	defer sender.Close()

	runID := uuid.NewString()
	log.Info("starting echo run",
		zap.String("run_id", runID),
		zap.Int("messages", messages),
		zap.Int("payload_bytes", payloadSize),
		zap.Duration("timeout", timeout),
	)

	// The run id leads the payload so a foreign message would be caught.
	payload := make([]byte, payloadSize)
	copy(payload, runID)

	buf := machport.NewBuffer()
	buf.ReserveInlineData(payloadSize)

	var total, worst time.Duration
	best := time.Duration(-1)
	for i := 0; i < messages; i++ {
		buf.SetID(uint32(i))
		buf.ExtendInlineData(payload)

		start := time.Now()
		if err := sender.Send(buf, timeout); err != nil {
			return fmt.Errorf("send %d: %w", i, err)
		}
		if err := port.Recv(buf, timeout); err != nil {
			return fmt.Errorf("recv %d: %w", i, err)
		}
		elapsed := time.Since(start)

		if buf.ID() != uint32(i) || !bytes.Equal(buf.InlineData(), payload) {
			return fmt.Errorf("message %d came back mangled: %v", i, buf)
		}

		total += elapsed
		if elapsed > worst {
			worst = elapsed
		}
		if best < 0 || elapsed < best {
			best = elapsed
		}
		log.Debug("round trip",
			zap.Int("seq", i),
			zap.Duration("elapsed", elapsed),
		)

		buf.Reset()
	}

	log.Info("echo run complete",
		zap.String("run_id", runID),
		zap.Int("messages", messages),
		zap.Duration("best", best),
		zap.Duration("worst", worst),
		zap.Duration("mean", total/time.Duration(messages)),
	)
	return nil
}
