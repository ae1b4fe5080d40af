package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/goemon/pkg/config"
	"github.com/itohio/goemon/pkg/link"
)

func main() {
	var (
		portFlag    = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyUSB0)")
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag    = flag.Bool("mock", false, "Use simulated device instead of serial port")
		listFlag    = flag.Bool("list", false, "List available serial ports and exit")
		averageFlag = flag.Int("average-records", -1, "Number of records to average (0 = disabled, overrides config)")
	)
	flag.Parse()

	if *listFlag {
		ports, err := link.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(formatPort(p))
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Override averaging window if provided via command line
	if *averageFlag >= 0 {
		cfg.Report.AverageRecords = *averageFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, openDevice(cfg, *mockFlag), cfg.Report.AverageRecords, log.Printf); err != nil {
		log.Fatalf("%v", err)
	}
}

// openDevice picks the simulated monitor or the serial link.
func openDevice(cfg *config.Config, mock bool) link.Device {
	if mock {
		return link.NewMock(cfg)
	}
	return link.New(cfg.Serial.Port, cfg.Serial.BaudRate, link.DefaultBufferSize)
}

// run connects the device and logs every record until ctx is cancelled or the
// device stops delivering records.
func run(ctx context.Context, device link.Device, average int, logf func(format string, v ...any)) error {
	if err := device.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer device.Close()

	// Drop whatever the device sent before we started listening
	if err := device.Flush(); err != nil {
		logf("flush: %v", err)
	}

	records := device.Records()
	if average > 1 {
		records = link.NewAverager(average, link.DefaultBufferSize)(records)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-records:
			if !ok {
				return nil
			}
			logf("%s", formatRecord(r))
		}
	}
}
