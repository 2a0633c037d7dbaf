// Command sandctl is an interactive host-side client for the sand-table
// firmware: it opens a serial port, lets an operator type MOVE commands,
// and prints ACK replies as they arrive.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/sandtable/internal/board"
)

func main() {
	help := flag.Bool("help", false, "Show help message")
	listPorts := flag.Bool("list", false, "List all serial ports")
	port := flag.String("port", "/dev/ttyACM0", "Serial port path")
	baud := flag.Int("baud", 115200, "Serial port baud rate")

	flag.Parse()

	if *help {
		fmt.Println("sandctl - sand table interactive client")
		fmt.Println()
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  move <theta> <rho> - enqueue a polar target")
		fmt.Println("  quit - exit")
		return
	}

	if *listPorts {
		ports, err := listSerialPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error listing ports: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Available serial ports:")
		for i, p := range ports {
			fmt.Printf("%d\t%s\n", i, p)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	serial, err := board.OpenDefaultSerial(*port, board.DefaultPins(), board.SerialConfig{BaudRate: *baud})
	if err != nil {
		slog.Error("failed to open serial port", "err", err, "port", *port)
		os.Exit(1)
	}
	defer serial.Close()

	slog.Info("sandctl connected", "port", *port, "baud", *baud)

	go readAcks(ctx, serial)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("sandctl - interactive mode")
	fmt.Println("Commands:")
	fmt.Println("  move <theta> <rho> - enqueue a polar target")
	fmt.Println("  quit - exit")
	fmt.Println()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "move":
			if err := sendMove(serial, parts[1:]); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		case "quit":
			cancel()
			return
		default:
			fmt.Printf("unknown command: %s\n", parts[0])
		}
	}

	<-ctx.Done()
	slog.Info("sandctl stopped")
}

// sendMove validates two floats and writes a "MOVE <theta> <rho>;" line.
func sendMove(serial board.Serial, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("move requires exactly theta and rho")
	}
	theta, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return fmt.Errorf("invalid theta: %s", args[0])
	}
	rho, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return fmt.Errorf("invalid rho: %s", args[1])
	}

	line := fmt.Sprintf("MOVE %s %s;", strconv.FormatFloat(theta, 'f', -1, 32), strconv.FormatFloat(rho, 'f', -1, 32))
	_, err = serial.Write([]byte(line))
	return err
}

// readAcks prints every line the device sends back, terminated by ';'.
func readAcks(ctx context.Context, serial board.Serial) {
	var buf strings.Builder
	tmp := make([]byte, 64)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := serial.Read(tmp)
		if err != nil {
			if err == io.EOF {
				return
			}
			// continue on transient errors
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		for _, b := range tmp[:n] {
			if b == ';' {
				fmt.Printf("\n< %s;\n> ", buf.String())
				buf.Reset()
				continue
			}
			buf.WriteByte(b)
		}
	}
}

// listSerialPorts searches /dev for common serial device patterns.
func listSerialPorts() ([]string, error) {
	var ports []string

	patterns := []string{
		"/dev/ttyACM*",
		"/dev/ttyUSB*",
		"/dev/ttyS*",
	}

	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			info, err := os.Stat(match)
			if err == nil && (info.Mode()&os.ModeCharDevice) != 0 {
				ports = append(ports, match)
				seen[match] = true
			}
		}
	}

	sort.Strings(ports)
	return ports, nil
}
