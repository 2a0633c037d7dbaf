// Command sandtablefw is the firmware bring-up: it wires GPIO pins to a
// PulseSink, opens the serial port, loads configuration (falling back to
// spec-default pin/planner values), and runs the three cooperating tasks
// described by the concurrency model: a serial reader, an arm worker that
// owns the planner and dispatcher, and a serial writer.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/itohio/sandtable/internal/board"
	"github.com/itohio/sandtable/internal/command"
	"github.com/itohio/sandtable/internal/coordinate"
	"github.com/itohio/sandtable/internal/dispatcher"
	"github.com/itohio/sandtable/internal/kinematics"
	"github.com/itohio/sandtable/internal/planner"
	"github.com/itohio/sandtable/pkg/logger"
)

// firmwareConfig is the on-disk shape consumed via -config. Any field left
// zero-valued falls back to the compiled-in default for that section.
type firmwareConfig struct {
	Device  string              `yaml:"device"`
	Pins    *board.Pins         `yaml:"pins"`
	Serial  *board.SerialConfig `yaml:"serial"`
	Planner *planner.Config     `yaml:"planner"`
}

func loadConfig(path string) (firmwareConfig, error) {
	cfg := firmwareConfig{Device: "/dev/ttyACM0"}
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	log := logger.Log

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}

	pins := board.DefaultPins()
	if cfg.Pins != nil {
		pins = *cfg.Pins
	}
	serialCfg := board.DefaultSerialConfig()
	if cfg.Serial != nil {
		serialCfg = *cfg.Serial
	}
	plannerCfg := planner.DefaultConfig()
	if cfg.Planner != nil {
		plannerCfg = *cfg.Planner
	}

	sink, err := newPulseSink(pins)
	if err != nil {
		log.Fatal().Err(err).Msg("configure gpio pins")
	}

	serial, err := board.OpenDefaultSerial(cfg.Device, pins, serialCfg)
	if err != nil {
		log.Fatal().Err(err).Str("device", cfg.Device).Msg("open serial port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan, err := planner.New(plannerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("construct planner")
	}
	dispatch := dispatcher.New(sink, kinematics.DefaultConfig())

	// Sized per spec.md §5: large enough that a whole queued pattern fits
	// without the reader blocking on the worker.
	targets := make(chan coordinate.Polar, 16384)
	acks := make(chan string, 256)

	go serialReaderTask(ctx, log, serial, targets, acks)
	go armWorkerTask(ctx, log, plan, dispatch, targets)
	go serialWriterTask(ctx, log, serial, acks)

	<-ctx.Done()
	log.Info().Msg("shutting down")
}

// newPulseSink opens the five GPIO lines the dispatcher drives and wraps
// them in a board.GPIOPulseSink.
func newPulseSink(pins board.Pins) (*board.GPIOPulseSink, error) {
	primaryStep, err := board.NewPin(pins.PrimaryStep)
	if err != nil {
		return nil, err
	}
	primaryDir, err := board.NewPin(pins.PrimaryDir)
	if err != nil {
		return nil, err
	}
	secondaryStep, err := board.NewPin(pins.SecondaryStep)
	if err != nil {
		return nil, err
	}
	secondaryDir, err := board.NewPin(pins.SecondaryDir)
	if err != nil {
		return nil, err
	}
	enable, err := board.NewPin(pins.Enable)
	if err != nil {
		return nil, err
	}
	return board.NewGPIOPulseSink(primaryStep, primaryDir, secondaryStep, secondaryDir, enable), nil
}

// serialReaderTask polls the UART, accumulates bytes into lines, and
// enqueues parsed MOVE targets on targets. Acks are forwarded to acks for
// the writer task to send.
func serialReaderTask(ctx context.Context, log zerolog.Logger, serial board.Serial, targets chan<- coordinate.Polar, acks chan<- string) {
	var lineBuf command.LineBuffer
	tmp := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := serial.Read(tmp)
		if err != nil {
			if err == io.EOF {
				log.Warn().Msg("serial closed")
				return
			}
			// continue on transient errors
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		for _, c := range tmp[:n] {
			line, complete := lineBuf.Feed(c)
			if !complete {
				continue
			}
			parsed := command.Parse(line)
			if parsed.Ack {
				select {
				case acks <- command.AckLine:
				case <-ctx.Done():
					return
				}
			}
			if parsed.Enqueue {
				select {
				case targets <- parsed.Target:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// armWorkerTask owns the planner and dispatcher exclusively. It drains
// targets into the planner as fast as the look-ahead window accepts them,
// and in the same loop pulls frames and dispatches pulses.
func armWorkerTask(ctx context.Context, log zerolog.Logger, plan *planner.Planner, dispatch *dispatcher.Dispatcher, targets <-chan coordinate.Polar) {
	for {
		if plan.Pending() == 0 {
			// Idle: block until a target arrives instead of spinning on
			// an unchanging frame.
			select {
			case t := <-targets:
				plan.Enqueue(t)
			case <-ctx.Done():
				return
			}
		}
	drain:
		for plan.IsQueueReady() {
			select {
			case t := <-targets:
				plan.Enqueue(t)
			case <-ctx.Done():
				return
			default:
				break drain
			}
		}
		frame := plan.NextFrame()
		if err := dispatch.MoveToFrame(ctx, frame); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("dispatch frame")
		}
	}
}

// serialWriterTask blocks on acks and writes each reply to the UART.
func serialWriterTask(ctx context.Context, log zerolog.Logger, serial board.Serial, acks <-chan string) {
	for {
		select {
		case line := <-acks:
			if _, err := serial.Write([]byte(line)); err != nil {
				log.Warn().Err(err).Msg("serial write error")
			}
		case <-ctx.Done():
			return
		}
	}
}
