// Command leandvbtx modulates MPEG TS packets from stdin into a DVB-S
// baseband signal on stdout, as interleaved float32 I/Q pairs.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/cpbridges/leansdr/dvb"
	"github.com/cpbridges/leansdr/log"
	"github.com/cpbridges/leansdr/tx"
)

func main() {
	app := cli.NewApp()
	app.Name = "leandvbtx"
	app.Usage = "modulate MPEG packets into a DVB-S baseband signal"
	app.UsageText = "leandvbtx [options]  < TS  > IQ"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "f",
			Value: "2",
			Usage: "samples per symbol, INTERP[/DECIM]",
		},
		cli.StringFlag{
			Name:  "cr",
			Value: "1/2",
			Usage: "code rate: 1/2, 2/3, 3/4, 5/6, 7/8",
		},
		cli.Float64Flag{
			Name:  "roll-off",
			Value: 0.35,
			Usage: "RRC roll-off",
		},
		cli.Float64Flag{
			Name:  "power",
			Value: 0,
			Usage: "output power (dB)",
		},
		cli.BoolFlag{
			Name:  "agc",
			Usage: "better regulation of output power",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "verbose output",
		},
		cli.BoolFlag{
			Name:  "d",
			Usage: "debug output",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := tx.DefaultConfig()
	if _, err := fmt.Sscanf(c.String("f"), "%d/%d", &cfg.Interpolation, &cfg.Decimation); err != nil {
		cfg.Decimation = 1
		if _, err := fmt.Sscanf(c.String("f"), "%d", &cfg.Interpolation); err != nil {
			return fmt.Errorf("-f: %w", err)
		}
	}
	rate, err := dvb.ParseCodeRate(c.String("cr"))
	if err != nil {
		return fmt.Errorf("--cr: %w", err)
	}
	cfg.Rate = rate
	cfg.RollOff = c.Float64("roll-off")
	cfg.Power = math.Pow(10, c.Float64("power")/20)
	cfg.AGC = c.Bool("agc")

	logger := log.GetLogger()
	if c.Bool("d") {
		logger.SetLevel(logrus.DebugLevel)
	} else if c.Bool("v") {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	p, err := tx.New(cfg, os.Stdin, os.Stdout, tx.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.Run(ctx)
}
