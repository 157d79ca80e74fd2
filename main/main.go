package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jpet-mc/jpetgen"
	"github.com/jpet-mc/jpetgen/config"
	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/material"
	"github.com/jpet-mc/jpetgen/rand"
)

func main() {
	var (
		configFile, exampleConfig, logLevel string
		plotDir, profileFile                string
		events, workers                     int
		seed                                uint64
	)

	flag.StringVar(
		&configFile, "Config", "",
		"Configuration file. Defaults to $JPETGEN_CONFIG.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "", "Prints an example configuration "+
			"file of the specified type to stdout. The only accepted argument "+
			"is 'Generator'.",
	)
	flag.IntVar(&events, "Events", 0, "Overrides the 'Events' parameter.")
	flag.IntVar(&workers, "Workers", 0, "Overrides the 'Workers' parameter.")
	flag.Uint64Var(&seed, "Seed", 0, "Overrides the 'Seed' parameter.")
	flag.StringVar(
		&logLevel, "LogLevel", "",
		"One of debug, info, warn, error. Defaults to $JPETGEN_LOG_LEVEL.",
	)
	flag.StringVar(
		&plotDir, "PlotDir", "",
		"Directory that diagnostic plots are written to.",
	)
	flag.StringVar(&profileFile, "ProfileFile", "", "Writes a CPU profile.")
	flag.Parse()

	if exampleConfig != "" {
		if exampleConfig != "Generator" {
			fmt.Fprintf(
				os.Stderr, "Unrecognized 'ExampleConfig' argument, '%s'. "+
					"Only recognized argument is 'Generator'.\n", exampleConfig,
			)
			os.Exit(1)
		}
		fmt.Println(config.ExampleConfigFile)
		return
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	envCfg, err := config.ReadEnvironment()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not read environment.")
	}
	if logLevel == "" {
		logLevel = envCfg.LogLevel
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log level.")
	}
	log = log.Level(level)

	if configFile == "" {
		configFile = envCfg.Config
	}
	if configFile == "" {
		log.Fatal().Msg("Must supply a configuration file with -Config.")
	}

	wrap := config.DefaultWrapper()
	if err := config.ParseFile(wrap, configFile); err != nil {
		log.Fatal().Err(err).Str("file", configFile).
			Msg("Could not read configuration.")
	}
	wrap.Override(envCfg)
	wrap.Override(config.Environment{Seed: seed, Workers: workers, Events: events})
	if err := wrap.Check(); err != nil {
		log.Fatal().Err(err).Str("file", configFile).
			Msg("Invalid configuration.")
	}
	con := &wrap.Generator

	if profileFile != "" {
		f, err := os.Create(profileFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not create profile.")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("Could not start profile.")
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(wrap, plotDir, log); err != nil {
		log.Error().Err(err).Int("events", con.Events).Msg("Generation failed.")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(wrap *config.Wrapper, plotDir string, log zerolog.Logger) error {
	con := &wrap.Generator

	regions, err := wrap.Materials()
	if err != nil {
		return err
	}
	var cls material.Classifier
	if regions != nil {
		cls = regions
	}

	seed := con.Seed
	if seed == 0 {
		seed = rand.NewTimeSeed(rand.PCG).Seed()
	}

	proto := jpetgen.NewGenerator(rand.NewGenerator(seed, rand.PCG), cls)
	proto.SetLogger(log)
	if err := wrap.Apply(proto); err != nil {
		return err
	}

	man := jpetgen.NewManager(proto, seed)
	man.Log = log
	if con.Workers > 0 {
		man.Workers = con.Workers
	}

	var diag []*diagnostics
	if plotDir != "" {
		diag = make([]*diagnostics, man.Workers)
		for i := range diag {
			diag[i] = newDiagnostics()
		}
		man.OnEvent = func(w int, ev *event.Event) { diag[w].Observe(ev) }
	}

	log.Info().Str("source", proto.SourceType().String()).
		Int("events", con.Events).Int("workers", man.Workers).
		Uint64("seed", seed).Msg("Starting generation.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t0 := time.Now()
	sum, err := man.Run(ctx, con.Events)
	logSummary(log, sum, time.Since(t0))
	if err != nil {
		return err
	}

	if plotDir != "" {
		total := newDiagnostics()
		for _, d := range diag {
			total.Merge(d)
		}
		if err := total.Plot(plotDir); err != nil {
			return err
		}
		log.Info().Str("dir", plotDir).Msg("Wrote diagnostic plots.")
	}
	return nil
}

func logSummary(log zerolog.Logger, sum jpetgen.Summary, dt time.Duration) {
	log.Info().Int("events", sum.Events).Int("accepted", sum.Accepted).
		Dur("elapsed", dt).Msg("Generation finished.")

	chs := make([]event.DecayChannel, 0, len(sum.Channels))
	for ch := range sum.Channels {
		chs = append(chs, ch)
	}
	sort.Slice(chs, func(i, j int) bool { return chs[i] < chs[j] })
	for _, ch := range chs {
		log.Info().Str("channel", ch.String()).Int("events", sum.Channels[ch]).
			Float64("fraction", float64(sum.Channels[ch])/float64(sum.Events)).
			Msg("Decay channel.")
	}

	if sum.Decay.Attempts > 0 {
		log.Info().Int("attempts", sum.Decay.Attempts).
			Float64("efficiency", sum.Decay.Efficiency()).
			Msg("Three-photon rejection sampling.")
	}
}
