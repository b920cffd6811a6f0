package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jbvmio/bitpipe"
	"github.com/jbvmio/bitpipe/fault"
	"github.com/jbvmio/bitpipe/internal/plugins"
	"github.com/jbvmio/bitpipe/log"
	"github.com/jbvmio/bitpipe/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"
)

type flags struct {
	config      string
	logLevel    string
	logFormat   string
	metricsFile string
	list        bool
}

func main() {
	var f flags
	pf := pflag.NewFlagSet(`bitpipe`, pflag.ExitOnError)
	pf.StringVarP(&f.config, "config", "c", "", "Path to the pipeline config file.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	pf.StringVar(&f.logFormat, "log-format", log.FormatConsole, "Log format: console or json.")
	pf.StringVar(&f.metricsFile, "metrics", "", "Write metrics in text exposition format to this file after the run.")
	pf.BoolVarP(&f.list, "list", "l", false, "List the available stages and exit.")
	pf.Parse(os.Args[1:])

	if f.list {
		listStages(os.Stdout)
		return
	}
	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %s: %v\n", fault.Of(err), err)
		os.Exit(1)
	}
}

func run(f flags) error {
	if f.config == "" {
		return fault.InvalidArgument.New("no pipeline config given, use --config")
	}
	l, err := log.NewZap(f.logLevel, f.logFormat)
	if err != nil {
		return fault.InvalidArgument.Wrap(err, "could not create logger")
	}
	defer log.Sync(l)

	reg := prometheus.NewRegistry()
	m, err := metric.New(reg)
	if err != nil {
		return err
	}
	cfg, err := bitpipe.ConfigFromFile(f.config)
	if err != nil {
		return err
	}
	p, err := bitpipe.NewPipeline(cfg,
		bitpipe.WithLogger(l),
		bitpipe.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	l.Infof("starting pipeline %s", p.ID)
	err = p.Run()
	if f.metricsFile != "" {
		if merr := writeMetrics(reg, f.metricsFile); merr != nil {
			l.Errorf("could not write metrics: %v", merr)
		}
	}
	return err
}

func writeMetrics(g prometheus.Gatherer, path string) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := expfmt.NewEncoder(file, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return file.Sync()
}

func listStages(w io.Writer) {
	reg := plugins.Default()
	for _, name := range reg.Names() {
		r, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%-10s %-10s %s\n", name, r.Role, r.Description)
	}
}
