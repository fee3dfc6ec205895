// Package inline is the non-interactive mode: it classifies inputs, reports
// where they would be played and optionally probes them.
package inline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/router"
	"github.com/reelmark/reelmark/source"
)

func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	var results []*Result
	for _, input := range options.Inputs {
		desc := source.Classify(input)
		if filter, ok := options.Filter.Get(); ok && !filter(desc) {
			continue
		}

		result := &Result{Descriptor: desc, Route: router.Route(desc)}
		if prober, ok := options.Prober.Get(); ok && result.Route == router.TargetNative {
			probeResult(ctx, prober, result)
		}
		results = append(results, result)
	}

	if options.Json {
		return writeJson(options.Out, results)
	}
	return writePlain(options.Out, results)
}

func probeResult(ctx context.Context, prober Prober, result *Result) {
	err := prober.Probe(ctx, result.Descriptor.Target)
	reachable := err == nil
	result.Reachable = &reachable
	if err != nil {
		log.Warnf("probe %s: %v", result.Descriptor.Target, err)
		result.ProbeError = err.Error()
	}
}

func writePlain(out io.Writer, results []*Result) error {
	for _, r := range results {
		line := fmt.Sprintf("%s\t%s\t%s\t%s", r.Descriptor.Input, r.Descriptor, r.Descriptor.PlatformLabel, r.Route)
		if msg, ok := r.Descriptor.DiagnosticMessage.Get(); ok {
			line += "\t" + msg
		}
		if r.ProbeError != "" {
			line += "\t" + r.ProbeError
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func writeJson(out io.Writer, results []*Result) error {
	data, err := asJson(results)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
