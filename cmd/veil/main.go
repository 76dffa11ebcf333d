package main

import (
	"log"
	"path"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"veil/pkg/fetch"
	"veil/pkg/pipeline"
	"veil/pkg/store"
	"veil/pkg/transform"
)

var input = flag.StringP("input", "i", "", "input image path or http(s) url")
var output = flag.StringP("output", "o", "", "output image path (default: <input>_veil.png)")
var method = flag.String("method", "luminosity", "grayscale method: luminosity, average or linear")
var factor = flag.Float64("factor", 1.0, "desaturation factor in [0,1]")
var ref = flag.String("ref", "white", "transparency reference color: white or black")
var fillBlack = flag.Bool("fill-black", false, "zero the color channels instead of the gray fill")
var keepAlpha = flag.Bool("keep-alpha", false, "preserve already-transparent pixels")
var keepColor = flag.Bool("keep-color", false, "copy the source colors into the result")
var maxSize = flag.Int("max-size", 0, "downscale inputs larger than this many pixels per side")
var overwrite = flag.Bool("overwrite", false, "overwrite an existing output file")
var stripAlpha = flag.Bool("strip-alpha", false, "strip alpha instead of retargeting to png")
var workDir = flag.String("work-dir", "", "base directory for reading and writing images")
var cacheDir = flag.String("cache-dir", "", "cache directory for downloaded images")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	if *input == "" {
		log.Fatal("--input is required")
	}
	if *factor < 0 || *factor > 1 {
		log.Fatal("--factor must be in [0, 1]")
	}

	var logger *zap.Logger
	var logErr error
	if *debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatal(logErr)
	}

	grayMethod, err := transform.ParseGrayMethod(*method)
	if err != nil {
		log.Fatal(err)
	}

	reference, err := transform.ParseReference(*ref)
	if err != nil {
		log.Fatal(err)
	}

	storeOpts := []store.Option{store.WithMaxSize(*maxSize)}
	if *overwrite {
		storeOpts = append(storeOpts, store.WithOverwrite())
	}
	if *stripAlpha {
		storeOpts = append(storeOpts, store.WithAlphaStrip())
	}

	st, err := store.New(*workDir, logger, storeOpts...)
	if err != nil {
		log.Fatal(err)
	}

	dl, err := fetch.NewFetcher(*cacheDir, logger)
	if err != nil {
		log.Fatal(err)
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithFetcher(dl),
		pipeline.WithMethod(grayMethod),
		pipeline.WithFactor(*factor),
		pipeline.WithReference(reference),
	}
	if *fillBlack {
		pipeOpts = append(pipeOpts, pipeline.WithFill(transform.FillBlack))
	}
	if *keepAlpha {
		pipeOpts = append(pipeOpts, pipeline.WithKeepAlpha())
	}
	if *keepColor {
		pipeOpts = append(pipeOpts, pipeline.WithKeepColor())
	}

	dst := *output
	if dst == "" {
		// urls always use forward slashes, local paths use the platform's
		name := filepath.Base(*input)
		if strings.HasPrefix(*input, "http://") || strings.HasPrefix(*input, "https://") {
			name = path.Base(*input)
		}
		dst = strings.TrimSuffix(name, filepath.Ext(name)) + "_veil.png"
	}

	if _, err := pipeline.New(st, logger, pipeOpts...).Run(*input, dst); err != nil {
		log.Fatal(err)
	}
}
