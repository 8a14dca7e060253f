package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	// ChartGCT is the ground-contact-time vs peak-height scatter
	ChartGCT ChartKind = "gct"

	// ChartRSI plots per-subject RSI over normative reference bands
	ChartRSI ChartKind = "rsi"
)

type ImageFormat string

type ChartKind string

type Config struct {
	DBPath     string
	RunID      int64
	OutputFile string
	Format     ImageFormat
	Kind       ChartKind
	BandsFile  string
	Subject    string
	Verbose    bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

var validChartKinds = map[ChartKind]struct{}{
	ChartGCT: {},
	ChartRSI: {},
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		Kind:   ChartGCT,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, chartKind string
	flag.StringVar(&c.DBPath, "db", "", "Path to the results database file")
	flag.Int64Var(&c.RunID, "run", 1, "Run ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&chartKind, "kind", string(ChartGCT), "Chart kind. [gct, rsi]")
	flag.StringVar(&c.BandsFile, "bands", "", "Path to the normative bands file (rsi chart)")
	flag.StringVar(&c.Subject, "subject", "", "Restrict the chart to a single subject")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)
	chartKind = strings.ToLower(chartKind)

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.RunID <= 0 {
		err = errors.New("run id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := validChartKinds[ChartKind(chartKind)]; !ok {
		err = fmt.Errorf("invalid chart kind: %s", chartKind)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Kind = ChartKind(chartKind)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
