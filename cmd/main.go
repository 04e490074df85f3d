package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rubenv/batidiff/batidiff"
	"github.com/rubenv/batidiff/logger"
	"github.com/rubenv/batidiff/osmfile"
	"github.com/rubenv/batidiff/shapefile"
)

type GlobalOptions struct {
	Config    string `short:"c" long:"config" env:"BATIDIFF_CONFIG" description:"YAML configuration file"`
	Workers   int    `short:"j" long:"workers" env:"BATIDIFF_WORKERS" description:"Matching workers (default: number of CPUs)"`
	IDField   string `long:"id-field" env:"BATIDIFF_ID_FIELD" description:"Shapefile attribute holding building ids"`
	Debug     bool   `long:"debug" env:"BATIDIFF_DEBUG" description:"Enable debug logging"`
	LogFormat string `long:"log-format" env:"BATIDIFF_LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log format"`
}

var globalOpts = GlobalOptions{}
var parser = flags.NewParser(&globalOpts, flags.HelpFlag|flags.PassDoubleDash)

// Run parses the command line and executes the selected command. Options
// can also be set from the environment or from a .env file.
func Run() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	_, err = parser.Parse()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		parser.WriteHelp(os.Stdout)
		return nil
	}
	return err
}

// Setup installs the logger and loads the configuration.
func (g *GlobalOptions) Setup() (*batidiff.Config, *slog.Logger, error) {
	level := "info"
	if g.Debug {
		level = "debug"
	}
	log, err := logger.Setup(os.Stderr, level, g.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	cfg := batidiff.NewConfig()
	if g.Config != "" {
		cfg, err = batidiff.ReadConfig(g.Config)
		if err != nil {
			return nil, nil, err
		}
	}
	if g.Workers > 0 {
		cfg.Workers = g.Workers
	}
	return cfg, log, nil
}

// ReadSnapshot loads a shapefile or an OSM file, depending on its
// extension. Shapefiles come without a document.
func (g *GlobalOptions) ReadSnapshot(ctx context.Context, filename string) (*batidiff.Snapshot, *osmfile.Document, error) {
	if strings.EqualFold(filepath.Ext(filename), ".shp") {
		s, err := shapefile.Read(filename, g.IDField)
		return s, nil, err
	}
	return osmfile.Read(ctx, filename)
}

func writeFile(filename string, fn func(w io.Writer) error) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()

	w := bufio.NewWriter(fp)
	err = fn(w)
	if err != nil {
		return err
	}
	err = w.Flush()
	if err != nil {
		return err
	}
	return fp.Close()
}
