package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cheekybits/is"
	"github.com/rubenv/batidiff/batidiff"
)

const oldExtract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="48.0000" lon="2.0000"/>
  <node id="2" lat="48.0000" lon="2.0001"/>
  <node id="3" lat="48.0001" lon="2.0001"/>
  <node id="4" lat="48.0001" lon="2.0000"/>
  <node id="5" lat="48.0050" lon="2.0050"/>
  <node id="6" lat="48.0050" lon="2.0051"/>
  <node id="7" lat="48.0051" lon="2.0051"/>
  <node id="8" lat="48.0051" lon="2.0050"/>
  <way id="1"><nd ref="1"/><nd ref="2"/><nd ref="3"/><nd ref="4"/><nd ref="1"/>
    <tag k="building" v="house"/><tag k="name" v="Mairie"/>
  </way>
  <way id="2"><nd ref="5"/><nd ref="6"/><nd ref="7"/><nd ref="8"/><nd ref="5"/>
    <tag k="building" v="yes"/>
  </way>
</osm>
`

const newExtract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="11" lat="48.0000" lon="2.0000"/>
  <node id="12" lat="48.0000" lon="2.0001"/>
  <node id="13" lat="48.0001" lon="2.0001"/>
  <node id="14" lat="48.0001" lon="2.0000"/>
  <node id="15" lat="48.0100" lon="2.0100"/>
  <node id="16" lat="48.0100" lon="2.0101"/>
  <node id="17" lat="48.0101" lon="2.0101"/>
  <node id="18" lat="48.0101" lon="2.0100"/>
  <way id="10"><nd ref="11"/><nd ref="12"/><nd ref="13"/><nd ref="14"/><nd ref="11"/>
    <tag k="building" v="yes"/><tag k="source" v="cadastre"/>
  </way>
  <way id="11"><nd ref="15"/><nd ref="16"/><nd ref="17"/><nd ref="18"/><nd ref="15"/>
    <tag k="building" v="yes"/>
  </way>
</osm>
`

func TestDiff(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.osm")
	newFile := filepath.Join(dir, "new.osm")
	is.NoErr(os.WriteFile(oldFile, []byte(oldExtract), 0644))
	is.NoErr(os.WriteFile(newFile, []byte(newExtract), 0644))

	prefix := filepath.Join(dir, "out")
	cmd := CmdDiff{
		global:     &GlobalOptions{LogFormat: "text"},
		Output:     prefix,
		DebugOSM:   true,
		GeoJSON:    true,
		TopoJSON:   true,
		Shapefile:  true,
		Metrics:    filepath.Join(dir, "batidiff.prom"),
		NoProgress: true,
	}
	is.NoErr(cmd.Execute([]string{oldFile, newFile}))

	for _, name := range []string{
		"out_unModified.osm",
		"out_mod_1_a_0.osm",
		"out_new_1_a_1.osm",
		"out_sup_1_a_1.osm",
		"out_log.txt",
		"out_debug.osm",
		"out.geojson",
		"out.topojson",
		"out.shp",
		"out.dbf",
		"batidiff.prom",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		is.NoErr(err)
	}

	g := &GlobalOptions{}
	unchanged, _, err := g.ReadSnapshot(context.Background(), prefix+"_unModified.osm")
	is.NoErr(err)
	is.Equal(len(unchanged.Buildings), 1)
	b := unchanged.Get("10")
	is.NotNil(b)
	name, _ := b.Tags.Get("name")
	is.Equal(name, "Mairie")
	source, _ := b.Tags.Get("source")
	is.Equal(source, "cadastre")

	deleted, _, err := g.ReadSnapshot(context.Background(), prefix+"_sup_1_a_1.osm")
	is.NoErr(err)
	is.NotNil(deleted.Get("2"))

	g.IDField = "id"
	layer, _, err := g.ReadSnapshot(context.Background(), prefix+".shp")
	is.NoErr(err)
	is.Equal(len(layer.Outer()), 3)
	status, _ := layer.Get("2").Tags.Get("status")
	is.Equal(status, batidiff.StatusDeleted.String())

	log, err := os.ReadFile(prefix + "_log.txt")
	is.NoErr(err)
	is.True(strings.Contains(string(log), "    new buildings: 1\n"))
}

func TestDiffUsage(t *testing.T) {
	is := is.New(t)

	cmd := CmdDiff{global: &GlobalOptions{}}
	is.Err(cmd.Execute([]string{"old.osm"}))
}

func TestSetup(t *testing.T) {
	is := is.New(t)

	filename := filepath.Join(t.TempDir(), "batidiff.yml")
	is.NoErr(os.WriteFile(filename, []byte("max_match_distance: 20\nworkers: 3\n"), 0644))

	g := &GlobalOptions{Config: filename, Workers: 5}
	cfg, log, err := g.Setup()
	is.NoErr(err)
	is.NotNil(log)
	is.Equal(cfg.MaxMatchDistance, 20.0)
	is.Equal(cfg.MinIdenticalDistance, 1.0)
	is.Equal(cfg.Workers, 5)

	g = &GlobalOptions{LogFormat: "xml"}
	_, _, err = g.Setup()
	is.Err(err)
}

func TestReadSnapshotShapefile(t *testing.T) {
	is := is.New(t)

	_, _, err := (&GlobalOptions{}).ReadSnapshot(context.Background(), filepath.Join(t.TempDir(), "missing.SHP"))
	is.Err(err)
	is.True(strings.Contains(err.Error(), "missing.shp") || strings.Contains(err.Error(), "missing.SHP"))
}
