package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/activities.yaml
var defaultActivitiesYAML []byte

//go:embed data/purposes.yaml
var defaultPurposesYAML []byte

// activityFile models data/activities.yaml.
type activityFile struct {
	Version    int        `yaml:"version"`
	Activities []Activity `yaml:"activities"`
}

// purposeFile models data/purposes.yaml.
type purposeFile struct {
	Version  int       `yaml:"version"`
	Purposes []Purpose `yaml:"purposes"`
}

// Dataset is the on-disk shape accepted by Load: both lists in one document.
type Dataset struct {
	Version    int        `yaml:"version"`
	Activities []Activity `yaml:"activities"`
	Purposes   []Purpose  `yaml:"purposes"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		var activities activityFile
		if err := yaml.Unmarshal(defaultActivitiesYAML, &activities); err != nil {
			defaultErr = fmt.Errorf("catalog: parse embedded activities: %w", err)
			return
		}
		var purposes purposeFile
		if err := yaml.Unmarshal(defaultPurposesYAML, &purposes); err != nil {
			defaultErr = fmt.Errorf("catalog: parse embedded purposes: %w", err)
			return
		}
		defaultCat, defaultErr = New(activities.Activities, purposes.Purposes)
	})
	return defaultCat, defaultErr
}

// Load decodes a Dataset document. When the document omits purposes, the
// embedded purpose tags are used.
func Load(r io.Reader) (*Catalog, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("catalog: decode dataset: %w", err)
	}
	if len(ds.Purposes) == 0 {
		var purposes purposeFile
		if err := yaml.NewDecoder(bytes.NewReader(defaultPurposesYAML)).Decode(&purposes); err != nil {
			return nil, fmt.Errorf("catalog: parse embedded purposes: %w", err)
		}
		ds.Purposes = purposes.Purposes
	}
	return New(ds.Activities, ds.Purposes)
}

// LoadFile reads a Dataset document from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
