package seed

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the YAML document a seed run loads. Performances refer to
// bands, setlists and venues by their fixture ref; a ref with no matching
// entry is sent as-is and must come back with the default display values.
type Fixtures struct {
	Venues       []VenueFixture       `yaml:"venues"`
	Bands        []BandFixture        `yaml:"bands"`
	Setlists     []SetlistFixture     `yaml:"setlists"`
	Performances []PerformanceFixture `yaml:"performances"`
}

// VenueFixture is a venue with its fixture ref.
type VenueFixture struct {
	Ref           string `yaml:"ref"`
	Name          string `yaml:"name"`
	City          string `yaml:"city"`
	State         string `yaml:"state"`
	StreetAddress string `yaml:"streetAddress"`
	Zip           string `yaml:"zip"`
}

func (v VenueFixture) input() model.VenueInput {
	return model.VenueInput{Name: v.Name, City: v.City, State: v.State, StreetAddress: v.StreetAddress, Zip: v.Zip}
}

// BandFixture is a band with its fixture ref.
type BandFixture struct {
	Ref     string   `yaml:"ref"`
	Name    string   `yaml:"name"`
	Genre   string   `yaml:"genre"`
	Members []string `yaml:"members"`
}

func (b BandFixture) input() model.BandInput {
	return model.BandInput{Name: b.Name, Genre: b.Genre, Members: b.Members}
}

// SetlistFixture is a setlist with its fixture ref.
type SetlistFixture struct {
	Ref   string   `yaml:"ref"`
	Name  string   `yaml:"name"`
	Songs []string `yaml:"songs"`
}

func (s SetlistFixture) input() model.SetlistInput {
	return model.SetlistInput{Name: s.Name, Songs: s.Songs}
}

// PerformanceFixture names its references by fixture ref.
type PerformanceFixture struct {
	Name      string `yaml:"name"`
	EventType string `yaml:"eventType"`
	Date      string `yaml:"date"`
	Band      string `yaml:"band"`
	SetList   string `yaml:"setList"`
	Venue     string `yaml:"venue"`
}

// LoadFixtures reads path, or the built-in fixtures when path is empty.
func LoadFixtures(path string) (*Fixtures, error) {
	data := defaultFixtures
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixtures: %w", err)
		}
		data = b
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	seen := map[string]bool{}
	check := func(kind, ref string) error {
		if ref == "" {
			return fmt.Errorf("%s fixture without ref", kind)
		}
		if seen[kind+"/"+ref] {
			return fmt.Errorf("duplicate %s ref %q", kind, ref)
		}
		seen[kind+"/"+ref] = true
		return nil
	}
	for _, v := range f.Venues {
		if err := check("venue", v.Ref); err != nil {
			return err
		}
	}
	for _, b := range f.Bands {
		if err := check("band", b.Ref); err != nil {
			return err
		}
	}
	for _, s := range f.Setlists {
		if err := check("setlist", s.Ref); err != nil {
			return err
		}
	}
	return nil
}

// Generate appends n random performances that reference the fixture
// entities. About orphanRate of the references point at refs that do not
// exist.
func (f *Fixtures) Generate(n int, orphanRate float64, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pick := func(refs []string, i int) string {
		if len(refs) == 0 || rng.Float64() < orphanRate {
			return "missing-" + strconv.Itoa(i)
		}
		return refs[rng.IntN(len(refs))]
	}

	bands := make([]string, 0, len(f.Bands))
	for _, b := range f.Bands {
		bands = append(bands, b.Ref)
	}
	setlists := make([]string, 0, len(f.Setlists))
	for _, s := range f.Setlists {
		setlists = append(setlists, s.Ref)
	}
	venues := make([]string, 0, len(f.Venues))
	for _, v := range f.Venues {
		venues = append(venues, v.Ref)
	}

	eventTypes := []string{"concert", "festival", "showcase", "private"}
	for i := range n {
		f.Performances = append(f.Performances, PerformanceFixture{
			Name:      "Generated show " + strconv.Itoa(i+1),
			EventType: eventTypes[rng.IntN(len(eventTypes))],
			Date:      fmt.Sprintf("2025-%02d-%02d", 1+rng.IntN(12), 1+rng.IntN(28)),
			Band:      pick(bands, i),
			SetList:   pick(setlists, i),
			Venue:     pick(venues, i),
		})
	}
}
