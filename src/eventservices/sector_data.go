package eventservices

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

// LoadSectorMap reads {"NIFTY IT": [{"instrument_token": 1, "symbol": "TCS"}]}.
func LoadSectorMap(path string) (eventmodels.SectorMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSectorMap: failed to read %s: %w", path, err)
	}

	var sectors eventmodels.SectorMap
	if err := json.Unmarshal(data, &sectors); err != nil {
		return nil, fmt.Errorf("LoadSectorMap: failed to parse %s: %w", path, err)
	}

	return sectors, nil
}

// LoadSectorIndices reads the instrument_token,name CSV of sector indices.
func LoadSectorIndices(path string) ([]eventmodels.SectorIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSectorIndices: failed to open %s: %w", path, err)
	}

	defer f.Close()

	var indices []eventmodels.SectorIndex
	if err := gocsv.UnmarshalFile(f, &indices); err != nil {
		return nil, fmt.Errorf("LoadSectorIndices: failed to parse %s: %w", path, err)
	}

	return indices, nil
}
