package eventmodels

import "sort"

type SectorMember struct {
	InstrumentToken uint32 `json:"instrument_token"`
	Symbol          string `json:"symbol"`
}

// SectorMap maps a sector name to its constituents.
type SectorMap map[string][]SectorMember

func (m SectorMap) Members(sector string) ([]SectorMember, error) {
	members, found := m[sector]
	if !found {
		return nil, UnknownSectorErr
	}

	return members, nil
}

func (m SectorMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// AllMembers returns every distinct member across sectors, ordered by token.
func (m SectorMap) AllMembers() []SectorMember {
	seen := make(map[uint32]SectorMember)
	for _, members := range m {
		for _, member := range members {
			seen[member.InstrumentToken] = member
		}
	}

	out := make([]SectorMember, 0, len(seen))
	for _, member := range seen {
		out = append(out, member)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].InstrumentToken < out[j].InstrumentToken
	})

	return out
}

type SectorIndex struct {
	InstrumentToken uint32 `csv:"instrument_token" json:"instrument_token"`
	Name            string `csv:"name" json:"name"`
}

// DefaultMarketIndices are the headline indices of the live market overview.
var DefaultMarketIndices = []SectorIndex{
	{InstrumentToken: 256265, Name: "NIFTY 50"},
	{InstrumentToken: 260105, Name: "NIFTY BANK"},
	{InstrumentToken: 264969, Name: "INDIA VIX"},
}
