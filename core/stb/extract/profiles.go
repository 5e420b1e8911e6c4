package extract

import (
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/core/xml"
	"github.com/FocuswithJustin/stbview/internal/logging"
)

// profileReaders maps the catalog child tags that become profiles.
var profileReaders = map[string]func(r reader) stb.SteelProfile{
	"StbSecRoll-H":    rollH,
	"StbSecBuild-H":   buildH,
	"StbSecRoll-BOX":  rollBox,
	"StbSecBuild-BOX": buildBox,
	"StbSecPipe":      pipe,
	"StbSecRoll-L":    rollL,
}

// unmodeledProfiles are valid catalog tags without a profile type. They are
// skipped; every other unknown catalog tag is an error.
var unmodeledProfiles = map[string]bool{
	"StbSecRoll-T":         true,
	"StbSecRoll-C":         true,
	"StbSecLipC":           true,
	"StbSecFlatBar":        true,
	"StbSecRoundBar":       true,
	"StbSecSteelProduct":   true,
	"StbSecSteelUndefined": true,
}

// catalog reads StbSecSteel. Profiles are keyed by name; a later profile
// with the same name replaces an earlier one.
func (x *extractor) catalog(el *xml.Node) (stb.ProfileCatalog, error) {
	catalog := stb.ProfileCatalog{}
	err := x.each(el, func(p *xml.Node) error {
		read, ok := profileReaders[p.Name()]
		if !ok {
			if unmodeledProfiles[p.Name()] {
				logging.ElementSkipped(el.Name(), p.Name(), p.Path())
				return nil
			}
			return unknownTag(p)
		}
		r := newReader(p)
		profile := read(r)
		if err := r.Err(); err != nil {
			return err
		}
		catalog[profile.ProfileName()] = profile
		return nil
	})
	return catalog, err
}

func rollH(r reader) stb.SteelProfile {
	return stb.RollH{
		Name: text(r, "name"),
		Type: enum(r, "type", rollHTypes),
		A:    scalar[float64](r, "A"),
		B:    scalar[float64](r, "B"),
		T1:   scalar[float64](r, "t1"),
		T2:   scalar[float64](r, "t2"),
		R:    scalar[float64](r, "r"),
	}
}

func buildH(r reader) stb.SteelProfile {
	return stb.BuildH{
		Name: text(r, "name"),
		A:    scalar[float64](r, "A"),
		B:    scalar[float64](r, "B"),
		T1:   scalar[float64](r, "t1"),
		T2:   scalar[float64](r, "t2"),
	}
}

func rollBox(r reader) stb.SteelProfile {
	return stb.RollBox{
		Name: text(r, "name"),
		Type: enum(r, "type", rollBoxTypes),
		A:    scalar[float64](r, "A"),
		B:    scalar[float64](r, "B"),
		T:    scalar[float64](r, "t"),
		R:    scalar[float64](r, "R"),
	}
}

func buildBox(r reader) stb.SteelProfile {
	return stb.BuildBox{
		Name: text(r, "name"),
		A:    scalar[float64](r, "A"),
		B:    scalar[float64](r, "B"),
		T1:   scalar[float64](r, "t1"),
		T2:   scalar[float64](r, "t2"),
	}
}

func pipe(r reader) stb.SteelProfile {
	return stb.Pipe{
		Name: text(r, "name"),
		D:    scalar[float64](r, "D"),
		T:    scalar[float64](r, "t"),
	}
}

func rollL(r reader) stb.SteelProfile {
	return stb.RollL{
		Name: text(r, "name"),
		Type: enum(r, "type", rollLTypes),
		A:    scalar[float64](r, "A"),
		B:    scalar[float64](r, "B"),
		T1:   scalar[float64](r, "t1"),
		T2:   scalar[float64](r, "t2"),
		R1:   scalar[float64](r, "r1"),
		R2:   scalar[float64](r, "r2"),
		Side: scalar[bool](r, "side"),
	}
}
