// Package campus keeps the set of campus buildings and answers spatial
// questions about them through a loctree index.
package campus

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/campusmaps/loctree"
)

// Building is a named location on campus.
type Building struct {
	ShortName string           `json:"shortName"`
	LongName  string           `json:"longName"`
	Location  loctree.Location `json:"location"`
}

// ParseBuildings reads buildings from CSV rows of the form
//
//	short,long,x,y
//
// A first row whose third column is "x" is treated as a header. Lines
// starting with '#' are ignored.
func ParseBuildings(r io.Reader) ([]Building, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var buildings []Building
	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			return buildings, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read buildings")
		}
		if first && strings.EqualFold(strings.TrimSpace(rec[2]), "x") {
			continue
		}
		line, _ := cr.FieldPos(0)
		b, err := parseBuilding(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		buildings = append(buildings, b)
	}
}

func parseBuilding(rec []string) (Building, error) {
	short := strings.TrimSpace(rec[0])
	if short == "" {
		return Building{}, errors.New("missing short name")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil {
		return Building{}, errors.Wrapf(err, "building %q x", short)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
	if err != nil {
		return Building{}, errors.Wrapf(err, "building %q y", short)
	}
	return Building{
		ShortName: short,
		LongName:  strings.TrimSpace(rec[1]),
		Location:  loctree.Location{X: x, Y: y},
	}, nil
}
