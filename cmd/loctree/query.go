package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusmaps/loctree"
	"github.com/campusmaps/loctree/internal/campus"
)

var regionCmd = &cobra.Command{
	Use:   "region",
	Short: "List the buildings inside a rectangle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var r loctree.Region
		var err error
		for _, b := range []struct {
			name string
			dst  *float64
		}{{"x1", &r.X1}, {"x2", &r.X2}, {"y1", &r.Y1}, {"y2", &r.Y2}} {
			if *b.dst, err = flags.GetFloat64(b.name); err != nil {
				return err
			}
		}
		if r.X1 > r.X2 || r.Y1 > r.Y2 {
			return errors.Errorf("empty region x=[%v,%v] y=[%v,%v]",
				r.X1, r.X2, r.Y1, r.Y2)
		}
		return withCatalog(func(c *campus.Catalog) error {
			return writeBuildings(cmd.OutOrStdout(), c.InRegion(r))
		})
	},
}

var closestCmd = &cobra.Command{
	Use:   "closest",
	Short: "Find the building closest to any of the given points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := pointsFlag(cmd)
		if err != nil {
			return err
		}
		return withCatalog(func(c *campus.Catalog) error {
			shorts, _ := cmd.Flags().GetStringSlice("from")
			from, err := c.Locations(shorts)
			if err != nil {
				return err
			}
			b, dist, err := c.Closest(append(points, from...))
			if err != nil {
				return err
			}
			return writeNeighbors(cmd.OutOrStdout(),
				[]campus.Neighbor{{Building: b, Dist: dist}})
		})
	},
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "List the k buildings nearest to a point",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := pointsFlag(cmd)
		if err != nil {
			return err
		}
		if len(points) != 1 {
			return errors.New("nearest takes exactly one --at point")
		}
		k, err := cmd.Flags().GetInt("k")
		if err != nil {
			return err
		}
		return withCatalog(func(c *campus.Catalog) error {
			return writeNeighbors(cmd.OutOrStdout(), c.Nearest(points[0], k))
		})
	},
}

func init() {
	inf := math.Inf(1)
	regionCmd.Flags().Float64("x1", -inf, "West edge")
	regionCmd.Flags().Float64("x2", inf, "East edge")
	regionCmd.Flags().Float64("y1", -inf, "North edge")
	regionCmd.Flags().Float64("y2", inf, "South edge")

	closestCmd.Flags().StringArray("at", nil, "Query point as x,y. May be repeated.")
	closestCmd.Flags().StringSlice("from", nil,
		"Short names of buildings whose locations are added to the query points")

	nearestCmd.Flags().StringArray("at", nil, "Query point as x,y")
	nearestCmd.Flags().IntP("k", "k", 5, "Number of buildings to list")
}

func withCatalog(fn func(c *campus.Catalog) error) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	c, err := loadCatalog(log)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		log.Debug("query failed", zap.Error(err))
		return err
	}
	return nil
}

func pointsFlag(cmd *cobra.Command) ([]loctree.Location, error) {
	raw, err := cmd.Flags().GetStringArray("at")
	if err != nil {
		return nil, err
	}
	points := make([]loctree.Location, 0, len(raw))
	for _, s := range raw {
		p, err := parsePoint(s)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func parsePoint(s string) (loctree.Location, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return loctree.Location{}, errors.Errorf("point %q is not x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return loctree.Location{}, errors.Wrapf(err, "point %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return loctree.Location{}, errors.Wrapf(err, "point %q", s)
	}
	return loctree.Location{X: x, Y: y}, nil
}

func writeBuildings(w io.Writer, bs []campus.Building) error {
	if conf.GetString(confFormat) == "json" {
		return json.NewEncoder(w).Encode(bs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range bs {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\n",
			b.ShortName, b.LongName, b.Location.X, b.Location.Y)
	}
	return tw.Flush()
}

func writeNeighbors(w io.Writer, ns []campus.Neighbor) error {
	if conf.GetString(confFormat) == "json" {
		return json.NewEncoder(w).Encode(ns)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, n := range ns {
		fmt.Fprintf(tw, "%s\t%s\t%g\n",
			n.Building.ShortName, n.Building.LongName, n.Dist)
	}
	return tw.Flush()
}
