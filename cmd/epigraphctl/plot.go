package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"epigraph/internal/model"
	"epigraph/internal/paramio"
)

func compartmentByName(name string) (model.Compartment, error) {
	for c := 0; c < model.CompartmentCount; c++ {
		if model.Compartment(c).String() == name {
			return model.Compartment(c), nil
		}
	}
	return 0, fmt.Errorf("unknown compartment %q", name)
}

// runPlot renders one compartment of a stored result table as a line
// chart, summed over age groups.
func runPlot(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	resultPath := fs.String("result", "", "result table (csv)")
	outPath := fs.String("out", "result.png", "output image")
	compName := fs.String("compartment", "Infected", "compartment to plot")
	width := fs.Int("width", 1024, "image width")
	height := fs.Int("height", 512, "image height")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *resultPath == "" {
		return fmt.Errorf("plot: -result is required")
	}
	comp, err := compartmentByName(*compName)
	if err != nil {
		return err
	}

	ts, err := paramio.ReadTimeSeriesCSV(*resultPath)
	if err != nil {
		return err
	}
	if ts.NumElements()%model.CompartmentCount != 0 {
		return fmt.Errorf("plot: %d columns is not a multiple of %d compartments", ts.NumElements(), model.CompartmentCount)
	}
	numGroups := ts.NumElements() / model.CompartmentCount

	xs := make([]float64, ts.NumTimePoints())
	ys := make([]float64, ts.NumTimePoints())
	for i := 0; i < ts.NumTimePoints(); i++ {
		xs[i] = ts.Time(i)
		row := ts.Value(i)
		for a := 0; a < numGroups; a++ {
			ys[i] += row[model.FlatIndex(model.AgeGroup(a), comp)]
		}
	}

	graph := chart.Chart{
		Width:  *width,
		Height: *height,
		XAxis:  chart.XAxis{Name: "days"},
		YAxis:  chart.YAxis{Name: *compName},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    *compName,
				XValues: xs,
				YValues: ys,
			},
		},
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", *outPath, err)
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render %s: %w", *outPath, err)
	}
	fmt.Printf("wrote %s\n", *outPath)
	return nil
}
