package graph

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sample is a single accelerometer reading: a timestamp in seconds and the
// acceleration measured on each axis in mm/s^2.
type Sample struct {
	Time float64
	X    float64
	Y    float64
	Z    float64
}

// Measurement holds the parsed content of one uploaded accelerometer CSV.
type Measurement struct {
	// Name is the declared filename of the upload, kept for labeling.
	Name string
	// Samples are the readings in file order.
	Samples []Sample
}

// ParseMeasurement parses raw CSV bytes into a Measurement.
//
// The expected layout is the one Klipper's accelerometer chips write:
// an optional header line (commented like "#time,accel_x,accel_y,accel_z"
// or plain), followed by one comma-separated record per sample with at
// least four numeric columns: time, accel_x, accel_y, accel_z. Extra
// columns are ignored.
func ParseMeasurement(name string, data []byte) (*Measurement, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyData
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	measurement := &Measurement{Name: name}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		line++

		sample, err := parseSample(record)
		if err != nil {
			// Tolerate a single non-numeric leading record: files without
			// the "#" comment prefix still carry a column header.
			if line == 1 && len(measurement.Samples) == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedCSV, line, err)
		}
		measurement.Samples = append(measurement.Samples, sample)
	}

	if len(measurement.Samples) == 0 {
		return nil, fmt.Errorf("%w: no samples found", ErrEmptyData)
	}

	return measurement, nil
}

func parseSample(record []string) (Sample, error) {
	if len(record) < 4 {
		return Sample{}, fmt.Errorf("expected at least 4 columns, got %d", len(record))
	}

	values := make([]float64, 4)
	for i := 0; i < 4; i++ {
		value, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("column %d is not numeric: %q", i+1, record[i])
		}
		values[i] = value
	}

	return Sample{Time: values[0], X: values[1], Y: values[2], Z: values[3]}, nil
}

// SampleRate estimates the sample frequency in Hz from the time span of the
// measurement. Klipper accelerometer dumps are evenly spaced, so the span
// average is accurate enough for spectral scaling.
func (m *Measurement) SampleRate() (float64, error) {
	if len(m.Samples) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 samples to derive a sample rate", ErrTooFewSamples)
	}

	span := m.Samples[len(m.Samples)-1].Time - m.Samples[0].Time
	if span <= 0 {
		return 0, ErrBadTimeColumn
	}

	return float64(len(m.Samples)-1) / span, nil
}

// Duration returns the measured time span in seconds.
func (m *Measurement) Duration() float64 {
	if len(m.Samples) < 2 {
		return 0
	}
	return m.Samples[len(m.Samples)-1].Time - m.Samples[0].Time
}

// Axis extracts one acceleration axis as a flat slice. Valid names are
// "x", "y" and "z".
func (m *Measurement) Axis(name string) []float64 {
	values := make([]float64, len(m.Samples))
	for i, s := range m.Samples {
		switch name {
		case "x":
			values[i] = s.X
		case "y":
			values[i] = s.Y
		case "z":
			values[i] = s.Z
		}
	}
	return values
}

// Magnitude returns the euclidean norm of the acceleration vector per
// sample, with the per-axis mean removed first so gravity does not dominate
// the vibration content.
func (m *Measurement) Magnitude() []float64 {
	x := detrend(m.Axis("x"))
	y := detrend(m.Axis("y"))
	z := detrend(m.Axis("z"))

	magnitude := make([]float64, len(m.Samples))
	for i := range magnitude {
		magnitude[i] = norm3(x[i], y[i], z[i])
	}
	return magnitude
}

// Times returns the timestamp column, shifted so the first sample is at 0.
func (m *Measurement) Times() []float64 {
	times := make([]float64, len(m.Samples))
	if len(m.Samples) == 0 {
		return times
	}
	start := m.Samples[0].Time
	for i, s := range m.Samples {
		times[i] = s.Time - start
	}
	return times
}
