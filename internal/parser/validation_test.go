package parser

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// TestValidateCoordinate tests coordinate validation
func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		x       float64
		y       float64
		wantErr bool
	}{
		{"valid", -71.05, 42.35, false},
		{"projected", 2500000.5, 6700000.25, false},
		{"zero", 0, 0, false},
		{"x NaN", math.NaN(), 0, true},
		{"y NaN", 0, math.NaN(), true},
		{"x positive infinity", math.Inf(1), 0, true},
		{"y negative infinity", 0, math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.x, tt.y)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateGeometry tests geometry validation
func TestValidateGeometry(t *testing.T) {
	tests := []struct {
		name     string
		geometry orb.Geometry
		wantErr  bool
		errMatch string
	}{
		{
			name:     "valid point",
			geometry: orb.Point{-71.0, 42.0},
		},
		{
			name:     "valid linestring",
			geometry: orb.LineString{{-71.0, 42.0}, {-70.0, 43.0}},
		},
		{
			name: "valid polygon",
			geometry: orb.Polygon{
				{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
			},
		},
		{
			name:     "nil geometry",
			geometry: nil,
			wantErr:  true,
			errMatch: "nil",
		},
		{
			name:     "NaN point",
			geometry: orb.Point{math.NaN(), 1},
			wantErr:  true,
			errMatch: "vertex 0",
		},
		{
			name:     "infinite vertex in linestring",
			geometry: orb.LineString{{0, 0}, {1, 1}, {math.Inf(1), 2}},
			wantErr:  true,
			errMatch: "vertex 2",
		},
		{
			name: "bad vertex in second polygon",
			geometry: orb.MultiPolygon{
				{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
				{{{5, 5}, {6, math.NaN()}, {6, 6}, {5, 5}}},
			},
			wantErr:  true,
			errMatch: "vertex 5",
		},
		{
			name:     "bad member of collection",
			geometry: orb.Collection{orb.Point{1, 1}, orb.Point{math.NaN(), 0}},
			wantErr:  true,
			errMatch: "vertex 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeometry(tt.geometry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateGeometry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if _, ok := errors.Cause(err).(*InvalidGeometryError); !ok {
				t.Errorf("expected *InvalidGeometryError, got %T", errors.Cause(err))
			}
			if !strings.Contains(err.Error(), tt.errMatch) {
				t.Errorf("error %q does not mention %q", err, tt.errMatch)
			}
		})
	}
}

// TestVisitPointsStops tests that the walk ends when the callback declines
func TestVisitPointsStops(t *testing.T) {
	ls := orb.LineString{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	seen := 0
	visitPoints(ls, func(i int, p orb.Point) bool {
		seen++
		return i < 1
	})
	if seen != 2 {
		t.Errorf("expected 2 visited vertices, got %d", seen)
	}
}
