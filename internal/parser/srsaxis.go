package parser

import (
	_ "embed"
	"encoding/csv"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// axisOrder is the axis order EPSG assigns to a coordinate system.
type axisOrder int

const (
	axisEastNorth axisOrder = iota
	axisNorthEast
)

// epsgAxisCSV lists coordinate systems whose axis order does not follow
// from their code range: code, name, "north-east" or "east-north".
//
//go:embed epsg_axis.csv
var epsgAxisCSV string

var (
	epsgAxisOrders     map[int]axisOrder
	epsgAxisOrdersOnce sync.Once
)

// loadEPSGAxisOrders parses the embedded axis order table
func loadEPSGAxisOrders() {
	epsgAxisOrders = make(map[int]axisOrder)

	records, err := csv.NewReader(strings.NewReader(epsgAxisCSV)).ReadAll()
	if err != nil {
		glog.Errorf("embedded EPSG axis table: %v", err)
		return
	}

	// Skip header row
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}
		switch strings.TrimSpace(record[2]) {
		case "north-east":
			epsgAxisOrders[code] = axisNorthEast
		case "east-north":
			epsgAxisOrders[code] = axisEastNorth
		}
	}
}

// epsgAxisOrder looks code up in the axis order table.
func epsgAxisOrder(code int) (axisOrder, bool) {
	epsgAxisOrdersOnce.Do(loadEPSGAxisOrders)
	order, ok := epsgAxisOrders[code]
	return order, ok
}
