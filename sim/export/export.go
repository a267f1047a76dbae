// Package export writes per-customer results of drive-thru runs to files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/drivethru-sim/drivethru-sim/sim/restaurant"
)

// Row is one customer of one run. Unreached timestamps and durations are -1.
type Row struct {
	RunID          string  `parquet:"name=runId, type=BYTE_ARRAY, convertedtype=UTF8"`
	Restaurant     int32   `parquet:"name=restaurant, type=INT32"`
	Customer       int64   `parquet:"name=customer, type=INT64"`
	State          string  `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8"`
	EnterTime      float64 `parquet:"name=enterTime, type=DOUBLE"`
	OrderAdmitted  float64 `parquet:"name=orderAdmitted, type=DOUBLE"`
	PayAdmitted    float64 `parquet:"name=payAdmitted, type=DOUBLE"`
	PickupAdmitted float64 `parquet:"name=pickupAdmitted, type=DOUBLE"`
	ExitTime       float64 `parquet:"name=exitTime, type=DOUBLE"`
	OrderTime      float64 `parquet:"name=orderTime, type=DOUBLE"`
	PrepTime       float64 `parquet:"name=prepTime, type=DOUBLE"`
	PayTime        float64 `parquet:"name=payTime, type=DOUBLE"`
	PickupTime     float64 `parquet:"name=pickupTime, type=DOUBLE"`
	TimeInSystem   float64 `parquet:"name=timeInSystem, type=DOUBLE"`
}

var csvHeader = []string{
	"run_id", "restaurant", "customer", "state",
	"enter_time", "order_admitted", "pay_admitted", "pickup_admitted", "exit_time",
	"order_time", "prep_time", "pay_time", "pickup_time", "time_in_system",
}

// Rows converts a run's customers into export rows, in arrival order.
func Rows(runID string, number int, customers []*restaurant.Customer) []Row {
	rows := make([]Row, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, Row{
			RunID:          runID,
			Restaurant:     int32(number),
			Customer:       int64(c.ID),
			State:          c.State.String(),
			EnterTime:      c.EnterTime,
			OrderAdmitted:  c.OrderAdmitted,
			PayAdmitted:    c.PayAdmitted,
			PickupAdmitted: c.PickupAdmitted,
			ExitTime:       c.ExitTime,
			OrderTime:      c.Duration(restaurant.StageOrder),
			PrepTime:       c.Duration(restaurant.StagePrep),
			PayTime:        c.Duration(restaurant.StagePay),
			PickupTime:     c.Duration(restaurant.StagePickup),
			TimeInSystem:   c.TimeInSystem(),
		})
	}
	return rows
}

// WriteParquet writes rows to a new parquet file at path.
func WriteParquet(path string, rows []Row) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create local file writer: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return fw.Close()
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.RunID,
			strconv.Itoa(int(r.Restaurant)),
			strconv.FormatInt(r.Customer, 10),
			r.State,
			formatFloat(r.EnterTime),
			formatFloat(r.OrderAdmitted),
			formatFloat(r.PayAdmitted),
			formatFloat(r.PickupAdmitted),
			formatFloat(r.ExitTime),
			formatFloat(r.OrderTime),
			formatFloat(r.PrepTime),
			formatFloat(r.PayTime),
			formatFloat(r.PickupTime),
			formatFloat(r.TimeInSystem),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
