package main

import (
	"fmt"
	"time"

	"github.com/itohio/goemon/pkg/link"
)

func formatRecord(r link.Record) string {
	ts := r.Timestamp.Format(time.TimeOnly)
	if r.NoSignal {
		return ts + " no signal"
	}
	return fmt.Sprintf("%s P=%.1fW V=%.1fV I=%.1fmA", ts, r.AveragePower, r.RMSVoltage, r.PeakCurrent)
}

func formatPort(p link.Port) string {
	if p.Description == "" {
		return p.Name
	}
	return fmt.Sprintf("%s\t%s", p.Name, p.Description)
}
