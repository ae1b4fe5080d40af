package link

// NewAverager returns a stage that replaces every measurement record with the
// mean of the last windowSize measurement records. No-signal records pass
// through unchanged and restart the window. The output channel closes when
// in closes.
func NewAverager(windowSize int, bufSize int) func(in <-chan Record) <-chan Record {
	if windowSize <= 0 {
		windowSize = 1 // No averaging if invalid
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return func(in <-chan Record) <-chan Record {
		out := make(chan Record, bufSize)

		go func() {
			defer close(out)

			window := make([]Record, 0, windowSize)
			for r := range in {
				if r.NoSignal {
					window = window[:0]
					out <- r
					continue
				}

				if len(window) == windowSize {
					copy(window, window[1:])
					window = window[:windowSize-1]
				}
				window = append(window, r)
				out <- averageRecords(window)
			}
		}()

		return out
	}
}

// averageRecords averages measurements, keeping the newest timestamp.
func averageRecords(records []Record) Record {
	if len(records) == 0 {
		return Record{}
	}

	var sumPower, sumVoltage, sumCurrent float64
	for _, r := range records {
		sumPower += r.AveragePower
		sumVoltage += r.RMSVoltage
		sumCurrent += r.PeakCurrent
	}

	n := float64(len(records))
	avg := records[len(records)-1]
	avg.AveragePower = sumPower / n
	avg.RMSVoltage = sumVoltage / n
	avg.PeakCurrent = sumCurrent / n
	return avg
}
