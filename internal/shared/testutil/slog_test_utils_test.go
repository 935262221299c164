package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("loaded data file", slog.String("path", "data.csv"))
		logger.Warn("column not numeric", slog.Int("bad_cells", 3))

		records := handler.GetRecords()
		if len(records) != 2 {
			t.Errorf("Expected 2 records, got %d", len(records))
		}

		if !handler.ContainsMessage("loaded data file") {
			t.Error("Expected to find 'loaded data file'")
		}

		if !handler.ContainsAttr("path", "data.csv") {
			t.Error("Expected to find attribute path=data.csv")
		}
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		infoRecords := handler.GetRecordsByLevel(slog.LevelInfo)
		if len(infoRecords) != 1 {
			t.Errorf("Expected 1 info record, got %d", len(infoRecords))
		}

		warnRecords := handler.GetRecordsByLevel(slog.LevelWarn)
		if len(warnRecords) != 1 {
			t.Errorf("Expected 1 warn record, got %d", len(warnRecords))
		}
	})

	t.Run("clear resets the buffer", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")

		if handler.Count() != 2 {
			t.Errorf("Expected 2 records, got %d", handler.Count())
		}

		handler.Clear()

		if handler.Count() != 0 {
			t.Errorf("Expected 0 records after clear, got %d", handler.Count())
		}
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("filled missing values", slog.String("column", "Crop_Yield_MT_per_HA"))
		logger.Warn("unknown strategy", slog.String("strategy", "best"))

		AssertLogContains(t, handler, slog.LevelInfo, "filled missing")
		AssertLogAttr(t, handler, "column", "Crop_Yield_MT_per_HA")
		AssertNoErrors(t, handler)

		logger.Error("write failed")

		errors := handler.GetRecordsByLevel(slog.LevelError)
		if len(errors) != 1 {
			t.Error("Expected to capture error log")
		}
	})
}
