// Package logtail reads the end of roost's own log file for the activity
// view.
//
// roost logs JSON records through zap. Read returns the last N raw lines
// using a ring buffer, so memory stays O(N) however large the file grows;
// ReadEntries parses them into Entry values (time, level, logger, message
// and the remaining structured fields). Lines that are not JSON records,
// such as a panic trace, are kept verbatim in Entry.Raw.
//
//	entries, err := logtail.ReadEntries(cfg.LogFile, 200)
//	if err != nil {
//		return err
//	}
//	for _, e := range entries {
//		fmt.Println(e)
//	}
package logtail
