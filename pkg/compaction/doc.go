/*
Package compaction rolls a finished day of raw readings into summary rows.

# Why Compact?

Devices report every few minutes and the solar inverter reports hourly, so
a single day accumulates hundreds of intra-day rows per device. Historical
queries only ever need one number per day:

	Raw rows (one day, 5 devices)  → ~1,500 rows
	Summary rows (one day)         → 6 rows (5 devices + solar)

# How It Works

End-of-day compaction runs once per calendar day, after the day is over:

 1. Sum the day's solar energy and write a single summary row whose ts is
    the day's midnight marker ("YYYY-MM-DDT00:00:00").
 2. For each device that reported that day, average its current draw and
    write a per-device summary row with the same marker ts.
 3. Delete the intra-day rows, keeping only the markers.

Summaries are upserts: re-running compaction for an already compacted day
replaces the summary instead of duplicating it, so retries and the startup
catch-up pass are safe.

The daily average divides the summed current by 24 by default, treating the
day as a full 24 slot window even when a device reported for only part of
it. Set HOMEWATT_AVG_BY_COUNT to divide by the observed sample count
instead.
*/
package compaction
