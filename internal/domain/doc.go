// Package domain models NHTSA Fatality Analysis Reporting System (FARS)
// accident data.
//
// # Data Source
//
// FARS publishes one accident file per calendar year. The files handled here
// follow the naming convention
//
//	accident_<year>.csv.bz2  →  e.g. "accident_2013.csv.bz2"
//
// and are comma-separated with a header row. Each row is one fatal crash.
//
// # Columns
//
// Only a handful of the ~50 accident columns are used:
//
//	STATE     FIPS-style state number (1 = Alabama, 56 = Wyoming).  required
//	MONTH     1–12.                                                  required
//	ST_CASE   case number, unique within a year.                     optional
//	DAY       day of month.                                          optional
//	FATALS    number of fatalities in the crash.                     optional
//	LONGITUD  decimal degrees, negative in the western hemisphere.   optional
//	LATITUDE  decimal degrees.                                       optional
//
// # Unknown values
//
// FARS encodes "not available" coordinates with out-of-range sentinels:
//
//	LONGITUD 999.9999  (anything > 900)
//	LATITUDE  99.9999  (anything > 90)
//
// Other codes below those bounds, such as 888.8888 / 88.8888, are kept as
// coordinates.
//
// Sentinels never leave the load boundary: [NewLocation] turns them into a
// nil *Coordinate, so code past the reader only ever checks for nil.
//
// # Years
//
// Years arrive from flags, query strings and config as loosely typed values.
// [ParseYear] coerces them and keeps an explicit invalid state that prints as
// "NA", so a bad year still produces a (non-existent) filename rather than an
// error. The per-year reader turns that into a skipped year with a warning.
package domain
