// Package locations parses the location coordinates CSV into typed records.
//
// The file must have a header row naming at least the locationid, latitude
// and longitude columns; other columns are ignored. Coordinates are kept as
// exact decimals so values such as 47.6062 reach the database unchanged.
//
// Parsing is strict about ids and lenient about coordinates: a non-numeric
// locationid aborts the whole parse, while a blank coordinate simply marks the
// record as missing that coordinate.
package locations
