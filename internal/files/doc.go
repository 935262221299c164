// Package files provides input discovery for the preprocessing pipeline.
//
// Discovery lists the loadable data files (CSV and Excel) in a directory,
// relative to a configurable base path. Results are sorted by name so a
// batch run always processes files in the same order, and Excel ~$ lock
// files are skipped.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/base")
//
//	// Find everything the loader can read
//	dataFiles, err := discovery.FindDataFiles("data/raw")
//
//	// Or narrow to one format
//	csvFiles, err := discovery.FindCSVFiles("data/raw")
package files
